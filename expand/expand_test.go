// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/posh-sh/posh/syntax"
)

func parseWord(t *testing.T, src string) *syntax.Word {
	t.Helper()
	p := syntax.NewParser()
	word, err := p.Document(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return word
}

func testConfig() *Config {
	return &Config{
		Env:    ListEnviron("FOO=bar", "EMPTY="),
		Params: []string{"one", "two three", ""},
		Arg0:   "sh",
		EvalArithmetic: func(_ context.Context, expr string, lookup func(string) string) (int64, error) {
			return evalSimpleArith(strings.TrimSpace(expr))
		},
	}
}

// evalSimpleArith evaluates a tiny subset of arithmetic (+, -, *, /,
// left-to-right with * and / binding tighter than + and -) for
// TestArithm; it stands in for whatever arithmetic grammar a real
// EvalArithmetic implementation would parse.
func evalSimpleArith(expr string) (int64, error) {
	var terms []int64
	i := 0
	readInt := func() (int64, error) {
		start := i
		for i < len(expr) && expr[i] >= '0' && expr[i] <= '9' {
			i++
		}
		if start == i {
			return 0, fmt.Errorf("cannot evaluate %q: expected digit at %d", expr, start)
		}
		return strconv.ParseInt(expr[start:i], 10, 64)
	}
	n, err := readInt()
	if err != nil {
		return 0, err
	}
	terms = append(terms, n)
	for i < len(expr) {
		op := expr[i]
		i++
		n, err := readInt()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			terms[len(terms)-1] *= n
		case '/':
			terms[len(terms)-1] /= n
		case '+':
			terms = append(terms, n)
		case '-':
			terms = append(terms, -n)
		default:
			return 0, fmt.Errorf("cannot evaluate %q: unknown operator %q", expr, op)
		}
	}
	var total int64
	for _, t := range terms {
		total += t
	}
	return total, nil
}

func TestConfigNils(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		src  string
		want string
	}{
		{"NilConfig", nil, "$FOO", ""},
		{"ZeroConfig", &Config{}, "$FOO", ""},
		{"EnvConfig", &Config{Env: ListEnviron("FOO=value")}, "$FOO", "value"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			word := parseWord(t, tc.src)
			got, err := Literal(tc.cfg, word)
			if err != nil {
				t.Fatalf("did not want error, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("wanted %q, got %q", tc.want, got)
			}
		})
	}
}

func TestLiteral(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		src  string
		want string
	}{
		{"foo", "foo"},
		{"$FOO", "bar"},
		{"${FOO}", "bar"},
		{"${MISSING:-def}", "def"},
		{"${MISSING-def}", "def"},
		{"${EMPTY:-def}", "def"},
		{"${EMPTY-def}", ""},
		{"${FOO:+alt}", "alt"},
		{"${MISSING:+alt}", ""},
		{"${#FOO}", "3"},
		{"${FOO#b}", "ar"},
		{"${FOO%r}", "ba"},
		{"$1", "one"},
		{"$2", "two three"},
		{"$#", "3"},
		{"$*", "one two three "},
		{"'$FOO'", "$FOO"},
		{`"$FOO"`, "bar"},
		{"$((1+2))", "3"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			word := parseWord(t, tc.src)
			got, err := Literal(cfg, word)
			if err != nil {
				t.Fatalf("did not want error, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("wanted %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFieldsSplitting(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		src  string
		want []string
	}{
		{"foo bar", []string{"foo", "bar"}},
		{`"foo bar"`, []string{"foo bar"}},
		{"$FOO", []string{"bar"}},
		{"$EMPTY", nil},
		{`"$EMPTY"`, []string{""}},
		{"x$EMPTY", []string{"x"}},
		{"$*", []string{"one", "two", "three"}},
		{`"$*"`, []string{"one two three "}},
		{"$@", []string{"one", "two three"}},
		{`"$@"`, []string{"one", "two three", ""}},
		{`x"$@"y`, []string{"xone", "two three", "y"}},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			word := parseWord(t, tc.src)
			got, err := Fields(cfg, word)
			if err != nil {
				t.Fatalf("did not want error, got %v", err)
			}
			if !equalStrings(got, tc.want) {
				t.Fatalf("wanted %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFieldsCustomIFS(t *testing.T) {
	cfg := &Config{Env: ListEnviron("IFS=:", "X=a:b::c")}
	word := parseWord(t, "$X")
	got, err := Fields(cfg, word)
	if err != nil {
		t.Fatalf("did not want error, got %v", err)
	}
	want := []string{"a", "b", "", "c"}
	if !equalStrings(got, want) {
		t.Fatalf("wanted %q, got %q", want, got)
	}
}

func TestFieldsGlob(t *testing.T) {
	cfg := &Config{
		Env: ListEnviron(),
		Glob: func(pat string) ([]string, bool) {
			all := map[string][]string{
				"a\\*":  nil,
				"*.txt": {"b.txt", "a.txt"},
			}
			m, ok := all[pat]
			return m, ok
		},
	}
	word := parseWord(t, "*.txt")
	got, err := Fields(cfg, word)
	if err != nil {
		t.Fatalf("did not want error, got %v", err)
	}
	want := []string{"a.txt", "b.txt"}
	if !equalStrings(got, want) {
		t.Fatalf("wanted %q, got %q", want, got)
	}

	cfg.NoGlob = true
	got, err = Fields(cfg, word)
	if err != nil {
		t.Fatalf("did not want error, got %v", err)
	}
	if !equalStrings(got, []string{"*.txt"}) {
		t.Fatalf("NoGlob: wanted literal, got %q", got)
	}
}

func TestFieldsQuotedGlobIsLiteral(t *testing.T) {
	called := false
	cfg := &Config{
		Env: ListEnviron(),
		Glob: func(string) ([]string, bool) {
			called = true
			return nil, false
		},
	}
	word := parseWord(t, `"*.txt"`)
	got, err := Fields(cfg, word)
	if err != nil {
		t.Fatalf("did not want error, got %v", err)
	}
	if called {
		t.Fatalf("Glob should not be called for quoted text")
	}
	if !equalStrings(got, []string{"*.txt"}) {
		t.Fatalf("wanted literal *.txt, got %q", got)
	}
}

func TestNoUnset(t *testing.T) {
	cfg := &Config{Env: ListEnviron(), NoUnset: true}
	word := parseWord(t, "$MISSING")
	if _, err := Literal(cfg, word); err == nil {
		t.Fatalf("expected an UnsetParameterError")
	}
	// The use-default family should not trip NoUnset.
	word = parseWord(t, "${MISSING:-ok}")
	got, err := Literal(cfg, word)
	if err != nil {
		t.Fatalf("did not want error, got %v", err)
	}
	if got != "ok" {
		t.Fatalf("wanted ok, got %q", got)
	}
}

func TestCmdSubst(t *testing.T) {
	cfg := &Config{
		Env: ListEnviron(),
		CmdSubst: func(_ context.Context, w io.Writer, _ *syntax.CommandList) error {
			_, err := w.Write([]byte("hi\n\n"))
			return err
		},
	}
	word := parseWord(t, "$(echo hi)")
	got, err := Literal(cfg, word)
	if err != nil {
		t.Fatalf("did not want error, got %v", err)
	}
	if got != "hi" {
		t.Fatalf("wanted trailing newlines trimmed, got %q", got)
	}
}

func TestArithm(t *testing.T) {
	cfg := testConfig()
	n, err := Arithm(cfg, "1+2*3")
	if err != nil {
		t.Fatalf("did not want error, got %v", err)
	}
	if n != 7 {
		t.Fatalf("wanted 7, got %d", n)
	}
}

func TestPattern(t *testing.T) {
	cfg := &Config{Env: ListEnviron()}
	tests := []struct {
		src  string
		want string
	}{
		{"*.go", "*.go"},
		{`"*.go"`, `\*.go`},
		{`foo'*'bar`, `foo\*bar`},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			word := parseWord(t, tc.src)
			got, err := Pattern(cfg, word)
			if err != nil {
				t.Fatalf("did not want error, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("wanted %q, got %q", tc.want, got)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
