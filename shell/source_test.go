// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package shell

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/syntax"
)

var sourceTests = []struct {
	in   string
	want map[string]expand.Variable
}{
	{
		"a=x; b=y",
		map[string]expand.Variable{
			"a": {Set: true, Str: "x"},
			"b": {Set: true, Str: "y"},
		},
	},
	{
		"a=x; a=y",
		map[string]expand.Variable{
			"a": {Set: true, Str: "y"},
		},
	},
	{
		"a=$(echo foo); b=$(echo -n bar)",
		map[string]expand.Variable{
			"a": {Set: true, Str: "foo"},
			"b": {Set: true, Str: "bar"},
		},
	},
	{
		"if true; then a=foo; else a=bar; fi",
		map[string]expand.Variable{
			"a": {Set: true, Str: "foo"},
		},
	},
}

func sourceNode(t *testing.T, src string) map[string]expand.Variable {
	t.Helper()
	file, err := syntax.NewParser().Parse(strings.NewReader(src), "")
	if err != nil {
		t.Fatal(err)
	}
	vars, err := SourceNode(context.Background(), file)
	if err != nil {
		t.Fatal(err)
	}
	return vars
}

func TestSourceNode(t *testing.T) {
	t.Parallel()
	for i := range sourceTests {
		t.Run(fmt.Sprintf("%02d", i), func(t *testing.T) {
			tc := sourceTests[i]
			t.Parallel()
			got := sourceNode(t, tc.in)
			for name, want := range tc.want {
				if got[name] != want {
					t.Fatalf("%s: want %#v, got %#v", name, want, got[name])
				}
			}
		})
	}
}

func TestSourceParseErr(t *testing.T) {
	t.Parallel()
	_, err := syntax.NewParser().Parse(strings.NewReader("("), "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "reached EOF") {
		t.Fatalf("error %q does not contain %q", err, "reached EOF")
	}
}

// TestSourceWhitelist checks that a command substitution naming a
// program outside purePrograms never actually runs: its output is
// simply captured as empty rather than the real command's output.
func TestSourceWhitelist(t *testing.T) {
	t.Parallel()
	got := sourceNode(t, "a=$(whoami)")
	if got["a"].Str != "" {
		t.Fatalf("whoami should have been blocked, got %q", got["a"].Str)
	}
}

func TestSourceFileMissing(t *testing.T) {
	t.Parallel()
	if _, err := SourceFile(context.Background(), "/does/not/exist.sh"); err == nil {
		t.Fatal("expected an error")
	}
}
