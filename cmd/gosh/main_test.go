// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/posh-sh/posh/interp"
)

// Each test case is a script fed to run, along with the status and stdout
// it is expected to produce.
var runTests = []struct {
	in         string
	wantStatus int
	wantOut    string
}{
	{"", 0, ""},
	{"echo foo", 0, "foo\n"},
	{"echo foo; echo bar", 0, "foo\nbar\n"},
	{"exit 0", 0, ""},
	{"exit 1", 1, ""},
	{"false", 1, ""},
	{"true && echo yes", 0, "yes\n"},
	{"if true; then echo bar; fi", 0, "bar\n"},
	{"for i in 1 2 3; do echo $i; done", 0, "1\n2\n3\n"},
	{"f() { echo called; }; f", 0, "called\n"},
	{"(exit 3); echo after $?", 0, "after 3\n"},
}

func TestRun(t *testing.T) {
	t.Parallel()
	for i, tc := range runTests {
		t.Run(fmt.Sprintf("%02d", i), func(t *testing.T) {
			tc := tc
			t.Parallel()
			var out bytes.Buffer
			r, err := interp.New(interp.StdIO(strings.NewReader(""), &out, &out))
			if err != nil {
				t.Fatal(err)
			}
			status := run(context.Background(), r, strings.NewReader(tc.in), "")
			if status != tc.wantStatus {
				t.Fatalf("status: want %d, got %d", tc.wantStatus, status)
			}
			if out.String() != tc.wantOut {
				t.Fatalf("output:\nwant %q\ngot  %q", tc.wantOut, out.String())
			}
		})
	}
}

func TestRunParseError(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r, err := interp.New(interp.StdIO(strings.NewReader(""), &out, &out))
	if err != nil {
		t.Fatal(err)
	}
	if status := run(context.Background(), r, strings.NewReader("("), ""); status != 2 {
		t.Fatalf("want status 2 for a parse error, got %d", status)
	}
}

func TestRunPathMissing(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r, err := interp.New(interp.StdIO(strings.NewReader(""), &out, &out))
	if err != nil {
		t.Fatal(err)
	}
	if status := runPath(context.Background(), r, "/does/not/exist.sh"); status != 1 {
		t.Fatalf("want status 1 for a missing file, got %d", status)
	}
}

func TestRunPath(t *testing.T) {
	t.Parallel()
	f, err := os.CreateTemp(t.TempDir(), "gosh-*.sh")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("echo from-file\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var out bytes.Buffer
	r, err := interp.New(interp.StdIO(strings.NewReader(""), &out, &out))
	if err != nil {
		t.Fatal(err)
	}
	if status := runPath(context.Background(), r, f.Name()); status != 0 {
		t.Fatalf("status: want 0, got %d", status)
	}
	if want := "from-file\n"; out.String() != want {
		t.Fatalf("output: want %q, got %q", want, out.String())
	}
}
