// Copyright (c) 2025, Andrey Nering <andrey@nering.com.br>
// See LICENSE for licensing information

package coreutils

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/posh-sh/posh/interp"
	"github.com/posh-sh/posh/syntax"
)

func TestExecHandler(t *testing.T) {
	for coreUtil := range commandBuilders {
		t.Run(coreUtil, func(t *testing.T) {
			var in bytes.Buffer
			var out strings.Builder

			r, err := interp.New(
				interp.StdIO(&in, &out, &out),
				interp.ExecHandler(ExecHandler(interp.DefaultExecHandler)),
			)
			if err != nil {
				t.Fatalf("failed to create interpreter: %v", err)
			}

			cmd := fmt.Sprintf("%s --badoption", coreUtil)

			program, err := syntax.NewParser().Parse(strings.NewReader(cmd), "")
			if err != nil {
				t.Fatalf("failed to parse command %q: %v", cmd, err)
			}
			status, err := r.Run(context.Background(), program)
			if err == nil {
				t.Fatalf("expected error for command %q, got none", cmd)
			}
			if status == 0 {
				t.Fatalf("expected a non-zero status for command %q", cmd)
			}
		})
	}
}

// TestExecHandlerFallthrough checks that a name not in commandBuilders
// is passed along to the wrapped handler unchanged.
func TestExecHandlerFallthrough(t *testing.T) {
	var out strings.Builder
	var called bool
	fallback := func(ctx context.Context, frame *interp.Frame, name string, args []string) (int, error) {
		called = true
		if name != "shouldnotexist" {
			t.Fatalf("fallback got name %q", name)
		}
		return 42, nil
	}
	r, err := interp.New(
		interp.StdIO(&strings.Reader{}, &out, &out),
		interp.ExecHandler(ExecHandler(fallback)),
	)
	if err != nil {
		t.Fatal(err)
	}
	program, err := syntax.NewParser().Parse(strings.NewReader("shouldnotexist"), "")
	if err != nil {
		t.Fatal(err)
	}
	status, err := r.Run(context.Background(), program)
	if err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("expected the fallback handler to run")
	}
	if status != 42 {
		t.Fatalf("status: want 42, got %d", status)
	}
}
