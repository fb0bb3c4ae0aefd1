// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package shell offers convenience wrappers around [interp] and
// [expand] for embedders that want variable expansion or a sandboxed
// way to source a small configuration-style script, without driving
// the full executor themselves.
package shell

import (
	"context"
	"fmt"
	"os"

	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/interp"
	"github.com/posh-sh/posh/syntax"
)

// SourceFile sources a shell file from disk and returns the variables
// it declares. It is a convenience wrapper that parses a file from disk
// and calls SourceNode.
func SourceFile(ctx context.Context, path string) (map[string]expand.Variable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open: %v", err)
	}
	defer f.Close()
	file, err := syntax.NewParser().Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("could not parse: %v", err)
	}
	return SourceNode(ctx, file)
}

// purePrograms lists external commands considered safe to run while
// sourcing an untrusted script: ones with no filesystem or network side
// effect beyond reading what they're given.
var purePrograms = map[string]bool{
	"sed": true, "grep": true, "tr": true, "cut": true, "cat": true,
	"head": true, "tail": true, "seq": true, "yes": true, "wc": true,
	"ls": true, "pwd": true, "basename": true, "realpath": true,
	"env": true, "sleep": true, "uniq": true, "sort": true,
}

// pureExecHandler rejects every external command not on purePrograms
// with exit status 126 and an error.
func pureExecHandler(ctx context.Context, frame *interp.Frame, name string, args []string) (int, error) {
	if !purePrograms[nameOf(name)] {
		return 126, fmt.Errorf("program not in whitelist: %s", name)
	}
	return interp.DefaultExecHandler(ctx, frame, name, args)
}

func nameOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// SourceNode sources a shell program from an already-parsed file and
// returns the variables it declares. External commands not on
// purePrograms are rejected rather than run; redirections are carried
// out as usual, so the script can still create or write files.
func SourceNode(ctx context.Context, file *syntax.File) (map[string]expand.Variable, error) {
	r, err := interp.New(interp.ExecHandler(pureExecHandler))
	if err != nil {
		return nil, err
	}
	if _, err := r.Run(ctx, file); err != nil {
		return nil, fmt.Errorf("could not run: %v", err)
	}
	vars := r.Vars()
	for _, internal := range []string{"PWD", "HOME", "PATH", "IFS", "OPTIND"} {
		delete(vars, internal)
	}
	return vars, nil
}
