// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package interp implements the executor half of the shell: it walks a
// parsed syntax.File and realizes its semantics through a stack of
// execution frames, each scoped by a static policy table keyed on frame
// kind (see Kind and policyTable).
package interp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/syntax"
)

// ExecHandlerFunc resolves and runs an external command: name is the
// already-expanded command word, args its arguments, and env/dir/fds
// come from frame. It is the one point where the executor hands off to
// the operating system's process model.
type ExecHandlerFunc func(ctx context.Context, frame *Frame, name string, args []string) (int, error)

// BuiltinFunc implements one shell built-in. It returns the command's
// exit status; a non-nil error is additionally reported on the frame's
// standard error stream by the caller.
type BuiltinFunc func(ctx context.Context, r *Runner, frame *Frame, args []string) (int, error)

// A Runner interprets shell programs built from the syntax package. It
// is reusable but not safe for concurrent use, mirroring the single
// shared context the spec's four-stage pipeline assumes.
type Runner struct {
	// Env seeds the top frame's variable store; it must not be nil.
	Env expand.Environ

	// Dir is the initial working directory; if empty, the process's
	// current directory is used.
	Dir string

	// Arg0 is the shell's $0; Params are its initial positional
	// parameters ($1...).
	Arg0   string
	Params []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	execHandler ExecHandlerFunc
	builtins    map[string]BuiltinFunc

	// resolveTilde and evalArithmetic are forwarded to expand.Config
	// unchanged: the core never implements tilde-user lookup or
	// arithmetic grammar itself.
	resolveTilde   func(name string) (string, bool)
	evalArithmetic func(ctx context.Context, expr string, lookup func(string) string) (int64, error)

	jobs *JobStore

	top *Frame

	// lastErr remembers the most recent command error raised in a
	// frame that shares the top-level's fate (not behind a fork
	// boundary), so Run can surface it to the embedder after the
	// script finishes.
	lastErr error
}

// RunnerOption configures a Runner built by New.
type RunnerOption func(*Runner)

// New builds a Runner ready to Run programs. Without further options it
// inherits the real process environment, working directory, and
// standard streams, and uses the default PATH-searching exec handler
// and the built-in set in builtin.go.
func New(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{
		Env:    expand.ListEnviron(os.Environ()...),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		jobs:   newJobStore(),
	}
	r.execHandler = DefaultExecHandler
	r.builtins = defaultBuiltins()
	r.resolveTilde = defaultResolveTilde
	r.evalArithmetic = nil // set via EvalArithmetic; Arithm errors without one
	for _, opt := range opts {
		opt(r)
	}
	if r.Env == nil {
		return nil, fmt.Errorf("interp.New: nil Env")
	}
	wd := r.Dir
	if wd == "" {
		wd, _ = os.Getwd()
	}
	top := newFrame(nil, TopLevel, r.Env)
	top.Cwd = &wd
	top.Positional = &Positional{Arg0: r.Arg0, Args: append([]string(nil), r.Params...)}
	top.SourceName = "main"
	if r.Stdin != nil {
		top.FDs.Set(0, r.Stdin)
	}
	if r.Stdout != nil {
		top.FDs.Set(1, r.Stdout)
	}
	if r.Stderr != nil {
		top.FDs.Set(2, r.Stderr)
	}
	r.top = top
	return r, nil
}

// Dir sets the working directory the top-level frame starts in; by
// default it is the process's own working directory.
func Dir(path string) RunnerOption {
	return func(r *Runner) { r.Dir = path }
}

// ExecHandler overrides how external commands are launched.
func ExecHandler(f ExecHandlerFunc) RunnerOption {
	return func(r *Runner) { r.execHandler = f }
}

// EvalArithmetic supplies the arithmetic evaluator callback; without
// one, arithmetic expansions fail with an ArithmeticError.
func EvalArithmetic(f func(ctx context.Context, expr string, lookup func(string) string) (int64, error)) RunnerOption {
	return func(r *Runner) { r.evalArithmetic = f }
}

// ResolveTilde overrides the tilde-expansion user-lookup callback.
func ResolveTilde(f func(name string) (string, bool)) RunnerOption {
	return func(r *Runner) { r.resolveTilde = f }
}

// StdIO sets the three standard streams.
func StdIO(stdin io.Reader, stdout, stderr io.Writer) RunnerOption {
	return func(r *Runner) {
		r.Stdin, r.Stdout, r.Stderr = stdin, stdout, stderr
	}
}

// Run executes file's body in the Runner's top-level frame and returns
// the resulting exit status.
func (r *Runner) Run(ctx context.Context, file *syntax.File) (int, error) {
	if r.top == nil {
		return 0, fmt.Errorf("interp.Run: Runner not built with interp.New")
	}
	if file.Body == nil {
		return 0, nil
	}
	r.lastErr = nil
	res, _ := r.execCommandList(ctx, r.top, file.Body, false)
	r.runTrap(ctx, r.top, "EXIT")
	return res.ExitStatus, r.lastErr
}

// Vars returns a snapshot of the variables the script itself assigned
// in the Runner's top-level frame, keyed by name; variables inherited
// untouched from Env are not included. It is meant for embedders that
// run a script purely to collect the variables it declares (see the
// shell package's SourceFile).
func (r *Runner) Vars() map[string]expand.Variable {
	out := map[string]expand.Variable{}
	if r.top == nil {
		return out
	}
	r.top.Vars.Declared(func(name string, vr expand.Variable) bool {
		out[name] = vr
		return true
	})
	return out
}
