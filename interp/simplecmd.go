// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/syntax"
)

// execSimpleCommand implements §4.4's simple-command algorithm: expand
// assignments and words, then dispatch to a function, a built-in, or an
// external program, scoping the assignments according to which of the
// three it lands on.
func (r *Runner) execSimpleCommand(ctx context.Context, f *Frame, sc *syntax.SimpleCommand) (ExecResult, error) {
	shadows, touched, err := r.applyRedirects(ctx, f, sc.Redirs)
	if err != nil {
		f.LastExitStatus = 1
		return ExecResult{ExitStatus: 1}, err
	}
	defer f.FDs.restore(shadows, touched)

	cfg := r.expandConfig(ctx, f)

	assigns := make(map[string]string, len(sc.Assigns))
	for _, a := range sc.Assigns {
		val, err := expand.LiteralCtx(ctx, cfg, a.Value)
		if err != nil {
			return ExecResult{ExitStatus: 1}, err
		}
		assigns[a.Name] = val
	}

	words := r.expandAlias(f, sc.Words)
	fields, err := expand.FieldsCtx(ctx, cfg, words...)
	if err != nil {
		return ExecResult{ExitStatus: 1}, err
	}

	if len(fields) == 0 {
		for name, val := range assigns {
			persistAssign(f, name, val)
		}
		return ExecResult{ExitStatus: 0}, nil
	}

	name, args := fields[0], fields[1:]

	if fd, ok := f.Funcs.Get(name); ok {
		restore := scopeAssigns(f, assigns)
		res, err := r.callFunction(ctx, f, fd, name, args)
		restore()
		return res, err
	}

	if isSpecialBuiltin(name) {
		for n, v := range assigns {
			persistAssign(f, n, v)
		}
		if fn, ok := r.builtins[name]; ok {
			return callBuiltin(ctx, r, f, fn, args)
		}
	}

	if fn, ok := r.builtins[name]; ok {
		restore := scopeAssigns(f, assigns)
		res, err := callBuiltin(ctx, r, f, fn, args)
		restore()
		return res, err
	}

	return r.execExternal(ctx, f, name, args, assigns)
}

// persistAssign sets a variable permanently in the frame's store,
// preserving any Exported/ReadOnly attributes it already had.
func persistAssign(f *Frame, name, val string) {
	old := f.Vars.Get(name)
	f.Vars.Set(name, expand.Variable{Set: true, Str: val, Exported: old.Exported, ReadOnly: old.ReadOnly})
}

// scopeAssigns applies assigns to f's variable store and returns a
// closure that restores whatever was there before, implementing the
// "assignments are scoped to the command only" rule for functions and
// regular built-ins.
func scopeAssigns(f *Frame, assigns map[string]string) func() {
	if len(assigns) == 0 {
		return func() {}
	}
	saved := make(map[string]expand.Variable, len(assigns))
	for name, val := range assigns {
		saved[name] = f.Vars.Get(name)
		f.Vars.Set(name, expand.Variable{Set: true, Str: val, Exported: saved[name].Exported})
	}
	return func() {
		for name, old := range saved {
			f.Vars.Set(name, old)
		}
	}
}

var specialBuiltins = map[string]bool{
	"break": true, ":": true, "continue": true, ".": true, "eval": true,
	"exec": true, "exit": true, "export": true, "readonly": true,
	"return": true, "set": true, "shift": true, "trap": true, "unset": true,
}

func isSpecialBuiltin(name string) bool { return specialBuiltins[name] }

// expandAlias substitutes a leading alias name with its replacement
// text before the words are otherwise expanded, matching §4.7: alias
// substitution happens on the unexpanded first word, before the parser
// (here, before expansion) ever sees it.
func (r *Runner) expandAlias(f *Frame, words []*syntax.Word) []*syntax.Word {
	if len(words) == 0 {
		return words
	}
	lit, ok := words[0].Lit()
	if !ok {
		return words
	}
	body, ok := f.Aliases.Get(lit)
	if !ok {
		return words
	}
	var repl []*syntax.Word
	err := syntax.NewParser().Words(strings.NewReader(body), func(w *syntax.Word) bool {
		repl = append(repl, w)
		return true
	})
	if err != nil || len(repl) == 0 {
		return words
	}
	return append(repl, words[1:]...)
}

// callFunction executes fd's body in a new Function frame bound to args
// as positional parameters, applying any redirections attached to the
// function definition and translating a Return flow into a normal exit.
func (r *Runner) callFunction(ctx context.Context, f *Frame, fd *syntax.FunctionDef, name string, args []string) (ExecResult, error) {
	child := newFrame(f, Function, nil)
	child.Positional = &Positional{Arg0: name, Args: args}
	child.SourceName = name
	shadows, touched, err := r.applyRedirects(ctx, child, fd.Redirs)
	if err != nil {
		return ExecResult{ExitStatus: 1}, err
	}
	defer child.FDs.restore(shadows, touched)
	res, err := r.execCommand(ctx, child, fd.Body, false)
	if res.Flow == FlowReturn {
		res.Flow = FlowNormal
	}
	f.LastExitStatus = res.ExitStatus
	return res, err
}

// execExternal hands name and its arguments to the Runner's exec
// handler in a frame of its own, so that per-command environment
// assignments reach only the launched process. PATH resolution belongs
// to the handler: the default one searches PATH itself, and a
// middleware handler gets to intercept the unresolved name first.
func (r *Runner) execExternal(ctx context.Context, f *Frame, name string, args []string, assigns map[string]string) (ExecResult, error) {
	child := newFrame(f, PipelineCommand, nil)
	for n, v := range assigns {
		child.Vars.Set(n, expand.Variable{Set: true, Exported: true, Str: v})
	}
	status, err := r.execHandler(ctx, child, name, args)
	f.LastExitStatus = status
	return ExecResult{ExitStatus: status}, err
}

func resolveCommand(name, cwd, path string) (string, error) {
	if strings.Contains(name, "/") {
		full := name
		if !filepath.IsAbs(full) {
			full = filepath.Join(cwd, full)
		}
		if st, err := os.Stat(full); err == nil && !st.IsDir() {
			return full, nil
		}
		return "", os.ErrNotExist
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		full := filepath.Join(dir, name)
		if st, err := os.Stat(full); err == nil && !st.IsDir() {
			return full, nil
		}
	}
	return "", os.ErrNotExist
}

// DefaultExecHandler resolves name on PATH (or treats it as a direct
// path if it contains a slash) and launches it as a child process,
// wiring its stdio to frame's fd table 0/1/2 and its environment to
// the frame's exported variables.
func DefaultExecHandler(ctx context.Context, frame *Frame, name string, args []string) (int, error) {
	path, err := resolveCommand(name, *frame.Cwd, frame.Vars.Get("PATH").Str)
	if err != nil {
		return 127, CommandNotFoundError{Name: name}
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = *frame.Cwd
	cmd.Env = frame.Vars.ExportedPairs()
	if v, ok := frame.FDs.Get(0); ok {
		if r, ok := v.(io.Reader); ok {
			cmd.Stdin = r
		}
	}
	if v, ok := frame.FDs.Get(1); ok {
		if w, ok := v.(io.Writer); ok {
			cmd.Stdout = w
		}
	}
	if v, ok := frame.FDs.Get(2); ok {
		if w, ok := v.(io.Writer); ok {
			cmd.Stderr = w
		}
	}
	err = cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	if os.IsPermission(err) {
		return 126, NotExecutableError{Name: path}
	}
	return 127, err
}
