// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/syntax"
)

// defaultBuiltins returns the built-in set the core dispatches before
// searching PATH: the POSIX special built-ins (break, :, continue, .,
// eval, exec, exit, export, readonly, return, set, shift, trap, unset)
// plus the ordinary built-ins a script needs without reaching onto
// PATH for them (cd, pwd, echo, true, false, wait, alias, unalias,
// umask, test, [).
func defaultBuiltins() map[string]BuiltinFunc {
	return map[string]BuiltinFunc{
		":":        builtinTrue,
		"true":     builtinTrue,
		"false":    builtinFalse,
		"exit":     builtinExit,
		"return":   builtinReturn,
		"break":    builtinBreak,
		"continue": builtinContinue,
		"export":   builtinExport,
		"unset":    builtinUnset,
		"readonly": builtinReadonly,
		"shift":    builtinShift,
		"set":      builtinSet,
		"cd":       builtinCd,
		"pwd":      builtinPwd,
		"echo":     builtinEcho,
		"eval":     builtinEval,
		".":        builtinDot,
		"trap":     builtinTrap,
		"wait":     builtinWait,
		"test":     builtinTest,
		"[":        builtinTest,
		"alias":    builtinAlias,
		"unalias":  builtinUnalias,
		"umask":    builtinUmask,
		"exec":     builtinExec,
	}
}

func builtinTrue(context.Context, *Runner, *Frame, []string) (int, error)  { return 0, nil }
func builtinFalse(context.Context, *Runner, *Frame, []string) (int, error) { return 1, nil }

// exitSignal is panicked by builtinExit: a BuiltinFunc's (status,
// error) pair has no way to carry a flow signal, so exit unwinds the
// Go stack instead, and callBuiltin recovers the sentinel into an
// ExecResult with FlowExit. This mirrors how a real exit() call
// unwinds the C stack without returning to its caller.
type exitSignal struct{ status int }

func builtinExit(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	status := f.LastExitStatus
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			status = n
		}
	}
	panic(exitSignal{status: status & 0xff})
}

func builtinReturn(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	status := f.LastExitStatus
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			status = n
		}
	}
	if f.ReturnDepth == 0 {
		return 1, ControlFlowError{Keyword: "return"}
	}
	panic(flowSignal{flow: FlowReturn, status: status, depth: 1})
}

func builtinBreak(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	n := 1
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	if f.LoopDepth == 0 {
		return 1, ControlFlowError{Keyword: "break"}
	}
	panic(flowSignal{flow: FlowBreak, status: 0, depth: n})
}

func builtinContinue(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	n := 1
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	if f.LoopDepth == 0 {
		return 1, ControlFlowError{Keyword: "continue"}
	}
	panic(flowSignal{flow: FlowContinue, status: 0, depth: n})
}

// flowSignal is exit's sibling for return/break/continue: a BuiltinFunc
// cannot return an ExecResult directly, so it panics with this and
// callBuiltin recovers it into one.
type flowSignal struct {
	flow   Flow
	status int
	depth  int
}

// callBuiltin invokes fn, converting an exitSignal or flowSignal panic
// (raised by exit, return, break, continue, or a nested eval/dot-script
// that surfaced one of those) into the ExecResult the rest of the
// executor expects. Any other panic is not ours to handle and is
// re-raised.
func callBuiltin(ctx context.Context, r *Runner, f *Frame, fn BuiltinFunc, args []string) (res ExecResult, err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		switch sig := rec.(type) {
		case exitSignal:
			res, err = ExecResult{ExitStatus: sig.status, Flow: FlowExit}, nil
		case flowSignal:
			res, err = ExecResult{ExitStatus: sig.status, Flow: sig.flow, FlowDepth: sig.depth}, nil
		default:
			panic(rec)
		}
	}()
	status, err := fn(ctx, r, f, args)
	return ExecResult{ExitStatus: status}, err
}

func builtinExport(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	for _, a := range args {
		name, val, hasVal := strings.Cut(a, "=")
		if hasVal {
			persistAssign(f, name, val)
		}
		f.Vars.Export(name)
	}
	return 0, nil
}

func builtinReadonly(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	for _, a := range args {
		name, val, hasVal := strings.Cut(a, "=")
		if hasVal {
			persistAssign(f, name, val)
		}
		f.Vars.MakeReadOnly(name)
	}
	return 0, nil
}

func builtinUnset(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	funcs := false
	if len(args) > 0 {
		switch args[0] {
		case "-f":
			funcs = true
			args = args[1:]
		case "-v":
			args = args[1:]
		}
	}
	for _, name := range args {
		if funcs {
			f.Funcs.Delete(name)
			continue
		}
		if err := f.Vars.Set(name, expand.Variable{}); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

func builtinShift(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return 1, fmt.Errorf("shift: %q: invalid shift count", args[0])
		}
		n = v
	}
	if n > len(f.Positional.Args) {
		return 1, nil
	}
	f.Positional.Args = f.Positional.Args[n:]
	return 0, nil
}

func builtinSet(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	rest := args
	for len(rest) > 0 && len(rest[0]) > 1 && (rest[0][0] == '-' || rest[0][0] == '+') {
		flag, value := rest[0][0] == '-', rest[0][1:]
		if value == "-" || value == "" {
			rest = rest[1:]
			break
		}
		for _, c := range value {
			switch c {
			case 'e':
				f.Opts.Errexit = flag
			case 'u':
				f.Opts.Nounset = flag
			case 'x':
				f.Opts.Xtrace = flag
			case 'f':
				f.Opts.Noglob = flag
			case 'n':
				f.Opts.NoExec = flag
			case 'm':
				f.Opts.Monitor = flag
			case 'o':
				// "-o name" takes the option name as a separate
				// argument, consumed here so it never reaches the
				// positional parameters below.
				if len(rest) >= 2 {
					applyDashO(f.Opts, rest[1], flag)
					rest = rest[1:]
				}
			}
		}
		rest = rest[1:]
	}
	if len(rest) > 0 {
		f.Positional.Args = rest
	}
	return 0, nil
}

func applyDashO(o *Options, name string, flag bool) {
	switch name {
	case "pipefail":
		o.Pipefail = flag
	case "noglob":
		o.Noglob = flag
	case "errexit":
		o.Errexit = flag
	case "nounset":
		o.Nounset = flag
	case "xtrace":
		o.Xtrace = flag
	}
}

func builtinCd(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	dir := f.Vars.Get("HOME").Str
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return 1, fmt.Errorf("cd: HOME not set")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(*f.Cwd, dir)
	}
	dir = filepath.Clean(dir)
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return 1, fmt.Errorf("cd: %s: not a directory", dir)
	}
	*f.Cwd = dir
	persistAssign(f, "OLDPWD", f.Vars.Get("PWD").Str)
	persistAssign(f, "PWD", dir)
	return 0, nil
}

func builtinPwd(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	fmt.Fprintln(stdoutOf(f), *f.Cwd)
	return 0, nil
}

func builtinEcho(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	newline := true
	if len(args) > 0 && args[0] == "-n" {
		newline = false
		args = args[1:]
	}
	out := stdoutOf(f)
	fmt.Fprint(out, strings.Join(args, " "))
	if newline {
		fmt.Fprintln(out)
	}
	return 0, nil
}

func builtinEval(ctx context.Context, r *Runner, f *Frame, args []string) (int, error) {
	src := strings.Join(args, " ")
	file, err := syntax.NewParser().Parse(strings.NewReader(src), "eval")
	if err != nil {
		return 2, err
	}
	if file.Body == nil {
		return 0, nil
	}
	child := newFrame(f, Eval, nil)
	res, err := r.execCommandList(ctx, child, file.Body, false)
	f.LastExitStatus = res.ExitStatus
	if res.Flow != FlowNormal {
		panic(flowSignal{flow: res.Flow, status: res.ExitStatus, depth: res.FlowDepth})
	}
	return res.ExitStatus, err
}

func builtinDot(ctx context.Context, r *Runner, f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		return 2, fmt.Errorf(".: filename argument required")
	}
	path := args[0]
	if !filepath.IsAbs(path) {
		path = filepath.Join(*f.Cwd, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 1, err
	}
	file, err := syntax.NewParser().Parse(strings.NewReader(string(data)), path)
	if err != nil {
		return 2, err
	}
	child := newFrame(f, DotScript, nil)
	child.SourceName = path
	if len(args) > 1 {
		child.SavedPositional = child.Positional.clone()
		child.Positional = &Positional{Arg0: child.Positional.Arg0, Args: args[1:]}
	}
	if file.Body == nil {
		return 0, nil
	}
	res, err := r.execCommandList(ctx, child, file.Body, false)
	f.LastExitStatus = res.ExitStatus
	if res.Flow == FlowReturn {
		return res.ExitStatus, err
	}
	if res.Flow != FlowNormal {
		panic(flowSignal{flow: res.Flow, status: res.ExitStatus, depth: res.FlowDepth})
	}
	return res.ExitStatus, err
}

func builtinTrap(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		f.Traps.Each(func(name string, tr Trap) {
			if tr.Action == TrapHandler {
				fmt.Fprintf(stdoutOf(f), "trap -- %q %s\n", tr.Source, name)
			}
		})
		return 0, nil
	}
	if args[0] == "-" {
		for _, sig := range args[1:] {
			f.Traps.Set(sig, Trap{Action: TrapDefault})
		}
		return 0, nil
	}
	if len(args) == 1 {
		f.Traps.Set(args[0], Trap{Action: TrapDefault})
		return 0, nil
	}
	action, sigs := args[0], args[1:]
	var tr Trap
	switch action {
	case "":
		tr = Trap{Action: TrapIgnore}
	default:
		tr = Trap{Action: TrapHandler, Source: action}
	}
	for _, sig := range sigs {
		f.Traps.Set(sig, tr)
	}
	return 0, nil
}

func builtinWait(_ context.Context, r *Runner, f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		// Without operands, wait collects every known job and exits 0.
		for _, j := range r.jobs.all() {
			j.Wait()
		}
		return 0, nil
	}
	status := 0
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			continue
		}
		if j, ok := r.jobs.get(id); ok {
			status = j.Wait()
		}
	}
	return status, nil
}

func builtinAlias(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		f.Aliases.Each(func(name, body string) {
			fmt.Fprintf(stdoutOf(f), "alias %s='%s'\n", name, body)
		})
		return 0, nil
	}
	status := 0
	for _, a := range args {
		name, body, hasBody := strings.Cut(a, "=")
		if hasBody {
			f.Aliases.Set(name, body)
			continue
		}
		if body, ok := f.Aliases.Get(name); ok {
			fmt.Fprintf(stdoutOf(f), "alias %s='%s'\n", name, body)
		} else {
			status = 1
		}
	}
	return status, nil
}

func builtinUnalias(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	if len(args) > 0 && args[0] == "-a" {
		f.Aliases.Clear()
		return 0, nil
	}
	for _, name := range args {
		f.Aliases.Delete(name)
	}
	return 0, nil
}

func builtinUmask(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		fmt.Fprintf(stdoutOf(f), "%04o\n", *f.Umask)
		return 0, nil
	}
	n, err := strconv.ParseInt(args[0], 8, 32)
	if err != nil || n < 0 || n > 0o777 {
		return 1, fmt.Errorf("umask: %s: invalid mask", args[0])
	}
	*f.Umask = int(n)
	return 0, nil
}

// builtinExec with operands runs the named command in place of the
// shell: the command's exit status becomes the shell's, and nothing
// after it runs. Without operands it is a no-op; the in-process model
// has no descriptor table of its own to permanently re-point.
func builtinExec(ctx context.Context, r *Runner, f *Frame, args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	res, err := r.execExternal(ctx, f, args[0], args[1:], nil)
	if err != nil {
		r.noteError(f, err)
	}
	panic(exitSignal{status: res.ExitStatus & 0xff})
}

func stdoutOf(f *Frame) io.Writer {
	v, ok := f.FDs.Get(1)
	if !ok {
		return os.Stdout
	}
	w, ok := v.(io.Writer)
	if !ok {
		return os.Stdout
	}
	return w
}
