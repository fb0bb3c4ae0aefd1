// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"io"

	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/syntax"
)

// execCommandList runs a CommandList strictly in source order,
// propagating $? and honoring Sequential vs Background separators.
// tested marks that the list as a whole is a condition (of if, while,
// or until), which suppresses errexit for every command in it.
func (r *Runner) execCommandList(ctx context.Context, f *Frame, cl *syntax.CommandList, tested bool) (ExecResult, error) {
	res := ExecResult{ExitStatus: f.LastExitStatus}
	for i, item := range cl.Items {
		r.runDebugTrap(ctx, f)
		if cl.Seps[i] == syntax.SepBackground {
			r.startBackground(ctx, f, item)
			res = ExecResult{ExitStatus: 0}
			f.LastExitStatus = 0
			continue
		}
		var err error
		res, err = r.execCommand(ctx, f, item, tested)
		f.LastExitStatus = res.ExitStatus
		if err != nil {
			r.noteError(f, err)
		}
		if res.Flow != FlowNormal {
			return res, nil
		}
		if f.Opts.Errexit && !tested && !res.protected && res.ExitStatus != 0 {
			res.Flow = FlowExit
			return res, nil
		}
	}
	return res, nil
}

// runDebugTrap fires a user DEBUG trap before a command, at the
// between-commands safe point. Nested frames inside a running handler
// inherit InTrapHandler, so a handler's own commands never re-fire it.
func (r *Runner) runDebugTrap(ctx context.Context, f *Frame) {
	if f.InTrapHandler {
		return
	}
	r.runTrap(ctx, f, "DEBUG")
}

// noteError reports err on the frame's stderr and, unless the frame is
// behind a fork boundary (a subshell, pipeline stage, or background
// job, whose failures the parent shell only sees as an exit status),
// records it for Run to return.
func (r *Runner) noteError(f *Frame, err error) {
	r.reportError(f, err)
	for p := f; p != nil; p = p.Parent {
		if p.Policy.Forks {
			return
		}
	}
	r.lastErr = err
}

// execCommand dispatches on the concrete Command type. tested marks
// that the caller is only testing this command's exit status, which
// suppresses set -e for this one invocation.
func (r *Runner) execCommand(ctx context.Context, f *Frame, cmd syntax.Command, tested bool) (ExecResult, error) {
	switch x := cmd.(type) {
	case *syntax.SimpleCommand:
		return r.execSimpleCommand(ctx, f, x)
	case *syntax.Pipeline:
		return r.execPipeline(ctx, f, x, tested)
	case *syntax.AndOrList:
		return r.execAndOrList(ctx, f, x, tested)
	case *syntax.Subshell:
		return r.execSubshell(ctx, f, x)
	case *syntax.BraceGroup:
		return r.execBraceGroup(ctx, f, x, tested)
	case *syntax.If:
		return r.execIf(ctx, f, x)
	case *syntax.While:
		return r.execWhile(ctx, f, x)
	case *syntax.Until:
		return r.execUntil(ctx, f, x)
	case *syntax.For:
		return r.execFor(ctx, f, x)
	case *syntax.Case:
		return r.execCase(ctx, f, x)
	case *syntax.FunctionDef:
		return r.execFunctionDef(f, x)
	case *syntax.RedirectedCommand:
		return r.execRedirectedCommand(ctx, f, x, tested)
	}
	return ExecResult{ExitStatus: 2}, fmt.Errorf("interp: unknown command node %T", cmd)
}

func (r *Runner) execAndOrList(ctx context.Context, f *Frame, a *syntax.AndOrList, tested bool) (ExecResult, error) {
	// The left side of && / || is never the list's last stage, so its
	// exit status is always tested rather than used directly.
	res, err := r.execCommand(ctx, f, a.Left, true)
	if err != nil || res.Flow != FlowNormal {
		return res, err
	}
	switch a.Op {
	case syntax.AndStmt:
		if res.ExitStatus != 0 {
			res.protected = true
			return res, nil
		}
	case syntax.OrStmt:
		if res.ExitStatus == 0 {
			res.protected = true
			return res, nil
		}
	}
	return r.execCommand(ctx, f, a.Right, tested)
}

func (r *Runner) execBraceGroup(ctx context.Context, f *Frame, b *syntax.BraceGroup, tested bool) (ExecResult, error) {
	child := newFrame(f, BraceGroup, nil)
	res, err := r.execCommandList(ctx, child, b.Body, tested)
	f.LastExitStatus = res.ExitStatus
	return res, err
}

func (r *Runner) execSubshell(ctx context.Context, f *Frame, s *syntax.Subshell) (ExecResult, error) {
	child := newFrame(f, Subshell, nil)
	res, err := r.execCommandList(ctx, child, s.Body, false)
	child.LastExitStatus = res.ExitStatus
	r.runTrap(ctx, child, "EXIT")
	if res.Flow != FlowNormal {
		// A subshell is a process boundary: control flow, including an
		// exit builtin, never escapes it, it simply ends the subshell.
		res.Flow = FlowNormal
	}
	f.LastExitStatus = res.ExitStatus
	return res, err
}

func (r *Runner) execIf(ctx context.Context, f *Frame, n *syntax.If) (ExecResult, error) {
	cond, err := r.execCommandList(ctx, f, n.Cond, true)
	if err != nil || cond.Flow != FlowNormal {
		return cond, err
	}
	if cond.ExitStatus == 0 {
		return r.execCommandList(ctx, f, n.Then, false)
	}
	for _, elif := range n.Elifs {
		cond, err = r.execCommandList(ctx, f, elif.Cond, true)
		if err != nil || cond.Flow != FlowNormal {
			return cond, err
		}
		if cond.ExitStatus == 0 {
			return r.execCommandList(ctx, f, elif.Then, false)
		}
	}
	if n.Else != nil {
		return r.execCommandList(ctx, f, n.Else, false)
	}
	return ExecResult{ExitStatus: 0}, nil
}

func (r *Runner) execWhile(ctx context.Context, f *Frame, n *syntax.While) (ExecResult, error) {
	return r.execLoop(ctx, f, n.Cond, n.Body, true)
}

func (r *Runner) execUntil(ctx context.Context, f *Frame, n *syntax.Until) (ExecResult, error) {
	return r.execLoop(ctx, f, n.Cond, n.Body, false)
}

// execLoop backs both While and Until: until is while with the
// condition's success test inverted.
func (r *Runner) execLoop(ctx context.Context, f *Frame, cond, body *syntax.CommandList, wantZero bool) (ExecResult, error) {
	child := newFrame(f, Loop, nil)
	last := ExecResult{ExitStatus: 0}
	for {
		cr, err := r.execCommandList(ctx, child, cond, true)
		if err != nil || cr.Flow != FlowNormal {
			return cr, err
		}
		if (cr.ExitStatus == 0) != wantZero {
			break
		}
		res, err := r.execCommandList(ctx, child, body, false)
		if err != nil {
			return res, err
		}
		last = res
		if done, out := absorbLoopFlow(&res, child); done {
			return out, nil
		}
	}
	f.LastExitStatus = last.ExitStatus
	return ExecResult{ExitStatus: last.ExitStatus}, nil
}

// absorbLoopFlow applies the break/continue rule for one loop body
// result: it reports whether the loop as a whole should stop now
// (returning the final result to the caller) or keep iterating.
func absorbLoopFlow(res *ExecResult, child *Frame) (stop bool, out ExecResult) {
	switch res.Flow {
	case FlowBreak:
		if res.FlowDepth <= 1 {
			return true, ExecResult{ExitStatus: res.ExitStatus}
		}
		res.FlowDepth--
		return true, *res
	case FlowContinue:
		if res.FlowDepth <= 1 {
			return false, ExecResult{}
		}
		res.FlowDepth--
		return true, *res
	case FlowReturn, FlowExit:
		return true, *res
	}
	return false, ExecResult{}
}

func (r *Runner) execFor(ctx context.Context, f *Frame, n *syntax.For) (ExecResult, error) {
	var words []string
	if n.Words == nil {
		words = append([]string(nil), f.Positional.Args...)
	} else {
		var err error
		words, err = expand.FieldsCtx(ctx, r.expandConfig(ctx, f), n.Words...)
		if err != nil {
			return ExecResult{ExitStatus: 1}, err
		}
	}
	child := newFrame(f, Loop, nil)
	last := 0
	for _, w := range words {
		child.Vars.Set(n.Var, expand.Variable{Set: true, Str: w})
		res, err := r.execCommandList(ctx, child, n.Body, false)
		if err != nil {
			return res, err
		}
		last = res.ExitStatus
		if done, out := absorbLoopFlow(&res, child); done {
			return out, nil
		}
	}
	f.LastExitStatus = last
	return ExecResult{ExitStatus: last}, nil
}

func (r *Runner) execCase(ctx context.Context, f *Frame, n *syntax.Case) (ExecResult, error) {
	subject, err := expand.LiteralCtx(ctx, r.expandConfig(ctx, f), n.Word)
	if err != nil {
		return ExecResult{ExitStatus: 1}, err
	}
	for idx := 0; idx < len(n.Items); idx++ {
		if !r.caseItemMatches(ctx, f, n.Items[idx], subject) {
			continue
		}
		res, err := r.execCommandList(ctx, f, n.Items[idx].Body, false)
		// ";&" runs the following bodies unconditionally until an item
		// terminated by ";;" (or the last item) stops the cascade.
		for err == nil && res.Flow == FlowNormal &&
			n.Items[idx].Action == syntax.CaseFallThrough && idx+1 < len(n.Items) {
			idx++
			res, err = r.execCommandList(ctx, f, n.Items[idx].Body, false)
		}
		f.LastExitStatus = res.ExitStatus
		return res, err
	}
	return ExecResult{ExitStatus: 0}, nil
}

func (r *Runner) caseItemMatches(ctx context.Context, f *Frame, item *syntax.CaseItem, subject string) bool {
	cfg := r.expandConfig(ctx, f)
	for _, pw := range item.Patterns {
		pat, err := expand.Pattern(cfg, pw)
		if err != nil {
			continue
		}
		if patternMatches(pat, subject) {
			return true
		}
	}
	return false
}

func (r *Runner) execFunctionDef(f *Frame, n *syntax.FunctionDef) (ExecResult, error) {
	f.Funcs.Set(n.Name, n)
	return ExecResult{ExitStatus: 0}, nil
}

func (r *Runner) execRedirectedCommand(ctx context.Context, f *Frame, n *syntax.RedirectedCommand, tested bool) (ExecResult, error) {
	shadows, touched, err := r.applyRedirects(ctx, f, n.Redirs)
	if err != nil {
		return ExecResult{ExitStatus: 1}, err
	}
	defer f.FDs.restore(shadows, touched)
	return r.execCommand(ctx, f, n.Inner, tested)
}

func (r *Runner) reportError(f *Frame, err error) {
	if v, ok := f.FDs.Get(2); ok {
		if w, ok := v.(io.Writer); ok {
			fmt.Fprintf(w, "%s: %v\n", progName(f), err)
		}
	}
}

func progName(f *Frame) string {
	if f.Positional != nil && f.Positional.Arg0 != "" {
		return f.Positional.Arg0
	}
	return "sh"
}
