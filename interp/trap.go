// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"strings"

	"github.com/posh-sh/posh/syntax"
)

// TrapAction is what a signal (or the pseudo-signals EXIT/DEBUG) does
// when it is delivered.
type TrapAction int

const (
	TrapDefault TrapAction = iota
	TrapIgnore
	TrapHandler
)

// Trap is one entry of the TrapStore: an action plus, for TrapHandler,
// the handler's unparsed source text.
type Trap struct {
	Action TrapAction
	Source string
}

// TrapTable is the data model's TrapStore: a mapping from signal
// identifier (including "EXIT" and "DEBUG") to its action.
type TrapTable struct {
	m map[string]Trap
}

func newTrapTable() *TrapTable { return &TrapTable{m: map[string]Trap{}} }

func (t *TrapTable) Get(name string) Trap { return t.m[name] }

func (t *TrapTable) Set(name string, tr Trap) { t.m[name] = tr }

func (t *TrapTable) Delete(name string) { delete(t.m, name) }

func (t *TrapTable) Each(fn func(name string, tr Trap)) {
	for name, tr := range t.m {
		fn(name, tr)
	}
}

// cloneResetNonIgnored backs Subshell's trap policy: a forked child
// inherits ignored signals as-is, but any signal with a user handler
// reverts to its default action (POSIX: "trap actions... shall be set
// to the default" across exec/fork, except SIG_IGN).
func (t *TrapTable) cloneResetNonIgnored() *TrapTable {
	cp := newTrapTable()
	for name, tr := range t.m {
		if tr.Action == TrapIgnore {
			cp.m[name] = tr
		}
	}
	return cp
}

// runTrap runs the handler registered for name (a signal identifier, or
// the pseudo-signals EXIT/DEBUG) in a new Trap frame sharing f's
// resources, per §5's "pushes a Trap frame" safe-point dispatch. It is
// a no-op if name has no user handler installed.
func (r *Runner) runTrap(ctx context.Context, f *Frame, name string) {
	tr := f.Traps.Get(name)
	if tr.Action != TrapHandler || tr.Source == "" {
		return
	}
	file, err := syntax.NewParser().Parse(strings.NewReader(tr.Source), "trap: "+name)
	if err != nil || file.Body == nil {
		return
	}
	child := newFrame(f, TrapFrame, nil)
	child.InTrapHandler = true
	// A handler's own exit or return ends the handler, not the shell
	// that dispatched it; the flow result is deliberately dropped.
	res, _ := r.execCommandList(ctx, child, file.Body, false)
	f.LastExitStatus = res.ExitStatus
}
