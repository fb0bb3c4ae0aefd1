// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/syntax"
)

// Kind enumerates the frame types an executor can push. Each kind has a
// fixed row in policyTable describing how it composes its resources with
// its parent's.
type Kind int

const (
	TopLevel Kind = iota
	Subshell
	BraceGroup
	Function
	Loop
	DotScript
	TrapFrame
	Pipeline
	PipelineCommand
	BackgroundJob
	Eval
)

func (k Kind) String() string {
	switch k {
	case TopLevel:
		return "TopLevel"
	case Subshell:
		return "Subshell"
	case BraceGroup:
		return "BraceGroup"
	case Function:
		return "Function"
	case Loop:
		return "Loop"
	case DotScript:
		return "DotScript"
	case TrapFrame:
		return "Trap"
	case Pipeline:
		return "Pipeline"
	case PipelineCommand:
		return "PipelineCommand"
	case BackgroundJob:
		return "BackgroundJob"
	case Eval:
		return "Eval"
	}
	return "Unknown"
}

// Sharing is how a frame composes one resource with its parent's.
type Sharing int

const (
	Own Sharing = iota
	Copy
	Share
)

// Policy is the immutable row of a frame kind: a Sharing choice per
// resource, plus the behavioral flags that are not resource-shaped.
type Policy struct {
	Variables  Sharing
	Positional Sharing
	FDs        Sharing
	Traps      Sharing
	Options    Sharing
	Cwd        Sharing
	Umask      Sharing
	Functions  Sharing
	Aliases    Sharing

	Forks             bool
	IsLoop            bool
	ReturnTarget      bool
	ExitAffectsParent bool
}

// policyTable is the static mapping from frame kind to policy row,
// transcribed from the resource table: subshells and background jobs
// fork and COPY everything; brace groups, loops, dot-scripts and traps
// SHARE everything with their parent; functions SHARE everything except
// positional parameters, which they OWN from their call arguments.
var policyTable = map[Kind]Policy{
	TopLevel: {
		Variables: Own, Positional: Own, FDs: Own, Traps: Own, Options: Own,
		Cwd: Own, Umask: Own, Functions: Own, Aliases: Own,
	},
	Subshell: {
		Variables: Copy, Positional: Copy, FDs: Copy, Traps: Copy, Options: Copy,
		Cwd: Copy, Umask: Copy, Functions: Copy, Aliases: Copy,
		Forks: true,
	},
	BraceGroup: {
		Variables: Share, Positional: Share, FDs: Share, Traps: Share, Options: Share,
		Cwd: Share, Umask: Share, Functions: Share, Aliases: Share,
		ExitAffectsParent: true,
	},
	Function: {
		Variables: Share, Positional: Own, FDs: Share, Traps: Share, Options: Share,
		Cwd: Share, Umask: Share, Functions: Share, Aliases: Share,
		ReturnTarget: true, ExitAffectsParent: true,
	},
	Loop: {
		Variables: Share, Positional: Share, FDs: Share, Traps: Share, Options: Share,
		Cwd: Share, Umask: Share, Functions: Share, Aliases: Share,
		IsLoop: true, ExitAffectsParent: true,
	},
	DotScript: {
		Variables: Share, Positional: Share, FDs: Share, Traps: Share, Options: Share,
		Cwd: Share, Umask: Share, Functions: Share, Aliases: Share,
		ReturnTarget: true, ExitAffectsParent: true,
	},
	TrapFrame: {
		Variables: Share, Positional: Share, FDs: Share, Traps: Share, Options: Share,
		Cwd: Share, Umask: Share, Functions: Share, Aliases: Share,
		ExitAffectsParent: true,
	},
	Pipeline: {
		Variables: Share, Positional: Share, FDs: Share, Traps: Share, Options: Share,
		Cwd: Share, Umask: Share, Functions: Share, Aliases: Share,
		ExitAffectsParent: true,
	},
	PipelineCommand: {
		Variables: Copy, Positional: Copy, FDs: Copy, Traps: Copy, Options: Copy,
		Cwd: Copy, Umask: Copy, Functions: Copy, Aliases: Copy,
		Forks: true,
	},
	BackgroundJob: {
		Variables: Copy, Positional: Copy, FDs: Copy, Traps: Copy, Options: Copy,
		Cwd: Copy, Umask: Copy, Functions: Copy, Aliases: Copy,
		Forks: true,
	},
	Eval: {
		Variables: Share, Positional: Share, FDs: Share, Traps: Share, Options: Share,
		Cwd: Share, Umask: Share, Functions: Share, Aliases: Share,
		ExitAffectsParent: true,
	},
}

// Flow is the control-flow signal an executor result carries upward
// through the frame stack.
type Flow int

const (
	FlowNormal Flow = iota
	FlowReturn
	FlowBreak
	FlowContinue
	FlowExit
)

// ExecResult is what executing one AST node or frame body produces: an
// exit status plus a control-flow signal and, for Break/Continue, how
// many enclosing loops it still needs to unwind through.
type ExecResult struct {
	ExitStatus int
	Flow       Flow
	FlowDepth  int

	// protected marks a non-zero status that came from a command whose
	// exit status was already tested (a short-circuited &&/|| stage or
	// a !-negated pipeline), which errexit must leave alone.
	protected bool
}

// Options is the set of shell option flags a frame tracks: -e, -u, -x,
// -o pipefail, -f (-o noglob), -n and -m.
type Options struct {
	Errexit  bool
	Nounset  bool
	Xtrace   bool
	Pipefail bool
	Noglob   bool
	NoExec   bool
	Monitor  bool
}

func (o Options) clone() *Options {
	cp := o
	return &cp
}

// Frame is one level of the executor's scope stack: a resource
// composition (decided by policy at push time) plus the counters and
// control-flow slot the spec's ExecutionFrame names.
type Frame struct {
	Parent *Frame
	Kind   Kind
	Policy *Policy

	Vars       *VarStore
	Positional *Positional
	FDs        *FDTable
	Traps      *TrapTable
	Opts       *Options
	Cwd        *string
	Umask      *int
	Funcs      *FuncTable
	Aliases    *AliasTable

	LoopDepth         int
	ReturnDepth       int
	LastExitStatus    int
	LastBackgroundPID int
	HaveBackgroundPID bool
	InTrapHandler     bool

	Flow      Flow
	FlowDepth int

	// SavedPositional is non-nil on a DotScript frame that overrode its
	// parent's positional parameters with explicit arguments, and holds a
	// copy of the parent's. The override is a fresh Positional, so the
	// parent's own are left untouched without any restore step.
	SavedPositional *Positional

	SourceName string
	SourceLine int
}

// newFrame pushes a new frame of kind onto parent, applying the kind's
// policy row to every resource. parent is nil only for the TopLevel
// frame.
func newFrame(parent *Frame, kind Kind, env expand.Environ) *Frame {
	pol := policyTable[kind]
	f := &Frame{Parent: parent, Kind: kind, Policy: &pol}

	switch pol.Variables {
	case Own:
		f.Vars = newVarStore(env)
	case Copy:
		f.Vars = parent.Vars.clone()
	case Share:
		f.Vars = parent.Vars
	}

	switch pol.Positional {
	case Own:
		f.Positional = &Positional{}
	case Copy:
		f.Positional = parent.Positional.clone()
	case Share:
		f.Positional = parent.Positional
	}

	switch pol.FDs {
	case Own:
		f.FDs = newFDTable()
	case Copy:
		f.FDs = parent.FDs.clone()
	case Share:
		f.FDs = parent.FDs
	}

	switch pol.Traps {
	case Own:
		f.Traps = newTrapTable()
	case Copy:
		f.Traps = parent.Traps.cloneResetNonIgnored()
	case Share:
		f.Traps = parent.Traps
	}

	switch pol.Options {
	case Own:
		f.Opts = &Options{}
	case Copy:
		f.Opts = parent.Opts.clone()
	case Share:
		f.Opts = parent.Opts
	}

	switch pol.Cwd {
	case Own:
		wd := "."
		f.Cwd = &wd
	case Copy:
		wd := *parent.Cwd
		f.Cwd = &wd
	case Share:
		f.Cwd = parent.Cwd
	}

	switch pol.Umask {
	case Own:
		um := 0o022
		f.Umask = &um
	case Copy:
		um := *parent.Umask
		f.Umask = &um
	case Share:
		f.Umask = parent.Umask
	}

	switch pol.Functions {
	case Own:
		f.Funcs = newFuncTable()
	case Copy:
		f.Funcs = parent.Funcs.clone()
	case Share:
		f.Funcs = parent.Funcs
	}

	switch pol.Aliases {
	case Own:
		f.Aliases = newAliasTable()
	case Copy:
		f.Aliases = parent.Aliases.clone()
	case Share:
		f.Aliases = parent.Aliases
	}

	if parent != nil {
		f.LastExitStatus = parent.LastExitStatus
		f.LastBackgroundPID = parent.LastBackgroundPID
		f.HaveBackgroundPID = parent.HaveBackgroundPID
		f.LoopDepth = parent.LoopDepth
		f.ReturnDepth = parent.ReturnDepth
		f.InTrapHandler = parent.InTrapHandler
		f.SourceName = parent.SourceName
	}
	if pol.IsLoop {
		f.LoopDepth++
	}
	if pol.ReturnTarget {
		f.ReturnDepth++
	}
	return f
}

// Positional is the ordered argument vector a frame exposes as $0..$N.
type Positional struct {
	Arg0 string
	Args []string
}

func (p *Positional) clone() *Positional {
	if p == nil {
		return &Positional{}
	}
	cp := &Positional{Arg0: p.Arg0, Args: append([]string(nil), p.Args...)}
	return cp
}

// FuncTable maps function names to their (unexpanded) bodies.
type FuncTable struct {
	m map[string]*syntax.FunctionDef
}

func newFuncTable() *FuncTable { return &FuncTable{m: map[string]*syntax.FunctionDef{}} }

func (t *FuncTable) clone() *FuncTable {
	if t == nil {
		return newFuncTable()
	}
	cp := newFuncTable()
	for k, v := range t.m {
		cp.m[k] = v
	}
	return cp
}

func (t *FuncTable) Get(name string) (*syntax.FunctionDef, bool) {
	fd, ok := t.m[name]
	return fd, ok
}

func (t *FuncTable) Set(name string, fd *syntax.FunctionDef) { t.m[name] = fd }

func (t *FuncTable) Delete(name string) { delete(t.m, name) }

// AliasTable maps alias names to their unexpanded replacement text.
type AliasTable struct {
	m map[string]string
}

func newAliasTable() *AliasTable { return &AliasTable{m: map[string]string{}} }

func (t *AliasTable) clone() *AliasTable {
	if t == nil {
		return newAliasTable()
	}
	cp := newAliasTable()
	for k, v := range t.m {
		cp.m[k] = v
	}
	return cp
}

func (t *AliasTable) Get(name string) (string, bool) {
	s, ok := t.m[name]
	return s, ok
}

func (t *AliasTable) Set(name, body string) { t.m[name] = body }

func (t *AliasTable) Delete(name string) { delete(t.m, name) }

func (t *AliasTable) Clear() { t.m = map[string]string{} }

func (t *AliasTable) Each(fn func(name, body string)) {
	for name, body := range t.m {
		fn(name, body)
	}
}
