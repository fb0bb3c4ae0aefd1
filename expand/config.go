// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"context"
	"fmt"
	"io"

	"github.com/posh-sh/posh/syntax"
)

// Config bundles the variable store and the callbacks that the executor
// injects into the expander for every operation the core cannot perform
// on its own: command substitution (needs the executor), tilde resolution
// and pathname expansion (need the filesystem), and arithmetic evaluation
// (needs a grammar the core never parses). This mirrors the callback
// boundary the data model draws between the expander and its host.
type Config struct {
	// Env is the variable store consulted for ordinary parameter
	// expansion. If it also implements WriteEnviron, the
	// ParamAssignDefault modifier assigns through it; otherwise the
	// assignment is silently discarded.
	Env Environ

	// Params holds $1..$N. Arg0 is $0.
	Params []string
	Arg0   string

	// ExitStatus, ShellPID, LastBackgroundPID and Flags back the
	// special parameters $?, $$, $!, and $-.
	ExitStatus        int
	ShellPID          int
	LastBackgroundPID int
	HaveBackgroundPID bool
	Flags             string

	// NoUnset makes referencing an unset ordinary variable through a
	// plain expansion (not one of the use-default family) an error,
	// per "set -u".
	NoUnset bool
	// NoGlob disables pathname expansion entirely, per "set -f".
	NoGlob bool

	// CmdSubst runs the given command list with its standard output
	// captured into w. The executor supplies this; the expander only
	// ever calls it, never inspects the AST it's given.
	CmdSubst func(ctx context.Context, w io.Writer, body *syntax.CommandList) error

	// ResolveTilde maps a login name (empty for the invoking user) to
	// its home directory. A false second result leaves the original
	// "~name" text untouched.
	ResolveTilde func(name string) (string, bool)

	// Glob expands a pathname pattern into the sorted list of matching
	// paths relative to the current directory, or (nil, false) if
	// nothing matched.
	Glob func(pattern string) ([]string, bool)

	// EvalArithmetic evaluates an arithmetic expression whose embedded
	// parameter, command, and arithmetic substitutions have already
	// been expanded. lookup resolves bare identifiers to their string
	// value, as arithmetic contexts permit unprefixed variable names.
	EvalArithmetic func(ctx context.Context, expr string, lookup func(string) string) (int64, error)
}

func (c *Config) env() WriteEnviron {
	if c == nil || c.Env == nil {
		return WrapWriteEnviron(ListEnviron())
	}
	return WrapWriteEnviron(c.Env)
}

// UnsetParameterError is returned for an unset variable referenced either
// under "set -u" or through the ParamIndicateError modifier.
type UnsetParameterError struct {
	Expr    *syntax.ParamExp
	Message string
}

func (u UnsetParameterError) Error() string { return u.Message }

// BadSubstitutionError is returned for a parameter expansion whose
// modifier cannot apply to the given parameter, such as assigning a
// default to a positional or special parameter.
type BadSubstitutionError struct {
	Expr    *syntax.ParamExp
	Message string
}

func (b BadSubstitutionError) Error() string { return b.Message }

// ArithmeticError wraps an error returned by Config.EvalArithmetic, or
// reports that no evaluator was configured.
type ArithmeticError struct {
	Expr string
	Err  error
}

func (a ArithmeticError) Error() string {
	if a.Err != nil {
		return fmt.Sprintf("arithmetic error in %q: %v", a.Expr, a.Err)
	}
	return fmt.Sprintf("no arithmetic evaluator configured for %q", a.Expr)
}

func (a ArithmeticError) Unwrap() error { return a.Err }
