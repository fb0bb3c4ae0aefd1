// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"regexp"
	"strconv"

	"github.com/posh-sh/posh/pattern"
	"github.com/posh-sh/posh/syntax"
)

// lookupParam resolves a parameter name to its string value, reporting
// whether it is set, and separately whether it names one of the two list
// parameters ($@ and $*) along with their underlying slice.
func (e *expander) lookupParam(name string) (value string, set bool, isList bool, list []string) {
	switch name {
	case "@", "*":
		return "", true, true, e.cfg.Params
	case "#":
		return strconv.Itoa(len(e.cfg.Params)), true, false, nil
	case "?":
		return strconv.Itoa(e.cfg.ExitStatus), true, false, nil
	case "$":
		return strconv.Itoa(e.cfg.ShellPID), true, false, nil
	case "!":
		if !e.cfg.HaveBackgroundPID {
			return "", false, false, nil
		}
		return strconv.Itoa(e.cfg.LastBackgroundPID), true, false, nil
	case "-":
		return e.cfg.Flags, true, false, nil
	case "0":
		return e.cfg.Arg0, true, false, nil
	}
	if n, err := strconv.Atoi(name); err == nil && n > 0 {
		if n <= len(e.cfg.Params) {
			return e.cfg.Params[n-1], true, false, nil
		}
		return "", false, false, nil
	}
	vr := e.cfg.env().Get(name)
	if !vr.IsSet() {
		return "", false, false, nil
	}
	return vr.Str, true, false, nil
}

// isSpecialParam reports whether name is one of the special or
// positional parameters, which can never be assigned to directly.
func isSpecialParam(name string) bool {
	switch name {
	case "@", "*", "#", "?", "$", "!", "-", "0":
		return true
	}
	if _, err := strconv.Atoi(name); err == nil {
		return true
	}
	return false
}

// paramModifier applies one of the six word-taking parameter expansion
// modifiers to an already-resolved scalar value. value and set describe
// an ordinary variable, or the space-joined form of "$@"/"$*" with
// set always true.
func (e *expander) paramModifier(pe *syntax.ParamExp, value string, set bool) (string, error) {
	useDefault := !set || (pe.Colon && value == "")
	switch pe.Modifier {
	case syntax.ParamUseDefault:
		if useDefault {
			return e.argWord(pe.Arg)
		}
		return value, nil

	case syntax.ParamAssignDefault:
		if !useDefault {
			return value, nil
		}
		if isSpecialParam(pe.Name) || !syntax.ValidName(pe.Name) {
			return "", BadSubstitutionError{Expr: pe, Message: pe.Name + ": cannot assign in this way"}
		}
		def, err := e.argWord(pe.Arg)
		if err != nil {
			return "", err
		}
		if err := e.cfg.env().Set(pe.Name, Variable{Set: true, Str: def}); err != nil {
			return "", err
		}
		return def, nil

	case syntax.ParamIndicateError:
		if !useDefault {
			return value, nil
		}
		msg, err := e.argWord(pe.Arg)
		if err != nil {
			return "", err
		}
		if msg == "" {
			msg = "parameter not set"
		}
		return "", UnsetParameterError{Expr: pe, Message: pe.Name + ": " + msg}

	case syntax.ParamUseAlternate:
		useAlt := set && (!pe.Colon || value != "")
		if !useAlt {
			return "", nil
		}
		return e.argWord(pe.Arg)

	case syntax.ParamRemovePrefix, syntax.ParamRemoveSuffix:
		pat, err := e.patternWord(pe.Arg)
		if err != nil {
			return "", err
		}
		if pat == "" {
			return value, nil
		}
		return stripPattern(value, pat, pe.Modifier == syntax.ParamRemoveSuffix, pe.Greedy), nil
	}
	return value, nil
}

// argWord expands a modifier's word operand: no field splitting, no
// pathname expansion, exactly like Literal.
func (e *expander) argWord(w *syntax.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	return e.scalarExpand(w.Parts, false, false)
}

// patternWord expands a modifier's word operand as a pattern: quoted
// portions match themselves literally, unquoted portions keep their
// glob meaning, exactly like Pattern.
func (e *expander) patternWord(w *syntax.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	return e.scalarExpand(w.Parts, false, true)
}

// stripPattern removes the shortest or longest prefix or suffix of str
// matching pattern, returning str unchanged if nothing matches or the
// pattern is malformed.
func stripPattern(str, pat string, fromEnd, greedy bool) string {
	mode := pattern.Mode(0)
	if !greedy {
		mode |= pattern.Shortest
	}
	expr, err := pattern.Regexp(pat, mode)
	if err != nil {
		return str
	}
	switch {
	case fromEnd && !greedy:
		expr = ".*(" + expr + ")$"
	case fromEnd:
		expr = "(" + expr + ")$"
	default:
		expr = "^(" + expr + ")"
	}
	rx, err := regexp.Compile(expr)
	if err != nil {
		return str
	}
	if loc := rx.FindStringSubmatchIndex(str); loc != nil {
		return str[:loc[2]] + str[loc[3]:]
	}
	return str
}
