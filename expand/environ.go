// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"slices"
	"strings"
)

// Environ is the base interface for a shell's variable store, allowing it to
// fetch variables by name and to iterate over all the currently set
// variables. It corresponds to the VariableStore of the data model: a
// mapping from name to (value, exported, read-only).
type Environ interface {
	// Get retrieves a variable by its name. To check whether the variable
	// is set, use Variable.IsSet.
	Get(name string) Variable

	// Each iterates over all the currently set variables, calling the
	// supplied function on each one. Iteration stops if the function
	// returns false.
	//
	// Each is required to forward exported variables when launching a
	// process, since the process environment array is rebuilt from it.
	Each(func(name string, vr Variable) bool)
}

// WriteEnviron extends Environ with the ability to modify and unset
// variables.
type WriteEnviron interface {
	Environ
	// Set sets a variable by name. If !vr.IsSet(), the variable is being
	// unset; otherwise it is being replaced.
	//
	// An error is returned if the operation is invalid, such as assigning
	// to a read-only variable.
	Set(name string, vr Variable) error
}

// Variable describes a shell variable: its string value plus the two
// attributes a frame's variable store tracks for it.
type Variable struct {
	// Set is true once the variable has been assigned a value, which may
	// be empty. The zero Variable is unset.
	Set bool

	Exported bool
	ReadOnly bool

	Str string
}

// IsSet reports whether the variable has been assigned a value.
func (v Variable) IsSet() bool { return v.Set }

// String returns the variable's value, or the empty string if unset.
func (v Variable) String() string { return v.Str }

// readOnlyWriteEnviron adapts a plain Environ to WriteEnviron by
// silently discarding writes; it backs a Config whose variable store
// cannot be assigned through, where an assign-default modifier has
// nothing durable to assign into.
type readOnlyWriteEnviron struct{ Environ }

func (readOnlyWriteEnviron) Set(name string, vr Variable) error { return nil }

// WrapWriteEnviron returns env unchanged if it already supports
// writing, and otherwise wraps it so that writes are silently
// discarded.
func WrapWriteEnviron(env Environ) WriteEnviron {
	if we, ok := env.(WriteEnviron); ok {
		return we
	}
	return readOnlyWriteEnviron{env}
}

// FuncEnviron wraps a function mapping variable names to their string
// values, implementing Environ. Empty strings are treated as unset. All
// variables reported this way are exported.
//
// The returned Environ's Each method is a no-op, since a bare lookup
// function cannot enumerate its domain.
func FuncEnviron(fn func(string) string) Environ {
	return funcEnviron(fn)
}

type funcEnviron func(string) string

func (f funcEnviron) Get(name string) Variable {
	value := f(name)
	if value == "" {
		return Variable{}
	}
	return Variable{Set: true, Exported: true, Str: value}
}

func (f funcEnviron) Each(func(name string, vr Variable) bool) {}

// ListEnviron returns an Environ built from "key=value" pairs, such as
// os.Environ(). All variables are exported. If a name appears more than
// once, the last value wins.
func ListEnviron(pairs ...string) Environ {
	list := append([]string{}, pairs...)
	slices.SortStableFunc(list, func(a, b string) int {
		return strings.Compare(nameOf(a), nameOf(b))
	})
	last := ""
	for i := 0; i < len(list); {
		name, _, ok := strings.Cut(list[i], "=")
		if name == "" || !ok {
			list = slices.Delete(list, i, i+1)
			continue
		}
		if last == name {
			list = slices.Delete(list, i-1, i)
			continue
		}
		last = name
		i++
	}
	return listEnviron(list)
}

func nameOf(pair string) string {
	if i := strings.IndexByte(pair, '='); i >= 0 {
		return pair[:i]
	}
	return pair
}

// listEnviron is a sorted list of "name=value" strings.
type listEnviron []string

func (l listEnviron) Get(name string) Variable {
	i, ok := slices.BinarySearchFunc(l, name, func(pair, name string) int {
		return strings.Compare(nameOf(pair), name)
	})
	if ok {
		_, val, _ := strings.Cut(l[i], "=")
		return Variable{Set: true, Exported: true, Str: val}
	}
	return Variable{}
}

func (l listEnviron) Each(fn func(name string, vr Variable) bool) {
	for _, pair := range l {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if !fn(name, Variable{Set: true, Exported: true, Str: value}) {
			return
		}
	}
}
