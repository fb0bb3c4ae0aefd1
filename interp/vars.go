// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import "github.com/posh-sh/posh/expand"

// VarStore is the frame's variable mapping: the data model's
// VariableStore, a name-to-(value, exported, read-only) overlay layered
// over an optional base Environ (the inherited process environment for
// the top frame). Lookups fall through to the base; every write lands
// in the overlay, including explicit unsets of base variables, which
// are recorded as tombstones so the base value stays hidden. It
// implements expand.WriteEnviron so it can be handed straight to
// expand.Config.
type VarStore struct {
	base expand.Environ
	vars map[string]expand.Variable
}

func newVarStore(base expand.Environ) *VarStore {
	return &VarStore{base: base, vars: map[string]expand.Variable{}}
}

func (vs *VarStore) clone() *VarStore {
	cp := &VarStore{base: vs.base, vars: make(map[string]expand.Variable, len(vs.vars))}
	for k, v := range vs.vars {
		cp.vars[k] = v
	}
	return cp
}

func (vs *VarStore) Get(name string) expand.Variable {
	if vr, ok := vs.vars[name]; ok {
		return vr
	}
	if vs.base != nil {
		return vs.base.Get(name)
	}
	return expand.Variable{}
}

// Set assigns or unsets a variable, honoring read-only protection.
// Unsetting a name the base environment provides stores a tombstone so
// the base value does not resurface.
func (vs *VarStore) Set(name string, vr expand.Variable) error {
	if old := vs.Get(name); old.ReadOnly {
		return readOnlyError{name}
	}
	if !vr.Set {
		if vs.base != nil && vs.base.Get(name).IsSet() {
			vs.vars[name] = expand.Variable{}
		} else {
			delete(vs.vars, name)
		}
		return nil
	}
	vs.vars[name] = vr
	return nil
}

// Each iterates every currently-set variable: the overlay first, then
// the base names the overlay does not shadow.
func (vs *VarStore) Each(fn func(name string, vr expand.Variable) bool) {
	for name, vr := range vs.vars {
		if !vr.Set {
			continue
		}
		if !fn(name, vr) {
			return
		}
	}
	if vs.base == nil {
		return
	}
	vs.base.Each(func(name string, vr expand.Variable) bool {
		if _, shadowed := vs.vars[name]; shadowed {
			return true
		}
		return fn(name, vr)
	})
}

// Declared iterates only the variables the shell itself has assigned,
// skipping everything inherited untouched from the base environment.
func (vs *VarStore) Declared(fn func(name string, vr expand.Variable) bool) {
	for name, vr := range vs.vars {
		if !vr.Set {
			continue
		}
		if !fn(name, vr) {
			return
		}
	}
}

// Export marks name as exported without changing its value; it is a
// no-op if the name is unset.
func (vs *VarStore) Export(name string) {
	if vr := vs.Get(name); vr.Set {
		vr.Exported = true
		vs.vars[name] = vr
	}
}

// MakeReadOnly marks name as read-only; it is a no-op if the name is
// unset.
func (vs *VarStore) MakeReadOnly(name string) {
	if vr := vs.Get(name); vr.Set {
		vr.ReadOnly = true
		vs.vars[name] = vr
	}
}

// ExportedPairs returns the exported subset as "name=value" strings,
// for building a child process's environment array.
func (vs *VarStore) ExportedPairs() []string {
	var pairs []string
	vs.Each(func(name string, vr expand.Variable) bool {
		if vr.Exported {
			pairs = append(pairs, name+"="+vr.Str)
		}
		return true
	})
	return pairs
}

type readOnlyError struct{ name string }

func (e readOnlyError) Error() string { return e.name + ": readonly variable" }
