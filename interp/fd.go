// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import "os"

// FDTable is a frame's file-descriptor table: a mapping from small
// integers to open files, pipe ends, or an embedder's own io.Reader /
// io.Writer. Redirections applied to a frame mutate this table
// directly, recording a shadow of whatever they overwrote so it can be
// restored once the frame's body finishes.
type FDTable struct {
	files map[int]any
}

func newFDTable() *FDTable {
	return &FDTable{files: map[int]any{
		0: os.Stdin,
		1: os.Stdout,
		2: os.Stderr,
	}}
}

// clone makes a new table referencing the same open files; this mirrors
// what a fork does at the OS level, where the child gets its own
// descriptor table but it initially points at the same file
// descriptions as the parent's.
func (t *FDTable) clone() *FDTable {
	cp := &FDTable{files: make(map[int]any, len(t.files))}
	for k, v := range t.files {
		cp.files[k] = v
	}
	return cp
}

func (t *FDTable) Get(fd int) (any, bool) {
	f, ok := t.files[fd]
	return f, ok
}

func (t *FDTable) Set(fd int, f any) { t.files[fd] = f }

func (t *FDTable) Close(fd int) { delete(t.files, fd) }

// redirShadow is one entry saved by applyRedirects, to be restored by
// FDTable.restore once the redirected body finishes.
type redirShadow struct {
	fd   int
	had  bool
	file any
}

func (t *FDTable) restore(shadows []redirShadow, touched map[int]bool) {
	for fd := range touched {
		delete(t.files, fd)
	}
	for _, s := range shadows {
		if s.had {
			t.files[s.fd] = s.file
		}
	}
}
