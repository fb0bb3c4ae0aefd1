// Copyright (c) 2017, Andrey Nering <andrey.nering@gmail.com>
// See LICENSE for licensing information

//go:build unix

package interp

import "golang.org/x/sys/unix"

// checkAccess backs the -r, -w and -x test primaries with the same
// access(2) semantics the kernel itself uses, taking the current
// user's actual permissions into account rather than approximating
// from the mode bits in a Stat result.
func checkAccess(path string, mode uint32) bool {
	return unix.Access(path, mode) == nil
}

const (
	accessRead    = unix.R_OK
	accessWrite   = unix.W_OK
	accessExecute = unix.X_OK
)
