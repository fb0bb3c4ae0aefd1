// Copyright (c) 2025, Andrey Nering <andrey@nering.com.br>
// See LICENSE for licensing information

// Package coreutils provides a middleware for the interpreter that handles
// core utils commands like cat, chmod, cp, find, ls, mkdir, mv, rm, touch
// and xargs.
//
// This is particularly useful to keep the max compability on Windows where
// these core utils are not available, unless when installed manually by the
// user.
package coreutils

import (
	"context"
	"io"

	"github.com/posh-sh/posh/interp"
	"github.com/u-root/u-root/pkg/core"
	"github.com/u-root/u-root/pkg/core/base64"
	"github.com/u-root/u-root/pkg/core/cat"
	"github.com/u-root/u-root/pkg/core/chmod"
	"github.com/u-root/u-root/pkg/core/cp"
	"github.com/u-root/u-root/pkg/core/find"
	"github.com/u-root/u-root/pkg/core/gzip"
	"github.com/u-root/u-root/pkg/core/ls"
	"github.com/u-root/u-root/pkg/core/mkdir"
	"github.com/u-root/u-root/pkg/core/mktemp"
	"github.com/u-root/u-root/pkg/core/mv"
	"github.com/u-root/u-root/pkg/core/rm"
	"github.com/u-root/u-root/pkg/core/shasum"
	"github.com/u-root/u-root/pkg/core/tar"
	"github.com/u-root/u-root/pkg/core/touch"
	"github.com/u-root/u-root/pkg/core/xargs"
)

var commandBuilders = map[string]func() core.Command{
	"cat":    func() core.Command { return cat.New() },
	"chmod":  func() core.Command { return chmod.New() },
	"cp":     func() core.Command { return cp.New() },
	"find":   func() core.Command { return find.New() },
	"ls":     func() core.Command { return ls.New() },
	"mkdir":  func() core.Command { return mkdir.New() },
	"mv":     func() core.Command { return mv.New() },
	"rm":     func() core.Command { return rm.New() },
	"touch":  func() core.Command { return touch.New() },
	"xargs":  func() core.Command { return xargs.New() },
	"base64": func() core.Command { return base64.New() },
	"gzcat":  func() core.Command { return gzip.New("gzcat") },
	"gzip":   func() core.Command { return gzip.New("gzip") },
	"gunzip": func() core.Command { return gzip.New("gunzip") },
	"mktemp": func() core.Command { return mktemp.New() },
	"shasum": func() core.Command { return shasum.New() },
	"tar":    func() core.Command { return tar.New() },
}

// ExecHandler returns an [interp.ExecHandlerFunc] middleware that
// intercepts the names in commandBuilders and runs them through
// u-root's in-process implementation instead of falling through to
// next, which would otherwise search PATH for a real binary.
//
// This lets a script using only these utilities run the same way on a
// host that lacks them as real executables (most notably Windows), at
// the cost of giving this middleware priority over whatever the system
// actually provides for the same name.
func ExecHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, frame *interp.Frame, name string, args []string) (int, error) {
		newCoreUtil, ok := commandBuilders[name]
		if !ok {
			return next(ctx, frame, name, args)
		}

		cmd := newCoreUtil()
		cmd.SetIO(readerOf(frame), writerOf(frame, 1), writerOf(frame, 2))
		if frame.Cwd != nil {
			cmd.SetWorkingDir(*frame.Cwd)
		}
		cmd.SetLookupEnv(func(key string) (string, bool) {
			vr := frame.Vars.Get(key)
			return vr.Str, vr.Set
		})

		if err := cmd.RunContext(ctx, args...); err != nil {
			return 1, &Error{err: err}
		}
		return 0, nil
	}
}

func readerOf(frame *interp.Frame) io.Reader {
	v, ok := frame.FDs.Get(0)
	if !ok {
		return nil
	}
	r, _ := v.(io.Reader)
	return r
}

func writerOf(frame *interp.Frame, fd int) io.Writer {
	v, ok := frame.FDs.Get(fd)
	if !ok {
		return nil
	}
	w, _ := v.(io.Writer)
	return w
}
