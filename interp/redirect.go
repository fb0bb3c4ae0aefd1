// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/syntax"
)

// applyRedirects opens and installs each redirection into f's fd table,
// returning enough of a shadow to undo exactly the fds it touched once
// the redirected body finishes.
func (r *Runner) applyRedirects(ctx context.Context, f *Frame, redirs []*syntax.Redirect) ([]redirShadow, map[int]bool, error) {
	var shadows []redirShadow
	touched := map[int]bool{}
	save := func(fd int) {
		if touched[fd] {
			return
		}
		touched[fd] = true
		old, had := f.FDs.Get(fd)
		shadows = append(shadows, redirShadow{fd: fd, had: had, file: old})
	}

	for _, rd := range redirs {
		fd := rd.IoNumber
		if fd < 0 {
			fd = defaultFd(rd.Op)
		}
		save(fd)
		if err := r.applyOneRedirect(ctx, f, rd, fd); err != nil {
			f.FDs.restore(shadows, touched)
			return nil, nil, err
		}
	}
	return shadows, touched, nil
}

func defaultFd(op syntax.RedirOperator) int {
	switch op {
	case syntax.RdrIn, syntax.DplIn, syntax.Hdoc, syntax.DashHdoc, syntax.RdrInOut:
		return 0
	default:
		return 1
	}
}

func (r *Runner) applyOneRedirect(ctx context.Context, f *Frame, rd *syntax.Redirect, fd int) error {
	switch rd.Kind {
	case syntax.RedirClose:
		f.FDs.Close(fd)
		return nil
	case syntax.RedirFd:
		src, ok := f.FDs.Get(rd.Fd)
		if !ok {
			return RedirectionError{Op: "dup", Err: os.ErrClosed}
		}
		f.FDs.Set(fd, src)
		return nil
	case syntax.RedirBuffer:
		body := rd.Buffer
		if !rd.BufferQuoted {
			word, err := syntax.NewParser().HeredocBody(strings.NewReader(body))
			if err != nil {
				return err
			}
			body, err = expand.DocumentCtx(ctx, r.expandConfig(ctx, f), word)
			if err != nil {
				return err
			}
		}
		rp, wp, err := os.Pipe()
		if err != nil {
			return RedirectionError{Op: "pipe", Err: err}
		}
		go func() {
			wp.WriteString(body)
			wp.Close()
		}()
		f.FDs.Set(fd, rp)
		return nil
	case syntax.RedirFile:
		name, err := expand.LiteralCtx(ctx, r.expandConfig(ctx, f), rd.Word)
		if err != nil {
			return err
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(*f.Cwd, name)
		}
		file, err := openRedirFile(rd.Op, name, *f.Umask)
		if err != nil {
			return RedirectionError{Op: rd.Op.String() + " " + name, Err: err}
		}
		f.FDs.Set(fd, file)
		return nil
	}
	return nil
}

func openRedirFile(op syntax.RedirOperator, name string, umask int) (*os.File, error) {
	switch op {
	case syntax.RdrIn:
		return os.Open(name)
	case syntax.RdrOut, syntax.ClobberOut:
		return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666&^os.FileMode(umask))
	case syntax.AppOut:
		return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666&^os.FileMode(umask))
	case syntax.RdrInOut:
		return os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o666&^os.FileMode(umask))
	}
	return nil, os.ErrInvalid
}
