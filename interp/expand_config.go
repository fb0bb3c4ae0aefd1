// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/syntax"
)

// expandConfig builds the expand.Config bridging frame's resources and
// the Runner's injected callbacks to the expand package's Config
// boundary: the expander never touches the filesystem, forks a
// subshell, or parses arithmetic grammar itself, it only calls back
// through these callbacks.
func (r *Runner) expandConfig(ctx context.Context, f *Frame) *expand.Config {
	return &expand.Config{
		Env:               f.Vars,
		Params:            f.Positional.Args,
		Arg0:              f.Positional.Arg0,
		ExitStatus:        f.LastExitStatus,
		ShellPID:          os.Getpid(),
		LastBackgroundPID: f.LastBackgroundPID,
		HaveBackgroundPID: f.HaveBackgroundPID,
		Flags:             optFlags(f.Opts),
		NoUnset:           f.Opts.Nounset,
		NoGlob:            f.Opts.Noglob,
		CmdSubst: func(ctx context.Context, w io.Writer, body *syntax.CommandList) error {
			return r.runCmdSubst(ctx, f, w, body)
		},
		ResolveTilde: r.resolveTilde,
		Glob: func(pat string) ([]string, bool) {
			return globPattern(pat, *f.Cwd)
		},
		EvalArithmetic: r.evalArithmetic,
	}
}

func optFlags(o *Options) string {
	var sb strings.Builder
	if o.Errexit {
		sb.WriteByte('e')
	}
	if o.Nounset {
		sb.WriteByte('u')
	}
	if o.Xtrace {
		sb.WriteByte('x')
	}
	if o.Noglob {
		sb.WriteByte('f')
	}
	if o.Monitor {
		sb.WriteByte('m')
	}
	return sb.String()
}

// runCmdSubst executes body in a fresh Subshell frame, writing its
// captured standard output to w unchanged; the expander's cmdSubst
// strips the trailing newlines afterwards.
func (r *Runner) runCmdSubst(ctx context.Context, parent *Frame, w io.Writer, body *syntax.CommandList) error {
	sub := newFrame(parent, Subshell, nil)
	rp, wp, err := os.Pipe()
	if err != nil {
		return RedirectionError{Op: "pipe", Err: err}
	}
	sub.FDs.Set(1, wp)

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		io.Copy(&buf, rp)
		rp.Close()
		close(done)
	}()

	_, execErr := r.execCommandList(ctx, sub, body, false)
	wp.Close()
	<-done
	if execErr != nil {
		return execErr
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func defaultResolveTilde(name string) (string, bool) {
	var u *user.User
	var err error
	if name == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(name)
	}
	if err != nil {
		return "", false
	}
	return u.HomeDir, true
}
