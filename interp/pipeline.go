// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"os"

	"github.com/posh-sh/posh/syntax"
	"golang.org/x/sync/errgroup"
)

// execPipeline runs each stage concurrently, connected by pipes, and
// reports the last stage's exit status unless pipefail is set, in
// which case it reports the rightmost non-zero stage's. The stages
// run in one errgroup so that execPipeline can wait for all of them;
// pipeline stages never fail the group itself, since a non-zero exit
// status is data, not an error. If creating a pipe fails, it returns
// at once without waiting for the stages already started.
func (r *Runner) execPipeline(ctx context.Context, f *Frame, p *syntax.Pipeline, tested bool) (ExecResult, error) {
	n := len(p.Commands)
	if n == 1 {
		// "! cmd" with no pipe: run in the current frame so that the
		// command's side effects (cd, assignments) still land here.
		res, err := r.execCommand(ctx, f, p.Commands[0], true)
		if res.Flow != FlowNormal {
			return res, err
		}
		if p.Negated {
			res.ExitStatus = negateStatus(res.ExitStatus)
			res.protected = true
		}
		f.LastExitStatus = res.ExitStatus
		return res, err
	}

	results := make([]ExecResult, n)
	errs := make([]error, n)

	var g errgroup.Group
	var readEnds []*os.File
	var stdin *os.File
	for i, cmd := range p.Commands {
		child := newFrame(f, PipelineCommand, nil)
		if stdin != nil {
			child.FDs.Set(0, stdin)
		}
		var stdout *os.File
		if i < n-1 {
			rp, wp, err := os.Pipe()
			if err != nil {
				return ExecResult{ExitStatus: 1}, err
			}
			stdout = wp
			stdin = rp
			readEnds = append(readEnds, rp)
			child.FDs.Set(1, wp)
		} else {
			stdin = nil
		}

		i, child, cmd, closeAfter := i, child, cmd, stdout
		g.Go(func() error {
			results[i], errs[i] = r.execCommand(ctx, child, cmd, true)
			if closeAfter != nil {
				closeAfter.Close()
			}
			return nil
		})
	}
	g.Wait()
	for _, rp := range readEnds {
		rp.Close()
	}

	status := results[n-1].ExitStatus
	if f.Opts.Pipefail {
		for i := n - 1; i >= 0; i-- {
			if results[i].ExitStatus != 0 {
				status = results[i].ExitStatus
				break
			}
		}
	}
	res := ExecResult{ExitStatus: status}
	if p.Negated {
		res.ExitStatus = negateStatus(status)
		res.protected = true
	}
	var firstErr error
	for _, e := range errs {
		if e != nil {
			firstErr = e
			break
		}
	}
	f.LastExitStatus = res.ExitStatus
	return res, firstErr
}

func negateStatus(status int) int {
	if status == 0 {
		return 1
	}
	return 0
}
