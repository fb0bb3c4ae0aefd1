// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"sync"

	"github.com/posh-sh/posh/syntax"
)

// JobStatus is one background job's run state.
type JobStatus int

const (
	JobRunning JobStatus = iota
	JobDone
)

// Job is one entry of the data model's JobStore: here, since the core
// has no real process group to track (background work runs as a
// goroutine rather than a forked process group), a job tracks its own
// completion and final exit status instead of a list of PIDs.
type Job struct {
	ID      int
	Command string
	status  JobStatus
	exit    int
	done    chan struct{}
}

func (j *Job) Status() JobStatus {
	select {
	case <-j.done:
		return JobDone
	default:
		return JobRunning
	}
}

// Wait blocks until the job finishes and returns its exit status.
func (j *Job) Wait() int {
	<-j.done
	return j.exit
}

// JobStore tracks background jobs started with '&'.
type JobStore struct {
	mu   sync.Mutex
	jobs map[int]*Job
	next int
}

func newJobStore() *JobStore { return &JobStore{jobs: map[int]*Job{}} }

func (s *JobStore) add(cmdline string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	j := &Job{ID: s.next, Command: cmdline, done: make(chan struct{})}
	s.jobs[j.ID] = j
	return j
}

func (s *JobStore) get(id int) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

// all returns every known job in start order.
func (s *JobStore) all() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]*Job, 0, len(s.jobs))
	for id := 1; id <= s.next; id++ {
		if j, ok := s.jobs[id]; ok {
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// startBackground runs cmd asynchronously in a copied BackgroundJob
// frame, recording a Job so a later "wait" built-in can collect its
// status; the parent frame observes exit 0 immediately, per §4.4 step 1.
func (r *Runner) startBackground(ctx context.Context, f *Frame, cmd syntax.Command) *Job {
	child := newFrame(f, BackgroundJob, nil)
	job := r.jobs.add(commandSummary(cmd))
	f.LastBackgroundPID = job.ID
	f.HaveBackgroundPID = true
	go func() {
		res, _ := r.execCommand(ctx, child, cmd, false)
		child.LastExitStatus = res.ExitStatus
		r.runTrap(ctx, child, "EXIT")
		job.exit = res.ExitStatus
		close(job.done)
	}()
	return job
}

func commandSummary(cmd syntax.Command) string {
	if sc, ok := cmd.(*syntax.SimpleCommand); ok && len(sc.Words) > 0 {
		if lit, ok := sc.Words[0].Lit(); ok {
			return lit
		}
	}
	return "command"
}
