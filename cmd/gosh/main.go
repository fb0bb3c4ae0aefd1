// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// gosh is a minimal driver around [interp]: it reads a whole script
// (from -c, from a file argument, or from stdin) and runs it. The
// interactive line editor and a real read-eval-print loop are not part
// of the core and are left to a caller that wants one.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/posh-sh/posh/interp"
	"github.com/posh-sh/posh/syntax"
)

var command = flag.String("c", "", "command to be executed")

func main() {
	os.Exit(main1())
}

// main1 is the real entry point, split out from main so that
// integration tests can register it as a testscript command and run
// the test binary as gosh instead of building a separate gosh binary.
func main1() int {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := interp.New(interp.StdIO(os.Stdin, os.Stdout, os.Stderr))
	if err != nil {
		fmt.Fprintln(os.Stderr, "gosh:", err)
		return 1
	}

	if *command != "" {
		return run(ctx, r, strings.NewReader(*command), "-c")
	}
	if flag.NArg() == 0 {
		return run(ctx, r, os.Stdin, "")
	}
	status := 0
	for _, path := range flag.Args() {
		status = runPath(ctx, r, path)
		if status != 0 {
			break
		}
	}
	return status
}

func run(ctx context.Context, r *interp.Runner, reader io.Reader, name string) int {
	prog, err := syntax.NewParser().Parse(reader, name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gosh:", err)
		return 2
	}
	status, err := r.Run(ctx, prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gosh:", err)
	}
	return status
}

func runPath(ctx context.Context, r *interp.Runner, path string) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gosh:", err)
		return 1
	}
	defer f.Close()
	return run(ctx, r, f, path)
}
