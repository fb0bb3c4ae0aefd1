// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// builtinTest implements the POSIX test utility, invoked either as
// "test expr" or as "[ expr ]". No library in the module's dependency
// stack models POSIX test's small boolean grammar over file and string
// primaries, so the grammar itself is hand-rolled; the -r/-w/-x file
// primaries do lean on golang.org/x/sys/unix's access(2) wrapper (see
// access_unix.go) for accurate permission checks.
func builtinTest(_ context.Context, _ *Runner, f *Frame, args []string) (int, error) {
	if len(args) > 0 && args[0] == "[" {
		args = args[1:]
	}
	if n := len(args); n > 0 && args[n-1] == "]" {
		args = args[:n-1]
	}
	ok, err := evalTest(f, args)
	if err != nil {
		return 2, err
	}
	if ok {
		return 0, nil
	}
	return 1, nil
}

// evalTest evaluates a test expression's argument list per POSIX's
// test utility grammar, handling the 0-, 1-, 2-, 3- and 4-argument
// cases explicitly since test's grammar is ambiguous beyond that
// without lookahead rules POSIX spells out case by case.
func evalTest(f *Frame, args []string) (bool, error) {
	switch len(args) {
	case 0:
		return false, nil
	case 1:
		return args[0] != "", nil
	case 2:
		if args[0] == "!" {
			ok, err := evalTest(f, args[1:])
			return !ok, err
		}
		return unaryTest(f, args[0], args[1])
	case 3:
		// POSIX resolves the three-argument form in favor of a binary
		// primary first, so "test ! = x" compares "!" against "x".
		if isBinaryOp(args[1]) {
			return binaryTest(args[0], args[1], args[2])
		}
		if args[0] == "!" {
			ok, err := evalTest(f, args[1:])
			return !ok, err
		}
		return false, fmt.Errorf("test: unsupported expression: %v", args)
	case 4:
		if args[0] == "!" {
			ok, err := evalTest(f, args[1:])
			return !ok, err
		}
		if args[0] == "(" && args[3] == ")" {
			return evalTest(f, args[1:3])
		}
	}
	return false, fmt.Errorf("test: unsupported expression: %v", args)
}

func unaryTest(f *Frame, op, arg string) (bool, error) {
	switch op {
	case "-z":
		return arg == "", nil
	case "-n":
		return arg != "", nil
	}
	path := arg
	if path != "" && path[0] != '/' && f.Cwd != nil {
		path = *f.Cwd + "/" + path
	}
	info, statErr := os.Stat(path)
	switch op {
	case "-e":
		return statErr == nil, nil
	case "-f":
		return statErr == nil && info.Mode().IsRegular(), nil
	case "-d":
		return statErr == nil && info.IsDir(), nil
	case "-s":
		return statErr == nil && info.Size() > 0, nil
	case "-L", "-h":
		li, err := os.Lstat(path)
		return err == nil && li.Mode()&os.ModeSymlink != 0, nil
	case "-r":
		return statErr == nil && checkAccess(path, accessRead), nil
	case "-w":
		return statErr == nil && checkAccess(path, accessWrite), nil
	case "-x":
		return statErr == nil && checkAccess(path, accessExecute), nil
	}
	return false, fmt.Errorf("test: unknown unary operator %q", op)
}

func isBinaryOp(op string) bool {
	switch op {
	case "=", "==", "!=", "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
		return true
	}
	return false
}

func binaryTest(x, op, y string) (bool, error) {
	switch op {
	case "=", "==":
		return x == y, nil
	case "!=":
		return x != y, nil
	case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
		xi, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return false, fmt.Errorf("test: %s: not a number", x)
		}
		yi, err := strconv.ParseInt(y, 10, 64)
		if err != nil {
			return false, fmt.Errorf("test: %s: not a number", y)
		}
		switch op {
		case "-eq":
			return xi == yi, nil
		case "-ne":
			return xi != yi, nil
		case "-lt":
			return xi < yi, nil
		case "-le":
			return xi <= yi, nil
		case "-gt":
			return xi > yi, nil
		case "-ge":
			return xi >= yi, nil
		}
	}
	return false, fmt.Errorf("test: unknown binary operator %q", op)
}
