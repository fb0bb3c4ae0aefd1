// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/posh-sh/posh/pattern"
)

// globPattern implements the pathname-expansion callback the expander
// invokes through expand.Config.Glob: it walks pat one path segment at
// a time, matching each segment's shell pattern against directory
// entries relative to cwd, and returns every match found, sorted.
func globPattern(pat, cwd string) ([]string, bool) {
	parts := strings.Split(pat, string(filepath.Separator))
	matches := []string{"."}
	if filepath.IsAbs(pat) {
		matches[0] = string(filepath.Separator)
		parts = parts[1:]
	}
	for _, part := range parts {
		if part == "" {
			continue
		}
		expr, err := pattern.Regexp(part, pattern.Filenames)
		if err != nil {
			return nil, false
		}
		rx, err := regexp.Compile("^" + expr + "$")
		if err != nil {
			return nil, false
		}
		matchesDot := strings.HasPrefix(part, ".")
		var next []string
		for _, dir := range matches {
			next = globDir(resolveDir(cwd, dir), dir, rx, matchesDot, next)
		}
		matches = next
	}
	if len(matches) == 0 {
		return nil, false
	}
	sort.Strings(matches)
	return matches, true
}

// patternMatches reports whether subject matches the shell pattern pat
// in its entirety, as used for case items and the == / != test
// operators.
func patternMatches(pat, subject string) bool {
	expr, err := pattern.Regexp(pat, pattern.EntireString)
	if err != nil {
		return pat == subject
	}
	rx, err := regexp.Compile(expr)
	if err != nil {
		return pat == subject
	}
	return rx.MatchString(subject)
}

func resolveDir(cwd, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(cwd, dir)
}

// globDir appends every entry of absDir matching rx. Hidden entries
// are only considered when the pattern segment itself began with a
// dot, per the usual globbing rule.
func globDir(absDir, relDir string, rx *regexp.Regexp, matchesDot bool, matches []string) []string {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return matches
	}
	for _, ent := range entries {
		name := ent.Name()
		if !matchesDot && strings.HasPrefix(name, ".") {
			continue
		}
		if rx.MatchString(name) {
			matches = append(matches, filepath.Join(relDir, name))
		}
	}
	return matches
}
