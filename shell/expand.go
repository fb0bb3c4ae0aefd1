// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package shell

import (
	"os"
	"strings"

	"github.com/posh-sh/posh/expand"
	"github.com/posh-sh/posh/syntax"
)

// Expand performs shell expansion on s, using env to resolve variables.
// The expansion applies to tilde and parameter expansion (including
// ${#var} and modifiers), but not to pathname expansion: the literal
// text is always returned unglobbed. No arithmetic evaluator is
// configured, so an arithmetic expansion reports an error.
//
// If env is nil, the current process environment is used. Empty
// variables are treated as unset; to support variables which are set
// but empty, build an [expand.Config] directly.
//
// Command substitution is not run: no command-substitution callback is
// configured, so it expands to the empty string.
//
// An error is reported if s has invalid syntax.
func Expand(s string, env func(string) string) (string, error) {
	word, err := syntax.NewParser().Document(strings.NewReader(s))
	if err != nil {
		return "", err
	}
	return expand.Literal(configFor(env), word)
}

// Fields performs shell expansion on s like Expand, but also performs
// field splitting, returning the resulting fields separately rather
// than joined. No glob function is configured, so a pattern such as
// "*.go" is kept as literal text rather than expanded to file names.
//
// An error is reported if s has invalid syntax.
func Fields(s string, env func(string) string) ([]string, error) {
	var words []*syntax.Word
	err := syntax.NewParser().Words(strings.NewReader(s), func(w *syntax.Word) bool {
		words = append(words, w)
		return true
	})
	if err != nil {
		return nil, err
	}
	return expand.Fields(configFor(env), words...)
}

func configFor(env func(string) string) *expand.Config {
	if env == nil {
		env = os.Getenv
	}
	return &expand.Config{
		Env: expand.FuncEnviron(env),
		ResolveTilde: func(name string) (string, bool) {
			if name == "" {
				name = "HOME"
			}
			if v := env(name); v != "" {
				return v, true
			}
			return "", false
		},
	}
}
