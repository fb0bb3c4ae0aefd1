// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package expand implements shell expansion, including parameter expansion,
// command substitution, arithmetic expansion, field splitting, and pathname
// expansion. The package operates entirely on the interfaces declared here
// and in config.go; it never parses arithmetic or globs a filesystem
// itself, relying instead on the callbacks supplied through Config.
package expand

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/posh-sh/posh/pattern"
	"github.com/posh-sh/posh/syntax"
)

// expander carries the Config and context through one expansion call, so
// that the recursive word-walking methods below don't need to thread both
// through every signature.
type expander struct {
	cfg *Config
	ctx context.Context
}

func newExpander(ctx context.Context, cfg *Config) *expander {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return &expander{cfg: cfg, ctx: ctx}
}

// Fields expands each word following the full pipeline: tilde expansion,
// parameter/command/arithmetic expansion, field splitting, pathname
// expansion, and quote removal. It is used to expand command names,
// arguments, and for-loop word lists; a pathname pattern that matches
// fans out into one field per match.
func Fields(cfg *Config, words ...*syntax.Word) ([]string, error) {
	return FieldsCtx(context.Background(), cfg, words...)
}

// FieldsCtx is Fields with an explicit context, threaded through to
// Config.CmdSubst and Config.EvalArithmetic.
func FieldsCtx(ctx context.Context, cfg *Config, words ...*syntax.Word) ([]string, error) {
	e := newExpander(ctx, cfg)
	var out []string
	for _, w := range words {
		w = e.expandTilde(w)
		b := newFieldBuilder()
		if err := e.buildWord(b, w.Parts, false); err != nil {
			return out, err
		}
		for _, coarse := range b.fields {
			if len(coarse) == 0 {
				continue
			}
			for _, sp := range e.splitField(coarse) {
				out = append(out, e.globField(sp)...)
			}
		}
	}
	return out, nil
}

// Literal expands a word to a single string: parameter, command, and
// arithmetic expansion are performed, but there is no field splitting and
// no pathname expansion. It is used for assignment values and for the
// word operand of a parameter expansion modifier.
func Literal(cfg *Config, word *syntax.Word) (string, error) {
	return LiteralCtx(context.Background(), cfg, word)
}

// LiteralCtx is Literal with an explicit context.
func LiteralCtx(ctx context.Context, cfg *Config, word *syntax.Word) (string, error) {
	e := newExpander(ctx, cfg)
	if word == nil {
		return "", nil
	}
	word = e.expandTilde(word)
	return e.scalarExpand(word.Parts, false, false)
}

// Document expands a heredoc body the same way as Literal: no splitting,
// no pathname expansion. A heredoc whose delimiter was quoted is never
// passed here, since its body is taken verbatim by the parser.
func Document(cfg *Config, word *syntax.Word) (string, error) {
	return Literal(cfg, word)
}

// DocumentCtx is Document with an explicit context.
func DocumentCtx(ctx context.Context, cfg *Config, word *syntax.Word) (string, error) {
	return LiteralCtx(ctx, cfg, word)
}

// Pattern expands a word into a pattern string suitable for
// github.com/posh-sh/posh/pattern: quoted portions are escaped so that
// they match themselves literally, while unquoted portions keep their
// glob metacharacter meaning. It is used for case patterns.
func Pattern(cfg *Config, word *syntax.Word) (string, error) {
	e := newExpander(context.Background(), cfg)
	return e.scalarExpand(word.Parts, false, true)
}

// Arithm expands the raw text of an arithmetic expansion by resolving any
// embedded parameter, command, and arithmetic substitutions, then hands
// the result to Config.EvalArithmetic, which resolves bare identifiers
// through the supplied lookup function.
func Arithm(cfg *Config, raw string) (int64, error) {
	return ArithmCtx(context.Background(), cfg, raw)
}

// ArithmCtx is Arithm with an explicit context.
func ArithmCtx(ctx context.Context, cfg *Config, raw string) (int64, error) {
	e := newExpander(ctx, cfg)
	w, err := syntax.NewParser().Document(strings.NewReader(raw))
	if err != nil {
		return 0, err
	}
	expr, err := e.scalarExpand(w.Parts, false, false)
	if err != nil {
		return 0, err
	}
	if e.cfg.EvalArithmetic == nil {
		return 0, ArithmeticError{Expr: raw}
	}
	n, err := e.cfg.EvalArithmetic(e.ctx, expr, e.arithmLookup)
	if err != nil {
		return 0, ArithmeticError{Expr: raw, Err: err}
	}
	return n, nil
}

func (e *expander) arithmLookup(name string) string {
	return e.cfg.env().Get(name).Str
}

// expandTilde rewrites an unquoted leading "~" or "~name" in the word's
// first Lit part into the resolved home directory, leaving the rest of
// the word untouched. Words that don't start with a literal "~" are
// returned unchanged.
func (e *expander) expandTilde(w *syntax.Word) *syntax.Word {
	if e.cfg.ResolveTilde == nil || len(w.Parts) == 0 {
		return w
	}
	lit, ok := w.Parts[0].(*syntax.Lit)
	if !ok || !strings.HasPrefix(lit.Value, "~") {
		return w
	}
	rest := lit.Value[1:]
	name := rest
	var tail string
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		name, tail = rest[:i], rest[i:]
	}
	home, ok := e.cfg.ResolveTilde(name)
	if !ok {
		return w
	}
	parts := make([]syntax.WordPart, len(w.Parts))
	copy(parts, w.Parts)
	parts[0] = &syntax.Lit{ValuePos: lit.ValuePos, Value: home + tail}
	return &syntax.Word{Parts: parts}
}

// frag is one run of text produced while expanding a word, tagged with
// whether it is still eligible for IFS field splitting, for pathname
// expansion, and whether it must survive as a field of its own even if
// it expands to the empty string. Quoted text, and text that is already
// its own field (such as an element spliced from an unquoted "$@"), is
// never split, and neither is literal source text other than a blank run
// from Parser.Document; quoted text is never globbed.
// Per POSIX, a field is dropped for being empty only if nothing in it
// came from an actual quote in the source; keep marks that exemption.
type frag struct {
	s     string
	split bool
	glob  bool
	keep  bool
}

// fieldBuilder accumulates the coarse, not-yet-split fields produced by
// walking a word's parts. Most words produce exactly one coarse field;
// an unquoted or quoted "$@" can splice several.
type fieldBuilder struct {
	fields [][]frag
}

func newFieldBuilder() *fieldBuilder { return &fieldBuilder{fields: [][]frag{nil}} }

func (b *fieldBuilder) append(f frag) {
	i := len(b.fields) - 1
	b.fields[i] = append(b.fields[i], f)
}

func (b *fieldBuilder) breakField() { b.fields = append(b.fields, nil) }

// spliceList breaks in a list of strings as separate fields, attaching
// the first element to whatever is already accumulated in the current
// field and leaving the last element's field open for further parts, as
// POSIX requires for "prefix$@suffix".
func (b *fieldBuilder) spliceList(list []string, split, glob, keep bool) {
	if len(list) == 0 {
		return
	}
	b.append(frag{list[0], split, glob, keep})
	for _, s := range list[1 : len(list)-1] {
		b.breakField()
		b.append(frag{s, split, glob, keep})
	}
	if len(list) > 1 {
		b.breakField()
		b.append(frag{list[len(list)-1], split, glob, keep})
	}
}

func (e *expander) buildWord(b *fieldBuilder, parts []syntax.WordPart, quoted bool) error {
	for _, part := range parts {
		switch x := part.(type) {
		case *syntax.Lit:
			// A run consisting entirely of blanks can only have come from
			// Parser.Document, which preserves blanks as literal text
			// specifically so they can be field-split here; authored
			// source text is never split by IFS, since the lexer already
			// uses blanks to delimit words before the parser ever sees
			// them.
			b.append(frag{x.Value, isBlankRun(x.Value), !quoted, false})
		case *syntax.SglQuoted:
			b.append(frag{x.Value, false, false, true})
		case *syntax.DblQuoted:
			if len(x.Parts) == 0 {
				b.append(frag{"", false, false, true})
				continue
			}
			if err := e.buildWord(b, x.Parts, true); err != nil {
				return err
			}
		case *syntax.ParamExp:
			if err := e.buildParamExp(b, x, quoted); err != nil {
				return err
			}
		case *syntax.CmdSubst:
			s, err := e.cmdSubst(x)
			if err != nil {
				return err
			}
			b.append(frag{s, !quoted, !quoted, quoted})
		case *syntax.ArithmExp:
			n, err := e.arithmExp(x)
			if err != nil {
				return err
			}
			b.append(frag{strconv.FormatInt(n, 10), !quoted, !quoted, quoted})
		}
	}
	return nil
}

func (e *expander) arithmExp(x *syntax.ArithmExp) (int64, error) {
	return ArithmCtx(e.ctx, e.cfg, x.Raw)
}

func (e *expander) cmdSubst(x *syntax.CmdSubst) (string, error) {
	if e.cfg.CmdSubst == nil {
		return "", nil
	}
	var sb strings.Builder
	if err := e.cfg.CmdSubst(e.ctx, &sb, x.Body); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// buildParamExp expands one parameter expansion into the field builder,
// splicing "$@"/"$*" into multiple fields where POSIX requires it.
func (e *expander) buildParamExp(b *fieldBuilder, pe *syntax.ParamExp, quoted bool) error {
	value, set, isList, list := e.lookupParam(pe.Name)
	switch pe.Modifier {
	case syntax.ParamPlain:
		if isList {
			if pe.Name == "@" {
				// "$@" splices into one field per positional parameter.
				// Quoted, each element is already final; unquoted, each
				// remains glob-eligible but is never re-split, and may
				// vanish if empty.
				b.spliceList(list, false, !quoted, quoted)
				return nil
			}
			// "$*" is always first joined into a single string using the
			// first character of IFS; quoted, that string is one final
			// field, unquoted it is subject to ordinary field splitting.
			b.append(frag{e.ifsJoin(list), !quoted, !quoted, quoted})
			return nil
		}
		if !set && e.cfg.NoUnset {
			return UnsetParameterError{Expr: pe, Message: pe.Name + ": unbound variable"}
		}
		b.append(frag{value, !quoted, !quoted, quoted})
		return nil
	case syntax.ParamLength:
		n := utf8.RuneCountInString(value)
		if isList {
			n = len(list)
		}
		b.append(frag{strconv.Itoa(n), false, false, true})
		return nil
	default:
		if isList {
			value, set = strings.Join(list, " "), true
		}
		s, err := e.paramModifier(pe, value, set)
		if err != nil {
			return err
		}
		b.append(frag{s, !quoted, !quoted, quoted})
		return nil
	}
}

// scalarExpand expands a word's parts into a single string: no field
// splitting, and (unless asPattern) no special glob meaning. asPattern
// keeps unquoted glob metacharacters live while escaping quoted ones, for
// use as a github.com/posh-sh/posh/pattern pattern.
func (e *expander) scalarExpand(parts []syntax.WordPart, quoted, asPattern bool) (string, error) {
	var sb strings.Builder
	for _, part := range parts {
		switch x := part.(type) {
		case *syntax.Lit:
			if asPattern && quoted {
				sb.WriteString(pattern.QuoteMeta(x.Value))
			} else {
				sb.WriteString(x.Value)
			}
		case *syntax.SglQuoted:
			if asPattern {
				sb.WriteString(pattern.QuoteMeta(x.Value))
			} else {
				sb.WriteString(x.Value)
			}
		case *syntax.DblQuoted:
			s, err := e.scalarExpand(x.Parts, true, asPattern)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		case *syntax.ParamExp:
			s, err := e.paramScalar(x, quoted)
			if err != nil {
				return "", err
			}
			if asPattern && quoted {
				sb.WriteString(pattern.QuoteMeta(s))
			} else {
				sb.WriteString(s)
			}
		case *syntax.CmdSubst:
			s, err := e.cmdSubst(x)
			if err != nil {
				return "", err
			}
			if asPattern && quoted {
				sb.WriteString(pattern.QuoteMeta(s))
			} else {
				sb.WriteString(s)
			}
		case *syntax.ArithmExp:
			n, err := e.arithmExp(x)
			if err != nil {
				return "", err
			}
			sb.WriteString(strconv.FormatInt(n, 10))
		}
	}
	return sb.String(), nil
}

// paramScalar expands a parameter expansion to a single string, joining
// "$@"/"$*" with a space rather than splicing them into multiple fields.
// It backs scalarExpand, which never splits into fields.
func (e *expander) paramScalar(pe *syntax.ParamExp, quoted bool) (string, error) {
	value, set, isList, list := e.lookupParam(pe.Name)
	switch pe.Modifier {
	case syntax.ParamPlain:
		if isList {
			return strings.Join(list, " "), nil
		}
		if !set && e.cfg.NoUnset {
			return "", UnsetParameterError{Expr: pe, Message: pe.Name + ": unbound variable"}
		}
		return value, nil
	case syntax.ParamLength:
		if isList {
			return strconv.Itoa(len(list)), nil
		}
		return strconv.Itoa(utf8.RuneCountInString(value)), nil
	default:
		if isList {
			value, set = strings.Join(list, " "), true
		}
		return e.paramModifier(pe, value, set)
	}
}

// splitPiece is one field produced by splitField: its literal text, and
// a parallel pattern-escaped form (quoted runs quoted-meta-escaped, glob-
// eligible runs left live) used by globField for pathname expansion.
type splitPiece struct {
	plain   string
	pattern string
	hasGlob bool
}

// splitField performs IFS field splitting (the data model's step 5) on
// one coarse field.
func (e *expander) splitField(frags []frag) []splitPiece {
	type rchar struct {
		r     rune
		split bool
		glob  bool
	}
	var stream []rchar
	keep := false
	for _, f := range frags {
		if f.keep {
			keep = true
		}
		for _, r := range f.s {
			stream = append(stream, rchar{r, f.split, f.glob})
		}
	}
	if len(stream) == 0 {
		if keep {
			return []splitPiece{{"", "", false}}
		}
		return nil
	}

	ifs := e.ifsValue()
	isWS := func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }
	inIFS := func(r rune) bool { return strings.ContainsRune(ifs, r) }

	start := 0
	for start < len(stream) && stream[start].split && isWS(stream[start].r) && inIFS(stream[start].r) {
		start++
	}
	end := len(stream)
	for end > start && stream[end-1].split && isWS(stream[end-1].r) && inIFS(stream[end-1].r) {
		end--
	}
	stream = stream[start:end]

	var pieces []splitPiece
	var plain, pat strings.Builder
	hasGlob := false
	flush := func() {
		pieces = append(pieces, splitPiece{plain.String(), pat.String(), hasGlob})
		plain.Reset()
		pat.Reset()
		hasGlob = false
	}
	i := 0
	for i < len(stream) {
		c := stream[i]
		if c.split && inIFS(c.r) {
			flush()
			if isWS(c.r) {
				for i+1 < len(stream) && stream[i+1].split && isWS(stream[i+1].r) && inIFS(stream[i+1].r) {
					i++
				}
			}
			i++
			continue
		}
		plain.WriteRune(c.r)
		if c.glob {
			hasGlob = true
			pat.WriteRune(c.r)
		} else {
			pat.WriteString(pattern.QuoteMeta(string(c.r)))
		}
		i++
	}
	// A trailing separator terminates the last field rather than
	// opening an empty one; a value of separators alone still produces
	// its leading empty fields via flush above.
	if plain.Len() > 0 {
		pieces = append(pieces, splitPiece{plain.String(), pat.String(), hasGlob})
	}
	return pieces
}

// isBlankRun reports whether s is non-empty and consists entirely of
// spaces, tabs, and newlines.
func isBlankRun(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' {
			return false
		}
	}
	return true
}

func (e *expander) ifsValue() string {
	vr := e.cfg.env().Get("IFS")
	if !vr.IsSet() {
		return " \t\n"
	}
	return vr.Str
}

func (e *expander) ifsJoin(list []string) string {
	ifs := e.ifsValue()
	if ifs == "" {
		return strings.Join(list, "")
	}
	return strings.Join(list, string(ifs[0]))
}

// globField performs pathname expansion (the data model's step 6) on one
// split field: if its pattern form contains live glob metacharacters, it
// is handed to Config.Glob, and the sorted matches replace it; otherwise,
// or if nothing matched, the literal text is kept as the sole result.
func (e *expander) globField(sp splitPiece) []string {
	if e.cfg.NoGlob || !sp.hasGlob || e.cfg.Glob == nil || !pattern.HasMeta(sp.pattern) {
		return []string{sp.plain}
	}
	matches, ok := e.cfg.Glob(sp.pattern)
	if !ok || len(matches) == 0 {
		return []string{sp.plain}
	}
	sort.Strings(matches)
	return matches
}
