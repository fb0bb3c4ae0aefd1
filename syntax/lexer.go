package syntax

import "strings"

// pendingHeredoc is a queued heredoc descriptor, captured when a '<<'
// or '<<-' operator is parsed. Its body is read once the next newline
// is reached, in FIFO order relative to other heredocs on the same
// line.
type pendingHeredoc struct {
	delim    string
	tabs     bool // '<<-': strip leading tabs from delimiter and body lines
	quoted   bool // delimiter was quoted: body is stored literally
	redirect *Redirect
}

// byteAt is the current byte under the scan cursor, or 0 at EOF.
func (p *parser) byteAt(off int) byte {
	if off >= len(p.src) {
		return 0
	}
	return p.src[off]
}

func (p *parser) cur() byte { return p.byteAt(p.off) }

// advance moves the cursor forward by one byte, tracking line/col.
func (p *parser) advance() {
	if p.off >= len(p.src) {
		return
	}
	if p.src[p.off] == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	p.off++
}

func (p *parser) curPos() Pos {
	return Pos{Offset: p.off, Line: p.line, Col: p.col}
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

// skipBlanksAndContinuations removes blanks and unquoted "\<newline>"
// line continuations.
func (p *parser) skipBlanksAndContinuations() {
	for {
		switch {
		case isBlank(p.cur()):
			p.advance()
		case p.cur() == '\\' && p.byteAt(p.off+1) == '\n':
			p.advance()
			p.advance()
		default:
			return
		}
	}
}

// operators is the closed set of operator spellings the lexer
// recognises, tried longest-prefix first.
var operators = []struct {
	s   string
	tok token
}{
	{"<<-", dashHdoc},
	{"<<", shl},
	{"<>", rdrInOut},
	{"<&", dplIn},
	{"<", rdrIn},
	{">>", shr},
	{">|", clobberOut},
	{">&", dplOut},
	{">", rdrOut},
	{"&&", land},
	{"&", and},
	{"||", lor},
	{"|", or},
	{";;", dblSemicolon},
	{";&", semiAnd},
	{";", semicolon},
	{"(", lparen},
	{")", rparen},
}

// matchOperator recognises the longest operator prefix at the cursor,
// advancing past it and returning its token. It returns illegalTok if
// none matches.
func (p *parser) matchOperator() token {
	rest := p.src[p.off:]
	for _, op := range operators {
		if strings.HasPrefix(string(rest), op.s) {
			for range op.s {
				p.advance()
			}
			return op.tok
		}
	}
	return illegalTok
}

// next scans the next top-level token: an operator, a newline (after
// draining any queued heredoc bodies), end of input, or the start of a
// word (left for the parser's word-reading loop to consume via
// readWord).
func (p *parser) next() {
	for {
		if p.off >= len(p.src) {
			p.tok, p.pos = eof, p.curPos()
			return
		}
		if isBlank(p.cur()) {
			p.skipBlanksAndContinuations()
			continue
		}
		if p.cur() == '\\' && p.byteAt(p.off+1) == '\n' {
			p.skipBlanksAndContinuations()
			continue
		}
		if p.cur() == '#' {
			for p.off < len(p.src) && p.cur() != '\n' {
				p.advance()
			}
			continue
		}
		break
	}
	if p.cur() == '\n' {
		pos := p.curPos()
		p.advance()
		if len(p.pendingHdocs) > 0 {
			p.drainHeredocs()
		}
		p.tok, p.pos = newline, pos
		return
	}
	pos := p.curPos()
	if tok := p.matchOperator(); tok != illegalTok {
		p.tok, p.pos = tok, pos
		return
	}
	p.tok, p.pos = litWord, pos
}

// drainHeredocs reads each queued heredoc body, in FIFO order, up to a
// line exactly matching its delimiter (after tab-stripping for
// '<<-'). The body is attached to the heredoc's target redirection.
func (p *parser) drainHeredocs() {
	pending := p.pendingHdocs
	p.pendingHdocs = nil
	for _, h := range pending {
		var buf strings.Builder
		for {
			lineStart := p.off
			for p.off < len(p.src) && p.cur() != '\n' {
				p.advance()
			}
			line := string(p.src[lineStart:p.off])
			hadNL := p.off < len(p.src)
			if hadNL {
				p.advance() // consume '\n'
			}
			check := line
			if h.tabs {
				check = strings.TrimLeft(line, "\t")
			}
			if check == h.delim {
				break
			}
			if h.tabs {
				buf.WriteString(check)
			} else {
				buf.WriteString(line)
			}
			buf.WriteByte('\n')
			if !hadNL {
				p.incompletef(p.curPos(), "unterminated heredoc; expected %q", h.delim)
				break
			}
		}
		h.redirect.Buffer = buf.String()
		h.redirect.BufferQuoted = h.quoted
		h.redirect.HdocTabs = h.tabs
		h.redirect.EndPos = p.curPos()
	}
}

// isNameByte reports whether b can appear in a shell identifier.
func isNameByte(b byte, first bool) bool {
	if b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
		return true
	}
	if !first && b >= '0' && b <= '9' {
		return true
	}
	return false
}

// ValidName reports whether s is a valid shell identifier: a non-empty
// run of letters, digits, and underscores not starting with a digit.
func ValidName(s string) bool { return validName(s) }

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i], i == 0) {
			return false
		}
	}
	return true
}

// atWordEnd reports whether the cursor is at a position that ends a
// word: blank, newline, EOF, or the start of an operator.
func (p *parser) atWordEnd() bool {
	if p.off >= len(p.src) {
		return true
	}
	b := p.cur()
	if isBlank(b) || b == '\n' {
		return true
	}
	save := p.off
	saveLine, saveCol := p.line, p.col
	tok := p.matchOperator()
	p.off, p.line, p.col = save, saveLine, saveCol
	return tok != illegalTok
}
