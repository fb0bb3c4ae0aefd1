package syntax

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// PrintConfig controls how the printing of an AST node behaves.
type PrintConfig struct {
	Spaces int // 0 (default) for tabs, >0 for number of spaces
}

var printerFree = sync.Pool{
	New: func() interface{} {
		return &printer{bufWriter: bufio.NewWriter(nil)}
	},
}

// Fprint pretty-prints the given AST file to the given writer.
func (c PrintConfig) Fprint(w io.Writer, f *File) error {
	p := printerFree.Get().(*printer)
	p.reset()
	p.c = c
	p.bufWriter.Reset(w)
	p.commandList(f.Body)
	err := p.bufWriter.Flush()
	printerFree.Put(p)
	return err
}

// Fprint pretty-prints the given AST file to the given writer, using
// PrintConfig's default settings.
func Fprint(w io.Writer, f *File) error {
	return PrintConfig{}.Fprint(w, f)
}

type bufWriter interface {
	WriteByte(byte) error
	WriteString(string) (int, error)
	Reset(io.Writer)
	Flush() error
}

type printer struct {
	bufWriter

	c PrintConfig

	level int
}

func (p *printer) reset() {
	p.level = 0
}

func (p *printer) indent() {
	if p.c.Spaces > 0 {
		p.WriteString(strings.Repeat(" ", p.level*p.c.Spaces))
	} else {
		p.WriteString(strings.Repeat("\t", p.level))
	}
}

func (p *printer) commandList(cl *CommandList) {
	for i, item := range cl.Items {
		p.indent()
		p.command(item)
		switch cl.Seps[minInt(i, len(cl.Seps)-1)] {
		case SepBackground:
			p.WriteString(" &\n")
		case SepSequential:
			p.WriteByte('\n')
		default:
			p.WriteByte('\n')
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (p *printer) command(c Command) {
	switch x := c.(type) {
	case *SimpleCommand:
		p.simpleCommand(x)
	case *Pipeline:
		if x.Negated {
			p.WriteString("! ")
		}
		for i, stage := range x.Commands {
			if i > 0 {
				p.WriteString(" | ")
			}
			p.command(stage)
		}
	case *AndOrList:
		p.command(x.Left)
		if x.Op == AndStmt {
			p.WriteString(" && ")
		} else {
			p.WriteString(" || ")
		}
		p.command(x.Right)
	case *Subshell:
		p.WriteByte('(')
		p.level++
		p.WriteByte('\n')
		p.commandList(x.Body)
		p.level--
		p.indent()
		p.WriteByte(')')
	case *BraceGroup:
		p.WriteString("{\n")
		p.level++
		p.commandList(x.Body)
		p.level--
		p.indent()
		p.WriteByte('}')
	case *If:
		p.ifClause(x)
	case *While:
		p.WriteString("while ")
		p.inlineList(x.Cond)
		p.WriteString("; do\n")
		p.level++
		p.commandList(x.Body)
		p.level--
		p.indent()
		p.WriteString("done")
	case *Until:
		p.WriteString("until ")
		p.inlineList(x.Cond)
		p.WriteString("; do\n")
		p.level++
		p.commandList(x.Body)
		p.level--
		p.indent()
		p.WriteString("done")
	case *For:
		p.WriteString("for ")
		p.WriteString(x.Var)
		if x.Words != nil {
			p.WriteString(" in")
			for _, w := range x.Words {
				p.WriteByte(' ')
				p.word(w)
			}
		}
		p.WriteString("; do\n")
		p.level++
		p.commandList(x.Body)
		p.level--
		p.indent()
		p.WriteString("done")
	case *Case:
		p.WriteString("case ")
		p.word(x.Word)
		p.WriteString(" in\n")
		p.level++
		for _, item := range x.Items {
			p.indent()
			for i, pat := range item.Patterns {
				if i > 0 {
					p.WriteString(" | ")
				}
				p.word(pat)
			}
			p.WriteString(")\n")
			p.level++
			p.commandList(item.Body)
			p.level--
			p.indent()
			if item.Action == CaseFallThrough {
				p.WriteString(";&\n")
			} else {
				p.WriteString(";;\n")
			}
		}
		p.level--
		p.indent()
		p.WriteString("esac")
	case *FunctionDef:
		p.WriteString(x.Name)
		p.WriteString("() ")
		p.command(x.Body)
		p.redirects(x.Redirs)
	case *RedirectedCommand:
		p.command(x.Inner)
		p.redirects(x.Redirs)
	}
}

func (p *printer) ifClause(n *If) {
	p.WriteString("if ")
	p.inlineList(n.Cond)
	p.WriteString("; then\n")
	p.level++
	p.commandList(n.Then)
	p.level--
	for _, e := range n.Elifs {
		p.indent()
		p.WriteString("elif ")
		p.inlineList(e.Cond)
		p.WriteString("; then\n")
		p.level++
		p.commandList(e.Then)
		p.level--
	}
	if n.Else != nil {
		p.indent()
		p.WriteString("else\n")
		p.level++
		p.commandList(n.Else)
		p.level--
	}
	p.indent()
	p.WriteString("fi")
}

// inlineList prints a CommandList without indentation or trailing
// newlines, for use inside a one-line condition clause.
func (p *printer) inlineList(cl *CommandList) {
	for i, item := range cl.Items {
		if i > 0 {
			p.WriteString("; ")
		}
		p.command(item)
	}
}

func (p *printer) simpleCommand(c *SimpleCommand) {
	first := true
	for _, a := range c.Assigns {
		if !first {
			p.WriteByte(' ')
		}
		p.WriteString(a.Name)
		p.WriteByte('=')
		if a.Value != nil {
			p.word(a.Value)
		}
		first = false
	}
	for _, w := range c.Words {
		if !first {
			p.WriteByte(' ')
		}
		p.word(w)
		first = false
	}
	if len(c.Redirs) > 0 {
		if !first {
			p.WriteByte(' ')
		}
		p.redirects(c.Redirs)
	}
}

func (p *printer) redirects(rs []*Redirect) {
	for i, r := range rs {
		if i > 0 {
			p.WriteByte(' ')
		}
		if r.IoNumber >= 0 {
			p.WriteString(itoa(r.IoNumber))
		}
		p.WriteString(r.Op.String())
		switch r.Kind {
		case RedirFile:
			p.WriteByte(' ')
			p.word(r.Word)
		case RedirFd:
			p.WriteString(itoa(r.Fd))
		case RedirClose:
			p.WriteByte('-')
		case RedirBuffer:
			// The body itself is not reprinted; the delimiter keeps the
			// output a valid single-line rendering of the operator.
			p.WriteString(r.HdocDelim)
		}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func (p *printer) word(w *Word) {
	for _, part := range w.Parts {
		p.wordPart(part)
	}
}

func (p *printer) wordPart(wp WordPart) {
	switch x := wp.(type) {
	case *Lit:
		p.WriteString(x.Value)
	case *SglQuoted:
		p.WriteByte('\'')
		p.WriteString(x.Value)
		p.WriteByte('\'')
	case *DblQuoted:
		p.WriteByte('"')
		for _, part := range x.Parts {
			p.wordPart(part)
		}
		p.WriteByte('"')
	case *ParamExp:
		p.paramExp(x)
	case *CmdSubst:
		if x.Backticks {
			p.WriteByte('`')
			p.inlineList(x.Body)
			p.WriteByte('`')
		} else {
			p.WriteString("$(")
			p.inlineList(x.Body)
			p.WriteByte(')')
		}
	case *ArithmExp:
		p.WriteString("$((")
		p.WriteString(x.Raw)
		p.WriteString("))")
	}
}

func (p *printer) paramExp(x *ParamExp) {
	if x.Short {
		p.WriteByte('$')
		p.WriteString(x.Name)
		return
	}
	p.WriteString("${")
	if x.Modifier == ParamLength {
		p.WriteByte('#')
	}
	p.WriteString(x.Name)
	if x.Colon {
		p.WriteByte(':')
	}
	switch x.Modifier {
	case ParamUseDefault:
		p.WriteByte('-')
	case ParamAssignDefault:
		p.WriteByte('=')
	case ParamIndicateError:
		p.WriteByte('?')
	case ParamUseAlternate:
		p.WriteByte('+')
	case ParamRemovePrefix:
		p.WriteByte('#')
		if x.Greedy {
			p.WriteByte('#')
		}
	case ParamRemoveSuffix:
		p.WriteByte('%')
		if x.Greedy {
			p.WriteByte('%')
		}
	}
	if x.Arg != nil {
		p.word(x.Arg)
	}
	p.WriteByte('}')
}
