package syntax

// token is the set of low-level lexical tokens the scanner recognises.
// Reserved words are a closed subset of token, recognised only at the
// grammar positions the parser marks as reserved-word positions;
// elsewhere the same spelling comes back as a plain literal word.
type token int

const (
	illegalTok token = iota
	eof
	newline
	litWord // a word made of a single literal run, a reserved-word candidate

	and  // &
	land // &&
	or   // |
	lor  // ||

	semicolon    // ;
	dblSemicolon // ;;
	semiAnd      // ;&
	lparen       // (
	rparen       // )

	rdrIn      // <
	rdrOut     // >
	shl        // <<
	dashHdoc   // <<-
	shr        // >>
	rdrInOut   // <>
	dplIn      // <&
	dplOut     // >&
	clobberOut // >|

	ifTok
	thenTok
	elifTok
	elseTok
	fiTok
	whileTok
	untilTok
	forTok
	doTok
	doneTok
	caseTok
	inTok
	esacTok
	lbraceTok
	rbraceTok
	bangTok
)

var tokNames = map[token]string{
	illegalTok: "illegal",
	eof:        "EOF",
	newline:    "newline",
	litWord:    "word",

	and:  "&",
	land: "&&",
	or:   "|",
	lor:  "||",

	semicolon:    ";",
	dblSemicolon: ";;",
	semiAnd:      ";&",
	lparen:       "(",
	rparen:       ")",

	rdrIn:      "<",
	rdrOut:     ">",
	shl:        "<<",
	dashHdoc:   "<<-",
	shr:        ">>",
	rdrInOut:   "<>",
	dplIn:      "<&",
	dplOut:     ">&",
	clobberOut: ">|",

	ifTok:     "if",
	thenTok:   "then",
	elifTok:   "elif",
	elseTok:   "else",
	fiTok:     "fi",
	whileTok:  "while",
	untilTok:  "until",
	forTok:    "for",
	doTok:     "do",
	doneTok:   "done",
	caseTok:   "case",
	inTok:     "in",
	esacTok:   "esac",
	lbraceTok: "{",
	rbraceTok: "}",
	bangTok:   "!",
}

func (t token) String() string { return tokNames[t] }

// reservedWords maps the closed set of reserved-word spellings to
// their token, for use only at the grammar positions where POSIX
// allows a reserved word to be recognised.
var reservedWords = map[string]token{
	"if":    ifTok,
	"then":  thenTok,
	"elif":  elifTok,
	"else":  elseTok,
	"fi":    fiTok,
	"while": whileTok,
	"until": untilTok,
	"for":   forTok,
	"do":    doTok,
	"done":  doneTok,
	"case":  caseTok,
	"in":    inTok,
	"esac":  esacTok,
	"{":     lbraceTok,
	"}":     rbraceTok,
	"!":     bangTok,
}

// redirOpByTok maps an operator token to the redirection operator it
// introduces.
var redirOpByTok = map[token]RedirOperator{
	rdrIn:      RdrIn,
	rdrOut:     RdrOut,
	shr:        AppOut,
	rdrInOut:   RdrInOut,
	dplIn:      DplIn,
	dplOut:     DplOut,
	clobberOut: ClobberOut,
	shl:        Hdoc,
	dashHdoc:   DashHdoc,
}

func isRedirOp(t token) bool {
	_, ok := redirOpByTok[t]
	return ok
}
