package lexer

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

const (
	EOF Kind = iota
	Illegal

	Identifier
	Number
	String

	True
	False

	LParen
	RParen
	LBracket
	RBracket
	Comma

	Set
	To
	If
	Elif
	Else
	While
	Do
	End
	Return
	Def

	Operator
)

var kindNames = [...]string{
	EOF:        "EOF",
	Illegal:    "Illegal",
	Identifier: "Identifier",
	Number:     "Number",
	String:     "String",
	True:       "true",
	False:      "false",
	LParen:     "(",
	RParen:     ")",
	LBracket:   "[",
	RBracket:   "]",
	Comma:      ",",
	Set:        "set",
	To:         "to",
	If:         "if",
	Elif:       "elif",
	Else:       "else",
	While:      "while",
	Do:         "do",
	End:        "end",
	Return:     "return",
	Def:        "def",
	Operator:   "Operator",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords in match order.
var keywords = []struct {
	word string
	kind Kind
}{
	{"set", Set},
	{"to", To},
	{"if", If},
	{"end", End},
	{"do", Do},
	{"true", True},
	{"false", False},
	{"while", While},
	{"else", Else},
	{"elif", Elif},
	{"def", Def},
	{"return", Return},
}

// operators are tried in order; longer spellings come before their prefixes.
var operators = []string{"<=", ">=", "!=", "+", "-", "*", "/", "<", ">", "=", "&", "|"}

// Position is a 1-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

func (t Token) String() string {
	if t.Kind == EOF {
		return fmt.Sprintf("end of input [%s]", t.Pos)
	}
	return fmt.Sprintf("(%s: '%s') [%s]", t.Kind, t.Text, t.Pos)
}

// LexError reports malformed input or a read past the end of input.
type LexError struct {
	Pos Position
	Msg string
	// AtEOF is set when more input could have completed the token.
	AtEOF bool
}

func (e *LexError) Error() string { return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Msg) }
