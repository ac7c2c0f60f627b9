package lexer

import (
	"strings"
	"unicode/utf8"
)

// cursor is a read position into the comment-free source.
type cursor struct {
	off  int
	line int
	col  int
}

func (c cursor) pos() Position { return Position{Line: c.line, Column: c.col} }

// Lexer hands out tokens one at a time. Peeking never moves the cursor.
type Lexer struct {
	src string
	cur cursor
}

// New strips comments from src and positions the lexer at its first token.
func New(src string) *Lexer {
	l := &Lexer{src: StripComments(src), cur: cursor{line: 1, col: 1}}
	l.cur = l.skipSpace(l.cur)
	return l
}

// StripComments removes every ' comment up to, but not including, the end of
// its line. Quotes are not special: a ' inside a string literal starts a
// comment too.
func StripComments(src string) string {
	if !strings.ContainsRune(src, '\'') {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); i++ {
		if src[i] == '\'' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteByte(src[i])
	}
	return b.String()
}

// More reports whether any token is left.
func (l *Lexer) More() bool { return l.skipSpace(l.cur).off < len(l.src) }

// Next consumes and returns the next token. Calling it when More is false
// is an error.
func (l *Lexer) Next() (Token, error) {
	tok, next, err := l.scan(l.cur)
	if err != nil {
		return tok, err
	}
	l.cur = l.skipSpace(next)
	return tok, nil
}

// Peek returns the next token without consuming it. At end of input, or when
// the next token cannot be scanned, the result has kind EOF.
func (l *Lexer) Peek() Token {
	tok, _, err := l.scan(l.cur)
	if err != nil {
		return Token{Kind: EOF, Pos: l.skipSpace(l.cur).pos()}
	}
	return tok
}

// PeekKind is Peek().Kind.
func (l *Lexer) PeekKind() Kind { return l.Peek().Kind }

// Pos is the position of the next unread character.
func (l *Lexer) Pos() Position { return l.skipSpace(l.cur).pos() }

func (l *Lexer) scan(c cursor) (Token, cursor, error) {
	c = l.skipSpace(c)
	start := c.pos()
	if c.off >= len(l.src) {
		return Token{Kind: EOF, Pos: start}, c, &LexError{Pos: start, Msg: "token requested past end of input", AtEOF: true}
	}
	ch := l.src[c.off]

	for _, kw := range keywords {
		if l.matchWord(c.off, kw.word) {
			return Token{Kind: kw.kind, Text: kw.word, Pos: start}, l.advance(c, len(kw.word)), nil
		}
	}

	switch {
	case isLetter(ch):
		end := c.off + 1
		for end < len(l.src) && isIdentPart(l.src[end]) {
			end++
		}
		return Token{Kind: Identifier, Text: l.src[c.off:end], Pos: start}, l.advance(c, end-c.off), nil
	case isDigit(ch):
		end := c.off + 1
		for end < len(l.src) && !isWordBreak(l.src[end]) {
			end++
		}
		return Token{Kind: Number, Text: l.src[c.off:end], Pos: start}, l.advance(c, end-c.off), nil
	}

	switch ch {
	case ',':
		return Token{Kind: Comma, Text: ",", Pos: start}, l.advance(c, 1), nil
	case '(':
		return Token{Kind: LParen, Text: "(", Pos: start}, l.advance(c, 1), nil
	case ')':
		return Token{Kind: RParen, Text: ")", Pos: start}, l.advance(c, 1), nil
	case '[':
		return Token{Kind: LBracket, Text: "[", Pos: start}, l.advance(c, 1), nil
	case ']':
		return Token{Kind: RBracket, Text: "]", Pos: start}, l.advance(c, 1), nil
	case '"':
		closing := strings.IndexByte(l.src[c.off+1:], '"')
		if closing < 0 {
			return Token{Kind: Illegal, Text: l.src[c.off:], Pos: start}, c, &LexError{Pos: start, Msg: "unterminated string literal", AtEOF: true}
		}
		text := l.src[c.off+1 : c.off+1+closing]
		return Token{Kind: String, Text: text, Pos: start}, l.advance(c, closing+2), nil
	}

	for _, op := range operators {
		if strings.HasPrefix(l.src[c.off:], op) {
			return Token{Kind: Operator, Text: op, Pos: start}, l.advance(c, len(op)), nil
		}
	}

	_, size := utf8.DecodeRuneInString(l.src[c.off:])
	return Token{Kind: Illegal, Text: l.src[c.off : c.off+size], Pos: start}, l.advance(c, size), nil
}

// matchWord reports whether word starts at off and is not directly followed
// by another identifier character.
func (l *Lexer) matchWord(off int, word string) bool {
	if !strings.HasPrefix(l.src[off:], word) {
		return false
	}
	end := off + len(word)
	return end >= len(l.src) || !isIdentPart(l.src[end])
}

func (l *Lexer) skipSpace(c cursor) cursor {
	for c.off < len(l.src) && isSpace(l.src[c.off]) {
		c = l.advance(c, 1)
	}
	return c
}

func (l *Lexer) advance(c cursor, n int) cursor {
	for i := 0; i < n && c.off < len(l.src); i++ {
		b := l.src[c.off]
		c.off++
		switch {
		case b == '\n':
			c.line++
			c.col = 1
		case b&0xC0 != 0x80:
			c.col++
		}
	}
	return c
}

// Tokens lexes all of src.
func Tokens(src string) ([]Token, error) {
	l := New(src)
	var out []Token
	for l.More() {
		tok, err := l.Next()
		if err != nil {
			return out, err
		}
		out = append(out, tok)
	}
	return out, nil
}

// Render turns tokens back into source text, one space between tokens.
func Render(toks []Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		if t.Kind == String {
			b.WriteByte('"')
			b.WriteString(t.Text)
			b.WriteByte('"')
			continue
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\r' || b == '\n' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isLetter(b byte) bool { return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') }

func isIdentPart(b byte) bool { return isLetter(b) || isDigit(b) || b == '_' }

func isWordBreak(b byte) bool { return isSpace(b) || strings.IndexByte(`()[],+-*/<>=!&|"`, b) >= 0 }
