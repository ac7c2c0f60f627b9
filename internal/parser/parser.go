package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vblike/internal/lexer"
	"vblike/internal/value"
)

// ParseError is a token that does not fit the grammar at its position.
type ParseError struct {
	Expected string
	Got      lexer.Token
	Msg      string
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error at %s: %s", e.Got.Pos, e.Msg) }

// Pos is where the offending token starts.
func (e *ParseError) Pos() lexer.Position { return e.Got.Pos }

// IsIncomplete reports whether err was caused by the input ending early, so
// that more input could make it parse.
func IsIncomplete(err error) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Got.Kind == lexer.EOF
	}
	var le *lexer.LexError
	return errors.As(err, &le) && le.AtEOF
}

type Parser struct {
	lx *lexer.Lexer
}

func New(lx *lexer.Lexer) *Parser { return &Parser{lx: lx} }

// Parse lexes and parses src.
func Parse(src string) (*Program, error) { return New(lexer.New(src)).ParseProgram() }

// bailout carries the first error out of the descent.
type bailout struct{ err error }

func (p *Parser) fail(err error) { panic(bailout{err}) }

func (p *Parser) failf(expected string, got lexer.Token, format string, args ...any) {
	p.fail(&ParseError{Expected: expected, Got: got, Msg: fmt.Sprintf(format, args...)})
}

// ParseProgram consumes the whole input. Parsing stops at the first error;
// no partial program is returned.
func (p *Parser) ParseProgram() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()

	prog = &Program{Body: Block{}}
	for p.lx.More() {
		if p.peek().Kind == lexer.Def {
			prog.Functions = append(prog.Functions, p.parseFunction())
			continue
		}
		prog.Body = append(prog.Body, p.parseStatement())
	}
	return prog, nil
}

func (p *Parser) peek() lexer.Token {
	t := p.lx.Peek()
	switch {
	case t.Kind == lexer.EOF && p.lx.More():
		// the lexer refused the next token; surface its error
		_, err := p.lx.Next()
		p.fail(err)
	case t.Kind == lexer.Illegal:
		p.fail(&lexer.LexError{Pos: t.Pos, Msg: fmt.Sprintf("unexpected character %q", t.Text)})
	}
	return t
}

func (p *Parser) next() lexer.Token {
	t := p.peek()
	if t.Kind == lexer.EOF {
		return t
	}
	tok, err := p.lx.Next()
	if err != nil {
		p.fail(err)
	}
	return tok
}

func (p *Parser) expect(kind lexer.Kind) lexer.Token {
	t := p.next()
	if t.Kind != kind {
		p.failf(kind.String(), t, "expected %s but got %s", kind, t)
	}
	return t
}

// def name(params) do statements end
func (p *Parser) parseFunction() *Function {
	def := p.expect(lexer.Def)
	name := p.expect(lexer.Identifier)
	p.expect(lexer.LParen)

	fn := &Function{Name: name.Text, Params: []string{}, Pos: def.Pos}
	seen := map[string]bool{}
	for {
		if p.peek().Kind == lexer.RParen {
			p.next()
			break
		}
		param := p.expect(lexer.Identifier)
		if seen[param.Text] {
			p.failf(lexer.Identifier.String(), param, "duplicate parameter %q in function %s", param.Text, fn.Name)
		}
		seen[param.Text] = true
		fn.Params = append(fn.Params, param.Text)

		if p.peek().Kind == lexer.RParen {
			p.next()
			break
		}
		p.expect(lexer.Comma)
	}

	p.expect(lexer.Do)
	fn.Body = p.parseBlock(lexer.End)
	p.expect(lexer.End)
	return fn
}

// parseBlock reads statements up to, not including, one of the stop kinds.
func (p *Parser) parseBlock(stops ...lexer.Kind) Block {
	block := Block{}
	for {
		t := p.peek()
		for _, k := range stops {
			if t.Kind == k {
				return block
			}
		}
		if t.Kind == lexer.EOF {
			p.failf(stops[0].String(), t, "expected %s but got %s", stops[0], t)
		}
		block = append(block, p.parseStatement())
	}
}

func (p *Parser) parseStatement() Stmt {
	t := p.peek()
	switch t.Kind {
	case lexer.Identifier:
		e := p.parseExpr()
		call, ok := e.(*Call)
		if !ok {
			p.failf("function call", t, "expected a function call statement starting at %s", t)
		}
		return &ExprStmt{Call: call}

	case lexer.Set:
		p.next()
		name := p.expect(lexer.Identifier)
		var indices []Expr
		for p.peek().Kind == lexer.LBracket {
			p.next()
			indices = append(indices, p.parseExpr())
			p.expect(lexer.RBracket)
		}
		p.expect(lexer.To)
		return &Assign{Name: name.Text, Indices: indices, Value: p.parseExpr(), Pos: t.Pos}

	case lexer.If:
		p.next()
		stmt := &If{Cond: p.parseExpr(), Pos: t.Pos}
		p.expect(lexer.Do)
		stmt.Then = p.parseBlock(lexer.End, lexer.Elif, lexer.Else)
		for {
			switch p.next().Kind {
			case lexer.Elif:
				br := &Branch{Cond: p.parseExpr()}
				p.expect(lexer.Do)
				br.Body = p.parseBlock(lexer.End, lexer.Elif, lexer.Else)
				stmt.ElseIfs = append(stmt.ElseIfs, br)
			case lexer.Else:
				p.expect(lexer.Do)
				stmt.Else = p.parseBlock(lexer.End)
				p.expect(lexer.End)
				return stmt
			default:
				// parseBlock only stops on elif, else or end
				return stmt
			}
		}

	case lexer.While:
		p.next()
		stmt := &While{Cond: p.parseExpr(), Pos: t.Pos}
		p.expect(lexer.Do)
		stmt.Body = p.parseBlock(lexer.End)
		p.expect(lexer.End)
		return stmt

	case lexer.Return:
		p.next()
		return &Return{Value: p.parseExpr(), Pos: t.Pos}
	}

	p.next()
	p.failf("statement", t, "unexpected token %s", t)
	return nil
}

// parseExpr reads a primary expression, an optional chain of indexers and an
// optional trailing operator whose right side is a whole expression. There is
// no precedence: a - b - c is a - (b - c).
func (p *Parser) parseExpr() Expr {
	left := p.parsePrimary()

	for p.peek().Kind == lexer.LBracket {
		open := p.next()
		idx := p.parseExpr()
		p.expect(lexer.RBracket)
		left = &Index{Base: left, Index: idx, Pos: open.Pos}
	}

	if p.peek().Kind == lexer.Operator {
		op := p.next()
		right := p.parseExpr()
		return &Binary{Op: op.Text, Left: left, Right: right, Pos: op.Pos}
	}
	return left
}

func (p *Parser) parsePrimary() Expr {
	t := p.next()
	switch t.Kind {
	case lexer.True:
		return &Literal{Value: value.Bool(true), Pos: t.Pos}
	case lexer.False:
		return &Literal{Value: value.Bool(false), Pos: t.Pos}
	case lexer.Number:
		return &Literal{Value: p.number(t), Pos: t.Pos}
	case lexer.String:
		return &Literal{Value: value.Str(t.Text), Pos: t.Pos}
	case lexer.Identifier:
		if p.peek().Kind != lexer.LParen {
			return &Variable{Name: t.Text, Pos: t.Pos}
		}
		p.next()
		call := &Call{Name: t.Text, Args: []Expr{}, Pos: t.Pos}
		for {
			if p.peek().Kind == lexer.RParen {
				p.next()
				break
			}
			call.Args = append(call.Args, p.parseExpr())
			if p.peek().Kind == lexer.RParen {
				p.next()
				break
			}
			p.expect(lexer.Comma)
		}
		return call
	case lexer.LParen:
		p.failf("expression", t, "parentheses cannot group expressions")
	}
	p.failf("expression", t, "expected expression but got %s", t)
	return nil
}

func (p *Parser) number(t lexer.Token) value.Value {
	whole, frac, isFloat := strings.Cut(t.Text, ".")
	if !digits(whole) || frac != "" && !digits(frac) {
		p.failf("number", t, "invalid number literal %q", t.Text)
	}
	if isFloat {
		f, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			p.failf("number", t, "invalid float literal %q", t.Text)
		}
		return value.Float(f)
	}
	i, err := strconv.ParseInt(t.Text, 10, 32)
	if err != nil {
		p.failf("number", t, "invalid integer literal %q", t.Text)
	}
	return value.Int(i)
}

// digits reports whether s is a non-empty run of ASCII digits.
func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
