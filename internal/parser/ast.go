package parser

import (
	"vblike/internal/lexer"
	"vblike/internal/value"
)

// Program is the root AST node.
type Program struct {
	Body      Block
	Functions []*Function
}

// Function is a top-level def block.
type Function struct {
	Name   string
	Params []string
	Body   Block
	Pos    lexer.Position
}

// Block is a statement sequence.
type Block []Stmt

// Stmt is a marker interface.
type Stmt interface {
	Position() lexer.Position
	isStmt()
}

// Expr is a marker interface for expressions.
type Expr interface {
	Position() lexer.Position
	isExpr()
}

// Expressions

type Literal struct {
	Value value.Value
	Pos   lexer.Position
}

type Variable struct {
	Name string
	Pos  lexer.Position
}

type Call struct {
	Name string
	Args []Expr
	Pos  lexer.Position
}

// Index is Base[Index]; a[i][j] nests as Index{Index{a, i}, j}.
type Index struct {
	Base  Expr
	Index Expr
	Pos   lexer.Position
}

// Binary operands chain to the right: a + b * c is a + (b * c).
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   lexer.Position
}

func (e *Literal) Position() lexer.Position  { return e.Pos }
func (e *Variable) Position() lexer.Position { return e.Pos }
func (e *Call) Position() lexer.Position     { return e.Pos }
func (e *Index) Position() lexer.Position    { return e.Pos }
func (e *Binary) Position() lexer.Position   { return e.Pos }

func (*Literal) isExpr()  {}
func (*Variable) isExpr() {}
func (*Call) isExpr()     {}
func (*Index) isExpr()    {}
func (*Binary) isExpr()   {}

// Statements

type Return struct {
	Value Expr
	Pos   lexer.Position
}

// Assign is set Name[Indices...] to Value.
type Assign struct {
	Name    string
	Indices []Expr
	Value   Expr
	Pos     lexer.Position
}

// Branch is a condition with the block it guards.
type Branch struct {
	Cond Expr
	Body Block
}

type If struct {
	Cond    Expr
	Then    Block
	ElseIfs []*Branch
	Else    Block // nil when there is no else
	Pos     lexer.Position
}

type While struct {
	Cond Expr
	Body Block
	Pos  lexer.Position
}

// ExprStmt is a call evaluated for its side effects.
type ExprStmt struct {
	Call *Call
}

func (s *Return) Position() lexer.Position   { return s.Pos }
func (s *Assign) Position() lexer.Position   { return s.Pos }
func (s *If) Position() lexer.Position       { return s.Pos }
func (s *While) Position() lexer.Position    { return s.Pos }
func (s *ExprStmt) Position() lexer.Position { return s.Call.Pos }

func (*Return) isStmt()   {}
func (*Assign) isStmt()   {}
func (*If) isStmt()       {}
func (*While) isStmt()    {}
func (*ExprStmt) isStmt() {}
