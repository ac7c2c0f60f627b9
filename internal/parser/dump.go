package parser

import (
	"fmt"
	"io"
	"strings"
)

const indent = "    "

// Dump writes an indented outline of prog, one node per line.
func Dump(w io.Writer, prog *Program) {
	d := dumper{w: w}
	d.line(0, "Program")
	d.block(1, "Statements", prog.Body)
	for _, fn := range prog.Functions {
		d.line(1, "Function: %s(%s)", fn.Name, strings.Join(fn.Params, ", "))
		d.block(2, "Statements", fn.Body)
	}
}

type dumper struct{ w io.Writer }

func (d dumper) line(depth int, format string, args ...any) {
	fmt.Fprintf(d.w, "%s%s\n", strings.Repeat(indent, depth), fmt.Sprintf(format, args...))
}

func (d dumper) block(depth int, label string, b Block) {
	d.line(depth, label)
	for _, s := range b {
		d.stmt(depth+1, s)
	}
}

func (d dumper) stmt(depth int, s Stmt) {
	switch s := s.(type) {
	case *Return:
		d.line(depth, "Return")
		d.expr(depth+1, s.Value)
	case *Assign:
		d.line(depth, "Set: %s", s.Name)
		for _, ix := range s.Indices {
			d.line(depth+1, "At")
			d.expr(depth+2, ix)
		}
		d.expr(depth+1, s.Value)
	case *If:
		d.line(depth, "If")
		d.expr(depth+1, s.Cond)
		d.block(depth+1, "Then", s.Then)
		for _, br := range s.ElseIfs {
			d.line(depth+1, "Elif")
			d.expr(depth+2, br.Cond)
			d.block(depth+2, "Then", br.Body)
		}
		if s.Else != nil {
			d.block(depth+1, "Else", s.Else)
		}
	case *While:
		d.line(depth, "While")
		d.expr(depth+1, s.Cond)
		d.block(depth+1, "Do", s.Body)
	case *ExprStmt:
		d.line(depth, "InlineCall")
		d.expr(depth+1, s.Call)
	}
}

func (d dumper) expr(depth int, e Expr) {
	switch e := e.(type) {
	case *Literal:
		d.line(depth, "Literal: %s", e.Value)
	case *Variable:
		d.line(depth, "Variable: %s", e.Name)
	case *Call:
		d.line(depth, "Call: %s", e.Name)
		for _, a := range e.Args {
			d.expr(depth+1, a)
		}
	case *Index:
		d.line(depth, "Index")
		d.expr(depth+1, e.Base)
		d.expr(depth+1, e.Index)
	case *Binary:
		d.line(depth, "Operator: %s", e.Op)
		d.expr(depth+1, e.Left)
		d.expr(depth+1, e.Right)
	}
}
