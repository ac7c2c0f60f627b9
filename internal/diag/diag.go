// Package diag renders positioned errors as source snippets with a caret
// under the offending column:
//
//	PARSE ERROR in demo.vb at 2:7: expected to but got (Number: '5') [2:7]
//
//	   1 | set a to 1
//	   2 | set x 5
//	     |       ^
//	   3 | print(x)
package diag

import (
	"errors"
	"fmt"
	"strings"

	"vblike/internal/evaluator"
	"vblike/internal/lexer"
	"vblike/internal/parser"
)

// Render formats err against src. Errors without a position render as
// err.Error(). name may be empty.
func Render(err error, name, src string) string {
	var (
		le *lexer.LexError
		pe *parser.ParseError
		re *evaluator.Error
	)
	switch {
	case errors.As(err, &le):
		return snippet(src, "LEXICAL ERROR", name, le.Pos, le.Msg)
	case errors.As(err, &pe):
		return snippet(src, "PARSE ERROR", name, pe.Pos(), pe.Msg)
	case errors.As(err, &re) && re.Pos != (lexer.Position{}):
		return snippet(src, "RUNTIME ERROR", name, re.Pos, re.Kind.String()+": "+re.Msg)
	}
	return err.Error()
}

func snippet(src, header, name string, pos lexer.Position, msg string) string {
	lines := strings.Split(src, "\n")
	line := min(max(pos.Line, 1), len(lines))
	col := max(pos.Column, 1)

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	show := func(n int) {
		fmt.Fprintf(&b, "%4d | %s\n", n, strings.TrimRight(lines[n-1], "\r"))
	}
	if line > 1 {
		show(line - 1)
	}
	show(line)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		show(line + 1)
	}
	return b.String()
}
