package evaluator

import (
	"errors"
	"fmt"

	"vblike/internal/lexer"
)

// ErrorKind classifies runtime errors. Kinds are errors themselves so callers
// can test with errors.Is(err, evaluator.IndexOutOfRange).
type ErrorKind int

const (
	UndefinedVariable ErrorKind = iota + 1
	UndefinedFunction
	ArityMismatch
	IndexOutOfRange
	TypeMismatch
	DivisionByZero
	DuplicateFunction
	StackOverflow
	BudgetExceeded
)

var kindNames = map[ErrorKind]string{
	UndefinedVariable: "UndefinedVariableError",
	UndefinedFunction: "UndefinedFunctionError",
	ArityMismatch:     "ArityMismatchError",
	IndexOutOfRange:   "IndexOutOfRangeError",
	TypeMismatch:      "TypeMismatchError",
	DivisionByZero:    "DivisionByZeroError",
	DuplicateFunction: "DuplicateFunctionError",
	StackOverflow:     "StackOverflowError",
	BudgetExceeded:    "BudgetExceededError",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) Error() string { return k.String() }

// recoverable kinds may be reported and skipped under the Lenient policy.
func (k ErrorKind) recoverable() bool { return k == UndefinedVariable || k == TypeMismatch }

// Error is a runtime failure at a source position.
type Error struct {
	Kind ErrorKind
	Msg  string
	Pos  lexer.Position
	Err  error
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Pos == (lexer.Position{}) {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// at fills in the position of a runtime error raised without one.
func at(err error, pos lexer.Position) error {
	var re *Error
	if errors.As(err, &re) && re.Pos == (lexer.Position{}) {
		re.Pos = pos
	}
	return err
}
