package evaluator

import (
	"errors"
	"math"
	"testing"

	"vblike/internal/value"
)

func TestBinary(t *testing.T) {
	tests := []struct {
		op   string
		l, r value.Value
		want value.Value
	}{
		{"+", value.Int(2), value.Int(3), value.Int(5)},
		{"-", value.Int(2), value.Int(3), value.Int(-1)},
		{"*", value.Int(4), value.Int(3), value.Int(12)},
		{"/", value.Int(7), value.Int(2), value.Int(3)},
		{"/", value.Int(-7), value.Int(2), value.Int(-3)},
		{"+", value.Int(math.MaxInt32), value.Int(1), value.Int(math.MinInt32)},
		{"=", value.Int(1), value.Int(1), value.Bool(true)},
		{"!=", value.Int(1), value.Int(1), value.Bool(false)},
		{"<", value.Int(1), value.Int(2), value.Bool(true)},
		{">", value.Int(1), value.Int(2), value.Bool(false)},
		{"<=", value.Int(2), value.Int(2), value.Bool(true)},
		{">=", value.Int(1), value.Int(2), value.Bool(false)},
		{"+", value.Int(1), value.Float(0.5), value.Float(1.5)},
		{"/", value.Float(1), value.Int(4), value.Float(0.25)},
		{"<", value.Float(1.5), value.Float(2), value.Bool(true)},
		{"+", value.Str("a"), value.Int(1), value.Str("a1")},
		{"+", value.Bool(true), value.Str("!"), value.Str("true!")},
		{"+", value.Str("n"), value.Null{}, value.Str("nnull")},
		{"=", value.Bool(true), value.Bool(true), value.Bool(true)},
		{"!=", value.Bool(true), value.Bool(false), value.Bool(true)},
		{"&", value.Bool(true), value.Bool(false), value.Bool(false)},
		{"|", value.Bool(false), value.Bool(true), value.Bool(true)},
	}
	for _, tt := range tests {
		got, err := binary(tt.op, tt.l, tt.r)
		if err != nil {
			t.Errorf("%v %s %v: %v", tt.l, tt.op, tt.r, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%v %s %v = %#v, want %#v", tt.l, tt.op, tt.r, got, tt.want)
		}
	}
}

func TestBinaryErrors(t *testing.T) {
	tests := []struct {
		op   string
		l, r value.Value
		kind ErrorKind
	}{
		{"-", value.Str("a"), value.Int(1), TypeMismatch},
		{"=", value.Str("a"), value.Str("a"), TypeMismatch},
		{"&", value.Int(1), value.Int(1), TypeMismatch},
		{"+", value.Int(1), value.Bool(true), TypeMismatch},
		{"<", value.Bool(true), value.Bool(false), TypeMismatch},
		{"+", value.Null{}, value.Int(1), TypeMismatch},
		{"+", value.NewList(), value.NewList(), TypeMismatch},
		{"/", value.Int(1), value.Int(0), DivisionByZero},
		{"/", value.Float(1), value.Int(0), DivisionByZero},
	}
	for _, tt := range tests {
		_, err := binary(tt.op, tt.l, tt.r)
		if !errors.Is(err, tt.kind) {
			t.Errorf("%v %s %v: err = %v, want %v", tt.l, tt.op, tt.r, err, tt.kind)
		}
	}
}
