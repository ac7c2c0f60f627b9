// Package value defines the dynamic values scripts compute with.
package value

import (
	"strconv"
	"strings"
)

// Value is one of Int, Float, Str, Bool, *Tuple, *List or Null.
type Value interface {
	String() string
	isValue()
}

type (
	Int   int32
	Float float64
	Str   string
	Bool  bool
	Null  struct{}
)

// Tuple is a fixed-size sequence. It is shared by reference.
type Tuple struct{ Items []Value }

// List is a growable sequence. It is shared by reference.
type List struct{ Items []Value }

func (Int) isValue()    {}
func (Float) isValue()  {}
func (Str) isValue()    {}
func (Bool) isValue()   {}
func (Null) isValue()   {}
func (*Tuple) isValue() {}
func (*List) isValue()  {}

func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Str) String() string   { return strconv.Quote(string(v)) }
func (v Bool) String() string  { return strconv.FormatBool(bool(v)) }
func (Null) String() string    { return "null" }
func (t *Tuple) String() string {
	return "(" + join(t.Items) + ")"
}
func (l *List) String() string {
	return "[" + join(l.Items) + "]"
}

func join(items []Value) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}

// Text renders v the way print and string concatenation see it: like String,
// except a top-level string is not quoted.
func Text(v Value) string {
	if s, ok := v.(Str); ok {
		return string(s)
	}
	if v == nil {
		return Null{}.String()
	}
	return v.String()
}

// TypeName is the name the typeof built-in reports.
func TypeName(v Value) string {
	switch v.(type) {
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "string"
	case *Tuple:
		return "tuple"
	case *List:
		return "list"
	case Bool:
		return "bool"
	default:
		return "null"
	}
}

// Indexable is the element access shared by tuples and lists. Callers check
// bounds against Len before calling At or SetAt.
type Indexable interface {
	Value
	Len() int
	At(i int) Value
	SetAt(i int, v Value)
}

func NewTuple(items ...Value) *Tuple {
	cp := make([]Value, len(items))
	copy(cp, items)
	return &Tuple{Items: cp}
}

func NewList(items ...Value) *List {
	cp := make([]Value, len(items))
	copy(cp, items)
	return &List{Items: cp}
}

func (t *Tuple) Len() int             { return len(t.Items) }
func (t *Tuple) At(i int) Value       { return t.Items[i] }
func (t *Tuple) SetAt(i int, v Value) { t.Items[i] = v }

func (l *List) Len() int             { return len(l.Items) }
func (l *List) At(i int) Value       { return l.Items[i] }
func (l *List) SetAt(i int, v Value) { l.Items[i] = v }

// Push appends v.
func (l *List) Push(v Value) { l.Items = append(l.Items, v) }
