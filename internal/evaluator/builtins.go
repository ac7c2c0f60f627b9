package evaluator

import (
	"unicode/utf8"

	"vblike/internal/value"
)

type builtin struct {
	name  string
	arity int // -1 accepts any count
	impl  func(ev *Evaluator, args []value.Value) (value.Value, error)
}

func (b builtin) call(ev *Evaluator, args []value.Value) (value.Value, error) {
	if b.arity >= 0 && len(args) != b.arity {
		return nil, newError(ArityMismatch, "%s expects %d argument(s), got %d", b.name, b.arity, len(args))
	}
	return b.impl(ev, args)
}

var builtins = map[string]builtin{}

func define(name string, arity int, impl func(ev *Evaluator, args []value.Value) (value.Value, error)) {
	builtins[name] = builtin{name: name, arity: arity, impl: impl}
}

// IsBuiltin reports whether name is reserved by a built-in function.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func init() {
	define("print", 1, func(ev *Evaluator, args []value.Value) (value.Value, error) {
		ev.out.WriteLine(value.Text(args[0]))
		return value.Null{}, nil
	})
	define("tuple", -1, func(_ *Evaluator, args []value.Value) (value.Value, error) {
		return value.NewTuple(args...), nil
	})
	define("list", -1, func(_ *Evaluator, args []value.Value) (value.Value, error) {
		return value.NewList(args...), nil
	})
	define("length", 1, func(_ *Evaluator, args []value.Value) (value.Value, error) {
		switch x := args[0].(type) {
		case value.Str:
			return value.Int(utf8.RuneCountInString(string(x))), nil
		case value.Indexable:
			return value.Int(x.Len()), nil
		}
		return nil, newError(TypeMismatch, "length of %s", value.TypeName(args[0]))
	})
	define("at", 2, func(_ *Evaluator, args []value.Value) (value.Value, error) {
		if s, ok := args[0].(value.Str); ok {
			runes := []rune(string(s))
			i, err := checkIndex(args[1], len(runes))
			if err != nil {
				return nil, err
			}
			return value.Str(runes[i]), nil
		}
		ix, ok := args[0].(value.Indexable)
		if !ok {
			return nil, newError(TypeMismatch, "cannot index %s", value.TypeName(args[0]))
		}
		i, err := checkIndex(args[1], ix.Len())
		if err != nil {
			return nil, err
		}
		return ix.At(i), nil
	})
	define("setAt", 3, func(_ *Evaluator, args []value.Value) (value.Value, error) {
		ix, ok := args[0].(value.Indexable)
		if !ok {
			return nil, newError(TypeMismatch, "cannot assign into %s", value.TypeName(args[0]))
		}
		i, err := checkIndex(args[1], ix.Len())
		if err != nil {
			return nil, err
		}
		ix.SetAt(i, args[2])
		return value.Null{}, nil
	})
	define("push", 2, func(_ *Evaluator, args []value.Value) (value.Value, error) {
		l, ok := args[0].(*value.List)
		if !ok {
			return nil, newError(TypeMismatch, "push needs a list, got %s", value.TypeName(args[0]))
		}
		l.Push(args[1])
		return value.Null{}, nil
	})
	// rand(min, max) draws from [min, max); an empty range yields min.
	define("rand", 2, func(ev *Evaluator, args []value.Value) (value.Value, error) {
		lo, ok1 := args[0].(value.Int)
		hi, ok2 := args[1].(value.Int)
		if !ok1 || !ok2 {
			return nil, newError(TypeMismatch, "rand(%s, %s)", value.TypeName(args[0]), value.TypeName(args[1]))
		}
		if hi <= lo {
			return lo, nil
		}
		return value.Int(int64(lo) + ev.rng.Int64N(int64(hi)-int64(lo))), nil
	})
	define("typeof", 1, func(_ *Evaluator, args []value.Value) (value.Value, error) {
		return value.Str(value.TypeName(args[0])), nil
	})
}

// checkIndex converts idx to a position inside [0, length).
func checkIndex(idx value.Value, length int) (int, error) {
	n, ok := idx.(value.Int)
	if !ok {
		return 0, newError(TypeMismatch, "index must be int, got %s", value.TypeName(idx))
	}
	if n < 0 || int(n) >= length {
		return 0, newError(IndexOutOfRange, "index %d is out of range for length %d", n, length)
	}
	return int(n), nil
}
