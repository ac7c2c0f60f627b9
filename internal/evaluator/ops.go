package evaluator

import "vblike/internal/value"

// binary applies op by looking at the operand types at run time. A string on
// either side turns + into concatenation of the rendered operands; ints use
// 32-bit arithmetic with truncating division; mixing in a float switches to
// float arithmetic; bools support = != & |.
func binary(op string, l, r value.Value) (value.Value, error) {
	_, ls := l.(value.Str)
	_, rs := r.(value.Str)
	if ls || rs {
		if op == "+" {
			return value.Str(value.Text(l) + value.Text(r)), nil
		}
		return nil, unsupported(op, l, r)
	}

	switch x := l.(type) {
	case value.Int:
		switch y := r.(type) {
		case value.Int:
			return intOp(op, x, y, l, r)
		case value.Float:
			return floatOp(op, float64(x), float64(y), l, r)
		}
	case value.Float:
		switch y := r.(type) {
		case value.Int:
			return floatOp(op, float64(x), float64(y), l, r)
		case value.Float:
			return floatOp(op, float64(x), float64(y), l, r)
		}
	case value.Bool:
		if y, ok := r.(value.Bool); ok {
			return boolOp(op, x, y, l, r)
		}
	}
	return nil, unsupported(op, l, r)
}

func unsupported(op string, l, r value.Value) error {
	return newError(TypeMismatch, "unsupported operation: %s %s %s", value.TypeName(l), op, value.TypeName(r))
}

func intOp(op string, x, y value.Int, l, r value.Value) (value.Value, error) {
	switch op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		if y == 0 {
			return nil, newError(DivisionByZero, "integer division by zero")
		}
		return x / y, nil
	case "=":
		return value.Bool(x == y), nil
	case "!=":
		return value.Bool(x != y), nil
	case "<":
		return value.Bool(x < y), nil
	case ">":
		return value.Bool(x > y), nil
	case "<=":
		return value.Bool(x <= y), nil
	case ">=":
		return value.Bool(x >= y), nil
	}
	return nil, unsupported(op, l, r)
}

func floatOp(op string, x, y float64, l, r value.Value) (value.Value, error) {
	switch op {
	case "+":
		return value.Float(x + y), nil
	case "-":
		return value.Float(x - y), nil
	case "*":
		return value.Float(x * y), nil
	case "/":
		if y == 0 {
			return nil, newError(DivisionByZero, "float division by zero")
		}
		return value.Float(x / y), nil
	case "=":
		return value.Bool(x == y), nil
	case "!=":
		return value.Bool(x != y), nil
	case "<":
		return value.Bool(x < y), nil
	case ">":
		return value.Bool(x > y), nil
	case "<=":
		return value.Bool(x <= y), nil
	case ">=":
		return value.Bool(x >= y), nil
	}
	return nil, unsupported(op, l, r)
}

// boolOp never short-circuits; both operands are already evaluated.
func boolOp(op string, x, y value.Bool, l, r value.Value) (value.Value, error) {
	switch op {
	case "=":
		return value.Bool(x == y), nil
	case "!=":
		return value.Bool(x != y), nil
	case "&":
		return x && y, nil
	case "|":
		return x || y, nil
	}
	return nil, unsupported(op, l, r)
}
