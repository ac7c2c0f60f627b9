package evaluator

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"vblike/internal/parser"
	"vblike/internal/value"
)

type lines []string

func (l *lines) WriteLine(s string) { *l = append(*l, s) }

type harness struct {
	ev   *Evaluator
	out  lines
	diag lines
}

func newHarness(opts Options) *harness {
	h := &harness{}
	opts.Output = &h.out
	opts.Diagnostics = &h.diag
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	h.ev = New(opts)
	return h
}

func (h *harness) run(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return h.ev.Run(context.Background(), prog)
}

func (h *harness) get(t *testing.T, name string) value.Value {
	t.Helper()
	v, err := h.ev.Get(name)
	if err != nil {
		t.Fatalf("Get(%s): %v", name, err)
	}
	return v
}

func TestSetThenRead(t *testing.T) {
	h := newHarness(Options{})
	if err := h.run(t, "set x to 5"); err != nil {
		t.Fatal(err)
	}
	if got := h.get(t, "x"); got != value.Int(5) {
		t.Fatalf("x = %#v, want Int(5)", got)
	}
}

func TestListIndexing(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, `
set a to list(1, 2, 3)
set a[1] to 9
set b to a[1]
set c to a[5]
print("unreachable")
`)
	if !errors.Is(err, IndexOutOfRange) {
		t.Fatalf("err = %v, want IndexOutOfRangeError", err)
	}
	var re *Error
	if !errors.As(err, &re) || re.Pos.Line != 5 {
		t.Fatalf("error position = %+v", re)
	}
	if got := h.get(t, "b"); got != value.Int(9) {
		t.Fatalf("b = %v, want 9", got)
	}
	if len(h.out) != 0 {
		t.Fatalf("execution continued after out-of-range read: %q", h.out)
	}
}

func TestNestedIndexedAssign(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, `
set grid to tuple(list(0, 0), list(0, 0))
set row to grid[1]
set grid[1][0] to 7
print(row)
print(grid)
`)
	if err != nil {
		t.Fatal(err)
	}
	want := lines{"[7, 0]", "([0, 0], [7, 0])"}
	if !reflect.DeepEqual(h.out, want) {
		t.Fatalf("out = %q, want %q", h.out, want)
	}
}

func TestUserFunctions(t *testing.T) {
	h := newHarness(Options{})
	src := `
def add(a, b) do
    return a + b
end
set r to add(2, 3)
`
	if err := h.run(t, src); err != nil {
		t.Fatal(err)
	}
	if got := h.get(t, "r"); got != value.Int(5) {
		t.Fatalf("add(2, 3) = %v", got)
	}

	v, err := h.ev.Call(context.Background(), "add", value.Int(2))
	if !errors.Is(err, ArityMismatch) || v != nil {
		t.Fatalf("add(2): %v, %v", v, err)
	}
	if h.ev.Depth() != 0 {
		t.Fatalf("depth = %d after failed call", h.ev.Depth())
	}
}

func TestFunctionsDoNotSeeCallerLocals(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, `
def peek() do
    return secret
end
set secret to 1
set got to peek()
`)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.get(t, "got"); got != (value.Null{}) {
		t.Fatalf("got = %v, want null", got)
	}
	if len(h.diag) != 1 || !strings.Contains(h.diag[0], "UndefinedVariableError") {
		t.Fatalf("diag = %q", h.diag)
	}
}

func TestReturnUnwindsNestedBlocks(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, `
def find(l, x) do
    set i to 0
    while i < length(l) do
        if l[i] = x do
            return i
        end
        set i to i + 1
    end
    return 0 - 1
end
def nothing() do
end
print(find(list(4, 5, 6), 5))
print(find(list(4), 9))
print(typeof(nothing()))
return 1
print("after top-level return")
`)
	if err != nil {
		t.Fatal(err)
	}
	want := lines{"1", "-1", "null"}
	if !reflect.DeepEqual(h.out, want) {
		t.Fatalf("out = %q, want %q", h.out, want)
	}
}

func TestWhileChecksBeforeEachIteration(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, `
set x to 0
set n to 0
while x < 3 do
    set x to x + 1
    set n to n + 1
end
set never to 0
while false do
    set never to 1
end
`)
	if err != nil {
		t.Fatal(err)
	}
	if h.get(t, "x") != value.Int(3) || h.get(t, "n") != value.Int(3) || h.get(t, "never") != value.Int(0) {
		t.Fatalf("x=%v n=%v never=%v", h.get(t, "x"), h.get(t, "n"), h.get(t, "never"))
	}
}

func TestIfElifElse(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, `
def classify(n) do
    if n < 0 do
        return "neg"
    elif n = 0 do
        return "zero"
    elif n < 10 do
        return "small"
    else do
        return "big"
    end
end
print(classify(0 - 3))
print(classify(0))
print(classify(3))
print(classify(30))
`)
	if err != nil {
		t.Fatal(err)
	}
	want := lines{"neg", "zero", "small", "big"}
	if !reflect.DeepEqual(h.out, want) {
		t.Fatalf("out = %q, want %q", h.out, want)
	}
}

func TestNoShortCircuit(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, `
def mark(v) do
    print("mark")
    return v
end
set a to false & mark(true)
set b to true | mark(false)
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.out) != 2 {
		t.Fatalf("right operands ran %d times, want 2", len(h.out))
	}
	if h.get(t, "a") != value.Bool(false) || h.get(t, "b") != value.Bool(true) {
		t.Fatalf("a=%v b=%v", h.get(t, "a"), h.get(t, "b"))
	}
}

func TestRecursion(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, `
def fact(n) do
    if n < 2 do
        return 1
    end
    return n * fact(n - 1)
end
print(fact(10))
`)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(h.out, lines{"3628800"}) {
		t.Fatalf("out = %q", h.out)
	}
}

func TestStackOverflow(t *testing.T) {
	h := newHarness(Options{MaxDepth: 50})
	err := h.run(t, `
def down(n) do
    return down(n + 1)
end
down(0)
`)
	if !errors.Is(err, StackOverflow) {
		t.Fatalf("err = %v, want StackOverflowError", err)
	}
	if h.ev.Depth() != 0 {
		t.Fatalf("frames leaked: depth %d", h.ev.Depth())
	}
}

func TestStepBudget(t *testing.T) {
	h := newHarness(Options{MaxSteps: 100})
	err := h.run(t, "set x to 0\nwhile true do set x to x + 1 end")
	if !errors.Is(err, BudgetExceeded) {
		t.Fatalf("err = %v, want BudgetExceededError", err)
	}
	if x := h.get(t, "x").(value.Int); x <= 0 || x >= 100 {
		t.Fatalf("x = %d", x)
	}
}

func TestDeadline(t *testing.T) {
	h := newHarness(Options{})
	prog, err := parser.Parse("while true do end")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = h.ev.Run(ctx, prog)
	if !errors.Is(err, BudgetExceeded) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestUndefinedFunction(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, "nope(1)\nprint(1)")
	if !errors.Is(err, UndefinedFunction) {
		t.Fatalf("err = %v, want UndefinedFunctionError", err)
	}
	if len(h.out) != 0 {
		t.Fatalf("ran past undefined function: %q", h.out)
	}
}

func TestDuplicateFunction(t *testing.T) {
	h := newHarness(Options{})
	err := h.run(t, "def f() do end\ndef f() do end")
	if !errors.Is(err, DuplicateFunction) {
		t.Fatalf("err = %v", err)
	}
	err = h.run(t, "def print(x) do end")
	if !errors.Is(err, DuplicateFunction) {
		t.Fatalf("shadowing a built-in: err = %v", err)
	}
	if err := h.run(t, "def g() do return 1 end"); err != nil {
		t.Fatal(err)
	}
	if err := h.run(t, "def g() do return 2 end"); !errors.Is(err, DuplicateFunction) {
		t.Fatalf("redefinition across runs: err = %v", err)
	}
}

func TestLenientPolicy(t *testing.T) {
	h := newHarness(Options{Policy: Lenient})
	err := h.run(t, `
set a to missing
print(typeof(a))
set b to 1 & 2
print(typeof(b))
if 3 do
    print("not reached")
end
print("done")
`)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(h.out, lines{"null", "null", "done"}) {
		t.Fatalf("out = %q", h.out)
	}
	if len(h.diag) != 3 {
		t.Fatalf("diag = %q, want 3 reports", h.diag)
	}
	for i, kind := range []string{"UndefinedVariableError at 2:10", "TypeMismatchError at 4:12", "TypeMismatchError at 6:4"} {
		if !strings.HasPrefix(h.diag[i], kind) {
			t.Errorf("diag[%d] = %q, want prefix %q", i, h.diag[i], kind)
		}
	}
}

func TestLenientReportsRootCauseOnce(t *testing.T) {
	h := newHarness(Options{Policy: Lenient})
	err := h.run(t, `
set a to missing + 1
set b to 1 + missing + 2
set c to missing[0]
if missing do
    print("not reached")
end
set l to list(0)
set l[missing] to 1
print(typeof(a))
`)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(h.out, lines{"null"}) {
		t.Fatalf("out = %q", h.out)
	}
	want := []string{"2:10", "3:14", "4:10", "5:4", "9:7"}
	if len(h.diag) != len(want) {
		t.Fatalf("diag = %q, want one report per line", h.diag)
	}
	for i, p := range want {
		if !strings.HasPrefix(h.diag[i], "UndefinedVariableError at "+p) {
			t.Errorf("diag[%d] = %q, want UndefinedVariableError at %s", i, h.diag[i], p)
		}
	}
	if h.get(t, "b") != (value.Null{}) || h.get(t, "c") != (value.Null{}) {
		t.Fatalf("b = %v, c = %v", h.get(t, "b"), h.get(t, "c"))
	}
}

func TestMaxDepthIsClamped(t *testing.T) {
	ev := New(Options{MaxDepth: MaxDepthLimit * 10})
	if ev.opts.MaxDepth != MaxDepthLimit {
		t.Fatalf("MaxDepth = %d, want %d", ev.opts.MaxDepth, MaxDepthLimit)
	}
}

func TestStrictPolicy(t *testing.T) {
	h := newHarness(Options{Policy: Strict})
	err := h.run(t, "set a to missing\nprint(1)")
	var re *Error
	if !errors.As(err, &re) || re.Kind != UndefinedVariable || re.Pos.Line != 1 {
		t.Fatalf("err = %v", err)
	}
	if len(h.out) != 0 || len(h.diag) != 0 {
		t.Fatalf("out = %q diag = %q", h.out, h.diag)
	}
}

func TestPolicyParse(t *testing.T) {
	for in, want := range map[string]Policy{"": Lenient, "lenient": Lenient, "strict": Strict} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("loose"); err == nil {
		t.Error("ParsePolicy accepted an unknown policy")
	}
}
