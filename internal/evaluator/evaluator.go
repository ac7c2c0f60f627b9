package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"vblike/internal/lexer"
	"vblike/internal/parser"
	"vblike/internal/value"
)

// Sink receives whole lines of text.
type Sink interface {
	WriteLine(line string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(line string)

func (f SinkFunc) WriteLine(line string) { f(line) }

// WriterSink writes each line to w followed by a newline.
func WriterSink(w io.Writer) Sink {
	return SinkFunc(func(line string) { fmt.Fprintln(w, line) })
}

// Discard drops every line.
var Discard Sink = SinkFunc(func(string) {})

// Policy decides what happens after a recoverable runtime error.
type Policy int

const (
	// Lenient reports undefined-variable and type-mismatch errors to the
	// diagnostics sink, substitutes null and keeps going.
	Lenient Policy = iota
	// Strict aborts the run on every runtime error.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// ParsePolicy accepts "lenient" or "strict"; empty means lenient.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	}
	return Lenient, fmt.Errorf("unknown policy %q (want lenient or strict)", s)
}

const (
	DefaultMaxDepth = 256
	// MaxDepthLimit keeps user recursion well inside the goroutine stack.
	MaxDepthLimit = 10000
)

type Options struct {
	Output      Sink // print output; defaults to Discard
	Diagnostics Sink // runtime error reports; defaults to Discard
	Policy      Policy
	MaxDepth    int   // user-call nesting limit; 0 means DefaultMaxDepth, capped at MaxDepthLimit
	MaxSteps    int64 // statements plus loop iterations per Run; 0 is unlimited
	Seed        uint64
	Logger      *slog.Logger
}

// Evaluator executes parsed programs. It is not safe for concurrent use.
type Evaluator struct {
	opts      Options
	out       Sink
	diag      Sink
	log       *slog.Logger
	rng       *rand.Rand
	frames    []*frame
	funcs     map[string]*parser.Function
	returning bool
	steps     int64
}

func New(opts Options) *Evaluator {
	if opts.Output == nil {
		opts.Output = Discard
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = Discard
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	opts.MaxDepth = min(opts.MaxDepth, MaxDepthLimit)
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Evaluator{
		opts:   opts,
		out:    opts.Output,
		diag:   opts.Diagnostics,
		log:    opts.Logger,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		frames: []*frame{newFrame("")},
		funcs:  map[string]*parser.Function{},
	}
}

// Register adds user functions. Nothing is registered if any name repeats
// or collides with a built-in.
func (ev *Evaluator) Register(fns []*parser.Function) error {
	seen := map[string]bool{}
	for _, fn := range fns {
		switch {
		case IsBuiltin(fn.Name):
			return &Error{Kind: DuplicateFunction, Msg: fmt.Sprintf("function %s shadows a built-in", fn.Name), Pos: fn.Pos}
		case seen[fn.Name] || ev.funcs[fn.Name] != nil:
			return &Error{Kind: DuplicateFunction, Msg: fmt.Sprintf("function %s is already defined", fn.Name), Pos: fn.Pos}
		}
		seen[fn.Name] = true
	}
	for _, fn := range fns {
		ev.funcs[fn.Name] = fn
	}
	return nil
}

// Run registers prog's functions and executes its top-level statements in
// the top-level frame. Variables persist across calls.
func (ev *Evaluator) Run(ctx context.Context, prog *parser.Program) error {
	if err := ev.Register(prog.Functions); err != nil {
		return err
	}
	ev.steps = 0
	defer func() { ev.returning = false }()
	return ev.execBlock(ctx, prog.Body)
}

// Call invokes a built-in or registered function by name.
func (ev *Evaluator) Call(ctx context.Context, name string, args ...value.Value) (value.Value, error) {
	return ev.call(ctx, name, args)
}

func (ev *Evaluator) call(ctx context.Context, name string, args []value.Value) (value.Value, error) {
	if b, ok := builtins[name]; ok {
		return b.call(ev, args)
	}
	fn, ok := ev.funcs[name]
	if !ok {
		return nil, newError(UndefinedFunction, "function %s does not exist", name)
	}
	if len(args) != len(fn.Params) {
		return nil, newError(ArityMismatch, "%s expects %d argument(s), got %d", name, len(fn.Params), len(args))
	}
	if ev.Depth() >= ev.opts.MaxDepth {
		return nil, newError(StackOverflow, "call depth exceeds %d in %s", ev.opts.MaxDepth, name)
	}

	f := ev.pushFrame(name)
	for i, p := range fn.Params {
		f.vars[p] = args[i]
	}
	err := ev.execBlock(ctx, fn.Body)
	ev.popFrame()
	if err != nil {
		return nil, err
	}
	if f.ret == nil {
		return value.Null{}, nil
	}
	return f.ret, nil
}

// errReported marks an operation skipped because an operand already stood in
// for a reported error.
var errReported = errors.New("operand already reported")

// lenient swallows err after reporting it when the policy allows it.
func (ev *Evaluator) lenient(err error) error {
	if ev.opts.Policy != Lenient {
		return err
	}
	if errors.Is(err, errReported) {
		return nil
	}
	var re *Error
	if errors.As(err, &re) && re.Kind.recoverable() {
		ev.diag.WriteLine(re.Error())
		return nil
	}
	return err
}

// tick charges one step against the budget.
func (ev *Evaluator) tick(ctx context.Context, pos lexer.Position) error {
	ev.steps++
	if ev.opts.MaxSteps > 0 && ev.steps > ev.opts.MaxSteps {
		return &Error{Kind: BudgetExceeded, Msg: fmt.Sprintf("step budget of %d exhausted", ev.opts.MaxSteps), Pos: pos}
	}
	if err := ctx.Err(); err != nil {
		return &Error{Kind: BudgetExceeded, Msg: "execution stopped: " + err.Error(), Pos: pos, Err: err}
	}
	return nil
}

// execBlock stops early once a return has run in the current frame.
func (ev *Evaluator) execBlock(ctx context.Context, b parser.Block) error {
	for _, s := range b {
		if err := ev.tick(ctx, s.Position()); err != nil {
			return err
		}
		if err := ev.exec(ctx, s); err != nil {
			return err
		}
		if ev.returning {
			return nil
		}
	}
	return nil
}

func (ev *Evaluator) exec(ctx context.Context, s parser.Stmt) error {
	switch s := s.(type) {
	case *parser.ExprStmt:
		_, err := ev.eval(ctx, s.Call)
		return err

	case *parser.Assign:
		v, err := ev.eval(ctx, s.Value)
		if err != nil {
			return err
		}
		if len(s.Indices) == 0 {
			ev.Set(s.Name, v)
			return nil
		}
		return ev.lenient(at(ev.assignIndexed(ctx, s, v), s.Pos))

	case *parser.If:
		ok, err := ev.cond(ctx, s.Cond)
		if err != nil {
			return err
		}
		if ok {
			return ev.execBlock(ctx, s.Then)
		}
		for _, br := range s.ElseIfs {
			ok, err := ev.cond(ctx, br.Cond)
			if err != nil {
				return err
			}
			if ok {
				return ev.execBlock(ctx, br.Body)
			}
		}
		if s.Else != nil {
			return ev.execBlock(ctx, s.Else)
		}
		return nil

	case *parser.While:
		for {
			if err := ev.tick(ctx, s.Pos); err != nil {
				return err
			}
			ok, err := ev.cond(ctx, s.Cond)
			if err != nil || !ok {
				return err
			}
			if err := ev.execBlock(ctx, s.Body); err != nil {
				return err
			}
			if ev.returning {
				return nil
			}
		}

	case *parser.Return:
		v, err := ev.eval(ctx, s.Value)
		if err != nil {
			return err
		}
		ev.current().ret = v
		ev.returning = true
		return nil
	}
	return fmt.Errorf("evaluator: unknown statement %T", s)
}

// assignIndexed walks base[i0][i1]...: every index but the last descends,
// the last one writes.
func (ev *Evaluator) assignIndexed(ctx context.Context, s *parser.Assign, v value.Value) error {
	cur, err := ev.Get(s.Name)
	if err != nil {
		return err
	}
	for i, ixExpr := range s.Indices {
		idx, bad, err := ev.operand(ctx, ixExpr)
		if err != nil {
			return err
		}
		if bad {
			return errReported
		}
		ix, ok := cur.(value.Indexable)
		if !ok {
			return &Error{Kind: TypeMismatch, Msg: fmt.Sprintf("cannot index %s", value.TypeName(cur)), Pos: ixExpr.Position()}
		}
		n, err := checkIndex(idx, ix.Len())
		if err != nil {
			return at(err, ixExpr.Position())
		}
		if i == len(s.Indices)-1 {
			ix.SetAt(n, v)
			return nil
		}
		cur = ix.At(n)
	}
	return nil
}

// cond evaluates a branch or loop condition, which must be a bool. Under the
// lenient policy a non-bool condition is reported and counts as false.
func (ev *Evaluator) cond(ctx context.Context, e parser.Expr) (bool, error) {
	v, bad, err := ev.operand(ctx, e)
	if err != nil || bad {
		return false, err
	}
	b, ok := v.(value.Bool)
	if !ok {
		err := &Error{Kind: TypeMismatch, Msg: fmt.Sprintf("condition must be bool, got %s", value.TypeName(v)), Pos: e.Position()}
		return false, ev.lenient(err)
	}
	return bool(b), nil
}

// eval evaluates e, applying the error policy at the innermost failing node.
func (ev *Evaluator) eval(ctx context.Context, e parser.Expr) (value.Value, error) {
	v, _, err := ev.operand(ctx, e)
	return v, err
}

// operand is eval that also reports whether the result is a null standing in
// for a reported error.
func (ev *Evaluator) operand(ctx context.Context, e parser.Expr) (value.Value, bool, error) {
	v, err := ev.evalExpr(ctx, e)
	if err != nil {
		if err = ev.lenient(at(err, e.Position())); err != nil {
			return nil, false, err
		}
		return value.Null{}, true, nil
	}
	return v, false, nil
}

func (ev *Evaluator) evalExpr(ctx context.Context, e parser.Expr) (value.Value, error) {
	switch e := e.(type) {
	case *parser.Literal:
		return e.Value, nil

	case *parser.Variable:
		return ev.Get(e.Name)

	case *parser.Call:
		args := make([]value.Value, len(e.Args))
		for i, a := range e.Args {
			v, err := ev.eval(ctx, a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return ev.call(ctx, e.Name, args)

	case *parser.Index:
		base, bad1, err := ev.operand(ctx, e.Base)
		if err != nil {
			return nil, err
		}
		idx, bad2, err := ev.operand(ctx, e.Index)
		if err != nil {
			return nil, err
		}
		if bad1 || bad2 {
			return nil, errReported
		}
		ix, ok := base.(value.Indexable)
		if !ok {
			return nil, newError(TypeMismatch, "cannot index %s", value.TypeName(base))
		}
		n, err := checkIndex(idx, ix.Len())
		if err != nil {
			return nil, err
		}
		return ix.At(n), nil

	case *parser.Binary:
		l, bad1, err := ev.operand(ctx, e.Left)
		if err != nil {
			return nil, err
		}
		r, bad2, err := ev.operand(ctx, e.Right)
		if err != nil {
			return nil, err
		}
		if bad1 || bad2 {
			return nil, errReported
		}
		return binary(e.Op, l, r)
	}
	return nil, fmt.Errorf("evaluator: unknown expression %T", e)
}
