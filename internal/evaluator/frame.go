package evaluator

import (
	"log/slog"

	"vblike/internal/value"
)

// frame is the variable scope of one call, plus its return slot. The bottom
// frame holds top-level variables and lives as long as the Evaluator.
type frame struct {
	function string
	vars     map[string]value.Value
	ret      value.Value
}

func newFrame(function string) *frame {
	return &frame{function: function, vars: map[string]value.Value{}}
}

func (ev *Evaluator) current() *frame { return ev.frames[len(ev.frames)-1] }

// Depth is the number of active user-function calls.
func (ev *Evaluator) Depth() int { return len(ev.frames) - 1 }

func (ev *Evaluator) pushFrame(function string) *frame {
	f := newFrame(function)
	ev.frames = append(ev.frames, f)
	ev.log.Debug("push stack frame",
		slog.String("function", function),
		slog.Int("stack-size", len(ev.frames)))
	return f
}

// popFrame drops the innermost frame and clears the return flag. The
// top-level frame is never popped.
func (ev *Evaluator) popFrame() *frame {
	if len(ev.frames) == 1 {
		panic("evaluator: pop of top-level frame")
	}
	f := ev.current()
	ev.frames = ev.frames[:len(ev.frames)-1]
	ev.returning = false
	ev.log.Debug("pop stack frame",
		slog.String("function", f.function),
		slog.Int("stack-size", len(ev.frames)))
	return f
}

// Get reads a variable of the current frame. Callers never see outer frames.
func (ev *Evaluator) Get(name string) (value.Value, error) {
	v, ok := ev.current().vars[name]
	if !ok {
		return nil, newError(UndefinedVariable, "variable %s does not exist in this context", name)
	}
	return v, nil
}

// Set binds a variable in the current frame.
func (ev *Evaluator) Set(name string, v value.Value) { ev.current().vars[name] = v }
