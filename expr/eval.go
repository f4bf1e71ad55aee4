package expr

import "fmt"

// Env binds variable names to values.
type Env map[string]float64

// Set binds name to v for subsequent evaluations.
func (e *Expr) Set(name string, v float64) *Expr {
	e.vars[name] = v
	return e
}

// Eval runs the program against the Expr's own bindings.
//
// Domain errors such as ln(-1) or 1/0 are not errors: they come back as NaN or Inf.
func (e *Expr) Eval() (float64, error) {
	return e.run(e.vars)
}

// EvalAt binds x and evaluates.
func (e *Expr) EvalAt(x float64) (float64, error) {
	e.vars["x"] = x
	return e.run(e.vars)
}

func (e *Expr) run(env Env) (float64, error) {
	if len(e.code) == 0 {
		return 0, ErrInvalidExpression
	}

	stack := e.stack[:0]
	for _, in := range e.code {
		switch in.Kind {
		case InstrPush:
			stack = append(stack, in.Value)
		case InstrLoad:
			v, ok := env[in.Name]
			if !ok {
				return 0, fmt.Errorf("%w: unbound variable %q", ErrInvalidExpression, in.Name)
			}
			stack = append(stack, v)
		case InstrOp:
			var ok bool
			stack, ok = in.Op.apply(stack)
			if !ok {
				return 0, fmt.Errorf("%w: missing operand for %q", ErrInvalidExpression, in.Op)
			}
		default:
			return 0, fmt.Errorf("%w: bad instruction", ErrInvalidExpression)
		}
	}
	e.stack = stack[:0]

	if len(stack) != 1 {
		return 0, fmt.Errorf("%w: %d values left on stack", ErrInvalidExpression, len(stack))
	}
	return stack[0], nil
}
