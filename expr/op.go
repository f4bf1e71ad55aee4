package expr

import "math"

// OpCode identifies an operator or function in a compiled program.
type OpCode uint8

const (
	opNone OpCode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpNeg
	OpSin
	OpCos
	OpTan
	OpLn
	OpSqrt
)

type opClass uint8

const (
	classBinary opClass = iota + 1
	classPrefix
	classFunc
)

type opInfo struct {
	name  string
	class opClass
	arity int
	prec  int

	unary  func(a float64) float64
	binary func(a, b float64) float64
}

var opTable = [...]opInfo{
	OpAdd: {name: "+", class: classBinary, arity: 2, prec: 1, binary: func(a, b float64) float64 { return a + b }},
	OpSub: {name: "-", class: classBinary, arity: 2, prec: 1, binary: func(a, b float64) float64 { return a - b }},
	OpMul: {name: "*", class: classBinary, arity: 2, prec: 2, binary: func(a, b float64) float64 { return a * b }},
	OpDiv: {name: "/", class: classBinary, arity: 2, prec: 2, binary: func(a, b float64) float64 { return a / b }},
	OpPow: {name: "^", class: classBinary, arity: 2, prec: 3, binary: math.Pow},

	// Sits between * and ^ so that -x^2 is -(x^2) and -x*2 is (-x)*2.
	OpNeg: {name: "neg", class: classPrefix, arity: 1, prec: 2, unary: func(a float64) float64 { return -a }},

	OpSin:  {name: "sin", class: classFunc, arity: 1, prec: 4, unary: math.Sin},
	OpCos:  {name: "cos", class: classFunc, arity: 1, prec: 4, unary: math.Cos},
	OpTan:  {name: "tan", class: classFunc, arity: 1, prec: 4, unary: math.Tan},
	OpLn:   {name: "ln", class: classFunc, arity: 1, prec: 4, unary: math.Log},
	OpSqrt: {name: "sqrt", class: classFunc, arity: 1, prec: 4, unary: math.Sqrt},
}

var (
	binaryOps = map[byte]OpCode{'+': OpAdd, '-': OpSub, '*': OpMul, '/': OpDiv, '^': OpPow}
	funcOps   = map[string]OpCode{}
)

func init() {
	for code := range opTable {
		info := &opTable[code]
		if info.class == classFunc {
			funcOps[info.name] = OpCode(code)
		}
	}
}

func (c OpCode) info() *opInfo {
	if int(c) >= len(opTable) {
		return &opTable[opNone]
	}
	return &opTable[c]
}

// String returns the operator symbol or function name.
func (c OpCode) String() string {
	if n := c.info().name; n != "" {
		return n
	}
	return "?"
}

// Arity reports how many operands the operator consumes.
func (c OpCode) Arity() int { return c.info().arity }

// Precedence reports the binding strength used by the compiler.
func (c OpCode) Precedence() int { return c.info().prec }

// IsFunc reports whether c is a named function such as sin.
func (c OpCode) IsFunc() bool { return c.info().class == classFunc }

// Funcs lists the names of the supported functions.
func Funcs() []string {
	out := make([]string, 0, len(funcOps))
	for code := range opTable {
		if opTable[code].class == classFunc {
			out = append(out, opTable[code].name)
		}
	}
	return out
}

func (c OpCode) apply(stack []float64) ([]float64, bool) {
	info := c.info()
	n := len(stack)
	switch info.arity {
	case 1:
		if n < 1 || info.unary == nil {
			return stack, false
		}
		stack[n-1] = info.unary(stack[n-1])
		return stack, true
	case 2:
		if n < 2 || info.binary == nil {
			return stack, false
		}
		b := stack[n-1]
		a := stack[n-2]
		stack = stack[:n-1]
		stack[n-2] = info.binary(a, b)
		return stack, true
	}
	return stack, false
}
