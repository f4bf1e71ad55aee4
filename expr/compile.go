package expr

import (
	"strconv"
	"strings"
)

// InstrKind tags a postfix instruction.
type InstrKind uint8

const (
	InstrPush InstrKind = iota + 1
	InstrLoad
	InstrOp
)

// Instr is one step of a compiled program.
type Instr struct {
	Kind  InstrKind
	Value float64
	Name  string
	Op    OpCode

	text string
}

func (in Instr) String() string {
	switch in.Kind {
	case InstrPush:
		if in.text != "" {
			return in.text
		}
		return strconv.FormatFloat(in.Value, 'g', -1, 64)
	case InstrLoad:
		return in.Name
	case InstrOp:
		return in.Op.String()
	}
	return "?"
}

// Expr is a compiled formula together with the variables it is evaluated against.
//
// The instruction sequence never changes after Compile returns. A formula that fails to
// compile yields an Expr with no instructions; Err reports why.
type Expr struct {
	text      string
	code      []Instr
	domain    Domain
	hasDomain bool
	err       *CompileError

	vars  Env
	stack []float64
}

// Compile turns a formula into an Expr. It never panics and never returns nil.
func Compile(src string) (ex *Expr) {
	ex = &Expr{text: src, vars: Env{"x": 0}}
	defer func() {
		if r := recover(); r != nil {
			ex.code = nil
			ex.hasDomain = false
			ex.err = compileErr(ReasonUnexpectedChar, -1, src)
		}
	}()

	toks, dom, hasDom, cerr := tokenize(src)
	if cerr != nil {
		ex.err = cerr
		return ex
	}
	code, cerr := toPostfix(toks)
	if cerr != nil {
		ex.err = cerr
		return ex
	}
	if len(code) == 0 {
		// only signs, e.g. "+"
		ex.err = compileErr(ReasonEmpty, -1, src)
		return ex
	}
	ex.code = code
	ex.domain = dom
	ex.hasDomain = hasDom
	ex.stack = make([]float64, 0, len(code))
	return ex
}

type opEntry struct {
	op    OpCode
	paren bool
	pos   int
}

// toPostfix is the shunting-yard pass.
func toPostfix(toks []token) ([]Instr, *CompileError) {
	var (
		ops []opEntry
		out = make([]Instr, 0, len(toks))
		// operand is true when the previous token completed an operand, so a following
		// + or - is binary rather than a sign.
		operand bool
	)

	for i, t := range toks {
		switch t.kind {
		case tokNumber:
			out = append(out, Instr{Kind: InstrPush, Value: t.num, text: t.text})
			operand = true

		case tokIdent:
			if code, ok := funcOps[t.text]; ok {
				ops = append(ops, opEntry{op: code, pos: t.pos})
				operand = false
				continue
			}
			if i+1 < len(toks) && toks[i+1].kind == tokLParen {
				return nil, compileErr(ReasonUnknownFunction, t.pos, t.text)
			}
			out = append(out, Instr{Kind: InstrLoad, Name: t.text})
			operand = true

		case tokOp:
			if !operand && (t.op == OpAdd || t.op == OpSub) {
				if t.op == OpSub {
					ops = append(ops, opEntry{op: OpNeg, pos: t.pos})
				}
				continue
			}
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.paren || top.op.IsFunc() || top.op.Precedence() < t.op.Precedence() {
					break
				}
				out = append(out, Instr{Kind: InstrOp, Op: top.op})
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, opEntry{op: t.op, pos: t.pos})
			operand = false

		case tokLParen:
			ops = append(ops, opEntry{paren: true, pos: t.pos})
			operand = false

		case tokRParen:
			found := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.paren {
					found = true
					break
				}
				out = append(out, Instr{Kind: InstrOp, Op: top.op})
			}
			if !found {
				return nil, compileErr(ReasonUnmatchedParen, t.pos, ")")
			}
			if n := len(ops); n > 0 && !ops[n-1].paren && ops[n-1].op.IsFunc() {
				out = append(out, Instr{Kind: InstrOp, Op: ops[n-1].op})
				ops = ops[:n-1]
			}
			operand = true
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.paren {
			return nil, compileErr(ReasonUnmatchedParen, top.pos, "(")
		}
		out = append(out, Instr{Kind: InstrOp, Op: top.op})
	}
	return out, nil
}

// Text returns the formula the Expr was compiled from.
func (e *Expr) Text() string { return e.text }

// Valid reports whether the formula compiled to a non-empty program.
func (e *Expr) Valid() bool { return len(e.code) > 0 }

// Err returns the *CompileError for an invalid Expr, or nil.
func (e *Expr) Err() error {
	if e.err == nil {
		return nil
	}
	return e.err
}

// Domain returns the optional domain restriction.
func (e *Expr) Domain() (Domain, bool) { return e.domain, e.hasDomain }

// Code returns a copy of the instruction sequence.
func (e *Expr) Code() []Instr {
	out := make([]Instr, len(e.code))
	copy(out, e.code)
	return out
}

// Postfix renders the program as space separated tokens, e.g. "1 2 + 3 -".
func (e *Expr) Postfix() string {
	var b strings.Builder
	for i, in := range e.code {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(in.String())
	}
	return b.String()
}
