package expr

import (
	"math"
	"strconv"
	"strings"
)

type tokenKind uint8

const (
	tokNumber tokenKind = iota + 1
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
	op   OpCode
	pos  int
}

// constants are substituted by their literal text while tokenizing.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Domain restricts plotting to [Lower, Upper] in mathematical units.
type Domain struct {
	Lower float64
	Upper float64
}

type lexer struct {
	s   string
	i   int
	mul bool // emit an implicit '*' before the next token
}

func (l *lexer) next() (token, bool, *CompileError) {
	if l.mul {
		l.mul = false
		return token{kind: tokOp, text: "*", op: OpMul, pos: l.i}, true, nil
	}
	for l.i < len(l.s) && isSpace(l.s[l.i]) {
		l.i++
	}
	if l.i >= len(l.s) {
		return token{}, false, nil
	}

	start := l.i
	c := l.s[l.i]
	switch {
	case c == '(':
		l.i++
		return token{kind: tokLParen, text: "(", pos: start}, true, nil
	case c == ')':
		l.i++
		return token{kind: tokRParen, text: ")", pos: start}, true, nil
	case binaryOps[c] != opNone:
		l.i++
		return token{kind: tokOp, text: string(c), op: binaryOps[c], pos: start}, true, nil
	case isDigit(c) || c == '.':
		for l.i < len(l.s) && (isDigit(l.s[l.i]) || l.s[l.i] == '.') {
			l.i++
		}
		txt := l.s[start:l.i]
		v, err := strconv.ParseFloat(txt, 64)
		if err != nil {
			return token{}, false, compileErr(ReasonMalformedNumber, start, txt)
		}
		// 3x -> 3 * x
		if l.i < len(l.s) && isLetter(l.s[l.i]) {
			l.mul = true
		}
		return token{kind: tokNumber, text: txt, num: v, pos: start}, true, nil
	case isLetter(c):
		for l.i < len(l.s) && (isLetter(l.s[l.i]) || isDigit(l.s[l.i]) || l.s[l.i] == '_') {
			l.i++
		}
		name := l.s[start:l.i]
		if v, ok := constants[name]; ok {
			return token{kind: tokNumber, text: strconv.FormatFloat(v, 'g', -1, 64), num: v, pos: start}, true, nil
		}
		return token{kind: tokIdent, text: name, pos: start}, true, nil
	}
	return token{}, false, compileErr(ReasonUnexpectedChar, start, string(c))
}

// tokenize splits src into tokens and an optional domain clause.
func tokenize(src string) ([]token, Domain, bool, *CompileError) {
	body, dom, hasDom, cerr := splitDomain(src)
	if cerr != nil {
		return nil, Domain{}, false, cerr
	}

	l := &lexer{s: body}
	var out []token
	for {
		tok, ok, cerr := l.next()
		if cerr != nil {
			return nil, Domain{}, false, cerr
		}
		if !ok {
			break
		}
		out = append(out, tok)
	}
	if len(out) == 0 {
		return nil, Domain{}, false, compileErr(ReasonEmpty, -1, "")
	}
	return out, dom, hasDom, nil
}

// splitDomain separates "<expr>, [<lower>; <upper>]" into its parts.
func splitDomain(src string) (string, Domain, bool, *CompileError) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return src, Domain{}, false, nil
	}
	clause := strings.TrimSpace(src[comma+1:])
	if len(clause) < 2 || clause[0] != '[' || clause[len(clause)-1] != ']' {
		return "", Domain{}, false, compileErr(ReasonMalformedDomain, comma, clause)
	}
	parts := strings.Split(clause[1:len(clause)-1], ";")
	if len(parts) != 2 {
		return "", Domain{}, false, compileErr(ReasonMalformedDomain, comma, clause)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return "", Domain{}, false, compileErr(ReasonMalformedDomain, comma, clause)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return "", Domain{}, false, compileErr(ReasonMalformedDomain, comma, clause)
	}
	return src[:comma], Domain{Lower: lo, Upper: hi}, true, nil
}

func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
