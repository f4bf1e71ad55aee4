package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrCompile is wrapped by every *CompileError.
	ErrCompile = errors.New("compile error")
	// ErrInvalidExpression is returned when evaluating the invalid sentinel or a malformed
	// program.
	ErrInvalidExpression = errors.New("invalid expression")
)

// Reason classifies why a formula failed to compile.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonEmpty
	ReasonMalformedNumber
	ReasonUnexpectedChar
	ReasonUnknownFunction
	ReasonUnmatchedParen
	ReasonMalformedDomain
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonEmpty:
		return "empty formula"
	case ReasonMalformedNumber:
		return "malformed number"
	case ReasonUnexpectedChar:
		return "unexpected character"
	case ReasonUnknownFunction:
		return "unknown function"
	case ReasonUnmatchedParen:
		return "unmatched parenthesis"
	case ReasonMalformedDomain:
		return "malformed domain clause"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// CompileError describes a formula that compiled to the invalid sentinel.
type CompileError struct {
	Reason Reason
	// Pos is the byte offset into the formula, or -1 when not applicable.
	Pos  int
	Text string
}

func (e *CompileError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%s: %s", ErrCompile, e.Reason)
	}
	if e.Pos < 0 {
		return fmt.Sprintf("%s: %s %q", ErrCompile, e.Reason, e.Text)
	}
	return fmt.Sprintf("%s: %s %q at %d", ErrCompile, e.Reason, e.Text, e.Pos)
}

func (e *CompileError) Unwrap() error { return ErrCompile }

func compileErr(r Reason, pos int, text string) *CompileError {
	return &CompileError{Reason: r, Pos: pos, Text: text}
}
