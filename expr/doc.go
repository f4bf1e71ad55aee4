// Package expr compiles single-variable formulas such as "3x^2 - sin(x), [-5; 5]" into a
// postfix program and evaluates it on a small float64 stack machine.
//
// Compilation never fails loudly: a malformed formula yields an Expr whose Valid method
// reports false and whose Err method explains why. Evaluating such an Expr returns
// ErrInvalidExpression.
package expr
