package compiler

import "wisp/token"

// Precedence orders the binding power of operators from loosest to
// tightest. parsePrecedence consumes tokens whose infix precedence is at
// least as tight as the level it was called with.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// infixPrecedence returns the binding power of kind used as an infix
// operator, or PrecNone if kind never appears in infix position.
func infixPrecedence(kind token.Kind) Precedence {
	switch kind {
	case token.Minus, token.Plus:
		return PrecTerm
	case token.Slash, token.Star:
		return PrecFactor
	case token.BangEqual, token.EqualEqual:
		return PrecEquality
	case token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		return PrecComparison
	case token.And:
		return PrecAnd
	case token.Or:
		return PrecOr
	case token.LeftParen:
		return PrecCall
	default:
		return PrecNone
	}
}
