package parser

import "vxc/internal/token"

// Precedence levels, lowest to highest. Assignment is handled
// separately from the Pratt ladder since its targets are restricted to
// lvalues; the ladder below covers everywhere parseExpr is called.
type precedence int

const (
	precNone precedence = iota
	precOr              // ||
	precAnd             // &&
	precEquality        // == !=
	precComparison      // < <= > >=
	precBitOr           // |  (bitwise, once disambiguated from closures)
	precBitXor          // ^
	precBitAnd          // &  (bitwise, once disambiguated from reference-of)
	precShift           // << >>
	precAdditive        // + -
	precMultiplicative  // * / %
	precCast            // as
	precUnary           // - ! ^ & *  (prefix)
	precPostfix         // call index field ? ++ --
)

var infixPrec = map[token.Kind]precedence{
	token.PipePipe:   precOr,
	token.AmpAmp:     precAnd,
	token.EqEq:       precEquality,
	token.NotEq:      precEquality,
	token.Lt:         precComparison,
	token.LtEq:       precComparison,
	token.Gt:         precComparison,
	token.GtEq:       precComparison,
	token.Pipe:       precBitOr,
	token.Caret:      precBitXor,
	token.Amp:        precBitAnd,
	token.Shl:        precShift,
	token.Shr:        precShift,
	token.Plus:       precAdditive,
	token.Minus:      precAdditive,
	token.Star:       precMultiplicative,
	token.Slash:      precMultiplicative,
	token.Percent:    precMultiplicative,
	token.KwAs:       precCast,
	token.LParen:     precPostfix,
	token.LBracket:   precPostfix,
	token.Dot:        precPostfix,
	token.Question:   precPostfix,
	token.PlusPlus:   precPostfix,
	token.MinusMinus: precPostfix,
}

func precedenceOf(k token.Kind) precedence {
	if pr, ok := infixPrec[k]; ok {
		return pr
	}
	return precNone
}

// All binary operators are left-associative; only assignment (handled
// outside the ladder, in stmt.go) is right-associative.
