// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package nursery

import (
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// Verdict is the result of asking whether an expression yields a
// constructor when used as a class's base.
type Verdict int

const (
	// VerdictFalse means the expression cannot produce a constructor.
	VerdictFalse Verdict = iota

	// VerdictTrue means the expression may produce a constructor.
	VerdictTrue

	// VerdictUnknown means there is not enough information. Callers must
	// not report anything that depends on an unknown verdict.
	VerdictUnknown
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictFalse:
		return "false"
	case VerdictTrue:
		return "true"
	default:
		return "unknown"
	}
}

// Decided reports whether v is True or False.
func (v Verdict) Decided() bool {
	return v != VerdictUnknown
}

const undefinedName = "undefined"

// ClassifyConstructor decides whether expr can be a valid superclass.
//
// Description:
//
//	A structural fold over the expression shape. Shapes that forward one
//	of their operands unchanged (assignment, logical operators,
//	conditionals, sequences and parentheses) recurse into that operand.
//	Shapes that are known to produce a callable value are True. Every
//	other shape is False, including member access and TypeScript type
//	wrappers. A forwarded operand that is missing from the tree yields
//	Unknown.
//
//	Logical OR and nullish coalescing try the left operand first, the
//	conditional tries the alternate branch first. The first decided
//	verdict wins.
//
// Inputs:
//
//	expr - The superclass expression. nil yields VerdictUnknown.
//
// Outputs:
//
//	Verdict - True, False or Unknown.
//
// Thread Safety: Pure function, safe for concurrent use.
func ClassifyConstructor(expr *syntax.Node) Verdict {
	if expr == nil || expr.IsMissing() || expr.Kind() == syntax.KindError {
		return VerdictUnknown
	}

	switch syntax.ExpressionKindOf(expr) {
	case syntax.ExprThis,
		syntax.ExprFunction,
		syntax.ExprCall,
		syntax.ExprImportCall,
		syntax.ExprImportMeta,
		syntax.ExprYield,
		syntax.ExprNew,
		syntax.ExprNewTarget,
		syntax.ExprClass:
		return VerdictTrue

	case syntax.ExprIdentifier:
		if expr.Text() == undefinedName {
			return VerdictFalse
		}
		return VerdictTrue

	case syntax.ExprUndefined:
		return VerdictFalse

	case syntax.ExprAssignment:
		switch syntax.Operator(expr) {
		case syntax.OpAssign, syntax.OpLogicalAndAssign, syntax.OpLogicalOrAssign, syntax.OpNullishCoalesceAsg:
			return classifyOperand(syntax.Right(expr))
		default:
			return VerdictFalse
		}

	case syntax.ExprLogical:
		if syntax.Operator(expr) == syntax.OpLogicalAnd {
			return classifyOperand(syntax.Right(expr))
		}
		return firstDecided(expr, syntax.Left, syntax.Right)

	case syntax.ExprConditional:
		return firstDecided(expr, syntax.Alternate, syntax.Consequent)

	case syntax.ExprSequence:
		return classifyOperand(syntax.LastOperand(expr))

	case syntax.ExprParenthesized:
		return classifyOperand(syntax.Inner(expr))

	default:
		return VerdictFalse
	}
}

func classifyOperand(operand *syntax.Node, err error) Verdict {
	if err != nil {
		return VerdictUnknown
	}
	return ClassifyConstructor(operand)
}

// firstDecided classifies the operand picked by first, falling back to
// the one picked by second when the first is undecided.
func firstDecided(expr *syntax.Node, first, second func(*syntax.Node) (*syntax.Node, error)) Verdict {
	if v := classifyOperand(first(expr)); v.Decided() {
		return v
	}
	return classifyOperand(second(expr))
}
