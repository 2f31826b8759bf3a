// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package syntax

import "strings"

// ExpressionKind is the closed set of expression shapes rules dispatch on.
// Grammar kinds that map to no specific shape become ExprOther.
type ExpressionKind int

const (
	ExprOther ExpressionKind = iota
	ExprThis
	ExprSuper
	ExprIdentifier
	ExprUndefined
	ExprFunction
	ExprArrowFunction
	ExprClass
	ExprCall
	ExprImportCall
	ExprImportMeta
	ExprNewTarget
	ExprYield
	ExprAwait
	ExprNew
	ExprMember
	ExprAssignment
	ExprLogical
	ExprBinary
	ExprUnary
	ExprConditional
	ExprSequence
	ExprParenthesized
	ExprTypeWrapper
	ExprLiteral
	ExprTemplate
	ExprArray
	ExprObject
)

var expressionKindNames = [...]string{
	ExprOther:         "other",
	ExprThis:          "this",
	ExprSuper:         "super",
	ExprIdentifier:    "identifier",
	ExprUndefined:     "undefined",
	ExprFunction:      "function",
	ExprArrowFunction: "arrow_function",
	ExprClass:         "class",
	ExprCall:          "call",
	ExprImportCall:    "import_call",
	ExprImportMeta:    "import_meta",
	ExprNewTarget:     "new_target",
	ExprYield:         "yield",
	ExprAwait:         "await",
	ExprNew:           "new",
	ExprMember:        "member",
	ExprAssignment:    "assignment",
	ExprLogical:       "logical",
	ExprBinary:        "binary",
	ExprUnary:         "unary",
	ExprConditional:   "conditional",
	ExprSequence:      "sequence",
	ExprParenthesized: "parenthesized",
	ExprTypeWrapper:   "type_wrapper",
	ExprLiteral:       "literal",
	ExprTemplate:      "template",
	ExprArray:         "array",
	ExprObject:        "object",
}

// String returns the shape name.
func (k ExpressionKind) String() string {
	if int(k) >= 0 && int(k) < len(expressionKindNames) {
		return expressionKindNames[k]
	}
	return "unknown"
}

// Logical and assignment operators.
const (
	OpAssign             = "="
	OpLogicalAnd         = "&&"
	OpLogicalOr          = "||"
	OpNullishCoalescing  = "??"
	OpLogicalAndAssign   = "&&="
	OpLogicalOrAssign    = "||="
	OpNullishCoalesceAsg = "??="
)

// ExpressionKindOf maps a node onto its expression shape.
func ExpressionKindOf(n *Node) ExpressionKind {
	if n == nil || !n.named {
		return ExprOther
	}
	switch n.kind {
	case KindThis:
		return ExprThis
	case KindSuper:
		return ExprSuper
	case KindIdentifier:
		return ExprIdentifier
	case KindUndefined:
		return ExprUndefined
	case KindFunction, KindFunctionExpression, KindGeneratorFunction:
		return ExprFunction
	case KindArrowFunction:
		return ExprArrowFunction
	case KindClass:
		return ExprClass
	case KindCallExpression:
		if call, _ := AsCallExpression(n); call.IsImportCall() {
			return ExprImportCall
		}
		return ExprCall
	case KindMetaProperty:
		if strings.HasPrefix(n.Text(), "new") {
			return ExprNewTarget
		}
		return ExprImportMeta
	case KindYieldExpression:
		return ExprYield
	case KindAwaitExpression:
		return ExprAwait
	case KindNewExpression:
		return ExprNew
	case KindMemberExpression, KindSubscriptExpression:
		return ExprMember
	case KindAssignmentExpression, KindAugmentedAssignmentExpression:
		return ExprAssignment
	case KindBinaryExpression:
		switch Operator(n) {
		case OpLogicalAnd, OpLogicalOr, OpNullishCoalescing:
			return ExprLogical
		default:
			return ExprBinary
		}
	case KindUnaryExpression, KindUpdateExpression:
		return ExprUnary
	case KindTernaryExpression:
		return ExprConditional
	case KindSequenceExpression:
		return ExprSequence
	case KindParenthesizedExpression:
		return ExprParenthesized
	case KindAsExpression, KindSatisfiesExpression, KindNonNullExpression, KindTypeAssertion:
		return ExprTypeWrapper
	case KindNumber, KindString, KindRegex, KindTrue, KindFalse, KindNull:
		return ExprLiteral
	case KindTemplateString:
		return ExprTemplate
	case KindArray:
		return ExprArray
	case KindObject:
		return ExprObject
	default:
		return ExprOther
	}
}

// Operator returns the operator token of a binary, logical or assignment
// expression. Plain assignment has no operator field and reports "=".
func Operator(n *Node) string {
	if n == nil {
		return ""
	}
	if op := n.ChildByField(FieldOperator); op != nil {
		return op.kind
	}
	if n.kind == KindAssignmentExpression {
		return OpAssign
	}
	return ""
}

// Left returns the left operand of a binary or assignment expression.
func Left(n *Node) (*Node, error) {
	return operand(n, FieldLeft)
}

// Right returns the right operand of a binary or assignment expression.
func Right(n *Node) (*Node, error) {
	return operand(n, FieldRight)
}

// Consequent returns the branch taken when a conditional's test is truthy.
func Consequent(n *Node) (*Node, error) {
	return operand(n, FieldConsequence)
}

// Alternate returns the branch taken when a conditional's test is falsy.
func Alternate(n *Node) (*Node, error) {
	return operand(n, FieldAlternative)
}

// LastOperand returns the rightmost operand of a sequence expression,
// which is the only value a sequence produces.
func LastOperand(n *Node) (*Node, error) {
	if last := n.LastNamedChild(); last != nil && !last.missing {
		return last, nil
	}
	return nil, missingChild(n, "operand")
}

// Inner returns the wrapped expression of a parenthesized expression or a
// TypeScript type wrapper (as, satisfies, non-null, angle-bracket cast).
func Inner(n *Node) (*Node, error) {
	switch n.kind {
	case KindTypeAssertion:
		// <T>expr: the expression follows the type arguments.
		if last := n.LastNamedChild(); last != nil && last.kind != KindTypeArguments && !last.missing {
			return last, nil
		}
	default:
		if first := n.FirstNamedChild(); first != nil && !first.missing {
			return first, nil
		}
	}
	return nil, missingChild(n, "expression")
}

// IsLiteral reports whether n is a literal, looking through parentheses.
func IsLiteral(n *Node) bool {
	for n != nil && n.kind == KindParenthesizedExpression {
		n = n.FirstNamedChild()
	}
	return ExpressionKindOf(n) == ExprLiteral
}

func operand(n *Node, field string) (*Node, error) {
	if n == nil {
		return nil, missingChild(n, field)
	}
	child := n.ChildByField(field)
	if child == nil || child.missing {
		return nil, missingChild(n, field)
	}
	return child, nil
}
