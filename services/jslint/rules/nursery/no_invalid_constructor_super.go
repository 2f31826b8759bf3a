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
	"log/slog"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// Diagnostic messages.
const (
	MessageMissingSuper    = "This class extends another class and a super() call is expected."
	MessageUnexpectedSuper = "This class should not have a super() call. You should remove it."
	MessageBadExtends      = "This class calls super(), but the class extends from a non-constructor."
	DetailBadExtends       = "This is where the non-constructor is used."
)

// ConstructorSuperKind tells which problem a ConstructorSuperState reports.
type ConstructorSuperKind int

const (
	// MissingSuper: the class extends something but the constructor
	// never calls super().
	MissingSuper ConstructorSuperKind = iota + 1

	// UnexpectedSuper: the constructor calls super() but the class
	// extends nothing.
	UnexpectedSuper

	// BadExtends: the constructor calls super() but the superclass
	// expression cannot be a constructor.
	BadExtends
)

// String returns the kind name.
func (k ConstructorSuperKind) String() string {
	switch k {
	case MissingSuper:
		return "missing_super"
	case UnexpectedSuper:
		return "unexpected_super"
	case BadExtends:
		return "bad_extends"
	default:
		return "unknown"
	}
}

// ConstructorSuperState is the signal produced for one constructor.
type ConstructorSuperState struct {
	Kind ConstructorSuperKind

	// Range is the extends clause for MissingSuper and the super() call
	// for UnexpectedSuper and BadExtends.
	Range syntax.TextRange

	// ExtendsRange is the superclass expression. Set for BadExtends only.
	ExtendsRange syntax.TextRange
}

// NoInvalidConstructorSuper reports constructors whose super() call does
// not match the class's extends clause.
//
// Thread Safety: Stateless, safe for concurrent use.
type NoInvalidConstructorSuper struct {
	logger *slog.Logger
}

// NewNoInvalidConstructorSuper creates the rule.
func NewNoInvalidConstructorSuper() *NoInvalidConstructorSuper {
	return &NoInvalidConstructorSuper{logger: slog.Default()}
}

// Metadata implements analyzer.Rule.
func (r *NoInvalidConstructorSuper) Metadata() analyzer.RuleMetadata {
	return analyzer.RuleMetadata{
		Name:            "noInvalidConstructorSuper",
		Group:           "nursery",
		Version:         "10.0.0",
		Recommended:     true,
		DefaultSeverity: analyzer.SeverityError,
		Docs:            "Prevents the wrong usage of super() inside classes.",
	}
}

// Query implements analyzer.Rule.
func (r *NoInvalidConstructorSuper) Query() []string {
	return []string{syntax.KindMethodDefinition}
}

// Run implements analyzer.Rule.
func (r *NoInvalidConstructorSuper) Run(ctx *analyzer.RuleContext) []ConstructorSuperState {
	state, ok := r.check(ctx.Query())
	if !ok {
		return nil
	}
	return []ConstructorSuperState{state}
}

// check evaluates one method definition. At most one state is produced.
func (r *NoInvalidConstructorSuper) check(node *syntax.Node) (ConstructorSuperState, bool) {
	ctor, ok := syntax.AsConstructor(node)
	if !ok {
		return ConstructorSuperState{}, false
	}

	c, err := resolveConstructor(ctor)
	if err != nil {
		r.logger.Debug("skipping constructor",
			slog.String("range", node.Range().String()),
			slog.String("error", err.Error()))
		return ConstructorSuperState{}, false
	}

	switch {
	case c.superCall != nil && c.extends != nil:
		superClass, err := c.extends.SuperClass()
		if err != nil {
			return ConstructorSuperState{}, false
		}
		if ClassifyConstructor(superClass) != VerdictFalse {
			return ConstructorSuperState{}, false
		}
		return ConstructorSuperState{
			Kind:         BadExtends,
			Range:        c.superCall.Node().Range(),
			ExtendsRange: superClass.Range(),
		}, true

	case c.extends != nil:
		superClass, err := c.extends.SuperClass()
		if err != nil || syntax.IsLiteral(superClass) {
			return ConstructorSuperState{}, false
		}
		return ConstructorSuperState{Kind: MissingSuper, Range: c.extends.Range()}, true

	case c.superCall != nil:
		return ConstructorSuperState{Kind: UnexpectedSuper, Range: c.superCall.Node().Range()}, true

	default:
		return ConstructorSuperState{}, false
	}
}

// Diagnostic implements analyzer.Rule.
func (r *NoInvalidConstructorSuper) Diagnostic(_ *analyzer.RuleContext, state ConstructorSuperState) (*analyzer.RuleDiagnostic, bool) {
	switch state.Kind {
	case MissingSuper:
		return analyzer.NewRuleDiagnostic(state.Range, MessageMissingSuper), true
	case UnexpectedSuper:
		return analyzer.NewRuleDiagnostic(state.Range, MessageUnexpectedSuper), true
	case BadExtends:
		return analyzer.NewRuleDiagnostic(state.Range, MessageBadExtends).
			Detail(state.ExtendsRange, DetailBadExtends), true
	default:
		return nil, false
	}
}
