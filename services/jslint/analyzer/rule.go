// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// Rule is the contract every lint rule implements.
//
// Description:
//
//	S is the rule's own signal type: whatever the detection step needs to
//	hand to the diagnostic step. Run must be a pure read of the tree; it
//	may be called concurrently for different nodes of the same tree.
//
// Thread Safety:
//
//	Implementations must be safe for concurrent use.
type Rule[S any] interface {
	// Metadata returns the rule's static identity.
	Metadata() RuleMetadata

	// Query returns the node kinds the rule runs on.
	Query() []string

	// Run analyses the queried node. A nil or empty slice means no finding.
	Run(ctx *RuleContext) []S

	// Diagnostic renders one signal. Returning false suppresses it.
	Diagnostic(ctx *RuleContext, state S) (*RuleDiagnostic, bool)
}

// RuleContext gives a rule access to the node it was queried for.
type RuleContext struct {
	node *syntax.Node
	tree *syntax.Tree
	meta RuleMetadata
}

// NewRuleContext builds a context for node. Exposed for rule tests.
func NewRuleContext(tree *syntax.Tree, node *syntax.Node, meta RuleMetadata) *RuleContext {
	return &RuleContext{node: node, tree: tree, meta: meta}
}

// Query returns the node the rule is running on.
func (c *RuleContext) Query() *syntax.Node {
	return c.node
}

// Tree returns the tree being analysed.
func (c *RuleContext) Tree() *syntax.Tree {
	return c.tree
}

// FilePath returns the analysed file path.
func (c *RuleContext) FilePath() string {
	if c.tree == nil {
		return ""
	}
	return c.tree.FilePath()
}

// Rule returns the metadata of the running rule.
func (c *RuleContext) Rule() RuleMetadata {
	return c.meta
}

// runner is the type-erased form of a Rule held by a Registry.
type runner interface {
	metadata() RuleMetadata
	query() []string
	analyze(ctx *RuleContext) []*RuleDiagnostic
}

type typedRule[S any] struct {
	rule Rule[S]
	meta RuleMetadata
	kind []string
}

func (r *typedRule[S]) metadata() RuleMetadata { return r.meta }

func (r *typedRule[S]) query() []string { return r.kind }

func (r *typedRule[S]) analyze(ctx *RuleContext) []*RuleDiagnostic {
	signals := r.rule.Run(ctx)
	if len(signals) == 0 {
		return nil
	}
	out := make([]*RuleDiagnostic, 0, len(signals))
	for _, s := range signals {
		if d, ok := r.rule.Diagnostic(ctx, s); ok && d != nil {
			out = append(out, d)
		}
	}
	return out
}
