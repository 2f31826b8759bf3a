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
	"fmt"
	"sort"
	"sync"
)

// RuleSelector decides which registered rules run and at what severity.
// *config.Config implements it.
type RuleSelector interface {
	RuleEnabled(meta RuleMetadata) bool
	RuleSeverity(meta RuleMetadata) Severity
}

// RecommendedSelector enables recommended rules at their default severity.
type RecommendedSelector struct{}

// RuleEnabled returns meta.Recommended.
func (RecommendedSelector) RuleEnabled(meta RuleMetadata) bool { return meta.Recommended }

// RuleSeverity returns meta.DefaultSeverity.
func (RecommendedSelector) RuleSeverity(meta RuleMetadata) Severity { return meta.DefaultSeverity }

// Registry holds rules by name.
//
// Thread Safety:
//
//	Registry is fully thread-safe. Registration uses write locks, lookups
//	use read locks.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]runner
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]runner)}
}

// Register adds rule to reg.
//
// Description:
//
//	Validates the rule's metadata and query, then stores a type-erased
//	adapter under the rule name.
//
// Inputs:
//
//	reg  - The registry. Must not be nil.
//	rule - The rule. Must have a name and at least one query kind.
//
// Outputs:
//
//	error - ErrInvalidInput, ErrInvalidRule or ErrDuplicateRule.
//
// Thread Safety: Safe for concurrent use.
func Register[S any](reg *Registry, rule Rule[S]) error {
	if reg == nil || rule == nil {
		return fmt.Errorf("%w: registry and rule must not be nil", ErrInvalidInput)
	}

	meta := rule.Metadata()
	if meta.Name == "" {
		return fmt.Errorf("%w: empty rule name", ErrInvalidRule)
	}
	kinds := rule.Query()
	if len(kinds) == 0 {
		return fmt.Errorf("%w: rule %s queries no node kinds", ErrInvalidRule, meta.Name)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.rules[meta.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, meta.Name)
	}
	reg.rules[meta.Name] = &typedRule[S]{
		rule: rule,
		meta: meta,
		kind: append([]string(nil), kinds...),
	}
	return nil
}

// MustRegister is like Register but panics on error. Intended for
// package-level rule tables.
func MustRegister[S any](reg *Registry, rule Rule[S]) {
	if err := Register(reg, rule); err != nil {
		panic(err)
	}
}

// Rules returns the metadata of every registered rule sorted by name.
func (r *Registry) Rules() []RuleMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RuleMetadata, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule.metadata())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the metadata for name.
func (r *Registry) Lookup(name string) (RuleMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[name]
	if !ok {
		return RuleMetadata{}, false
	}
	return rule.metadata(), true
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Filter returns the metadata of the rules sel enables, sorted by name.
func (r *Registry) Filter(sel RuleSelector) []RuleMetadata {
	active := r.selectRules(sel)
	out := make([]RuleMetadata, len(active))
	for i := range active {
		out[i] = active[i].meta
	}
	return out
}

// activeRule is a runner selected for a run, with its effective severity.
type activeRule struct {
	runner   runner
	meta     RuleMetadata
	severity Severity
}

// selectRules returns the enabled rules sorted by name.
func (r *Registry) selectRules(sel RuleSelector) []activeRule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]activeRule, 0, len(r.rules))
	for _, rule := range r.rules {
		meta := rule.metadata()
		if !sel.RuleEnabled(meta) {
			continue
		}
		out = append(out, activeRule{
			runner:   rule,
			meta:     meta,
			severity: sel.RuleSeverity(meta),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].meta.Name < out[j].meta.Name })
	return out
}
