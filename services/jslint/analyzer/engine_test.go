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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// identRule flags every identifier named "bad".
type identRule struct {
	name        string
	recommended bool
}

func (r identRule) Metadata() RuleMetadata {
	return RuleMetadata{
		Name:            r.name,
		Group:           "test",
		Version:         "1.0.0",
		Recommended:     r.recommended,
		DefaultSeverity: SeverityError,
	}
}

func (identRule) Query() []string { return []string{syntax.KindIdentifier} }

func (identRule) Run(ctx *RuleContext) []string {
	if ctx.Query().Text() == "bad" {
		return []string{ctx.Query().Text()}
	}
	return nil
}

func (identRule) Diagnostic(ctx *RuleContext, state string) (*RuleDiagnostic, bool) {
	return NewRuleDiagnostic(ctx.Query().Range(), "found "+state).
		Detail(ctx.Query().Range(), "here"), true
}

// panicRule panics on every class declaration.
type panicRule struct{}

func (panicRule) Metadata() RuleMetadata {
	return RuleMetadata{Name: "panics", Group: "test", Recommended: true, DefaultSeverity: SeverityWarning}
}

func (panicRule) Query() []string { return []string{syntax.KindClassDeclaration} }

func (panicRule) Run(*RuleContext) []struct{} { panic("boom") }

func (panicRule) Diagnostic(*RuleContext, struct{}) (*RuleDiagnostic, bool) { return nil, false }

// suppressRule produces signals but never renders them.
type suppressRule struct{}

func (suppressRule) Metadata() RuleMetadata {
	return RuleMetadata{Name: "suppressed", Group: "test", Recommended: true}
}

func (suppressRule) Query() []string { return []string{syntax.KindIdentifier} }

func (suppressRule) Run(*RuleContext) []int { return []int{1, 2} }

func (suppressRule) Diagnostic(*RuleContext, int) (*RuleDiagnostic, bool) { return nil, false }

type staticSelector struct {
	enabled  map[string]bool
	severity Severity
}

func (s staticSelector) RuleEnabled(meta RuleMetadata) bool { return s.enabled[meta.Name] }

func (s staticSelector) RuleSeverity(RuleMetadata) Severity { return s.severity }

func parse(t *testing.T, src, path string) *syntax.Tree {
	t.Helper()
	tree, err := syntax.Parse(context.Background(), []byte(src), path)
	require.NoError(t, err)
	return tree
}

func TestRegister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, Register[string](reg, identRule{name: "ident", recommended: true}))

	err := Register[string](reg, identRule{name: "ident"})
	assert.True(t, errors.Is(err, ErrDuplicateRule))

	err = Register[string](reg, identRule{name: ""})
	assert.True(t, errors.Is(err, ErrInvalidRule))

	err = Register[string](nil, identRule{name: "x"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	require.NoError(t, Register[struct{}](reg, panicRule{}))
	assert.Equal(t, 2, reg.Len())

	rules := reg.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "ident", rules[0].Name)
	assert.Equal(t, "panics", rules[1].Name)

	meta, ok := reg.Lookup("ident")
	require.True(t, ok)
	assert.Equal(t, "lint/test/ident", meta.Category())

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	reg := NewRegistry()
	MustRegister[string](reg, identRule{name: "ident"})
	assert.Panics(t, func() { MustRegister[string](reg, identRule{name: "ident"}) })
}

func TestEngine_Analyze(t *testing.T) {
	reg := NewRegistry()
	MustRegister[string](reg, identRule{name: "ident", recommended: true})

	src := "let ok = 1;\nbad();\nfoo(bad);\n"
	tree := parse(t, src, "a.js")

	result, err := NewEngine(reg).Analyze(context.Background(), tree)
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 2)
	first := result.Diagnostics[0]
	assert.Equal(t, "lint/test/ident", first.Category)
	assert.Equal(t, "ident", first.Rule)
	assert.Equal(t, SeverityError, first.Severity)
	assert.Equal(t, "a.js", first.File)
	assert.Equal(t, "found bad", first.Message)
	assert.Equal(t, syntax.Position{Line: 2, Column: 1}, first.Start)
	assert.Equal(t, syntax.Position{Line: 2, Column: 4}, first.End)
	assert.Equal(t, "a.js:2:1", first.Location())
	require.Len(t, first.Details, 1)
	assert.Equal(t, "here", first.Details[0].Message)

	assert.Equal(t, 3, result.Diagnostics[1].Start.Line)
	assert.True(t, result.HasErrors())
	assert.Equal(t, 2, result.CountBySeverity(SeverityError))
	assert.Equal(t, tree.NodeCount(), result.NodesVisited)
	assert.Equal(t, "javascript", result.Language)
}

func TestEngine_SelectorControlsRules(t *testing.T) {
	reg := NewRegistry()
	MustRegister[string](reg, identRule{name: "ident", recommended: false})
	tree := parse(t, "bad;", "a.js")

	// Not recommended, so the default selector skips it.
	result, err := NewEngine(reg).Analyze(context.Background(), tree)
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.Zero(t, result.JobsRun)

	sel := staticSelector{enabled: map[string]bool{"ident": true}, severity: SeverityInfo}
	engine := NewEngine(reg, WithSelector(sel))
	result, err = engine.Analyze(context.Background(), tree)
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, SeverityInfo, result.Diagnostics[0].Severity)
	assert.False(t, result.HasErrors())

	require.Len(t, engine.ActiveRules(), 1)
}

func TestEngine_PanicIsolation(t *testing.T) {
	reg := NewRegistry()
	MustRegister[string](reg, identRule{name: "ident", recommended: true})
	MustRegister[struct{}](reg, panicRule{})

	tree := parse(t, "class A {}\nclass B {}\nbad;\n", "p.js")
	result, err := NewEngine(reg, WithWorkers(2)).Analyze(context.Background(), tree)
	require.NoError(t, err)

	assert.Equal(t, 2, result.RulePanics)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "ident", result.Diagnostics[0].Rule)
}

func TestEngine_SuppressedDiagnostics(t *testing.T) {
	reg := NewRegistry()
	MustRegister[int](reg, suppressRule{})

	result, err := NewEngine(reg).Analyze(context.Background(), parse(t, "a; b;", "s.js"))
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, 2, result.JobsRun)
}

func TestEngine_InvalidInput(t *testing.T) {
	engine := NewEngine(NewRegistry())

	//nolint:staticcheck // nil context is the point of the test
	_, err := engine.Analyze(nil, parse(t, "", "e.js"))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = engine.Analyze(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEngine_Canceled(t *testing.T) {
	reg := NewRegistry()
	MustRegister[string](reg, identRule{name: "ident", recommended: true})
	tree := parse(t, "bad;", "c.js")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(reg).Analyze(ctx, tree)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEngine_DeterministicAcrossWorkerCounts(t *testing.T) {
	reg := NewRegistry()
	MustRegister[string](reg, identRule{name: "ident", recommended: true})
	MustRegister[string](reg, identRule{name: "ident2", recommended: true})

	src := ""
	for i := 0; i < 200; i++ {
		src += "bad(bad, ok);\n"
	}
	tree := parse(t, src, "d.js")

	serial, err := NewEngine(reg, WithWorkers(1)).Analyze(context.Background(), tree)
	require.NoError(t, err)
	parallel, err := NewEngine(reg, WithWorkers(8)).Analyze(context.Background(), tree)
	require.NoError(t, err)

	require.Len(t, serial.Diagnostics, 800)
	assert.Equal(t, serial.Diagnostics, parallel.Diagnostics)

	// Same range: rule name breaks the tie.
	assert.Equal(t, "ident", serial.Diagnostics[0].Rule)
	assert.Equal(t, "ident2", serial.Diagnostics[1].Rule)
}

func TestEngine_Fingerprint(t *testing.T) {
	reg := NewRegistry()
	MustRegister[string](reg, identRule{name: "ident", recommended: true})

	a := NewEngine(reg).Fingerprint()
	assert.Equal(t, a, NewEngine(reg).Fingerprint())

	sel := staticSelector{enabled: map[string]bool{"ident": true}, severity: SeverityInfo}
	assert.NotEqual(t, a, NewEngine(reg, WithSelector(sel)).Fingerprint())
}

func TestSeverity_Text(t *testing.T) {
	for _, s := range []Severity{SeverityInfo, SeverityWarning, SeverityError} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back Severity
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	assert.Equal(t, SeverityWarning, SeverityFromString("nonsense"))
	assert.Equal(t, SeverityError, SeverityFromString("err"))
}
