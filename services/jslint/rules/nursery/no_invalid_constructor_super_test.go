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
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// finding is a diagnostic reduced to the text it blames.
type finding struct {
	message string
	primary string
	detail  string
}

func newEngine(t *testing.T, opts ...analyzer.EngineOption) *analyzer.Engine {
	t.Helper()
	reg := analyzer.NewRegistry()
	require.NoError(t, analyzer.Register[ConstructorSuperState](reg, NewNoInvalidConstructorSuper()))
	return analyzer.NewEngine(reg, opts...)
}

func analyze(t *testing.T, src, path string) ([]finding, *analyzer.Result) {
	t.Helper()
	tree, err := syntax.Parse(context.Background(), []byte(src), path)
	require.NoError(t, err)

	result, err := newEngine(t).Analyze(context.Background(), tree)
	require.NoError(t, err)

	var out []finding
	for _, d := range result.Diagnostics {
		f := finding{message: d.Message, primary: tree.Slice(d.Range)}
		if len(d.Details) > 0 {
			f.detail = tree.Slice(d.Details[0].Range)
		}
		out = append(out, f)
	}
	return out, result
}

func missing(primary string) finding {
	return finding{message: MessageMissingSuper, primary: primary}
}

func unexpected(primary string) finding {
	return finding{message: MessageUnexpectedSuper, primary: primary}
}

func badExtends(primary, detail string) finding {
	return finding{message: MessageBadExtends, primary: primary, detail: detail}
}

func TestNoInvalidConstructorSuper(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
		want []finding
	}{
		// Core behaviour.
		{"no extends no super", "class A { constructor() {} }", "a.js", nil},
		{"literal base without super", "class A extends (0) { constructor() {} }", "a.js", nil},
		{"string base without super", "class A extends 'x' { constructor() {} }", "a.js", nil},
		{"missing super", "class A extends B { constructor() {} }", "a.js",
			[]finding{missing("extends B")}},
		{"unexpected super", "class A { constructor() { super(); } }", "a.js",
			[]finding{unexpected("super()")}},
		{"extends undefined", "class A extends undefined { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "undefined")}},
		{"conditional of identifiers", "class A extends (cond ? B : C) { constructor() { super(); } }", "a.js", nil},
		{"identifier base with super", "class A extends B { constructor() { super(); } }", "a.js", nil},

		// Super call search.
		{"super not first", "class A extends B { constructor() { foo(); super(1); } }", "a.js", nil},
		{"super only nested", "class A extends B { constructor() { if (x) { super(); } } }", "a.js",
			[]finding{missing("extends B")}},
		{"super member call is not a super call", "class A { constructor() { super.foo(); } }", "a.js", nil},
		{"first super call is blamed", "class A { constructor() { super(1); super(2); } }", "a.js",
			[]finding{unexpected("super(1)")}},

		// Which members count as constructors.
		{"static constructor ignored", "class A extends B { static constructor() {} }", "a.js", nil},
		{"plain method ignored", "class A extends B { method() {} }", "a.js", nil},
		{"string key constructor", "class A extends B { 'constructor'() {} }", "a.js",
			[]finding{missing("extends B")}},
		{"no constructor at all", "class A extends B {}", "a.js", nil},

		// Enclosing class resolution.
		{"nearest class wins", `
class Outer extends Base {
    constructor() { super(); }
    make() {
        return class Inner { constructor() { super(); } };
    }
}`, "a.js", []finding{unexpected("super()")}},
		{"class expression", "const A = class extends B { constructor() {} };", "a.js",
			[]finding{missing("extends B")}},
		{"object literal constructor", "const o = { constructor() { super(); } };", "a.js", nil},
		{"object literal constructor inside derived class", `
class A extends B {
    constructor() { super(); }
    m() { return { constructor() {} }; }
}`, "a.js", nil},
		{"object literal constructor inside base class", "class A { m() { return { constructor() { super.x(); } }; } }", "a.js", nil},

		// Superclass shapes with a super() call.
		{"call base", "class A extends mixin(B) { constructor() { super(); } }", "a.js", nil},
		{"member base", "class A extends React.Component { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "React.Component")}},
		{"subscript base", "class A extends mods['B'] { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "mods['B']")}},
		{"member base without super", "class A extends React.Component { constructor() {} }", "a.js",
			[]finding{missing("extends React.Component")}},
		{"class expression base", "class A extends (class {}) { constructor() { super(); } }", "a.js", nil},
		{"function base", "class A extends (function () {}) { constructor() { super(); } }", "a.js", nil},
		{"new base", "class A extends (new Factory()) { constructor() { super(); } }", "a.js", nil},
		{"arrow base", "class A extends (() => {}) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "(() => {})")}},
		{"number base", "class A extends (0) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "(0)")}},
		{"object base", "class A extends ({}) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "({})")}},
		{"binary base", "class A extends (B + C) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "(B + C)")}},
		{"assignment forwards right", "class A extends (B = C) { constructor() { super(); } }", "a.js", nil},
		{"assignment of literal", "class A extends (B = 1) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "(B = 1)")}},
		{"logical assignment forwards right", "class A extends (B ||= C) { constructor() { super(); } }", "a.js", nil},
		{"arithmetic assignment", "class A extends (B += C) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "(B += C)")}},
		{"and takes right", "class A extends (0 && B) { constructor() { super(); } }", "a.js", nil},
		{"and ignores left", "class A extends (B && 0) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "(B && 0)")}},
		{"or decided left wins", "class A extends (undefined || B) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "(undefined || B)")}},
		{"nullish left", "class A extends (B ?? 0) { constructor() { super(); } }", "a.js", nil},
		{"conditional alternate wins", "class A extends (c ? B : 0) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "(c ? B : 0)")}},
		{"conditional alternate constructor", "class A extends (c ? 0 : B) { constructor() { super(); } }", "a.js", nil},
		{"sequence last value", "class A extends (0, B) { constructor() { super(); } }", "a.js", nil},
		{"sequence last literal", "class A extends (B, 0) { constructor() { super(); } }", "a.js",
			[]finding{badExtends("super()", "(B, 0)")}},

		// TypeScript.
		{"ts generic missing super", "class A extends Base<string> { constructor() {} }", "a.ts",
			[]finding{missing("extends Base<string>")}},
		{"ts implements only", "class A implements I { constructor() { super(); } }", "a.ts",
			[]finding{unexpected("super()")}},
		{"ts as expression", "class A extends (B as any) { constructor() { super(); } }", "a.ts",
			[]finding{badExtends("super()", "(B as any)")}},
		{"ts non-null", "class A extends B! { constructor() { super(); } }", "a.ts",
			[]finding{badExtends("super()", "B!")}},
		{"ts abstract class", "abstract class A extends B { constructor() {} }", "a.ts",
			[]finding{missing("extends B")}},
		{"ts parameter properties", "class A extends B { constructor(private x: number) { super(); } }", "a.ts", nil},
		{"tsx class", "class A extends Component<P> { constructor(p: P) { super(p); } render() { return <div/>; } }", "a.tsx", nil},
		{"tsx member base", "class A extends React.Component<P> { constructor(p: P) { super(p); } render() { return <div/>; } }", "a.tsx",
			[]finding{badExtends("super(p)", "React.Component")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := analyze(t, tt.src, tt.path)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Broken sources never produce findings or rule panics.
func TestNoInvalidConstructorSuper_MalformedSource(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
	}{
		{"dangling or in superclass", "class A extends (B ||) { constructor() { super(); } }", "a.js"},
		{"dangling and in superclass", "class A extends (B &&) { constructor() { super(); } }", "a.js"},
		{"unterminated constructor", "class A extends B { constructor() ", "a.js"},
		{"missing superclass", "class A extends { constructor() {} }", "a.js"},
		{"missing superclass ts", "class A extends { constructor() { super(); } }", "a.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, result := analyze(t, tt.src, tt.path)
			assert.True(t, result.HasSyntaxErrors)
			assert.Empty(t, got)
			assert.Zero(t, result.RulePanics)
		})
	}
}

func TestNoInvalidConstructorSuper_DiagnosticShape(t *testing.T) {
	src := "class A extends undefined {\n    constructor() {\n        super(a, b);\n    }\n}\n"
	_, result := analyze(t, src, "shape.js")
	require.Len(t, result.Diagnostics, 1)

	d := result.Diagnostics[0]
	assert.Equal(t, "lint/nursery/noInvalidConstructorSuper", d.Category)
	assert.Equal(t, analyzer.SeverityError, d.Severity)
	assert.Equal(t, syntax.Position{Line: 3, Column: 9}, d.Start)
	// The range spans the whole call, arguments included.
	assert.Equal(t, syntax.Position{Line: 3, Column: 20}, d.End)
	require.Len(t, d.Details, 1)
	assert.Equal(t, DetailBadExtends, d.Details[0].Message)
	assert.Equal(t, syntax.Position{Line: 1, Column: 17}, d.Details[0].Start)
}

func TestNoInvalidConstructorSuper_AtMostOnePerConstructor(t *testing.T) {
	rule := NewNoInvalidConstructorSuper()
	tree, err := syntax.Parse(context.Background(),
		[]byte("class A extends undefined { constructor() { super(); super(); } }"), "one.js")
	require.NoError(t, err)

	for _, n := range tree.NodesOfKind(syntax.KindMethodDefinition) {
		states := rule.Run(analyzer.NewRuleContext(tree, n, rule.Metadata()))
		assert.LessOrEqual(t, len(states), 1)
	}
}

func TestNoInvalidConstructorSuper_Idempotent(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("class A extends B { constructor() {} }\n")
		sb.WriteString("class C { constructor() { super(); } }\n")
		sb.WriteString("class D extends undefined { constructor() { super(); } }\n")
		sb.WriteString("class E extends F { constructor() { super(); } }\n")
	}
	tree, err := syntax.Parse(context.Background(), []byte(sb.String()), "many.js")
	require.NoError(t, err)

	serial, err := newEngine(t, analyzer.WithWorkers(1)).Analyze(context.Background(), tree)
	require.NoError(t, err)
	require.Len(t, serial.Diagnostics, 150)

	for i := 0; i < 3; i++ {
		again, err := newEngine(t, analyzer.WithWorkers(8)).Analyze(context.Background(), tree)
		require.NoError(t, err)
		assert.Equal(t, serial.Diagnostics, again.Diagnostics)
	}
}

func TestNoInvalidConstructorSuper_Diagnostic(t *testing.T) {
	rule := NewNoInvalidConstructorSuper()
	r := syntax.TextRange{Start: 1, End: 4}

	d, ok := rule.Diagnostic(nil, ConstructorSuperState{Kind: MissingSuper, Range: r})
	require.True(t, ok)
	assert.Equal(t, MessageMissingSuper, d.Message)
	assert.Empty(t, d.Details)

	d, ok = rule.Diagnostic(nil, ConstructorSuperState{Kind: UnexpectedSuper, Range: r})
	require.True(t, ok)
	assert.Equal(t, MessageUnexpectedSuper, d.Message)

	ext := syntax.TextRange{Start: 10, End: 12}
	d, ok = rule.Diagnostic(nil, ConstructorSuperState{Kind: BadExtends, Range: r, ExtendsRange: ext})
	require.True(t, ok)
	assert.Equal(t, r, d.Range)
	require.Len(t, d.Details, 1)
	assert.Equal(t, ext, d.Details[0].Range)

	_, ok = rule.Diagnostic(nil, ConstructorSuperState{})
	assert.False(t, ok)
}

func TestNoInvalidConstructorSuper_Metadata(t *testing.T) {
	meta := NewNoInvalidConstructorSuper().Metadata()
	assert.Equal(t, "noInvalidConstructorSuper", meta.Name)
	assert.Equal(t, "nursery", meta.Group)
	assert.Equal(t, "10.0.0", meta.Version)
	assert.True(t, meta.Recommended)
}
