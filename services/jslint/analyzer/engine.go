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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// jobBatchSize is how many (rule, node) jobs one worker goroutine takes.
const jobBatchSize = 64

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs the enabled rules of a Registry over syntax trees.
//
// Description:
//
//	The engine walks a tree once, pairs every node with the rules whose
//	query names its kind, and evaluates the pairs on a bounded worker pool.
//	Output is sorted so the same tree always yields the same diagnostics
//	in the same order regardless of scheduling.
//
// Thread Safety: Safe for concurrent use.
type Engine struct {
	registry *Registry
	selector RuleSelector
	workers  int
	logger   *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithWorkers sets the per-file worker limit. Values below 1 are ignored.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSelector sets which rules run and at what severity.
func WithSelector(sel RuleSelector) EngineOption {
	return func(e *Engine) {
		if sel != nil {
			e.selector = sel
		}
	}
}

// WithLogger sets the logger used for rule panics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over reg.
//
// Inputs:
//
//	reg  - The rule registry. Must not be nil.
//	opts - Optional configuration.
//
// Outputs:
//
//	*Engine - Uses RecommendedSelector and GOMAXPROCS workers by default.
func NewEngine(reg *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: reg,
		selector: RecommendedSelector{},
		workers:  runtime.GOMAXPROCS(0),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fingerprint identifies the active rule set.
//
// Description:
//
//	Hashes the name, version and severity of every enabled rule. Cached
//	results are only valid for the fingerprint they were produced under.
func (e *Engine) Fingerprint() string {
	var sb strings.Builder
	for _, r := range e.registry.selectRules(e.selector) {
		fmt.Fprintf(&sb, "%s@%s:%s;", r.meta.Category(), r.meta.Version, r.severity)
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:8])
}

// ActiveRules returns the metadata of the rules that would run.
func (e *Engine) ActiveRules() []RuleMetadata {
	return e.registry.Filter(e.selector)
}

// job pairs one active rule with one queried node.
type job struct {
	rule int
	node *syntax.Node
}

// Analyze runs every enabled rule over tree.
//
// Description:
//
//	Collects jobs in a single pre-order walk, evaluates them on up to
//	WithWorkers goroutines, resolves ranges to line/column positions, and
//	sorts the diagnostics by start offset, end offset, rule, then message.
//	A panicking job is logged, counted in Result.RulePanics and dropped.
//
// Inputs:
//
//	ctx  - Context for cancellation. Must not be nil.
//	tree - The parsed file. Must not be nil.
//
// Outputs:
//
//	*Result - Diagnostics and run statistics.
//	error   - ErrInvalidInput, or the context error if canceled.
//
// Thread Safety: Safe for concurrent use.
func (e *Engine) Analyze(ctx context.Context, tree *syntax.Tree) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: tree must not be nil", ErrInvalidInput)
	}

	start := time.Now()
	language := tree.Language().String()
	active := e.registry.selectRules(e.selector)

	ctx, span := startAnalyzeSpan(ctx, tree.FilePath(), language, len(active))
	defer span.End()

	byKind := make(map[string][]int)
	for i := range active {
		for _, kind := range active[i].runner.query() {
			byKind[kind] = append(byKind[kind], i)
		}
	}

	var jobs []job
	visited := 0
	tree.Walk(func(n *syntax.Node) bool {
		visited++
		for _, idx := range byKind[n.Kind()] {
			jobs = append(jobs, job{rule: idx, node: n})
		}
		return true
	})

	slots := make([][]Diagnostic, len(jobs))
	var panics atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for lo := 0; lo < len(jobs); lo += jobBatchSize {
		hi := min(lo+jobBatchSize, len(jobs))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				diags, ok := e.runJob(tree, active[jobs[i].rule], jobs[i].node)
				if !ok {
					panics.Add(1)
					continue
				}
				slots[i] = diags
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordAnalyzeMetrics(ctx, language, time.Since(start), nil, int(panics.Load()), false)
		return nil, fmt.Errorf("analyze %s: %w", tree.FilePath(), err)
	}

	var diags []Diagnostic
	for _, slot := range slots {
		diags = append(diags, slot...)
	}
	sortDiagnostics(diags)

	result := &Result{
		File:            tree.FilePath(),
		Language:        language,
		Diagnostics:     diags,
		HasSyntaxErrors: tree.HasErrors(),
		NodesVisited:    visited,
		JobsRun:         len(jobs),
		RulePanics:      int(panics.Load()),
		Duration:        time.Since(start),
	}

	setAnalyzeSpanResult(span, result)
	recordAnalyzeMetrics(ctx, language, result.Duration, diags, result.RulePanics, true)
	return result, nil
}

// runJob evaluates one rule on one node. ok is false if the rule panicked.
func (e *Engine) runJob(tree *syntax.Tree, rule activeRule, node *syntax.Node) (diags []Diagnostic, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule panicked",
				slog.String("rule", rule.meta.Name),
				slog.String("file", tree.FilePath()),
				slog.String("node", node.Kind()),
				slog.String("range", node.Range().String()),
				slog.Any("panic", r),
			)
			diags, ok = nil, false
		}
	}()

	ruleCtx := NewRuleContext(tree, node, rule.meta)
	for _, rd := range rule.runner.analyze(ruleCtx) {
		diags = append(diags, resolve(tree, rule, rd))
	}
	return diags, true
}

// resolve turns a rule diagnostic into a reportable one.
func resolve(tree *syntax.Tree, rule activeRule, rd *RuleDiagnostic) Diagnostic {
	d := Diagnostic{
		Category: rule.meta.Category(),
		Rule:     rule.meta.Name,
		Severity: rule.severity,
		File:     tree.FilePath(),
		Range:    rd.Range,
		Start:    tree.Position(rd.Range.Start),
		End:      tree.Position(rd.Range.End),
		Message:  rd.Message,
	}
	for _, det := range rd.Details {
		d.Details = append(d.Details, Detail{
			Range:   det.Range,
			Start:   tree.Position(det.Range.Start),
			End:     tree.Position(det.Range.End),
			Message: det.Message,
		})
	}
	return d
}

// sortDiagnostics orders by start, end, rule name, then message.
func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := &diags[i], &diags[j]
		if a.Range.Start != b.Range.Start {
			return a.Range.Start < b.Range.Start
		}
		if a.Range.End != b.Range.End {
			return a.Range.End < b.Range.End
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
}
