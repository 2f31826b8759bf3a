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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("aleutian.jslint.analyzer")
	meter  = otel.Meter("aleutian.jslint.analyzer")
)

var (
	analyzeLatency   metric.Float64Histogram
	analyzeTotal     metric.Int64Counter
	diagnosticsTotal metric.Int64Counter
	rulePanicsTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"jslint_analyze_duration_seconds",
			metric.WithDescription("Duration of rule analysis per file"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"jslint_analyze_total",
			metric.WithDescription("Total number of analyzed files"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsTotal, err = meter.Int64Counter(
			"jslint_diagnostics_total",
			metric.WithDescription("Diagnostics emitted by rule and severity"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rulePanicsTotal, err = meter.Int64Counter(
			"jslint_rule_panics_total",
			metric.WithDescription("Rule jobs that panicked and were dropped"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordAnalyzeMetrics records metrics for one Analyze call.
func recordAnalyzeMetrics(ctx context.Context, language string, duration time.Duration, diags []Diagnostic, panics int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	)
	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)

	for i := range diags {
		diagnosticsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("rule", diags[i].Rule),
			attribute.String("severity", diags[i].Severity.String()),
		))
	}
	if panics > 0 {
		rulePanicsTotal.Add(ctx, int64(panics))
	}
}

// startAnalyzeSpan creates a span for an Analyze call.
func startAnalyzeSpan(ctx context.Context, filePath, language string, ruleCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "analyzer.Analyze",
		trace.WithAttributes(
			attribute.String("analyzer.file", filePath),
			attribute.String("analyzer.language", language),
			attribute.Int("analyzer.rule_count", ruleCount),
		),
	)
}

// setAnalyzeSpanResult sets result attributes on an Analyze span.
func setAnalyzeSpanResult(span trace.Span, result *Result) {
	span.SetAttributes(
		attribute.Int("analyzer.jobs", result.JobsRun),
		attribute.Int("analyzer.diagnostics", len(result.Diagnostics)),
		attribute.Int("analyzer.rule_panics", result.RulePanics),
	)
}
