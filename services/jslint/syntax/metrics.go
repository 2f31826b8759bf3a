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

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for parsing.
var (
	tracer = otel.Tracer("aleutian.jslint.syntax")
	meter  = otel.Meter("aleutian.jslint.syntax")
)

// Metrics for parse operations.
var (
	parseLatency metric.Float64Histogram
	parseTotal   metric.Int64Counter
	nodesBuilt   metric.Int64Histogram
	parseErrors  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"jslint_parse_duration_seconds",
			metric.WithDescription("Duration of syntax tree construction"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"jslint_parse_total",
			metric.WithDescription("Total number of parse operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesBuilt, err = meter.Int64Histogram(
			"jslint_parse_nodes",
			metric.WithDescription("Number of syntax nodes per parsed file"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseErrors, err = meter.Int64Counter(
			"jslint_parse_errors_total",
			metric.WithDescription("Total number of failed parse operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordParseMetrics records metrics for a parse operation.
func recordParseMetrics(ctx context.Context, language string, duration time.Duration, nodeCount int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	)

	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)

	if success {
		nodesBuilt.Record(ctx, int64(nodeCount),
			metric.WithAttributes(attribute.String("language", language)),
		)
	} else {
		parseErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("language", language)),
		)
	}
}

// startParseSpan creates a span for a parse operation.
//
// Returns:
//   - ctx: Context with span
//   - span: The created span (caller must call span.End())
func startParseSpan(ctx context.Context, language, filePath string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "syntax.Parse",
		trace.WithAttributes(
			attribute.String("syntax.language", language),
			attribute.String("syntax.file", filePath),
			attribute.Int("syntax.content_size", contentSize),
		),
	)
}

// setParseSpanResult sets the result attributes on a parse span.
func setParseSpanResult(span trace.Span, nodeCount int, hasErrors bool) {
	span.SetAttributes(
		attribute.Int("syntax.node_count", nodeCount),
		attribute.Bool("syntax.has_errors", hasErrors),
	)
}
