// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package runner checks files and directories with the analysis engine.
package runner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
	"github.com/AleutianAI/jslint/services/jslint/cache"
	"github.com/AleutianAI/jslint/services/jslint/config"
	"github.com/AleutianAI/jslint/services/jslint/report"
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

var tracer = otel.Tracer("aleutian.jslint.runner")

// ErrNoPaths indicates Run was called without paths.
var ErrNoPaths = errors.New("no paths to check")

// alwaysSkipped directories are never descended into.
var alwaysSkipped = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner discovers, parses and analyses files.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	engine   *analyzer.Engine
	cfg      *config.Config
	cache    *cache.Cache
	workers  int
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithCache enables the result cache. nil disables it.
func WithCache(c *cache.Cache) Option {
	return func(r *Runner) {
		r.cache = c
	}
}

// WithWorkers sets file-level concurrency. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithDebounce sets how long Watch waits for writes to settle.
func WithDebounce(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a runner.
//
// Inputs:
//
//	engine - The analysis engine. Must not be nil.
//	cfg    - Configuration for file selection and limits. Must not be nil.
//	opts   - Optional configuration.
//
// Outputs:
//
//	*Runner - Workers default to cfg.Workers, or GOMAXPROCS when 0.
func New(engine *analyzer.Engine, cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		engine:   engine,
		cfg:      cfg,
		workers:  cfg.Workers,
		debounce: 100 * time.Millisecond,
		logger:   slog.Default(),
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run checks every file under paths.
//
// Description:
//
//	Directories are walked recursively, skipping node_modules, .git and
//	excluded patterns. Files named explicitly are always checked when
//	their language is supported. Files are processed concurrently; a
//	file that cannot be read or parsed is recorded on its FileResult and
//	does not stop the run.
//
// Inputs:
//
//	ctx   - Context for cancellation.
//	paths - Files and directories to check.
//
// Outputs:
//
//	*report.Run - Results sorted by path.
//	error       - ErrNoPaths, a missing path, or the context error.
func (r *Runner) Run(ctx context.Context, paths []string) (*report.Run, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	ctx, span := tracer.Start(ctx, "runner.Run")
	defer span.End()

	run := report.NewRun(r.engine.ActiveRules())

	files, err := r.Discover(paths)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discover failed")
		return nil, err
	}

	results := make([]report.FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.CheckFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "canceled")
		return nil, fmt.Errorf("run: %w", err)
	}

	run.Files = results
	for i := range results {
		if results[i].Cached {
			run.CacheHits++
		}
	}
	run.SortFiles()
	run.Duration = time.Since(run.StartedAt)

	summary := run.Summary()
	span.SetAttributes(
		attribute.String("run.id", run.ID),
		attribute.Int("run.files", summary.Files),
		attribute.Int("run.errors", summary.Errors),
		attribute.Int("run.cache_hits", run.CacheHits),
	)
	r.logger.Info("check complete",
		slog.String("run_id", run.ID),
		slog.Int("files", summary.Files),
		slog.Int("errors", summary.Errors),
		slog.Int("warnings", summary.Warnings),
		slog.Int("failed_files", summary.FailedFiles),
		slog.Int("cache_hits", run.CacheHits),
		slog.Duration("duration", run.Duration),
	)
	return run, nil
}

// Discover expands paths into the sorted, de-duplicated list of files
// Run would check.
func (r *Runner) Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", root, err)
		}
		if !info.IsDir() {
			if syntax.LanguageForPath(root) != syntax.LanguageUnknown {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				r.logger.Warn("skipping unreadable path",
					slog.String("path", p),
					slog.String("error", err.Error()))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if p == root {
				return nil
			}
			rel := relSlash(root, p)
			if d.IsDir() {
				if alwaysSkipped[d.Name()] || r.cfg.Excluded(rel) {
					return fs.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && r.cfg.AcceptsExtension(p) && !r.cfg.Excluded(rel) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// CheckFile analyses one file. Failures are recorded on the result.
func (r *Runner) CheckFile(ctx context.Context, path string) report.FileResult {
	start := time.Now()
	result := report.FileResult{Path: path}

	fail := func(err error) report.FileResult {
		r.logger.Warn("file not analysed",
			slog.String("file", path),
			slog.String("error", err.Error()))
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	limit := r.cfg.MaxFileSize
	if limit <= 0 {
		limit = syntax.DefaultMaxFileSize
	}
	info, err := os.Stat(path)
	if err != nil {
		return fail(err)
	}
	if info.Size() > int64(limit) {
		return fail(fmt.Errorf("%w: %d bytes exceeds %d", syntax.ErrFileTooLarge, info.Size(), limit))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	result.Source = content

	sum := sha256.Sum256(content)
	key := cache.Key(syntax.LanguageForPath(path).String(), hex.EncodeToString(sum[:]), r.engine.Fingerprint())
	if entry, ok := r.cache.Get(ctx, key); ok {
		result.Language = entry.Language
		result.HasSyntaxErrors = entry.HasSyntaxErrors
		result.Diagnostics = withFile(entry.Diagnostics, path)
		result.Cached = true
		result.Duration = time.Since(start)
		return result
	}

	tree, err := syntax.Parse(ctx, content, path, syntax.WithMaxFileSize(limit))
	if err != nil {
		return fail(err)
	}
	analysis, err := r.engine.Analyze(ctx, tree)
	if err != nil {
		return fail(err)
	}

	result.Language = analysis.Language
	result.HasSyntaxErrors = analysis.HasSyntaxErrors
	result.Diagnostics = analysis.Diagnostics
	result.Duration = time.Since(start)

	r.cache.Put(ctx, key, &cache.Entry{
		Language:        analysis.Language,
		HasSyntaxErrors: analysis.HasSyntaxErrors,
		Diagnostics:     analysis.Diagnostics,
	})
	return result
}

// withFile rewrites the file of cached diagnostics. Identical content at
// two paths shares one cache entry.
func withFile(diags []analyzer.Diagnostic, path string) []analyzer.Diagnostic {
	if len(diags) == 0 {
		return nil
	}
	out := make([]analyzer.Diagnostic, len(diags))
	for i := range diags {
		out[i] = diags[i]
		out[i].File = path
	}
	return out
}

func relSlash(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
