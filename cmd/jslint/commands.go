// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
	"github.com/AleutianAI/jslint/services/jslint/cache"
	"github.com/AleutianAI/jslint/services/jslint/config"
	"github.com/AleutianAI/jslint/services/jslint/report"
	"github.com/AleutianAI/jslint/services/jslint/rules"
	"github.com/AleutianAI/jslint/services/jslint/runner"
)

// lintFlags are shared by check and watch.
type lintFlags struct {
	configPath     string
	format         string
	workers        int
	cacheDir       string
	maxDiagnostics int
	noColor        bool
	otelStdout     bool
	debounce       time.Duration
}

func (f *lintFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "Path to a jslint YAML config (default: built-in)")
	fl.StringVarP(&f.format, "format", "f", "text", "Output format (text, json)")
	fl.IntVarP(&f.workers, "workers", "w", 0, "Files checked concurrently (0 = config or GOMAXPROCS)")
	fl.StringVar(&f.cacheDir, "cache-dir", "", "Directory of the result cache (disabled when empty)")
	fl.IntVar(&f.maxDiagnostics, "max-diagnostics", 20, "Diagnostics printed in text output (0 = all)")
	fl.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fl.BoolVar(&f.otelStdout, "otel-stdout", false, "Export traces and metrics to stderr")
}

// session is everything a lint command needs, built from flags.
type session struct {
	cfg      *config.Config
	registry *analyzer.Registry
	engine   *analyzer.Engine
	runner   *runner.Runner
	opts     report.Options
	closers  []func(context.Context) error
}

func (s *session) close(ctx context.Context, logger *slog.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			logger.Warn("shutdown failed", slog.String("error", err.Error()))
		}
	}
}

// newSession loads configuration and wires engine, cache and runner.
// On error every resource opened so far has been released.
func (a *app) newSession(ctx context.Context, f *lintFlags) (_ *session, err error) {
	s := &session{}
	defer func() {
		if err != nil {
			s.close(context.Background(), a.logger)
		}
	}()

	format, err := report.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}
	if f.maxDiagnostics < 0 {
		return nil, fmt.Errorf("--max-diagnostics must not be negative")
	}
	s.opts = report.Options{
		Format:         format,
		Color:          !f.noColor && report.IsTerminal(a.stdout),
		MaxDiagnostics: f.maxDiagnostics,
	}

	if f.otelStdout {
		shutdown, err := initTelemetry(a.stderr)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, shutdown)
	}

	if f.configPath != "" {
		s.cfg, err = config.LoadFile(ctx, f.configPath)
	} else {
		s.cfg, err = config.Default(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.registry, err = rules.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, name := range s.cfg.UnknownRules(s.registry.Rules()) {
		a.logger.Warn("unknown rule in configuration", slog.String("rule", name))
	}

	s.engine = analyzer.NewEngine(s.registry,
		analyzer.WithSelector(s.cfg),
		analyzer.WithLogger(a.logger))

	var c *cache.Cache
	if f.cacheDir != "" {
		cacheCfg := cache.DefaultConfig(f.cacheDir)
		cacheCfg.Logger = a.logger
		c, err = cache.Open(cacheCfg)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return c.Close() })
	}

	s.runner = runner.New(s.engine, s.cfg,
		runner.WithCache(c),
		runner.WithWorkers(f.workers),
		runner.WithDebounce(f.debounce),
		runner.WithLogger(a.logger))
	return s, nil
}

func (a *app) checkCmd() *cobra.Command {
	var f lintFlags
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check files and directories",
		Long: `Check every JavaScript and TypeScript file under the given paths.
Directories are walked recursively; node_modules, .git and excluded
patterns are skipped. Defaults to the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd.Context(), &f, pathsOrCwd(args))
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) runCheck(ctx context.Context, f *lintFlags, paths []string) error {
	s, err := a.newSession(ctx, f)
	if err != nil {
		return err
	}
	defer s.close(context.Background(), a.logger)

	run, err := s.runner.Run(ctx, paths)
	if err != nil {
		return err
	}
	if err := report.Write(a.stdout, run, s.opts); err != nil {
		return err
	}
	if run.HasErrors() {
		return errLintErrors
	}
	return nil
}

func (a *app) watchCmd() *cobra.Command {
	var f lintFlags
	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Check paths, then re-check files as they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context(), &f, pathsOrCwd(args))
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&f.debounce, "debounce", 100*time.Millisecond, "Quiet period before a changed file is re-checked")
	return cmd
}

func (a *app) runWatch(ctx context.Context, f *lintFlags, paths []string) error {
	s, err := a.newSession(ctx, f)
	if err != nil {
		return err
	}
	defer s.close(context.Background(), a.logger)

	run, err := s.runner.Run(ctx, paths)
	if err != nil {
		return err
	}
	if err := report.Write(a.stdout, run, s.opts); err != nil {
		return err
	}

	active := s.engine.ActiveRules()
	return s.runner.Watch(ctx, paths, func(res report.FileResult) {
		single := report.NewRun(active)
		single.Files = []report.FileResult{res}
		single.Duration = res.Duration
		if res.Cached {
			single.CacheHits = 1
		}
		if err := report.Write(a.stdout, single, s.opts); err != nil {
			a.logger.Warn("cannot write report", slog.String("error", err.Error()))
		}
	})
}

// ruleRow is one line of the rules listing.
type ruleRow struct {
	analyzer.RuleMetadata
	Category string            `json:"category"`
	Enabled  bool              `json:"enabled"`
	Severity analyzer.Severity `json:"severity"`
}

func (a *app) rulesCmd() *cobra.Command {
	var configPath, format string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available rules and their configured state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var cfg *config.Config
			var err error
			if configPath != "" {
				cfg, err = config.LoadFile(ctx, configPath)
			} else {
				cfg, err = config.Default(ctx)
			}
			if err != nil {
				return err
			}
			reg, err := rules.NewRegistry()
			if err != nil {
				return err
			}

			var rows []ruleRow
			for _, meta := range reg.Rules() {
				rows = append(rows, ruleRow{
					RuleMetadata: meta,
					Category:     meta.Category(),
					Enabled:      cfg.RuleEnabled(meta),
					Severity:     cfg.RuleSeverity(meta),
				})
			}

			switch format {
			case "json":
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			case "text":
				_, err := fmt.Fprintln(a.stdout, rulesTable(a.stdout, rows))
				return err
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a jslint YAML config (default: built-in)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	return cmd
}

// rulesTable renders rows as a borderless table. The header is bold when
// w is a terminal.
func rulesTable(w io.Writer, rows []ruleRow) string {
	re := lipgloss.NewRenderer(w)
	header := re.NewStyle().Bold(true).PaddingRight(2)
	cell := re.NewStyle().PaddingRight(2)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("RULE", "SEVERITY", "ENABLED", "RECOMMENDED", "SINCE")
	for _, r := range rows {
		t.Row(r.Category, r.Severity.String(), strconv.FormatBool(r.Enabled), strconv.FormatBool(r.Recommended), r.Version)
	}
	return t.Render()
}

func pathsOrCwd(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}
