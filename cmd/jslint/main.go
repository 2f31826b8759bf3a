// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command jslint checks JavaScript and TypeScript sources for invalid
// constructor super() usage.
//
// Usage:
//
//	jslint check ./src
//	jslint check --format json --cache-dir .jslint-cache ./src ./lib/index.ts
//	jslint watch ./src
//	jslint rules
//
// Exit codes:
//
//	0 - No error-severity diagnostics.
//	1 - At least one error-severity diagnostic was reported.
//	2 - Usage, configuration, or I/O failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

// errLintErrors signals that diagnostics of error severity were found.
var errLintErrors = errors.New("lint errors found")

const (
	exitOK      = 0
	exitLint    = 1
	exitFailure = 2
)

// app holds state shared by all subcommands.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	logLevel string
	logger   *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI and maps the outcome to an exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, logger: slog.Default()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errLintErrors):
		return exitLint
	default:
		fmt.Fprintf(stderr, "jslint: %v\n", err)
		return exitFailure
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jslint",
		Short: "Lint JavaScript and TypeScript class constructors",
		Long: `jslint parses JavaScript and TypeScript with tree-sitter and reports
constructors that misuse super(): derived classes that never call it,
classes without a superclass that do, and classes that extend from a
value which can never be a constructor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initLogging()
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		a.checkCmd(),
		a.watchCmd(),
		a.rulesCmd(),
		a.versionCmd(),
	)
	return root
}

// initLogging installs a stderr text logger at the requested level.
func (a *app) initLogging() error {
	var level slog.Level
	switch strings.ToLower(a.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", a.logLevel)
	}

	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "jslint %s (commit %s)\n", version, commit)
			return err
		},
	}
}
