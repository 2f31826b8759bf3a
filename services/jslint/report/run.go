// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders lint runs for humans and machines.
//
// # Formats
//
//	| Format | Output                                              |
//	|--------|-----------------------------------------------------|
//	| text   | header, message, code frame with carets, notes      |
//	| json   | the Run struct, indented                            |
//
// Text output is coloured only when the destination is a terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
)

// =============================================================================
// RUN
// =============================================================================

// FileResult is the outcome for one file.
type FileResult struct {
	// Path is the file path as given or discovered.
	Path string `json:"path"`

	// Language is the grammar used, empty if the file was not parsed.
	Language string `json:"language,omitempty"`

	// Diagnostics are sorted by position.
	Diagnostics []analyzer.Diagnostic `json:"diagnostics"`

	// HasSyntaxErrors is true when the parser recovered from errors.
	HasSyntaxErrors bool `json:"has_syntax_errors,omitempty"`

	// Cached is true when the result came from the cache.
	Cached bool `json:"cached,omitempty"`

	// Error is set when the file could not be analysed.
	Error string `json:"error,omitempty"`

	// Duration is the time spent on this file.
	Duration time.Duration `json:"duration"`

	// Source is kept for code frames and never serialised.
	Source []byte `json:"-"`
}

// Run is one invocation of the linter over a set of paths.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`

	// Rules lists the rules that were active.
	Rules []analyzer.RuleMetadata `json:"rules"`

	// Files holds per-file results sorted by path.
	Files []FileResult `json:"files"`

	// CacheHits counts files served from the cache.
	CacheHits int `json:"cache_hits,omitempty"`
}

// NewRun starts a run with a fresh ID.
func NewRun(rules []analyzer.RuleMetadata) *Run {
	return &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		Rules:     rules,
	}
}

// SortFiles orders files by path.
func (r *Run) SortFiles() {
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
}

// Summary aggregates a run.
type Summary struct {
	Files       int `json:"files"`
	FailedFiles int `json:"failed_files"`
	Errors      int `json:"errors"`
	Warnings    int `json:"warnings"`
	Infos       int `json:"infos"`
}

// Summary counts files and diagnostics by severity.
func (r *Run) Summary() Summary {
	s := Summary{Files: len(r.Files)}
	for i := range r.Files {
		f := &r.Files[i]
		if f.Error != "" {
			s.FailedFiles++
		}
		for j := range f.Diagnostics {
			switch f.Diagnostics[j].Severity {
			case analyzer.SeverityError:
				s.Errors++
			case analyzer.SeverityWarning:
				s.Warnings++
			default:
				s.Infos++
			}
		}
	}
	return s
}

// HasErrors reports whether any error-severity diagnostic was found.
func (r *Run) HasErrors() bool {
	return r.Summary().Errors > 0
}

// =============================================================================
// FORMAT
// =============================================================================

// Format selects the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

// Options controls rendering.
type Options struct {
	Format Format

	// Color enables ANSI styling of text output.
	Color bool

	// MaxDiagnostics caps text output. 0 means no limit. JSON output is
	// never truncated.
	MaxDiagnostics int
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Write renders run to w.
func Write(w io.Writer, run *Run, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, run)
	case FormatText, "":
		return writeText(w, run, opts)
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}
