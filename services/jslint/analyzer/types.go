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
	"errors"
	"fmt"
	"time"

	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// Sentinel errors.
var (
	// ErrInvalidInput indicates a nil context, tree or rule.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateRule indicates a rule name registered twice.
	ErrDuplicateRule = errors.New("duplicate rule")

	// ErrInvalidRule indicates a rule with no name or no query kinds.
	ErrInvalidRule = errors.New("invalid rule")
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	// SeverityInfo is informational and never fails a run.
	SeverityInfo Severity = iota

	// SeverityWarning should be looked at but does not fail a run.
	SeverityWarning

	// SeverityError fails a run.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// SeverityFromString parses a severity string.
//
// Description:
//
//	Accepts the common spellings used by linters. Unknown values default
//	to SeverityWarning.
//
// Inputs:
//
//	s - Severity string (e.g., "error", "warning", "info")
//
// Outputs:
//
//	Severity - The parsed severity level
func SeverityFromString(s string) Severity {
	switch s {
	case "error", "err", "fatal", "critical":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "info", "note", "style", "hint":
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// MarshalText encodes the severity as its name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = SeverityFromString(string(text))
	return nil
}

// =============================================================================
// RULE METADATA
// =============================================================================

// RuleMetadata is the static identity of a rule.
//
// Thread Safety: Immutable value.
type RuleMetadata struct {
	// Name is the rule identifier, e.g. "noInvalidConstructorSuper".
	Name string `json:"name"`

	// Group is the rule group, e.g. "nursery".
	Group string `json:"group"`

	// Version is the release the rule first shipped in.
	Version string `json:"version"`

	// Recommended rules are enabled when no configuration says otherwise.
	Recommended bool `json:"recommended"`

	// DefaultSeverity applies when configuration does not override it.
	DefaultSeverity Severity `json:"default_severity"`

	// Docs is a one-line description.
	Docs string `json:"docs,omitempty"`
}

// Category returns "lint/<group>/<name>".
func (m RuleMetadata) Category() string {
	return "lint/" + m.Group + "/" + m.Name
}

// =============================================================================
// RULE DIAGNOSTIC
// =============================================================================

// RuleDiagnostic is what a rule produces for one signal: a primary range
// and message, plus optional secondary annotations. Positions and
// severity are filled in by the engine.
type RuleDiagnostic struct {
	Range   syntax.TextRange
	Message string
	Details []RuleDetail
}

// RuleDetail annotates a related location.
type RuleDetail struct {
	Range   syntax.TextRange
	Message string
}

// NewRuleDiagnostic creates a diagnostic blaming r.
func NewRuleDiagnostic(r syntax.TextRange, message string) *RuleDiagnostic {
	return &RuleDiagnostic{Range: r, Message: message}
}

// Detail appends a secondary annotation and returns d for chaining.
func (d *RuleDiagnostic) Detail(r syntax.TextRange, message string) *RuleDiagnostic {
	d.Details = append(d.Details, RuleDetail{Range: r, Message: message})
	return d
}

// =============================================================================
// DIAGNOSTIC
// =============================================================================

// Diagnostic is a resolved finding ready for reporting.
//
// Thread Safety: Immutable after creation by the engine.
type Diagnostic struct {
	// Category is "lint/<group>/<rule>".
	Category string `json:"category"`

	// Rule is the rule name.
	Rule string `json:"rule"`

	// Severity is the configured severity of the rule.
	Severity Severity `json:"severity"`

	// File is the analysed file path.
	File string `json:"file"`

	// Range is the blamed byte range.
	Range syntax.TextRange `json:"range"`

	// Start is the 1-indexed position of Range.Start.
	Start syntax.Position `json:"start"`

	// End is the 1-indexed position of Range.End.
	End syntax.Position `json:"end"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Details are secondary annotations on related locations.
	Details []Detail `json:"details,omitempty"`
}

// Detail is a resolved secondary annotation.
type Detail struct {
	Range   syntax.TextRange `json:"range"`
	Start   syntax.Position  `json:"start"`
	End     syntax.Position  `json:"end"`
	Message string           `json:"message"`
}

// Location returns "file:line:col".
func (d *Diagnostic) Location() string {
	return fmt.Sprintf("%s:%d:%d", d.File, d.Start.Line, d.Start.Column)
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of analysing one tree.
type Result struct {
	// File is the analysed file path.
	File string `json:"file"`

	// Language is the grammar the file was parsed with.
	Language string `json:"language"`

	// Diagnostics are sorted by position, rule and message.
	Diagnostics []Diagnostic `json:"diagnostics"`

	// HasSyntaxErrors is true when the tree contains recovered errors.
	HasSyntaxErrors bool `json:"has_syntax_errors,omitempty"`

	// NodesVisited is the number of nodes walked.
	NodesVisited int `json:"nodes_visited"`

	// JobsRun is the number of (rule, node) analyses executed.
	JobsRun int `json:"jobs_run"`

	// RulePanics counts jobs that panicked and were dropped.
	RulePanics int `json:"rule_panics,omitempty"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`
}

// CountBySeverity returns how many diagnostics have severity s.
func (r *Result) CountBySeverity(s Severity) int {
	count := 0
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Severity == s {
			count++
		}
	}
	return count
}

// HasErrors returns true if any diagnostic has SeverityError.
func (r *Result) HasErrors() bool {
	return r.CountBySeverity(SeverityError) > 0
}
