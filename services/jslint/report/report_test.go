// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

const badExtendsSrc = "class A extends undefined {\n    constructor() {\n        super();\n    }\n}\n"

func sampleRun() *Run {
	run := NewRun([]analyzer.RuleMetadata{{Name: "noInvalidConstructorSuper", Group: "nursery"}})
	run.Duration = 12 * time.Millisecond
	run.Files = []FileResult{
		{
			Path:     "b.js",
			Language: "javascript",
			Source:   []byte(badExtendsSrc),
			Diagnostics: []analyzer.Diagnostic{{
				Category: "lint/nursery/noInvalidConstructorSuper",
				Rule:     "noInvalidConstructorSuper",
				Severity: analyzer.SeverityError,
				File:     "b.js",
				Range:    syntax.TextRange{Start: 56, End: 63},
				Start:    syntax.Position{Line: 3, Column: 9},
				End:      syntax.Position{Line: 3, Column: 16},
				Message:  "This class calls super(), but the class extends from a non-constructor.",
				Details: []analyzer.Detail{{
					Range:   syntax.TextRange{Start: 16, End: 25},
					Start:   syntax.Position{Line: 1, Column: 17},
					End:     syntax.Position{Line: 1, Column: 26},
					Message: "This is where the non-constructor is used.",
				}},
			}},
		},
		{Path: "a.js", Language: "javascript"},
		{Path: "c.js", Error: "file too large"},
	}
	run.SortFiles()
	return run
}

func TestNewRun(t *testing.T) {
	run := NewRun(nil)
	_, err := uuid.Parse(run.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, run.ID, NewRun(nil).ID)
	assert.False(t, run.StartedAt.IsZero())
}

func TestSummary(t *testing.T) {
	run := sampleRun()
	assert.Equal(t, "a.js", run.Files[0].Path)

	s := run.Summary()
	assert.Equal(t, Summary{Files: 3, FailedFiles: 1, Errors: 1}, s)
	assert.True(t, run.HasErrors())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRun(), Options{Format: FormatText}))
	out := buf.String()

	assert.Contains(t, out, "b.js:3:9 lint/nursery/noInvalidConstructorSuper\n")
	assert.Contains(t, out, "  ✖ This class calls super(), but the class extends from a non-constructor.\n")
	assert.Contains(t, out, "> 3 │         super();\n")
	assert.Contains(t, out, "│         ^^^^^^^\n")
	assert.Contains(t, out, "  ℹ This is where the non-constructor is used.\n")
	assert.Contains(t, out, "> 1 │ class A extends undefined {\n")
	assert.Contains(t, out, "│                 ^^^^^^^^^\n")
	assert.Contains(t, out, "c.js internalError/io\n  file too large\n")
	assert.Contains(t, out, "Checked 3 files in 12ms.\n")
	assert.Contains(t, out, "Found 1 error.\n")
	assert.Contains(t, out, "1 file could not be analysed.\n")
	assert.NotContains(t, out, "\x1b[", "no ANSI codes without color")
}

func TestWriteText_MaxDiagnostics(t *testing.T) {
	run := sampleRun()
	run.Files[1].Diagnostics = append(run.Files[1].Diagnostics, run.Files[1].Diagnostics[0])

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, run, Options{Format: FormatText, MaxDiagnostics: 1}))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, "b.js:3:9"))
	assert.Contains(t, out, "1 more diagnostics not shown")
	assert.Contains(t, out, "Found 2 errors.")
}

func TestWriteJSON(t *testing.T) {
	run := sampleRun()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, run, Options{Format: FormatJSON, MaxDiagnostics: 1}))

	var decoded struct {
		ID      string  `json:"id"`
		Summary Summary `json:"summary"`
		Files   []struct {
			Path        string                `json:"path"`
			Diagnostics []analyzer.Diagnostic `json:"diagnostics"`
			Error       string                `json:"error"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, run.ID, decoded.ID)
	assert.Equal(t, 1, decoded.Summary.Errors)
	require.Len(t, decoded.Files, 3)
	assert.Equal(t, "b.js", decoded.Files[1].Path)
	assert.Equal(t, run.Files[1].Diagnostics, decoded.Files[1].Diagnostics)
	assert.Equal(t, "file too large", decoded.Files[2].Error)
	assert.NotContains(t, buf.String(), "Source")
	assert.Contains(t, buf.String(), `"severity": "error"`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Error(t, Write(&bytes.Buffer{}, sampleRun(), Options{Format: "xml"}))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "\t  ", padding("\tab c", 3))
	assert.Equal(t, "", padding("abc", 0))
}
