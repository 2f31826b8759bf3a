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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// paint styles a fragment of output.
type paint func(string) string

func plain(s string) string { return s }

// render adapts a lipgloss style's variadic Render to paint.
func render(st lipgloss.Style) paint { return func(s string) string { return st.Render(s) } }

// palette holds the styles of one text render.
type palette struct {
	header  paint
	err     paint
	warning paint
	info    paint
	gutter  paint
	caret   paint
	dim     paint
}

func newPalette(w io.Writer, color bool) palette {
	if !color {
		return palette{plain, plain, plain, plain, plain, plain, plain}
	}
	re := lipgloss.NewRenderer(w)
	return palette{
		header:  render(re.NewStyle().Bold(true)),
		err:     render(re.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)),
		warning: render(re.NewStyle().Foreground(lipgloss.Color("214"))),
		info:    render(re.NewStyle().Foreground(lipgloss.Color("39"))),
		gutter:  render(re.NewStyle().Foreground(lipgloss.Color("241"))),
		caret:   render(re.NewStyle().Foreground(lipgloss.Color("196"))),
		dim:     render(re.NewStyle().Foreground(lipgloss.Color("241"))),
	}
}

func (p palette) severity(s analyzer.Severity) (string, paint) {
	switch s {
	case analyzer.SeverityError:
		return "✖", p.err
	case analyzer.SeverityWarning:
		return "⚠", p.warning
	default:
		return "ℹ", p.info
	}
}

func writeText(w io.Writer, run *Run, opts Options) error {
	bw := bufio.NewWriter(w)
	p := newPalette(w, opts.Color)

	shown, hidden := 0, 0
	for i := range run.Files {
		f := &run.Files[i]
		if f.Error != "" {
			fmt.Fprintf(bw, "%s %s\n  %s\n\n", p.header(f.Path), p.err("internalError/io"), f.Error)
			continue
		}
		if len(f.Diagnostics) == 0 {
			continue
		}
		lines := splitLines(f.Source)
		for j := range f.Diagnostics {
			if opts.MaxDiagnostics > 0 && shown >= opts.MaxDiagnostics {
				hidden++
				continue
			}
			writeDiagnostic(bw, p, &f.Diagnostics[j], lines)
			shown++
		}
	}

	if hidden > 0 {
		fmt.Fprintf(bw, "%s\n\n", p.dim(fmt.Sprintf("%d more diagnostics not shown (--max-diagnostics %d).", hidden, opts.MaxDiagnostics)))
	}
	writeSummary(bw, p, run)
	return bw.Flush()
}

func writeDiagnostic(w io.Writer, p palette, d *analyzer.Diagnostic, lines []string) {
	symbol, color := p.severity(d.Severity)
	fmt.Fprintf(w, "%s %s\n", p.header(d.Location()), p.dim(d.Category))
	fmt.Fprintf(w, "  %s %s\n", color(symbol), d.Message)
	writeFrame(w, p, lines, d.Start, d.End)

	for _, det := range d.Details {
		fmt.Fprintf(w, "  %s %s\n", p.info("ℹ"), det.Message)
		writeFrame(w, p, lines, det.Start, det.End)
	}
	fmt.Fprintln(w)
}

// writeFrame prints the blamed line with one line of context on each side
// and carets under the blamed columns. Ranges spanning lines are
// underlined to the end of their first line.
func writeFrame(w io.Writer, p palette, lines []string, start, end syntax.Position) {
	if start.Line < 1 || start.Line > len(lines) {
		return
	}
	first := max(start.Line-1, 1)
	last := min(start.Line+1, len(lines))
	width := len(strconv.Itoa(last))

	fmt.Fprintln(w)
	for n := first; n <= last; n++ {
		marker := "  "
		if n == start.Line {
			marker = p.caret("> ")
		}
		num := fmt.Sprintf("%*d", width, n)
		fmt.Fprintf(w, "  %s%s %s %s\n", marker, p.gutter(num), p.gutter("│"), lines[n-1])

		if n != start.Line {
			continue
		}
		line := lines[n-1]
		endCol := utf8.RuneCountInString(line) + 1
		if end.Line == start.Line && end.Column > start.Column {
			endCol = end.Column
		}
		fmt.Fprintf(w, "    %s %s %s%s\n",
			strings.Repeat(" ", width),
			p.gutter("│"),
			padding(line, start.Column-1),
			p.caret(strings.Repeat("^", max(endCol-start.Column, 1))))
	}
	fmt.Fprintln(w)
}

// padding returns whitespace as wide as the first cols runes of line,
// keeping tabs so carets line up.
func padding(line string, cols int) string {
	var sb strings.Builder
	for i, r := range []rune(line) {
		if i >= cols {
			break
		}
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}

func splitLines(src []byte) []string {
	if len(src) == 0 {
		return nil
	}
	lines := strings.Split(string(src), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func writeSummary(w io.Writer, p palette, run *Run) {
	s := run.Summary()
	fmt.Fprintf(w, "Checked %s in %s.", plural(s.Files, "file"), run.Duration.Round(time.Millisecond))
	if run.CacheHits > 0 {
		fmt.Fprintf(w, " %d from cache.", run.CacheHits)
	}
	fmt.Fprintln(w)

	if s.Errors > 0 {
		fmt.Fprintln(w, p.err(fmt.Sprintf("Found %s.", plural(s.Errors, "error"))))
	}
	if s.Warnings > 0 {
		fmt.Fprintln(w, p.warning(fmt.Sprintf("Found %s.", plural(s.Warnings, "warning"))))
	}
	if s.Infos > 0 {
		fmt.Fprintln(w, p.info(fmt.Sprintf("Found %s.", plural(s.Infos, "info"))))
	}
	if s.FailedFiles > 0 {
		fmt.Fprintln(w, p.err(fmt.Sprintf("%s could not be analysed.", plural(s.FailedFiles, "file"))))
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
