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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

const (
	// DefaultMaxFileSize is the default upper bound on parsed content.
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB

	// WarnFileSize logs a warning when content exceeds it.
	WarnFileSize = 1024 * 1024 // 1MB

	kindComment     = "comment"
	kindHTMLComment = "html_comment"
)

// Position is a 1-indexed line and column. Columns count runes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Tree is an immutable syntax tree for one source file.
//
// Thread Safety: Immutable after Parse returns; safe for concurrent reads.
type Tree struct {
	filePath   string
	language   Language
	source     []byte
	hash       string
	root       *Node
	lineStarts []uint32
	hasErrors  bool
	nodeCount  int
}

// FilePath returns the path the tree was parsed from.
func (t *Tree) FilePath() string { return t.filePath }

// Language returns the grammar used to parse the tree.
func (t *Tree) Language() Language { return t.language }

// Source returns the parsed source bytes. The slice must not be modified.
func (t *Tree) Source() []byte { return t.source }

// Hash returns the hex SHA-256 of the source.
func (t *Tree) Hash() string { return t.hash }

// Root returns the program node.
func (t *Tree) Root() *Node { return t.root }

// HasErrors reports whether tree-sitter recovered from syntax errors.
// The tree is still usable; affected regions contain ERROR or missing nodes.
func (t *Tree) HasErrors() bool { return t.hasErrors }

// NodeCount returns the total number of nodes in the tree.
func (t *Tree) NodeCount() int { return t.nodeCount }

// Slice returns the source text for r, clamped to the source bounds.
func (t *Tree) Slice(r TextRange) string {
	end := min(int(r.End), len(t.source))
	start := min(int(r.Start), end)
	return string(t.source[start:end])
}

// Position converts a byte offset into a 1-indexed line and column.
func (t *Tree) Position(offset uint32) Position {
	if offset > uint32(len(t.source)) {
		offset = uint32(len(t.source))
	}
	line := sort.Search(len(t.lineStarts), func(i int) bool {
		return t.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	lineStart := t.lineStarts[line]
	return Position{
		Line:   line + 1,
		Column: utf8.RuneCount(t.source[lineStart:offset]) + 1,
	}
}

// Line returns the text of a 1-indexed line without its terminator.
func (t *Tree) Line(line int) string {
	if line < 1 || line > len(t.lineStarts) {
		return ""
	}
	start := t.lineStarts[line-1]
	end := uint32(len(t.source))
	if line < len(t.lineStarts) {
		end = t.lineStarts[line] - 1
	}
	if end > start && t.source[end-1] == '\r' {
		end--
	}
	return string(t.source[start:end])
}

// Walk visits every node in pre-order. Returning false from fn skips the
// node's children.
func (t *Tree) Walk(fn func(*Node) bool) {
	if t.root == nil {
		return
	}
	stack := []*Node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
}

// NodesOfKind returns every node whose kind is one of kinds, in pre-order.
func (t *Tree) NodesOfKind(kinds ...string) []*Node {
	want := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		want[k] = struct{}{}
	}
	var out []*Node
	t.Walk(func(n *Node) bool {
		if _, ok := want[n.kind]; ok {
			out = append(out, n)
		}
		return true
	})
	return out
}

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

type parseOptions struct {
	maxFileSize int
	language    Language
}

// WithMaxFileSize sets the maximum content size in bytes.
func WithMaxFileSize(size int) ParseOption {
	return func(o *parseOptions) {
		if size > 0 {
			o.maxFileSize = size
		}
	}
}

// WithLanguage forces a grammar instead of detecting it from the path.
func WithLanguage(lang Language) ParseOption {
	return func(o *parseOptions) {
		o.language = lang
	}
}

// Parse builds an immutable Tree from source content.
//
// Description:
//
//	Validates the content, parses it with a fresh tree-sitter parser and
//	copies the result into a Go snapshot with parent links. The tree-sitter
//	tree is closed before returning. Syntax errors do not fail the parse;
//	they are reported through Tree.HasErrors.
//
// Inputs:
//
//	ctx      - Context for cancellation. Checked before and after parsing.
//	content  - Raw source bytes. Must be valid UTF-8.
//	filePath - Path used for language detection and error reporting.
//	opts     - Optional overrides (max size, language).
//
// Outputs:
//
//	*Tree - The parsed tree. Never nil on success.
//	error - ErrUnsupportedLanguage, ErrFileTooLarge, ErrInvalidContent,
//	        ErrParseFailed (all wrapped in *ParseError) or a context error.
//
// Thread Safety:
//
//	Safe for concurrent use. Each call creates its own tree-sitter parser.
func Parse(ctx context.Context, content []byte, filePath string, opts ...ParseOption) (*Tree, error) {
	options := parseOptions{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&options)
	}
	if options.language == LanguageUnknown {
		options.language = LanguageForPath(filePath)
	}
	lang := options.language.String()

	ctx, span := startParseSpan(ctx, lang, filePath, len(content))
	defer span.End()

	start := time.Now()

	if err := ctx.Err(); err != nil {
		recordParseMetrics(ctx, lang, time.Since(start), 0, false)
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	grammar := options.language.grammar()
	if grammar == nil {
		recordParseMetrics(ctx, lang, time.Since(start), 0, false)
		return nil, newParseError(filePath, ErrUnsupportedLanguage, "no grammar for extension")
	}

	if len(content) > options.maxFileSize {
		recordParseMetrics(ctx, lang, time.Since(start), 0, false)
		return nil, newParseError(filePath, ErrFileTooLarge, "size %d exceeds limit %d", len(content), options.maxFileSize)
	}

	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		recordParseMetrics(ctx, lang, time.Since(start), 0, false)
		return nil, newParseError(filePath, ErrInvalidContent, "content is not valid UTF-8")
	}

	// New parser per call; tree-sitter parsers are not safe to share.
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)

	tsTree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordParseMetrics(ctx, lang, time.Since(start), 0, false)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("parse canceled: %w", ctxErr)
		}
		return nil, newParseError(filePath, ErrParseFailed, "tree-sitter: %v", err)
	}
	defer tsTree.Close()

	rootNode := tsTree.RootNode()
	if rootNode == nil {
		recordParseMetrics(ctx, lang, time.Since(start), 0, false)
		return nil, newParseError(filePath, ErrParseFailed, "tree-sitter returned nil root node")
	}

	source := make([]byte, len(content))
	copy(source, content)
	hash := sha256.Sum256(source)

	tree := &Tree{
		filePath:   filePath,
		language:   options.language,
		source:     source,
		hash:       hex.EncodeToString(hash[:]),
		lineStarts: computeLineStarts(source),
		hasErrors:  rootNode.HasError(),
	}
	tree.root = tree.snapshot(rootNode)

	if err := ctx.Err(); err != nil {
		recordParseMetrics(ctx, lang, time.Since(start), tree.nodeCount, false)
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", err)
	}

	if tree.hasErrors {
		slog.Debug("source contains syntax errors",
			slog.String("file", filePath),
			slog.String("language", lang))
	}

	setParseSpanResult(span, tree.nodeCount, tree.hasErrors)
	recordParseMetrics(ctx, lang, time.Since(start), tree.nodeCount, true)

	return tree, nil
}

// snapshot copies the tree-sitter tree rooted at root into Go nodes.
// Iterative so deeply nested expressions cannot overflow the stack.
func (t *Tree) snapshot(root *sitter.Node) *Node {
	type frame struct {
		src *sitter.Node
		dst *Node
	}

	out := t.newNode(root, "", nil)
	stack := []frame{{src: root, dst: out}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count := int(f.src.ChildCount())
		if count == 0 {
			continue
		}
		f.dst.children = make([]*Node, 0, count)
		for i := 0; i < count; i++ {
			child := f.src.Child(i)
			if child == nil {
				continue
			}
			c := t.newNode(child, f.src.FieldNameForChild(i), f.dst)
			f.dst.children = append(f.dst.children, c)
			stack = append(stack, frame{src: child, dst: c})
		}
	}
	return out
}

func (t *Tree) newNode(src *sitter.Node, field string, parent *Node) *Node {
	t.nodeCount++
	kind := src.Type()
	// Comments are trivia: keep them in the tree for lossless ranges but
	// hide them from named-child navigation.
	named := src.IsNamed() && kind != kindComment && kind != kindHTMLComment
	return &Node{
		kind:    kind,
		field:   field,
		named:   named,
		missing: src.IsMissing(),
		rng:     TextRange{Start: src.StartByte(), End: src.EndByte()},
		parent:  parent,
		tree:    t,
	}
}

func computeLineStarts(source []byte) []uint32 {
	starts := []uint32{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return starts
}
