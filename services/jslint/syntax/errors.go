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
	"errors"
	"fmt"
)

// Sentinel errors for parse and navigation failures.
//
// These errors can be checked using errors.Is() to determine the
// category of failure without inspecting error messages.
var (
	// ErrUnsupportedLanguage indicates that no grammar is registered for the
	// file extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrFileTooLarge indicates that the content exceeds the configured
	// maximum file size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent indicates that the content is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrParseFailed indicates that tree-sitter could not produce a tree.
	ErrParseFailed = errors.New("parse failed")

	// ErrMissingChild is returned by typed view accessors when a required
	// child is absent from the tree, typically because the source is
	// incomplete. Rules treat it as "cannot determine" and report nothing.
	ErrMissingChild = errors.New("missing child")
)

// ParseError provides detailed information about a parse failure.
//
// ParseError wraps an underlying error with the file it happened in.
// It implements the error interface and can be unwrapped to access the
// underlying cause.
//
// Example:
//
//	tree, err := syntax.Parse(ctx, content, "app.js")
//	if err != nil {
//	    var parseErr *syntax.ParseError
//	    if errors.As(err, &parseErr) {
//	        fmt.Printf("Error in %s: %s\n", parseErr.FilePath, parseErr.Message)
//	    }
//	}
type ParseError struct {
	// FilePath is the path to the file where the error occurred.
	FilePath string

	// Message describes the error in human-readable form.
	Message string

	// Cause is the underlying error that triggered this parse error.
	Cause error
}

// Error returns "file: message".
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// newParseError wraps cause with file context. Returns cause unchanged if
// it is already a ParseError.
func newParseError(filePath string, cause error, format string, args ...any) error {
	var parseErr *ParseError
	if errors.As(cause, &parseErr) {
		return cause
	}
	return &ParseError{
		FilePath: filePath,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
	}
}

// IsMissingChild reports whether err is or wraps ErrMissingChild.
func IsMissingChild(err error) bool {
	return errors.Is(err, ErrMissingChild)
}

// missingChild builds an ErrMissingChild error naming the parent kind and
// the child that could not be resolved.
func missingChild(parent *Node, child string) error {
	if parent == nil {
		return fmt.Errorf("%w: %s of <nil>", ErrMissingChild, child)
	}
	return fmt.Errorf("%w: %s of %s at %d", ErrMissingChild, child, parent.Kind(), parent.Range().Start)
}
