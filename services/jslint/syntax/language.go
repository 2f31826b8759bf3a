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
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies the grammar a Tree was parsed with.
type Language int

const (
	// LanguageUnknown is the zero value; Parse rejects it.
	LanguageUnknown Language = iota

	// LanguageJavaScript covers plain JavaScript and JSX.
	LanguageJavaScript

	// LanguageTypeScript covers .ts, .mts and .cts files.
	LanguageTypeScript

	// LanguageTSX covers .tsx files.
	LanguageTSX
)

// String returns the canonical lowercase language name.
func (l Language) String() string {
	switch l {
	case LanguageJavaScript:
		return "javascript"
	case LanguageTypeScript:
		return "typescript"
	case LanguageTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// extensionLanguages maps lowercase file extensions to languages.
var extensionLanguages = map[string]Language{
	".js":  LanguageJavaScript,
	".mjs": LanguageJavaScript,
	".cjs": LanguageJavaScript,
	".jsx": LanguageJavaScript,
	".ts":  LanguageTypeScript,
	".mts": LanguageTypeScript,
	".cts": LanguageTypeScript,
	".tsx": LanguageTSX,
}

// LanguageForPath returns the language for a file path based on its
// extension, or LanguageUnknown.
func LanguageForPath(path string) Language {
	return extensionLanguages[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns every extension LanguageForPath recognises.
func SupportedExtensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".mts", ".cts", ".tsx"}
}

// grammar returns the tree-sitter language for l, or nil.
func (l Language) grammar() *sitter.Language {
	switch l {
	case LanguageJavaScript:
		return javascript.GetLanguage()
	case LanguageTypeScript:
		return typescript.GetLanguage()
	case LanguageTSX:
		return tsx.GetLanguage()
	default:
		return nil
	}
}
