// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package syntax provides an immutable, read-only syntax tree for
// JavaScript and TypeScript sources.
//
// Trees are produced by tree-sitter and then copied into plain Go values,
// so every Node carries its kind, its field name within the parent, a
// trimmed byte range and a non-owning parent pointer. Once Parse returns,
// the tree-sitter tree has been released and the snapshot can be shared
// freely between goroutines.
//
// # Architecture
//
//	source bytes → tree-sitter (per-call parser) → Tree snapshot → typed views
//
// Typed views (Class, ExtendsClause, ConstructorMember, CallExpression)
// expose the handful of accessors lint rules need. Accessors that cannot
// resolve a required child return ErrMissingChild; callers treat that as
// "stop analysing this node" rather than as a failure.
//
// # Supported Languages
//
//	| Language   | Extensions             | Grammar                |
//	|------------|------------------------|------------------------|
//	| JavaScript | .js .mjs .cjs .jsx     | tree-sitter-javascript |
//	| TypeScript | .ts .mts .cts          | tree-sitter-typescript |
//	| TSX        | .tsx                   | tree-sitter-tsx        |
//
// # Thread Safety
//
// Parse is safe for concurrent use. Tree and Node are immutable after
// construction.
package syntax
