// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer runs lint rules over syntax trees.
//
// Every rule follows the same three-step contract:
//
//	Query  → the node kinds the rule wants to see
//	Run    → zero or more rule-specific signals (the rule's state type)
//	Diagnostic → turns one signal into a primary range and message plus
//	             optional secondary details
//
// Rules are generic over their state type (Rule[S]). Register erases the
// type so a single Registry can hold unrelated rules.
//
// # Architecture
//
//	Tree → Engine.Analyze
//	         ├─ one pre-order walk collects (rule, node) jobs
//	         ├─ jobs run on a bounded worker pool (errgroup)
//	         └─ diagnostics sorted by position, rule, message
//
// Each job only reads the immutable tree and writes its own result slot,
// so no locking is needed between jobs. A rule that panics loses only the
// job that panicked.
//
// # Severity Mapping
//
//	| Severity | Effect on exit code |
//	|----------|---------------------|
//	| error    | non-zero            |
//	| warning  | none                |
//	| info     | none                |
//
// # Usage
//
//	reg := analyzer.NewRegistry()
//	if err := analyzer.Register[nursery.ConstructorSuperState](reg, nursery.NewNoInvalidConstructorSuper()); err != nil {
//	    return err
//	}
//	engine := analyzer.NewEngine(reg)
//	result, err := engine.Analyze(ctx, tree)
//
// # Thread Safety
//
// Registry and Engine are safe for concurrent use.
package analyzer
