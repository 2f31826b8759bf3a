// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules assembles the built-in rule set.
package rules

import (
	"fmt"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
	"github.com/AleutianAI/jslint/services/jslint/rules/nursery"
)

// NewRegistry returns a registry holding every built-in rule.
func NewRegistry() (*analyzer.Registry, error) {
	reg := analyzer.NewRegistry()

	if err := analyzer.Register[nursery.ConstructorSuperState](reg, nursery.NewNoInvalidConstructorSuper()); err != nil {
		return nil, fmt.Errorf("register built-in rules: %w", err)
	}

	return reg, nil
}
