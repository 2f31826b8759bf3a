// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package nursery

import (
	"github.com/AleutianAI/jslint/services/jslint/syntax"
)

// constructorContext is what the rule needs to know about a constructor.
type constructorContext struct {
	// superCall is the first direct `super(...)` statement, or nil.
	superCall *syntax.CallExpression

	// extends is the enclosing class's extends clause, or nil.
	extends *syntax.ExtendsClause
}

// resolveConstructor collects the super call and extends clause for ctor.
//
// Only the direct statements of the body are searched; a super() call
// nested in a block or branch is not seen. A constructor outside any
// class behaves like one in a class without an extends clause.
//
// Returns an error satisfying syntax.IsMissingChild when the body is
// absent.
func resolveConstructor(ctor syntax.ConstructorMember) (constructorContext, error) {
	var c constructorContext

	stmts, err := ctor.Statements()
	if err != nil {
		return constructorContext{}, err
	}
	for _, stmt := range stmts {
		if call, ok := syntax.SuperCallStatement(stmt); ok {
			c.superCall = &call
			break
		}
	}

	if class, ok := syntax.EnclosingClass(ctor.Node()); ok {
		if ext, ok := class.ExtendsClause(); ok {
			c.extends = &ext
		}
	}
	return c, nil
}
