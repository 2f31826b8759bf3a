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

import "strings"

const constructorName = "constructor"

// =============================================================================
// CONSTRUCTOR MEMBER
// =============================================================================

// ConstructorMember is a typed view over a class constructor definition.
type ConstructorMember struct {
	node *Node
}

// AsConstructor returns a constructor view if n is a non-static class
// method whose key is "constructor" (identifier or string key). Object
// literal methods named constructor are not constructors.
func AsConstructor(n *Node) (ConstructorMember, bool) {
	if n == nil || n.kind != KindMethodDefinition {
		return ConstructorMember{}, false
	}
	if n.parent == nil || n.parent.kind != KindClassBody {
		return ConstructorMember{}, false
	}
	if n.HasChildOfKind(KindStatic) {
		return ConstructorMember{}, false
	}
	key := n.ChildByField(FieldName)
	if key == nil {
		return ConstructorMember{}, false
	}
	switch key.kind {
	case KindPropertyIdentifier:
		if key.Text() != constructorName {
			return ConstructorMember{}, false
		}
	case KindString:
		if strings.Trim(key.Text(), `"'`) != constructorName {
			return ConstructorMember{}, false
		}
	default:
		return ConstructorMember{}, false
	}
	return ConstructorMember{node: n}, true
}

// Node returns the underlying method_definition node.
func (c ConstructorMember) Node() *Node {
	return c.node
}

// Key returns the "constructor" key node.
func (c ConstructorMember) Key() (*Node, error) {
	key := c.node.ChildByField(FieldName)
	if key == nil {
		return nil, missingChild(c.node, "name")
	}
	return key, nil
}

// Body returns the constructor's statement block. Overload signatures and
// incomplete sources have no body and yield ErrMissingChild.
func (c ConstructorMember) Body() (*Node, error) {
	body := c.node.ChildByField(FieldBody)
	if body == nil || body.kind != KindStatementBlock || body.missing {
		return nil, missingChild(c.node, "body")
	}
	return body, nil
}

// Statements returns the direct statements of the constructor body,
// excluding nested blocks.
func (c ConstructorMember) Statements() ([]*Node, error) {
	body, err := c.Body()
	if err != nil {
		return nil, err
	}
	return body.NamedChildren(), nil
}

// =============================================================================
// CLASS
// =============================================================================

// Class is a typed view over a class declaration or class expression.
type Class struct {
	node *Node
}

// AsClass returns a class view if n is a class declaration, an abstract
// class declaration or a class expression.
func AsClass(n *Node) (Class, bool) {
	if n == nil {
		return Class{}, false
	}
	switch n.kind {
	case KindClassDeclaration, KindClass, KindAbstractClassDeclaration:
		// The "class" keyword token shares its kind with class expressions.
		if !n.named {
			return Class{}, false
		}
		return Class{node: n}, true
	default:
		return Class{}, false
	}
}

// EnclosingClass returns the nearest class that contains n. Outer classes
// are never considered once an inner one is found.
func EnclosingClass(n *Node) (Class, bool) {
	if n == nil {
		return Class{}, false
	}
	for ancestor := range n.Ancestors() {
		if class, ok := AsClass(ancestor); ok {
			return class, true
		}
	}
	return Class{}, false
}

// Node returns the underlying class node.
func (c Class) Node() *Node {
	return c.node
}

// Name returns the class name, or "" for anonymous class expressions.
func (c Class) Name() string {
	if name := c.node.ChildByField(FieldName); name != nil {
		return name.Text()
	}
	return ""
}

// ExtendsClause returns the class's extends clause, if it has one.
//
// JavaScript stores "extends <expr>" directly in class_heritage, while
// TypeScript wraps it in an extends_clause next to an optional
// implements_clause. A heritage with only "implements" has no extends
// clause.
func (c Class) ExtendsClause() (ExtendsClause, bool) {
	heritage := c.node.ChildOfKind(KindClassHeritage)
	if heritage == nil {
		return ExtendsClause{}, false
	}
	if ext := heritage.ChildOfKind(KindExtendsClause); ext != nil {
		return ExtendsClause{node: ext}, true
	}
	if heritage.HasChildOfKind("extends") {
		return ExtendsClause{node: heritage}, true
	}
	return ExtendsClause{}, false
}

// =============================================================================
// EXTENDS CLAUSE
// =============================================================================

// ExtendsClause is a typed view over "extends <expression>".
type ExtendsClause struct {
	node *Node
}

// Node returns the underlying clause node.
func (e ExtendsClause) Node() *Node {
	return e.node
}

// Range returns the trimmed range of the whole clause, keyword included.
func (e ExtendsClause) Range() TextRange {
	return e.node.rng
}

// SuperClass returns the superclass expression.
func (e ExtendsClause) SuperClass() (*Node, error) {
	if value := e.node.ChildByField(FieldValue); value != nil && !value.missing {
		return value, nil
	}
	for _, c := range e.node.children {
		if !c.named || c.kind == KindTypeArguments {
			continue
		}
		if c.missing {
			break
		}
		return c, nil
	}
	return nil, missingChild(e.node, "superclass")
}

// =============================================================================
// CALL EXPRESSION
// =============================================================================

// CallExpression is a typed view over a call_expression node.
type CallExpression struct {
	node *Node
}

// AsCallExpression returns a call view if n is a call expression.
func AsCallExpression(n *Node) (CallExpression, bool) {
	if n == nil || n.kind != KindCallExpression {
		return CallExpression{}, false
	}
	return CallExpression{node: n}, true
}

// Node returns the underlying call_expression node.
func (c CallExpression) Node() *Node {
	return c.node
}

// Callee returns the called expression.
func (c CallExpression) Callee() (*Node, error) {
	callee := c.node.ChildByField(FieldFunction)
	if callee == nil {
		return nil, missingChild(c.node, "function")
	}
	return callee, nil
}

// IsSuperCall reports whether the callee is the super pseudo-expression.
func (c CallExpression) IsSuperCall() bool {
	callee, err := c.Callee()
	return err == nil && callee.kind == KindSuper
}

// IsImportCall reports whether the call is a dynamic import(...).
func (c CallExpression) IsImportCall() bool {
	callee, err := c.Callee()
	return err == nil && callee.kind == KindImport
}

// SuperCallStatement returns the call expression of stmt if stmt is an
// expression statement of the form `super(...)`.
func SuperCallStatement(stmt *Node) (CallExpression, bool) {
	if stmt == nil || stmt.kind != KindExpressionStatement {
		return CallExpression{}, false
	}
	call, ok := AsCallExpression(stmt.FirstNamedChild())
	if !ok || !call.IsSuperCall() {
		return CallExpression{}, false
	}
	return call, true
}
