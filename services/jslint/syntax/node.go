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
	"fmt"
	"iter"
)

// TextRange is a half-open byte range [Start, End) into the source.
//
// Ranges are trimmed: they never include leading or trailing whitespace
// or comments around the node.
type TextRange struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r TextRange) Len() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether other lies entirely inside r.
func (r TextRange) Contains(other TextRange) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// String formats the range as "start..end".
func (r TextRange) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Node is one node of an immutable syntax tree.
//
// Thread Safety: Immutable after Parse returns; safe for concurrent reads.
type Node struct {
	kind     string
	field    string
	named    bool
	missing  bool
	rng      TextRange
	parent   *Node
	children []*Node
	tree     *Tree
}

// Kind returns the tree-sitter node type, e.g. "class_declaration".
func (n *Node) Kind() string {
	if n == nil {
		return ""
	}
	return n.kind
}

// Field returns the grammar field name this node occupies in its parent,
// or "" if it is not a field.
func (n *Node) Field() string {
	return n.field
}

// IsNamed reports whether the node is a named node (as opposed to an
// anonymous token such as "(" or "extends").
func (n *Node) IsNamed() bool {
	return n.named
}

// IsMissing reports whether the parser inserted this node to recover
// from a syntax error.
func (n *Node) IsMissing() bool {
	return n.missing
}

// Range returns the trimmed byte range of the node.
func (n *Node) Range() TextRange {
	return n.rng
}

// Tree returns the tree that owns the node.
func (n *Node) Tree() *Tree {
	return n.tree
}

// Text returns the source text covered by the node.
func (n *Node) Text() string {
	if n == nil || n.tree == nil {
		return ""
	}
	return string(n.tree.source[n.rng.Start:n.rng.End])
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Ancestors yields the parent, grandparent, and so on up to the root.
// The node itself is not included.
func (n *Node) Ancestors() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for p := n.parent; p != nil; p = p.parent {
			if !yield(p) {
				return
			}
		}
	}
}

// Children returns all children, named and anonymous, in source order.
// The returned slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// NamedChildren returns the named children in source order.
func (n *Node) NamedChildren() []*Node {
	named := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c.named {
			named = append(named, c)
		}
	}
	return named
}

// FirstNamedChild returns the first named child, or nil.
func (n *Node) FirstNamedChild() *Node {
	for _, c := range n.children {
		if c.named {
			return c
		}
	}
	return nil
}

// LastNamedChild returns the last named child, or nil.
func (n *Node) LastNamedChild() *Node {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].named {
			return n.children[i]
		}
	}
	return nil
}

// ChildByField returns the first child stored under the given grammar
// field, or nil.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.children {
		if c.field == field {
			return c
		}
	}
	return nil
}

// ChildOfKind returns the first direct child with the given kind, or nil.
func (n *Node) ChildOfKind(kind string) *Node {
	for _, c := range n.children {
		if c.kind == kind {
			return c
		}
	}
	return nil
}

// HasChildOfKind reports whether any direct child has the given kind.
func (n *Node) HasChildOfKind(kind string) bool {
	return n.ChildOfKind(kind) != nil
}

// String returns "kind@start..end" for debugging.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.kind + "@" + n.rng.String()
}
