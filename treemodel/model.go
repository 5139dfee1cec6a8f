// Copyright 2024 The tree-gen Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package treemodel builds and holds the Tree Model: the semantically
// resolved and validated form of a parsed .tree file. A Model is built once
// by [Resolve], mutated only during that single construction, and then
// consumed read-only by the code emitters - it is never mutated again, and
// never partially handed to an emitter (Resolve either returns a fully
// valid Model or a located error, never both).
package treemodel

import (
	"github.com/QE-Lab/tree-gen/treelang/ast"
	"github.com/QE-Lab/tree-gen/treelang/token"
)

// Primitive is a non-node value type declared in a file's header.
type Primitive struct {
	Name        string
	Include     string
	Default     string
	Serialize   string
	Deserialize string
}

// Enum is a finite ordered set of named constants usable as a primitive.
type Enum struct {
	Name      string
	Doc       string
	Pos       token.Position
	Constants []string
}

// Ordinal returns the zero-based declaration-order index of name within e,
// matching the CBOR wire encoding of enumerations (integer ordinals in
// declaration order, starting at 0).
func (e *Enum) Ordinal(name string) (int, bool) {
	for i, c := range e.Constants {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// TypeRef is a resolved reference to either a node type, a primitive, or an
// enumeration. Exactly one of Node, Primitive, and Enum is non-nil.
type TypeRef struct {
	Node      *NodeType
	Primitive *Primitive
	Enum      *Enum
}

func (t TypeRef) IsNode() bool { return t.Node != nil }

// Name returns the referenced type's name, regardless of which kind it is.
func (t TypeRef) Name() string {
	switch {
	case t.Node != nil:
		return t.Node.Name
	case t.Primitive != nil:
		return t.Primitive.Name
	case t.Enum != nil:
		return t.Enum.Name
	default:
		return "<unresolved>"
	}
}

// EdgeKind re-exports the field ownership/cardinality discipline parsed by
// package treelang/ast, so that treemodel callers need not import ast too.
type EdgeKind = ast.EdgeKind

const (
	EdgePrimitive = ast.EdgePrimitive
	EdgeMaybe     = ast.EdgeMaybe
	EdgeOne       = ast.EdgeOne
	EdgeAny       = ast.EdgeAny
	EdgeMany      = ast.EdgeMany
	EdgeLink      = ast.EdgeLink
	EdgeExternal  = ast.EdgeExternal
)

// Field is a typed slot declared directly on a [NodeType].
type Field struct {
	Name    string
	Doc     string
	Pos     token.Position
	Kind    EdgeKind
	Type    TypeRef
	ExtOp   bool
	Default string
}

// NodeType is one declared kind of tree node.
type NodeType struct {
	Name     string
	Doc      string
	Pos      token.Position
	Parent   *NodeType
	Fields   []*Field
	Children []*NodeType
	IsRoot   bool
	IsErr    bool

	// Discriminator is the stable 1-based integer assigned to this node
	// type if it is concrete, in declaration order; 0 for abstract types.
	Discriminator int
}

// Abstract reports whether n has at least one child, and is therefore
// non-instantiable.
func (n *NodeType) Abstract() bool { return len(n.Children) > 0 }

// Final reports whether n has no children and is therefore instantiable.
func (n *NodeType) Final() bool { return len(n.Children) == 0 }

// AllFields returns n's own fields followed by its inherited fields, walking
// up the parent chain from n to the root of its hierarchy.
func (n *NodeType) AllFields() []*Field {
	var out []*Field
	for cur := n; cur != nil; cur = cur.Parent {
		out = append(out, cur.Fields...)
	}
	return out
}

// IsOrDescendsFrom reports whether n is other, or a (possibly indirect)
// child of other - the semantics backing a generated `is_<TypeName>()`
// method.
func (n *NodeType) IsOrDescendsFrom(other *NodeType) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Ancestors returns n's ancestors from immediate parent to the hierarchy
// root, not including n itself.
func (n *NodeType) Ancestors() []*NodeType {
	var out []*NodeType
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}
	return out
}

// Model is the fully resolved and validated Tree Model built from one .tree
// source file.
type Model struct {
	Namespace      string
	IncludeHeaders []string
	IncludeSources []string
	SourceLocation string
	Features       map[string]bool

	Primitives map[string]*Primitive
	Enums      map[string]*Enum
	Nodes      map[string]*NodeType

	// NodeOrder and EnumOrder record declaration order, since Go maps do
	// not; the native emitter's stable discriminator numbering and the
	// dynamic emitter's deterministic output both depend on it.
	NodeOrder []string
	EnumOrder []string

	// Root is the node type marked `root` in the source, or nil if none
	// was (invariant 7 allows either exactly one or zero).
	Root *NodeType

	// ConcreteNodeOrder lists concrete node type names in the order their
	// Discriminator values were assigned (declaration order).
	ConcreteNodeOrder []string
}

// HasFeature reports whether the named optional feature (e.g.
// "source_location", "serialization") was enabled in the file header.
func (m *Model) HasFeature(name string) bool {
	return m.Features[name]
}
