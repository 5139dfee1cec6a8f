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

// Package ast defines the raw parse tree produced by the tree-description
// parser: an unresolved, unvalidated mirror of the .tree source text. The
// semantic pass in package treemodel consumes this tree to build the
// validated Tree Model; nothing in this package performs name resolution or
// checks any of the Tree Model's invariants.
package ast

import "github.com/QE-Lab/tree-gen/treelang/token"

// File is the root of a parsed .tree source file.
type File struct {
	Header *Header
	Enums  []*EnumDecl
	Nodes  []*NodeDecl
}

// Header holds the global declarations from a `header { ... }` block. A
// file with no header block has a nil Header.
type Header struct {
	Pos             token.Position
	Namespace       string
	IncludeHeaders  []string
	IncludeSources  []string
	SourceLocation  string // name of the source-location tracker type, if declared
	Primitives      []*PrimitiveDecl
	PrimitivePreset string   // see genutil.Preset; set by the `primitive_preset "name";` directive, not read by treemodel.Resolve
	EnabledFeatures []string // e.g. "source_location", "serialization"
}

// PrimitiveDecl declares one external primitive type usable as a field's
// TypeRef or enumeration backing type.
type PrimitiveDecl struct {
	Pos         token.Position
	Name        string
	Include     string
	Default     string
	Serialize   string
	Deserialize string
}

// EnumDecl declares an enumeration usable as a primitive.
type EnumDecl struct {
	Pos       token.Position
	Doc       string
	Name      string
	Constants []*EnumConst
}

// EnumConst is one named constant of an [EnumDecl].
type EnumConst struct {
	Pos  token.Position
	Doc  string
	Name string
}

// NodeDecl declares one node type.
type NodeDecl struct {
	Pos    token.Position
	Doc    string
	Name   string
	Parent string // empty if this node type has no declared parent
	IsRoot bool
	IsErr  bool
	Fields []*FieldDecl
}

// EdgeKind identifies the ownership/cardinality discipline of a field, per
// the Tree Model's EdgeKind in the top-level design notes.
type EdgeKind int

const (
	// EdgePrimitive marks a field whose TypeRef names a primitive or
	// enumeration rather than another node type.
	EdgePrimitive EdgeKind = iota
	EdgeMaybe
	EdgeOne
	EdgeAny
	EdgeMany
	EdgeLink
	EdgeExternal
)

func (k EdgeKind) String() string {
	switch k {
	case EdgePrimitive:
		return "prim"
	case EdgeMaybe:
		return "Maybe"
	case EdgeOne:
		return "One"
	case EdgeAny:
		return "Any"
	case EdgeMany:
		return "Many"
	case EdgeLink:
		return "Link"
	case EdgeExternal:
		return "External"
	default:
		return "unknown"
	}
}

// FieldDecl declares one field on a [NodeDecl].
type FieldDecl struct {
	Pos     token.Position
	Doc     string
	Name    string
	Kind    EdgeKind
	TypeRef string // the node type or primitive name this field refers to
	ExtOp   bool   // true if the field was declared with a trailing `!`
	Default string // default-value expression, only meaningful for EdgePrimitive fields
}
