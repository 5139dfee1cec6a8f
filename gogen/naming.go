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

package gogen

import (
	"fmt"

	"github.com/QE-Lab/tree-gen/treemodel"
)

// builtinGoType maps the three always-available primitives (see
// treemodel.builtinPrimitives) to their Go storage type. A header-declared
// custom primitive has no such mapping: its Go type is taken to be its
// declared name verbatim, on the assumption that the .tree author's
// "include" directive brings a matching Go type into scope.
var builtinGoType = map[string]string{
	"Int":    "int64",
	"String": "string",
	"Bool":   "bool",
}

// fieldsStructName is the name of the struct holding exactly the fields
// declared locally on n, embedded by every descendant's own Fields struct.
func fieldsStructName(n *treemodel.NodeType) string {
	return n.Name + "Fields"
}

// nodeGoType returns the Go type used to store a reference to n: the
// interface name for an abstract type (nil is already a valid zero value),
// or a pointer to the concrete struct otherwise.
func nodeGoType(n *treemodel.NodeType) string {
	if n.Abstract() {
		return n.Name
	}
	return "*" + n.Name
}

// goFieldType returns the Go type of a single declared field.
func goFieldType(f *treemodel.Field) string {
	switch f.Kind {
	case treemodel.EdgeMaybe, treemodel.EdgeOne, treemodel.EdgeLink:
		return nodeGoType(f.Type.Node)
	case treemodel.EdgeAny, treemodel.EdgeMany:
		return "[]" + nodeGoType(f.Type.Node)
	default: // EdgePrimitive or EdgeExternal: both resolve to a Primitive or Enum
		if f.Type.Enum != nil {
			return f.Type.Enum.Name
		}
		if bt, ok := builtinGoType[f.Type.Primitive.Name]; ok {
			return bt
		}
		return f.Type.Primitive.Name
	}
}

// exportedFieldName returns the Go struct field name for f: its declared
// name, capitalized, since every field is part of the generated package's
// public API (mirrors ygen's exported-field convention for generated Go
// structs).
func exportedFieldName(f *treemodel.Field) string {
	return export(f.Name)
}

func export(name string) string {
	if name == "" {
		return name
	}
	b := []byte(name)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] = b[0] - 'a' + 'A'
	}
	return string(b)
}

// visitMethodName is the Visitor method dispatched to for node type n.
func visitMethodName(n *treemodel.NodeType) string {
	return fmt.Sprintf("Visit%s", n.Name)
}

// typeConstName is the discriminator constant generated for a concrete
// node type.
func typeConstName(n *treemodel.NodeType) string {
	return n.Name + "Type"
}
