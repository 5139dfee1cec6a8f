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

package treemodel

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/QE-Lab/tree-gen/treelang/ast"
	"github.com/QE-Lab/tree-gen/treelang/token"
)

// Error is a located semantic-resolution error.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

func errAt(pos token.Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// builtinPrimitives are always available, even with no header block, so
// that trivial .tree files need not declare them by hand.
var builtinPrimitives = map[string]*Primitive{
	"Int":    {Name: "Int", Default: "0"},
	"String": {Name: "String", Default: `""`},
	"Bool":   {Name: "Bool", Default: "false"},
}

// Resolve runs the three-pass semantic analysis described in the top-level
// design notes (declaration collection, reference resolution, validation)
// over a parsed file and returns the resulting Tree Model.
//
// Resolve fails fast: the first invariant violation encountered is returned
// as fatalErr and model is nil. A successful resolution may still carry
// non-fatal warnings (for example, a declared-but-unreferenced primitive);
// these are collected internally with [multierr.Append] and handed back as a
// slice (via [multierr.Errors]) so callers can report them without treating
// them as failures.
func Resolve(f *ast.File) (model *Model, warnings []error, fatalErr error) {
	m := &Model{
		Features:   map[string]bool{},
		Primitives: map[string]*Primitive{},
		Enums:      map[string]*Enum{},
		Nodes:      map[string]*NodeType{},
	}
	for name, p := range builtinPrimitives {
		cp := *p
		m.Primitives[name] = &cp
	}

	if f.Header != nil {
		m.Namespace = f.Header.Namespace
		m.IncludeHeaders = f.Header.IncludeHeaders
		m.IncludeSources = f.Header.IncludeSources
		m.SourceLocation = f.Header.SourceLocation
		for _, feat := range f.Header.EnabledFeatures {
			m.Features[feat] = true
		}
		for _, pd := range f.Header.Primitives {
			if _, ok := m.Primitives[pd.Name]; ok {
				return nil, nil, errAt(pd.Pos, "primitive %q is already declared", pd.Name)
			}
			m.Primitives[pd.Name] = &Primitive{
				Name:        pd.Name,
				Include:     pd.Include,
				Default:     pd.Default,
				Serialize:   pd.Serialize,
				Deserialize: pd.Deserialize,
			}
		}
	}

	// Pass 1: declaration collection.
	for _, ed := range f.Enums {
		if _, ok := m.Enums[ed.Name]; ok {
			return nil, nil, errAt(ed.Pos, "enumeration %q is already declared", ed.Name)
		}
		if _, ok := m.Primitives[ed.Name]; ok {
			return nil, nil, errAt(ed.Pos, "enumeration %q collides with a declared primitive", ed.Name)
		}
		seenConst := map[string]bool{}
		for _, c := range ed.Constants {
			if seenConst[c.Name] {
				return nil, nil, errAt(c.Pos, "duplicate constant %q in enumeration %q", c.Name, ed.Name)
			}
			seenConst[c.Name] = true
		}
		e := &Enum{Name: ed.Name, Doc: ed.Doc, Pos: ed.Pos}
		for _, c := range ed.Constants {
			e.Constants = append(e.Constants, c.Name)
		}
		m.Enums[ed.Name] = e
		m.EnumOrder = append(m.EnumOrder, ed.Name)
	}

	var rootSeen *NodeType
	for _, nd := range f.Nodes {
		if _, ok := m.Nodes[nd.Name]; ok {
			return nil, nil, errAt(nd.Pos, "node type %q is already declared", nd.Name)
		}
		if _, ok := m.Primitives[nd.Name]; ok {
			return nil, nil, errAt(nd.Pos, "node type %q collides with a declared primitive", nd.Name)
		}
		if _, ok := m.Enums[nd.Name]; ok {
			return nil, nil, errAt(nd.Pos, "node type %q collides with a declared enumeration", nd.Name)
		}
		n := &NodeType{Name: nd.Name, Doc: nd.Doc, Pos: nd.Pos, IsRoot: nd.IsRoot, IsErr: nd.IsErr}
		m.Nodes[nd.Name] = n
		m.NodeOrder = append(m.NodeOrder, nd.Name)
	}

	// Pass 2: reference resolution (parent links, field TypeRefs,
	// population of children sets).
	for _, nd := range f.Nodes {
		n := m.Nodes[nd.Name]
		if nd.Parent != "" {
			parent, ok := m.Nodes[nd.Parent]
			if !ok {
				return nil, nil, errAt(nd.Pos, "unknown type %q: %q has no declared parent of that name", nd.Parent, nd.Name)
			}
			n.Parent = parent
		}
	}
	for _, nd := range f.Nodes {
		n := m.Nodes[nd.Name]
		if n.Parent != nil {
			n.Parent.Children = append(n.Parent.Children, n)
		}
		if nd.IsRoot {
			if rootSeen != nil {
				return nil, nil, errAt(nd.Pos, "node type %q marked root, but %q was already marked root", nd.Name, rootSeen.Name)
			}
			rootSeen = n
		}
	}
	m.Root = rootSeen

	referencedPrimitives := map[string]bool{}
	for _, nd := range f.Nodes {
		n := m.Nodes[nd.Name]
		for _, fd := range nd.Fields {
			field, err := resolveField(m, n, fd, referencedPrimitives)
			if err != nil {
				return nil, nil, err
			}
			n.Fields = append(n.Fields, field)
		}
	}

	// Pass 3: validation.
	if err := validateNoParentCycles(m); err != nil {
		return nil, nil, err
	}
	if err := validateFieldShadowing(m, f); err != nil {
		return nil, nil, err
	}
	if err := validateWellFormedness(m, f); err != nil {
		return nil, nil, err
	}

	assignDiscriminators(m)

	var warnErr error
	for name := range m.Primitives {
		if _, ok := builtinPrimitives[name]; ok {
			continue
		}
		if !referencedPrimitives[name] {
			warnErr = multierr.Append(warnErr, fmt.Errorf("primitive %q is declared but never referenced by any field", name))
		}
	}
	return m, multierr.Errors(warnErr), nil
}

func resolveField(m *Model, owner *NodeType, fd *ast.FieldDecl, referenced map[string]bool) (*Field, error) {
	field := &Field{Name: fd.Name, Doc: fd.Doc, Pos: fd.Pos, Kind: fd.Kind, ExtOp: fd.ExtOp, Default: fd.Default}

	if fd.Kind != ast.EdgePrimitive && fd.Kind != ast.EdgeExternal {
		target, ok := m.Nodes[fd.TypeRef]
		if !ok {
			return nil, errAt(fd.Pos, "unknown type %q referenced by field %q of %q", fd.TypeRef, fd.Name, owner.Name)
		}
		field.Type = TypeRef{Node: target}
		return field, nil
	}

	if p, ok := m.Primitives[fd.TypeRef]; ok {
		referenced[fd.TypeRef] = true
		field.Type = TypeRef{Primitive: p}
		return field, nil
	}
	if e, ok := m.Enums[fd.TypeRef]; ok {
		field.Type = TypeRef{Enum: e}
		return field, nil
	}
	return nil, errAt(fd.Pos, "unknown type %q referenced by field %q of %q", fd.TypeRef, fd.Name, owner.Name)
}

func validateNoParentCycles(m *Model) error {
	state := map[*NodeType]int{} // 0=unvisited, 1=visiting, 2=done
	var visit func(n *NodeType) error
	visit = func(n *NodeType) error {
		switch state[n] {
		case 2:
			return nil
		case 1:
			return errAt(n.Pos, "cycle detected in parent-of relation involving node type %q", n.Name)
		}
		state[n] = 1
		if n.Parent != nil {
			if err := visit(n.Parent); err != nil {
				return err
			}
		}
		state[n] = 2
		return nil
	}
	for _, name := range m.NodeOrder {
		if err := visit(m.Nodes[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateFieldShadowing(m *Model, f *ast.File) error {
	for _, nd := range f.Nodes {
		n := m.Nodes[nd.Name]
		ancestorFields := map[string]bool{}
		for _, anc := range n.Ancestors() {
			for _, af := range anc.Fields {
				ancestorFields[af.Name] = true
			}
		}
		own := map[string]bool{}
		for _, field := range n.Fields {
			if own[field.Name] {
				return errAt(field.Pos, "duplicate field %q in node type %q", field.Name, n.Name)
			}
			own[field.Name] = true
			if ancestorFields[field.Name] {
				return errAt(field.Pos, "field %q of node type %q collides with an inherited field of the same name", field.Name, n.Name)
			}
		}
	}
	return nil
}

// validateWellFormedness enforces invariant 6 (One/Many well-formedness)
// insofar as it can be checked statically: a Many field cannot be trivially
// guaranteed non-empty (that is a runtime check_complete concern, §4.5), but
// Link targets must resolve within the same file (no cross-file links), and
// root must be used at most once (already enforced during pass 2) and a
// node cannot inherit from itself (enforced by validateNoParentCycles).
func validateWellFormedness(m *Model, f *ast.File) error {
	for _, nd := range f.Nodes {
		n := m.Nodes[nd.Name]
		for _, field := range n.Fields {
			if field.Kind == ast.EdgeLink && !field.Type.IsNode() {
				return errAt(field.Pos, "Link field %q of %q must reference a node type declared in the same file", field.Name, n.Name)
			}
		}
	}
	return nil
}

func assignDiscriminators(m *Model) {
	next := 1
	for _, name := range m.NodeOrder {
		n := m.Nodes[name]
		if n.Final() {
			n.Discriminator = next
			m.ConcreteNodeOrder = append(m.ConcreteNodeOrder, name)
			next++
		}
	}
}
