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
	"bytes"
	"fmt"

	"github.com/QE-Lab/tree-gen/treemodel"
)

// generator accumulates the header and source text for one Generate call.
type generator struct {
	model  *treemodel.Model
	pkg    string
	header bytes.Buffer
	source bytes.Buffer
}

func (g *generator) run() error {
	g.emitDiscriminators()
	g.emitEnums()
	g.emitNodeInterface()
	g.emitVisitor()
	for _, name := range g.model.NodeOrder {
		n := g.model.Nodes[name]
		g.emitFieldsStruct(n)
		if n.Final() {
			g.emitConcreteStruct(n)
			g.emitConstructors(n)
			g.emitMethods(n)
		}
	}
	return nil
}

// emitDiscriminators writes the NodeType enum and its String/lookup table.
func (g *generator) emitDiscriminators() {
	fmt.Fprintln(&g.header, "// NodeType is the stable discriminator naming a concrete node type.")
	fmt.Fprintln(&g.header, "type NodeType int")
	fmt.Fprintln(&g.header)
	fmt.Fprintln(&g.header, "const (")
	for _, name := range g.model.ConcreteNodeOrder {
		n := g.model.Nodes[name]
		fmt.Fprintf(&g.header, "\t%s NodeType = %d\n", typeConstName(n), n.Discriminator)
	}
	fmt.Fprintln(&g.header, ")")
	fmt.Fprintln(&g.header)

	fmt.Fprintln(&g.source, "func (t NodeType) String() string {")
	fmt.Fprintln(&g.source, "\tswitch t {")
	for _, name := range g.model.ConcreteNodeOrder {
		n := g.model.Nodes[name]
		fmt.Fprintf(&g.source, "\tcase %s:\n\t\treturn %q\n", typeConstName(n), n.Name)
	}
	fmt.Fprintln(&g.source, "\tdefault:")
	fmt.Fprintln(&g.source, "\t\treturn fmt.Sprintf(\"NodeType(%d)\", int(t))")
	fmt.Fprintln(&g.source, "\t}")
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)

	fmt.Fprintf(&g.header, "// %sTypeDiscriminators maps a declared node type name to its stable\n", export(g.pkg))
	fmt.Fprintln(&g.header, "// discriminator, for tooling that only has the CBOR \"type\" string.")
	fmt.Fprintf(&g.header, "var %sTypeDiscriminators = map[string]NodeType{\n", export(g.pkg))
	for _, name := range g.model.ConcreteNodeOrder {
		n := g.model.Nodes[name]
		fmt.Fprintf(&g.header, "\t%q: %s,\n", n.Name, typeConstName(n))
	}
	fmt.Fprintln(&g.header, "}")
	fmt.Fprintln(&g.header)

	fmt.Fprintln(&g.header, "// nodeDeserializers maps a concrete node type's \"type\" discriminator to")
	fmt.Fprintln(&g.header, "// the function that reconstructs it from a decoded CBOR map, driving")
	fmt.Fprintln(&g.header, "// Unmarshal's dispatch.")
	fmt.Fprintln(&g.header, "var nodeDeserializers = map[string]func(*cbor.Map, *deserializeContext) (Node, error){")
	for _, name := range g.model.ConcreteNodeOrder {
		n := g.model.Nodes[name]
		fmt.Fprintf(&g.header, "\t%q: deserialize%s,\n", n.Name, n.Name)
	}
	fmt.Fprintln(&g.header, "}")
	fmt.Fprintln(&g.header)
}

// emitEnums writes one Go int-based type, its constants, and a String
// method per declared enumeration. Ordinals match declaration order,
// matching the CBOR wire encoding of §6.
func (g *generator) emitEnums() {
	for _, name := range g.model.EnumOrder {
		e := g.model.Enums[name]
		if e.Doc != "" {
			fmt.Fprintf(&g.header, "// %s\n", e.Doc)
		}
		fmt.Fprintf(&g.header, "type %s int\n\n", e.Name)
		fmt.Fprintln(&g.header, "const (")
		for i, c := range e.Constants {
			fmt.Fprintf(&g.header, "\t%s%s %s = %d\n", e.Name, safeGoEnumeratedValueName(c), e.Name, i)
		}
		fmt.Fprintln(&g.header, ")")
		fmt.Fprintln(&g.header)

		fmt.Fprintf(&g.source, "func (v %s) String() string {\n", e.Name)
		fmt.Fprintln(&g.source, "\tswitch v {")
		for _, c := range e.Constants {
			fmt.Fprintf(&g.source, "\tcase %s%s:\n\t\treturn %q\n", e.Name, safeGoEnumeratedValueName(c), c)
		}
		fmt.Fprintln(&g.source, "\tdefault:")
		fmt.Fprintf(&g.source, "\t\treturn fmt.Sprintf(\"%s(%%d)\", int(v))\n", e.Name)
		fmt.Fprintln(&g.source, "\t}")
		fmt.Fprintln(&g.source, "}")
		fmt.Fprintln(&g.source)
	}
}

// emitNodeInterface writes the common interface implemented by every node
// type, abstract or concrete.
func (g *generator) emitNodeInterface() {
	fmt.Fprintln(&g.header, `// Node is the common interface implemented by every generated node type.
// Is<TypeName> and As<TypeName> are generated as package-level functions
// (mirroring errors.Is/errors.As) rather than interface methods, to avoid
// an O(number of node types) method set on every concrete type. The
// unexported methods are internal plumbing for Clone, Dump, Serialize, and
// Unmarshal's link resolution, which must dispatch on the runtime type of a
// field stored as an interface or a []Node-like slice.
type Node interface {
	Type() NodeType
	Copy() Node
	Clone() Node
	Equal(other Node) bool
	Visit(v Visitor)
	Dump(w io.Writer) error
	CheckComplete() error
	Serialize(w *cbor.MapWriter, ctx *serializeContext) error

	cloneInto(ctx *cloneContext) Node
	fixupLinks(ctx *cloneContext)
	dumpIndent(w io.Writer, depth int) error
	collectPaths(ctx *serializeContext, path []pathStep)
	resolveStep(step pathStep) (Node, error)
}`)
	fmt.Fprintln(&g.header)

	for _, name := range g.model.NodeOrder {
		n := g.model.Nodes[name]
		gt := nodeGoType(n)
		fmt.Fprintf(&g.header, "func Is%s(n Node) bool { _, ok := n.(%s); return ok }\n", n.Name, gt)
		fmt.Fprintf(&g.header, "func As%s(n Node) (%s, bool) { t, ok := n.(%s); return t, ok }\n", n.Name, gt, gt)
	}
	fmt.Fprintln(&g.header)
}

// emitVisitor writes the Visitor interface (one method per node type,
// abstract or concrete) and a BaseVisitor providing the ancestor-fallback
// default body for each method, so a caller that overrides only an
// ancestor's method still gets dispatched to by every descendant that
// does not override its own.
func (g *generator) emitVisitor() {
	fmt.Fprintln(&g.header, "// Visitor dispatches on the concrete type of a Node. BaseVisitor")
	fmt.Fprintln(&g.header, "// provides the default ancestor-falls-back-to-ancestor behavior;")
	fmt.Fprintln(&g.header, "// embed it and override only the methods you need.")
	fmt.Fprintln(&g.header, "type Visitor interface {")
	for _, name := range g.model.NodeOrder {
		n := g.model.Nodes[name]
		fmt.Fprintf(&g.header, "\t%s(n %s)\n", visitMethodName(n), nodeGoType(n))
	}
	fmt.Fprintln(&g.header, "}")
	fmt.Fprintln(&g.header)

	fmt.Fprintln(&g.header, "type BaseVisitor struct{}")
	fmt.Fprintln(&g.header)
	for _, name := range g.model.NodeOrder {
		n := g.model.Nodes[name]
		fmt.Fprintf(&g.header, "func (b BaseVisitor) %s(n %s) {", visitMethodName(n), nodeGoType(n))
		if n.Parent != nil {
			fmt.Fprintf(&g.header, " b.%s(n) }\n", visitMethodName(n.Parent))
		} else {
			fmt.Fprintln(&g.header, " }")
		}
	}
	fmt.Fprintln(&g.header)
}

// emitFieldsStruct writes the struct carrying exactly n's own declared
// fields, embedding its parent's Fields struct so inherited fields are
// promoted rather than repeated. The unexported marker method satisfies
// every ancestor abstract interface via embedding promotion.
func (g *generator) emitFieldsStruct(n *treemodel.NodeType) {
	sn := fieldsStructName(n)
	if n.Doc != "" {
		fmt.Fprintf(&g.header, "// %s\n", n.Doc)
	}
	fmt.Fprintf(&g.header, "type %s struct {\n", sn)
	for _, f := range n.Fields {
		if f.Doc != "" {
			fmt.Fprintf(&g.header, "\t// %s\n", f.Doc)
		}
		fmt.Fprintf(&g.header, "\t%s %s\n", exportedFieldName(f), goFieldType(f))
	}
	if n.Parent == nil && g.model.HasFeature("source_location") {
		fmt.Fprintln(&g.header, "\t// Location is the source position this node was parsed from, formatted")
		fmt.Fprintln(&g.header, "\t// \"line:col\". Only populated when the source_location feature is on.")
		fmt.Fprintln(&g.header, "\tLocation string")
	}
	if n.Parent != nil {
		fmt.Fprintf(&g.header, "\t%s\n", fieldsStructName(n.Parent))
	}
	fmt.Fprintln(&g.header, "}")
	fmt.Fprintln(&g.header)

	markerName := "is" + n.Name
	fmt.Fprintf(&g.header, "func (%s) %s() {}\n", sn, markerName)
	fmt.Fprintln(&g.header)

	if n.Abstract() {
		fmt.Fprintf(&g.header, "// %s is the interface implemented by every node type that is, or\n", n.Name)
		fmt.Fprintf(&g.header, "// descends from, %s.\n", n.Name)
		fmt.Fprintf(&g.header, "type %s interface {\n\tNode\n\t%s()\n}\n", n.Name, markerName)
		fmt.Fprintln(&g.header)
	}
}

// emitConcreteStruct writes the public struct for a concrete (Final) node
// type: a single embed of its own Fields struct, which in turn embeds its
// ancestors' Fields structs transitively.
func (g *generator) emitConcreteStruct(n *treemodel.NodeType) {
	fmt.Fprintf(&g.header, "type %s struct {\n\t%s\n}\n\n", n.Name, fieldsStructName(n))
}

// emitConstructors writes the default (zero-value) and full
// (declaration-order-field) constructors for a concrete node type.
func (g *generator) emitConstructors(n *treemodel.NodeType) {
	fmt.Fprintf(&g.header, "func New%s() *%s {\n\treturn &%s{}\n}\n\n", n.Name, n.Name, n.Name)

	fields := n.AllFields()
	if len(fields) == 0 {
		return
	}
	var params bytes.Buffer
	for i, f := range fields {
		if i > 0 {
			params.WriteString(", ")
		}
		fmt.Fprintf(&params, "%s %s", lowerFirst(f.Name), goFieldType(f))
	}
	fmt.Fprintf(&g.header, "func New%sFull(%s) *%s {\n", n.Name, params.String(), n.Name)
	fmt.Fprintf(&g.header, "\tn := &%s{}\n", n.Name)
	for _, f := range fields {
		fmt.Fprintf(&g.header, "\tn.%s = %s\n", exportedFieldName(f), lowerFirst(f.Name))
	}
	fmt.Fprintln(&g.header, "\treturn n")
	fmt.Fprintln(&g.header, "}")
	fmt.Fprintln(&g.header)
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	b := []byte(name)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] = b[0] - 'A' + 'a'
	}
	return string(b)
}
