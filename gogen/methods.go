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

// emitMethods writes the full Node method set for one concrete node type:
// Type, Copy, Clone (plus its cloneInto/fixupLinks helpers), Equal, Visit,
// Dump (plus its dumpIndent helper), CheckComplete, and Serialize (plus its
// collectPaths helper). Every method is a single pass over n.AllFields():
// embedding promotion makes an inherited field addressable as n.Field
// regardless of which ancestor Fields struct actually holds it, so the
// loop need not distinguish own fields from inherited ones.
func (g *generator) emitMethods(n *treemodel.NodeType) {
	fields := n.AllFields()
	gt := nodeGoType(n)

	g.emitType(n, gt)
	g.emitCopy(n, gt)
	g.emitCloneInto(n, gt, fields)
	g.emitFixupLinks(n, gt, fields)
	g.emitClone(n, gt)
	g.emitEqual(n, gt, fields)
	g.emitVisit(n, gt)
	g.emitDumpIndent(n, gt, fields)
	g.emitDump(n, gt)
	g.emitCheckComplete(n, gt, fields)
	g.emitCollectPaths(n, gt, fields)
	g.emitSerialize(n, gt, fields)
	g.emitDeserialize(n, gt, fields)
	g.emitResolveStep(n, gt, fields)
}

func (g *generator) emitType(n *treemodel.NodeType, gt string) {
	fmt.Fprintf(&g.source, "func (n %s) Type() NodeType { return %s }\n\n", gt, typeConstName(n))
}

// emitCopy: a shallow struct copy is exactly "owning children not
// duplicated, link targets preserved" - a field-for-field copy shares the
// same child pointers and slice backing arrays as the original.
func (g *generator) emitCopy(n *treemodel.NodeType, gt string) {
	fmt.Fprintf(&g.source, "func (n %s) Copy() Node {\n", gt)
	fmt.Fprintf(&g.source, "\tcp := *n\n")
	fmt.Fprintf(&g.source, "\treturn &cp\n")
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

func (g *generator) emitCloneInto(n *treemodel.NodeType, gt string, fields []*treemodel.Field) {
	fmt.Fprintf(&g.source, "func (n %s) cloneInto(ctx *cloneContext) Node {\n", gt)
	fmt.Fprintf(&g.source, "\tcp := &%s{}\n", n.Name)
	for _, f := range fields {
		name := exportedFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.source, "\tif n.%s != nil {\n", name)
			fmt.Fprintf(&g.source, "\t\tcloned := n.%s.cloneInto(ctx)\n", name)
			fmt.Fprintf(&g.source, "\t\tif t, ok := cloned.(%s); ok {\n", goFieldType(f))
			fmt.Fprintf(&g.source, "\t\t\tcp.%s = t\n", name)
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeAny, treemodel.EdgeMany:
			elemType := goFieldType(f)[2:] // strip the leading "[]"
			fmt.Fprintf(&g.source, "\tif n.%s != nil {\n", name)
			fmt.Fprintf(&g.source, "\t\tcp.%s = make([]%s, len(n.%s))\n", name, elemType, name)
			fmt.Fprintf(&g.source, "\t\tfor i, it := range n.%s {\n", name)
			fmt.Fprintln(&g.source, "\t\t\tif it == nil {")
			fmt.Fprintln(&g.source, "\t\t\t\tcontinue")
			fmt.Fprintln(&g.source, "\t\t\t}")
			fmt.Fprintf(&g.source, "\t\t\tif t, ok := it.cloneInto(ctx).(%s); ok {\n", elemType)
			fmt.Fprintf(&g.source, "\t\t\t\tcp.%s[i] = t\n", name)
			fmt.Fprintln(&g.source, "\t\t\t}")
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeLink:
			// Copied as-is; fixupLinks remaps it once the whole tree is cloned.
			fmt.Fprintf(&g.source, "\tcp.%s = n.%s\n", name, name)
		default:
			fmt.Fprintf(&g.source, "\tcp.%s = n.%s\n", name, name)
		}
	}
	fmt.Fprintln(&g.source, "\tctx.mapping[n] = cp")
	fmt.Fprintln(&g.source, "\treturn cp")
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

func (g *generator) emitFixupLinks(n *treemodel.NodeType, gt string, fields []*treemodel.Field) {
	fmt.Fprintf(&g.source, "func (n %s) fixupLinks(ctx *cloneContext) {\n", gt)
	for _, f := range fields {
		name := exportedFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.source, "\tif n.%s != nil {\n", name)
			fmt.Fprintf(&g.source, "\t\tn.%s.fixupLinks(ctx)\n", name)
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.source, "\tfor _, it := range n.%s {\n", name)
			fmt.Fprintln(&g.source, "\t\tif it != nil {")
			fmt.Fprintln(&g.source, "\t\t\tit.fixupLinks(ctx)")
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.source, "\tif n.%s != nil {\n", name)
			fmt.Fprintf(&g.source, "\t\tif c, ok := ctx.mapping[Node(n.%s)]; ok {\n", name)
			fmt.Fprintf(&g.source, "\t\t\tif t, ok2 := c.(%s); ok2 {\n", goFieldType(f))
			fmt.Fprintf(&g.source, "\t\t\t\tn.%s = t\n", name)
			fmt.Fprintln(&g.source, "\t\t\t}")
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t}")
		}
	}
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

func (g *generator) emitClone(n *treemodel.NodeType, gt string) {
	fmt.Fprintf(&g.source, "func (n %s) Clone() Node {\n", gt)
	fmt.Fprintln(&g.source, "\tctx := newCloneContext()")
	fmt.Fprintln(&g.source, "\tcloned := n.cloneInto(ctx)")
	fmt.Fprintln(&g.source, "\tcloned.fixupLinks(ctx)")
	fmt.Fprintln(&g.source, "\treturn cloned")
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

// emitEqual compares the owning subtree structurally; Link fields compare
// by identity (Go pointer/interface equality), matching the "links compared
// by reference" rule.
//
// A field declared with the `!` marker asks for a dedicated operator==/
// operator!= pair instead of reusing the generic structural comparison; Go
// has no operator overloading, so Equal stays the single comparison this
// emitter produces, and a field with the marker set only gets a doc-comment
// note pointing back at it rather than a second method.
func (g *generator) emitEqual(n *treemodel.NodeType, gt string, fields []*treemodel.Field) {
	for _, f := range fields {
		if f.ExtOp {
			fmt.Fprintf(&g.source, "// %s was declared with the `!` marker (custom equality); Equal below\n", exportedFieldName(f))
			fmt.Fprintln(&g.source, "// is still the one comparison this emitter generates, compared by value.")
			break
		}
	}
	fmt.Fprintf(&g.source, "func (n %s) Equal(other Node) bool {\n", gt)
	fmt.Fprintf(&g.source, "\to, ok := other.(%s)\n", gt)
	fmt.Fprintln(&g.source, "\tif !ok {")
	fmt.Fprintln(&g.source, "\t\treturn false")
	fmt.Fprintln(&g.source, "\t}")
	for _, f := range fields {
		name := exportedFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.source, "\tif (n.%s == nil) != (o.%s == nil) {\n\t\treturn false\n\t}\n", name, name)
			fmt.Fprintf(&g.source, "\tif n.%s != nil && !n.%s.Equal(o.%s) {\n\t\treturn false\n\t}\n", name, name, name)
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.source, "\tif len(n.%s) != len(o.%s) {\n\t\treturn false\n\t}\n", name, name)
			fmt.Fprintf(&g.source, "\tfor i := range n.%s {\n", name)
			fmt.Fprintf(&g.source, "\t\tif (n.%s[i] == nil) != (o.%s[i] == nil) {\n\t\t\treturn false\n\t\t}\n", name, name)
			fmt.Fprintf(&g.source, "\t\tif n.%s[i] != nil && !n.%s[i].Equal(o.%s[i]) {\n\t\t\treturn false\n\t\t}\n", name, name, name)
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.source, "\tif n.%s != o.%s {\n\t\treturn false\n\t}\n", name, name)
		default:
			fmt.Fprintf(&g.source, "\tif n.%s != o.%s {\n\t\treturn false\n\t}\n", name, name)
		}
	}
	fmt.Fprintln(&g.source, "\treturn true")
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

func (g *generator) emitVisit(n *treemodel.NodeType, gt string) {
	fmt.Fprintf(&g.source, "func (n %s) Visit(v Visitor) { v.%s(n) }\n\n", gt, visitMethodName(n))
}

func (g *generator) emitDumpIndent(n *treemodel.NodeType, gt string, fields []*treemodel.Field) {
	fmt.Fprintf(&g.source, "func (n %s) dumpIndent(w io.Writer, depth int) error {\n", gt)
	fmt.Fprintln(&g.source, "\tpad := indent(depth)")
	fmt.Fprintf(&g.source, "\tif _, err := fmt.Fprintf(w, \"%%s%s\\n\", pad); err != nil {\n\t\treturn err\n\t}\n", n.Name)
	for _, f := range fields {
		name := exportedFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.source, "\tif n.%s != nil {\n", name)
			fmt.Fprintf(&g.source, "\t\tif _, err := fmt.Fprintf(w, \"%%s  %s:\\n\", pad); err != nil {\n\t\t\treturn err\n\t\t}\n", name)
			fmt.Fprintf(&g.source, "\t\tif err := n.%s.dumpIndent(w, depth+2); err != nil {\n\t\t\treturn err\n\t\t}\n", name)
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.source, "\tif _, err := fmt.Fprintf(w, \"%%s  %s:\\n\", pad); err != nil {\n\t\treturn err\n\t}\n", name)
			fmt.Fprintf(&g.source, "\tfor _, it := range n.%s {\n", name)
			fmt.Fprintln(&g.source, "\t\tif it == nil {")
			fmt.Fprintln(&g.source, "\t\t\tcontinue")
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t\tif err := it.dumpIndent(w, depth+2); err != nil {")
			fmt.Fprintln(&g.source, "\t\t\treturn err")
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.source, "\tif _, err := fmt.Fprintf(w, \"%%s  %s: <link>\\n\", pad); err != nil {\n\t\treturn err\n\t}\n", name)
		default:
			fmt.Fprintf(&g.source, "\tif _, err := fmt.Fprintf(w, \"%%s  %s: %%v\\n\", pad, n.%s); err != nil {\n\t\treturn err\n\t}\n", name, name)
		}
	}
	fmt.Fprintln(&g.source, "\treturn nil")
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

func (g *generator) emitDump(n *treemodel.NodeType, gt string) {
	fmt.Fprintf(&g.source, "func (n %s) Dump(w io.Writer) error { return n.dumpIndent(w, 0) }\n\n", gt)
}

// emitCheckComplete verifies One/Many non-emptiness and Link presence
// recursively. Full reachability-from-root verification of Link targets is
// left to Serialize, which can only resolve a link if collectPaths actually
// found the target while walking the owning tree from the serialization
// root (see runtime.go).
func (g *generator) emitCheckComplete(n *treemodel.NodeType, gt string, fields []*treemodel.Field) {
	fmt.Fprintf(&g.source, "func (n %s) CheckComplete() error {\n", gt)
	for _, f := range fields {
		name := exportedFieldName(f)
		switch f.Kind {
		case treemodel.EdgeOne:
			fmt.Fprintf(&g.source, "\tif n.%s == nil {\n\t\treturn fmt.Errorf(\"%s.%s: required field is nil\")\n\t}\n", name, n.Name, name)
			fmt.Fprintf(&g.source, "\tif err := n.%s.CheckComplete(); err != nil {\n\t\treturn err\n\t}\n", name)
		case treemodel.EdgeMaybe:
			fmt.Fprintf(&g.source, "\tif n.%s != nil {\n", name)
			fmt.Fprintf(&g.source, "\t\tif err := n.%s.CheckComplete(); err != nil {\n\t\t\treturn err\n\t\t}\n", name)
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeMany:
			fmt.Fprintf(&g.source, "\tif len(n.%s) == 0 {\n\t\treturn fmt.Errorf(\"%s.%s: at least one element required\")\n\t}\n", name, n.Name, name)
			fmt.Fprintf(&g.source, "\tfor _, it := range n.%s {\n", name)
			fmt.Fprintln(&g.source, "\t\tif it == nil {")
			fmt.Fprintf(&g.source, "\t\t\treturn fmt.Errorf(\"%s.%s: nil element\")\n", n.Name, name)
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t\tif err := it.CheckComplete(); err != nil {")
			fmt.Fprintln(&g.source, "\t\t\treturn err")
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeAny:
			fmt.Fprintf(&g.source, "\tfor _, it := range n.%s {\n", name)
			fmt.Fprintln(&g.source, "\t\tif it == nil {")
			fmt.Fprintf(&g.source, "\t\t\treturn fmt.Errorf(\"%s.%s: nil element\")\n", n.Name, name)
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t\tif err := it.CheckComplete(); err != nil {")
			fmt.Fprintln(&g.source, "\t\t\treturn err")
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.source, "\tif n.%s == nil {\n\t\treturn fmt.Errorf(\"%s.%s: link does not resolve\")\n\t}\n", name, n.Name, name)
		}
	}
	fmt.Fprintln(&g.source, "\treturn nil")
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

// emitCollectPaths records, for every owning descendant reachable from n,
// the path of field names/indices leading to it from the serialization
// root. Link fields contribute no path of their own: they are resolved by
// looking their target up in this same table.
func (g *generator) emitCollectPaths(n *treemodel.NodeType, gt string, fields []*treemodel.Field) {
	fmt.Fprintf(&g.source, "func (n %s) collectPaths(ctx *serializeContext, path []pathStep) {\n", gt)
	fmt.Fprintln(&g.source, "\tctx.paths[n] = path")
	for _, f := range fields {
		name := exportedFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.source, "\tif n.%s != nil {\n", name)
			fmt.Fprintf(&g.source, "\t\tn.%s.collectPaths(ctx, append(append([]pathStep{}, path...), pathStep{Field: %q}))\n", name, name)
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.source, "\tfor i, it := range n.%s {\n", name)
			fmt.Fprintln(&g.source, "\t\tif it == nil {")
			fmt.Fprintln(&g.source, "\t\t\tcontinue")
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintf(&g.source, "\t\tit.collectPaths(ctx, append(append([]pathStep{}, path...), pathStep{Field: %q, Index: i, HasIndex: true}))\n", name)
			fmt.Fprintln(&g.source, "\t}")
		}
	}
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

// emitSerialize writes the CBOR wire form of §6: a "type" key, one key per
// field (Maybe/One as a nested map, Any/Many as an array of maps, Link as
// the integer id assigned by ctx, primitives/enums by value), and, if the
// model enables the "source_location" feature, a "location" key.
func (g *generator) emitSerialize(n *treemodel.NodeType, gt string, fields []*treemodel.Field) {
	fmt.Fprintf(&g.source, "func (n %s) Serialize(w *cbor.MapWriter, ctx *serializeContext) error {\n", gt)
	fmt.Fprintf(&g.source, "\tif err := w.WriteText(\"type\", %q); err != nil {\n\t\treturn err\n\t}\n", n.Name)
	for _, f := range fields {
		name := exportedFieldName(f)
		key := f.Name
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.source, "\tif n.%s != nil {\n", name)
			fmt.Fprintf(&g.source, "\t\tsub, err := w.BeginMap(%q)\n\t\tif err != nil {\n\t\t\treturn err\n\t\t}\n", key)
			fmt.Fprintf(&g.source, "\t\tif err := n.%s.Serialize(sub, ctx); err != nil {\n\t\t\treturn err\n\t\t}\n", name)
			fmt.Fprintln(&g.source, "\t\tif err := sub.Close(); err != nil {\n\t\t\treturn err\n\t\t}")
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeAny, treemodel.EdgeMany:
			// Braced so that several Any/Many fields do not redeclare arr.
			fmt.Fprintln(&g.source, "\t{")
			fmt.Fprintf(&g.source, "\tarr, err := w.BeginArray(%q)\n\tif err != nil {\n\t\treturn err\n\t}\n", key)
			fmt.Fprintf(&g.source, "\tfor _, it := range n.%s {\n", name)
			fmt.Fprintln(&g.source, "\t\tif it == nil {")
			fmt.Fprintln(&g.source, "\t\t\tcontinue")
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t\telemMap, err := arr.BeginMap()\n\t\tif err != nil {\n\t\t\treturn err\n\t\t}")
			fmt.Fprintln(&g.source, "\t\tif err := it.Serialize(elemMap, ctx); err != nil {\n\t\t\treturn err\n\t\t}")
			fmt.Fprintln(&g.source, "\t\tif err := elemMap.Close(); err != nil {\n\t\t\treturn err\n\t\t}")
			fmt.Fprintln(&g.source, "\t}")
			fmt.Fprintln(&g.source, "\tif err := arr.Close(); err != nil {\n\t\treturn err\n\t}")
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.source, "\tif n.%s != nil {\n", name)
			fmt.Fprintf(&g.source, "\t\tif err := w.WriteInt(%q, int64(ctx.linkID(Node(n.%s)))); err != nil {\n\t\t\treturn err\n\t\t}\n", key, name)
			fmt.Fprintln(&g.source, "\t}")
		default:
			g.emitSerializePrimitive(f, key, name)
		}
	}
	if g.model.HasFeature("source_location") {
		fmt.Fprintln(&g.source, "\tif n.Location != \"\" {")
		fmt.Fprintln(&g.source, "\t\tif err := w.WriteText(\"location\", n.Location); err != nil {\n\t\t\treturn err\n\t\t}")
		fmt.Fprintln(&g.source, "\t}")
	}
	fmt.Fprintln(&g.source, "\treturn nil")
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

func (g *generator) emitSerializePrimitive(f *treemodel.Field, key, name string) {
	switch {
	case f.Type.Enum != nil:
		fmt.Fprintf(&g.source, "\tif err := w.WriteInt(%q, int64(n.%s)); err != nil {\n\t\treturn err\n\t}\n", key, name)
	case f.Type.Primitive != nil && f.Type.Primitive.Name == "Int":
		fmt.Fprintf(&g.source, "\tif err := w.WriteInt(%q, n.%s); err != nil {\n\t\treturn err\n\t}\n", key, name)
	case f.Type.Primitive != nil && f.Type.Primitive.Name == "String":
		fmt.Fprintf(&g.source, "\tif err := w.WriteText(%q, n.%s); err != nil {\n\t\treturn err\n\t}\n", key, name)
	case f.Type.Primitive != nil && f.Type.Primitive.Name == "Bool":
		fmt.Fprintf(&g.source, "\tif err := w.WriteBool(%q, n.%s); err != nil {\n\t\treturn err\n\t}\n", key, name)
	default:
		// Custom header-declared primitive: its Serialize hook converts the
		// value to bytes (see treemodel.Primitive.Serialize).
		fmt.Fprintf(&g.source, "\tif err := w.WriteBytes(%q, %s(n.%s)); err != nil {\n\t\treturn err\n\t}\n", key, f.Type.Primitive.Serialize, name)
	}
}

// emitDeserialize writes deserializeXxx, the reverse of Serialize: it reads
// n's own declared fields back out of a decoded CBOR map, recursing through
// dispatchDeserialize for owned children and registering a fixup closure
// for each Link field, since a link's target may not have been constructed
// yet at the point its id is read (see deserializeContext in runtime.go).
func (g *generator) emitDeserialize(n *treemodel.NodeType, gt string, fields []*treemodel.Field) {
	fmt.Fprintf(&g.source, "func deserialize%s(m *cbor.Map, ctx *deserializeContext) (Node, error) {\n", n.Name)
	fmt.Fprintf(&g.source, "\tn := &%s{}\n", n.Name)
	for _, f := range fields {
		name := exportedFieldName(f)
		key := f.Name
		switch f.Kind {
		case treemodel.EdgeOne:
			// Braced so that several One fields do not redeclare v, sub and
			// child in the same scope.
			fmt.Fprintln(&g.source, "\t{")
			fmt.Fprintf(&g.source, "\tv, ok := m.Get(%q)\n", key)
			fmt.Fprintln(&g.source, "\tif !ok {")
			fmt.Fprintf(&g.source, "\t\treturn nil, fmt.Errorf(\"%s.%s: required field missing\")\n", n.Name, name)
			fmt.Fprintln(&g.source, "\t}")
			fmt.Fprintln(&g.source, "\tsub, err := v.AsMap()")
			fmt.Fprintln(&g.source, "\tif err != nil {\n\t\treturn nil, err\n\t}")
			fmt.Fprintln(&g.source, "\tchild, err := dispatchDeserialize(sub, ctx)")
			fmt.Fprintln(&g.source, "\tif err != nil {\n\t\treturn nil, err\n\t}")
			fmt.Fprintf(&g.source, "\tif t, ok := child.(%s); ok {\n\t\tn.%s = t\n\t}\n", goFieldType(f), name)
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeMaybe:
			fmt.Fprintf(&g.source, "\tif v, ok := m.Get(%q); ok {\n", key)
			fmt.Fprintln(&g.source, "\t\tsub, err := v.AsMap()")
			fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
			fmt.Fprintln(&g.source, "\t\tchild, err := dispatchDeserialize(sub, ctx)")
			fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
			fmt.Fprintf(&g.source, "\t\tif t, ok := child.(%s); ok {\n\t\t\tn.%s = t\n\t\t}\n", goFieldType(f), name)
			fmt.Fprintln(&g.source, "\t}")
		case treemodel.EdgeAny, treemodel.EdgeMany:
			elemType := goFieldType(f)[2:] // strip the leading "[]"
			fmt.Fprintf(&g.source, "\tif v, ok := m.Get(%q); ok {\n", key)
			fmt.Fprintln(&g.source, "\t\tarr, err := v.AsArray()")
			fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
			fmt.Fprintf(&g.source, "\t\tn.%s = make([]%s, 0, len(arr))\n", name, elemType)
			fmt.Fprintln(&g.source, "\t\tfor _, elem := range arr {")
			fmt.Fprintln(&g.source, "\t\t\tem, err := elem.AsMap()")
			fmt.Fprintln(&g.source, "\t\t\tif err != nil {\n\t\t\t\treturn nil, err\n\t\t\t}")
			fmt.Fprintln(&g.source, "\t\t\tchild, err := dispatchDeserialize(em, ctx)")
			fmt.Fprintln(&g.source, "\t\t\tif err != nil {\n\t\t\t\treturn nil, err\n\t\t\t}")
			fmt.Fprintf(&g.source, "\t\t\tt, ok := child.(%s)\n", elemType)
			fmt.Fprintln(&g.source, "\t\t\tif !ok {")
			fmt.Fprintf(&g.source, "\t\t\t\treturn nil, fmt.Errorf(\"%s.%s: unexpected element type\")\n", n.Name, name)
			fmt.Fprintln(&g.source, "\t\t\t}")
			fmt.Fprintf(&g.source, "\t\t\tn.%s = append(n.%s, t)\n", name, name)
			fmt.Fprintln(&g.source, "\t\t}")
			fmt.Fprintln(&g.source, "\t}")
			if f.Kind == treemodel.EdgeMany {
				fmt.Fprintf(&g.source, "\tif len(n.%s) == 0 {\n\t\treturn nil, fmt.Errorf(\"%s.%s: at least one element required\")\n\t}\n", name, n.Name, name)
			}
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.source, "\tif v, ok := m.Get(%q); ok {\n", key)
			fmt.Fprintln(&g.source, "\t\tid, err := v.AsInt()")
			fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
			fmt.Fprintln(&g.source, "\t\ttarget := n")
			fmt.Fprintln(&g.source, "\t\tlinkID := int(id)")
			fmt.Fprintln(&g.source, "\t\tctx.fixups = append(ctx.fixups, func(root Node) error {")
			fmt.Fprintln(&g.source, "\t\t\tt, err := ctx.resolveLink(root, linkID)")
			fmt.Fprintln(&g.source, "\t\t\tif err != nil {\n\t\t\t\treturn err\n\t\t\t}")
			fmt.Fprintf(&g.source, "\t\t\tif tt, ok := t.(%s); ok {\n\t\t\t\ttarget.%s = tt\n\t\t\t}\n", goFieldType(f), name)
			fmt.Fprintln(&g.source, "\t\t\treturn nil")
			fmt.Fprintln(&g.source, "\t\t})")
			fmt.Fprintln(&g.source, "\t}")
		default:
			g.emitDeserializePrimitive(f, key, name)
		}
	}
	if g.model.HasFeature("source_location") {
		fmt.Fprintln(&g.source, "\tif v, ok := m.Get(\"location\"); ok {")
		fmt.Fprintln(&g.source, "\t\ts, err := v.AsText()")
		fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
		fmt.Fprintln(&g.source, "\t\tn.Location = s")
		fmt.Fprintln(&g.source, "\t}")
	}
	fmt.Fprintln(&g.source, "\treturn n, nil")
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}

func (g *generator) emitDeserializePrimitive(f *treemodel.Field, key, name string) {
	switch {
	case f.Type.Enum != nil:
		fmt.Fprintf(&g.source, "\tif v, ok := m.Get(%q); ok {\n", key)
		fmt.Fprintln(&g.source, "\t\ti, err := v.AsInt()")
		fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
		fmt.Fprintf(&g.source, "\t\tn.%s = %s(i)\n", name, f.Type.Enum.Name)
		fmt.Fprintln(&g.source, "\t}")
	case f.Type.Primitive != nil && f.Type.Primitive.Name == "Int":
		fmt.Fprintf(&g.source, "\tif v, ok := m.Get(%q); ok {\n", key)
		fmt.Fprintln(&g.source, "\t\ti, err := v.AsInt()")
		fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
		fmt.Fprintf(&g.source, "\t\tn.%s = i\n", name)
		fmt.Fprintln(&g.source, "\t}")
	case f.Type.Primitive != nil && f.Type.Primitive.Name == "String":
		fmt.Fprintf(&g.source, "\tif v, ok := m.Get(%q); ok {\n", key)
		fmt.Fprintln(&g.source, "\t\ts, err := v.AsText()")
		fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
		fmt.Fprintf(&g.source, "\t\tn.%s = s\n", name)
		fmt.Fprintln(&g.source, "\t}")
	case f.Type.Primitive != nil && f.Type.Primitive.Name == "Bool":
		fmt.Fprintf(&g.source, "\tif v, ok := m.Get(%q); ok {\n", key)
		fmt.Fprintln(&g.source, "\t\tb, err := v.AsBool()")
		fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
		fmt.Fprintf(&g.source, "\t\tn.%s = b\n", name)
		fmt.Fprintln(&g.source, "\t}")
	default:
		// Custom header-declared primitive: its Deserialize hook converts
		// the wire bytes back to a value (see treemodel.Primitive.Deserialize).
		fmt.Fprintf(&g.source, "\tif v, ok := m.Get(%q); ok {\n", key)
		fmt.Fprintln(&g.source, "\t\tbs, err := v.AsBytes()")
		fmt.Fprintln(&g.source, "\t\tif err != nil {\n\t\t\treturn nil, err\n\t\t}")
		fmt.Fprintf(&g.source, "\t\tn.%s = %s(bs)\n", name, f.Type.Primitive.Deserialize)
		fmt.Fprintln(&g.source, "\t}")
	}
}

// emitResolveStep writes the per-type half of link-path resolution used by
// Unmarshal's deserializeContext.resolveLink: a direct field-name lookup for
// Maybe/One steps, and an index probed against every Any/Many field in
// declaration order for indexed steps, since Marshal's wire format (see
// collectPaths/Marshal in runtime.go) writes an indexed path step as a bare
// integer with no field name, so a type with more than one Any/Many field
// cannot always disambiguate which field an indexed step belongs to. This
// matches every node type seen so far (at most one Any/Many field each); a
// type that breaks that pattern will resolve to its first field with the
// index in range.
func (g *generator) emitResolveStep(n *treemodel.NodeType, gt string, fields []*treemodel.Field) {
	fmt.Fprintf(&g.source, "func (n %s) resolveStep(step pathStep) (Node, error) {\n", gt)
	fmt.Fprintln(&g.source, "\tif !step.HasIndex {")
	fmt.Fprintln(&g.source, "\t\tswitch step.Field {")
	for _, f := range fields {
		if f.Kind != treemodel.EdgeMaybe && f.Kind != treemodel.EdgeOne {
			continue
		}
		name := exportedFieldName(f)
		fmt.Fprintf(&g.source, "\t\tcase %q:\n", f.Name)
		fmt.Fprintf(&g.source, "\t\t\tif n.%s == nil {\n\t\t\t\treturn nil, fmt.Errorf(\"%s.%s: link path step through nil field\")\n\t\t\t}\n", name, n.Name, name)
		fmt.Fprintf(&g.source, "\t\t\treturn n.%s, nil\n", name)
	}
	fmt.Fprintln(&g.source, "\t\t}")
	fmt.Fprintf(&g.source, "\t\treturn nil, fmt.Errorf(\"%s: no such field %%q\", step.Field)\n", n.Name)
	fmt.Fprintln(&g.source, "\t}")
	for _, f := range fields {
		if f.Kind != treemodel.EdgeAny && f.Kind != treemodel.EdgeMany {
			continue
		}
		name := exportedFieldName(f)
		fmt.Fprintf(&g.source, "\tif step.Index >= 0 && step.Index < len(n.%s) && n.%s[step.Index] != nil {\n", name, name)
		fmt.Fprintf(&g.source, "\t\treturn n.%s[step.Index], nil\n", name)
		fmt.Fprintln(&g.source, "\t}")
	}
	fmt.Fprintf(&g.source, "\treturn nil, fmt.Errorf(\"%s: no indexed field holds index %%d\", step.Index)\n", n.Name)
	fmt.Fprintln(&g.source, "}")
	fmt.Fprintln(&g.source)
}
