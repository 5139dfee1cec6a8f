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

package dyngen

import (
	"bytes"
	"fmt"

	"github.com/QE-Lab/tree-gen/treemodel"
)

// generator accumulates the Python source for one Generate call. Unlike
// gogen's generator, there is no separate header/source split: Python has
// no forward-declaration requirement, so every class is emitted once, in
// model.NodeOrder, a parent always ahead of its children.
type generator struct {
	model *treemodel.Model
	buf   bytes.Buffer
}

func (g *generator) run() {
	g.emitEnums()
	g.emitDiscriminators()
	g.emitVisitor()
	for _, name := range g.model.NodeOrder {
		n := g.model.Nodes[name]
		g.emitClass(n)
	}
}

// emitEnums writes one IntEnum per declared enumeration, ordinals matching
// declaration order (the CBOR wire encoding of §6).
func (g *generator) emitEnums() {
	for _, name := range g.model.EnumOrder {
		e := g.model.Enums[name]
		fmt.Fprintf(&g.buf, "class %s(IntEnum):\n", e.Name)
		if e.Doc != "" {
			fmt.Fprintf(&g.buf, "    \"\"\"%s\"\"\"\n", e.Doc)
		}
		for i, c := range e.Constants {
			fmt.Fprintf(&g.buf, "    %s = %d\n", pyEnumValueName(c), i)
		}
		fmt.Fprintln(&g.buf)
	}
}

// emitDiscriminators writes the NodeType enum and the name-to-discriminator
// lookup table, mirroring gogen's NodeType/TypeDiscriminators pair.
func (g *generator) emitDiscriminators() {
	fmt.Fprintln(&g.buf, "class NodeType(IntEnum):")
	fmt.Fprintln(&g.buf, "    \"\"\"The stable discriminator naming a concrete node type.\"\"\"")
	for _, name := range g.model.ConcreteNodeOrder {
		n := g.model.Nodes[name]
		fmt.Fprintf(&g.buf, "    %s = %d\n", pyEnumValueName(n.Name), n.Discriminator)
	}
	fmt.Fprintln(&g.buf)

	fmt.Fprintln(&g.buf, "NODE_TYPE_DISCRIMINATORS = {")
	for _, name := range g.model.ConcreteNodeOrder {
		n := g.model.Nodes[name]
		fmt.Fprintf(&g.buf, "    %q: NodeType.%s,\n", n.Name, pyEnumValueName(n.Name))
	}
	fmt.Fprintln(&g.buf, "}")
	fmt.Fprintln(&g.buf)

	// Populated incrementally: NODE_DESERIALIZERS[name] = cls.deserialize is
	// written just after each concrete class is emitted, once the
	// classmethod it refers to actually exists.
	fmt.Fprintln(&g.buf, "NODE_DESERIALIZERS = {}")
	fmt.Fprintln(&g.buf)
}

// emitVisitor writes the BaseVisitor class: one visit_<type> method per
// node type, each defaulting to calling its parent's method, so overriding
// only an ancestor's method still dispatches every non-overriding
// descendant to it.
func (g *generator) emitVisitor() {
	fmt.Fprintln(&g.buf, "class BaseVisitor:")
	fmt.Fprintln(&g.buf, "    \"\"\"Dispatches on the runtime type of a node. Override only the")
	fmt.Fprintln(&g.buf, "    methods you need; unoverridden ones fall back to the ancestor's.\"\"\"")
	fmt.Fprintln(&g.buf)
	for _, name := range g.model.NodeOrder {
		n := g.model.Nodes[name]
		fmt.Fprintf(&g.buf, "    def %s(self, n):\n", pyVisitMethodName(n))
		if n.Parent != nil {
			fmt.Fprintf(&g.buf, "        self.%s(n)\n", pyVisitMethodName(n.Parent))
		} else {
			fmt.Fprintln(&g.buf, "        pass")
		}
		fmt.Fprintln(&g.buf)
	}
	fmt.Fprintln(&g.buf)
}

// emitClass writes one Python class per declared node type, abstract or
// concrete. An abstract type contributes only its own fields' storage (via
// __init__) and an is_<name> marker method; a concrete type additionally
// gets the full Node method set.
func (g *generator) emitClass(n *treemodel.NodeType) {
	base := "Node"
	if n.Parent != nil {
		base = n.Parent.Name
	}
	fmt.Fprintf(&g.buf, "class %s(%s):\n", n.Name, base)
	if n.Doc != "" {
		fmt.Fprintf(&g.buf, "    \"\"\"%s\"\"\"\n", n.Doc)
	}
	if n.Final() {
		fmt.Fprintf(&g.buf, "    NODE_TYPE = NodeType.%s\n", pyEnumValueName(n.Name))
		fmt.Fprintln(&g.buf)
	}

	g.emitInit(n)
	fmt.Fprintf(&g.buf, "    def is_%s(self):\n        return True\n\n", snakeCase(n.Name))

	if n.Final() {
		g.emitType(n)
		g.emitCopy(n)
		g.emitCloneInto(n)
		g.emitFixupLinks(n)
		g.emitClone(n)
		g.emitEqual(n)
		g.emitVisit(n)
		g.emitDumpIndent(n)
		g.emitDump(n)
		g.emitCheckComplete(n)
		g.emitCollectPaths(n)
		g.emitSerialize(n)
		g.emitDeserialize(n)
		g.emitResolveStep(n)
	}
	fmt.Fprintln(&g.buf)
	if n.Final() {
		fmt.Fprintf(&g.buf, "NODE_DESERIALIZERS[%q] = %s.deserialize\n\n", n.Name, n.Name)
	}
}

// emitInit writes a constructor accepting every field n declares locally
// plus, through **kwargs forwarding, every inherited field - the Python
// counterpart of gogen's Fields-struct embedding.
func (g *generator) emitInit(n *treemodel.NodeType) {
	own := n.Fields
	var params bytes.Buffer
	for _, f := range own {
		fmt.Fprintf(&params, ", %s=None", pyFieldName(f))
	}
	if n.Parent == nil && g.model.HasFeature("source_location") {
		params.WriteString(", location=\"\"")
	}
	fmt.Fprintf(&g.buf, "    def __init__(self%s, **kwargs):\n", params.String())
	if n.Parent != nil {
		fmt.Fprintln(&g.buf, "        super().__init__(**kwargs)")
	}
	for _, f := range own {
		name := pyFieldName(f)
		fmt.Fprintf(&g.buf, "        self.%s = %s if %s is not None else %s\n",
			name, name, name, pyFieldDefault(f))
	}
	if n.Parent == nil && g.model.HasFeature("source_location") {
		fmt.Fprintln(&g.buf, "        self.location = location")
	}
	fmt.Fprintln(&g.buf)
}

func (g *generator) emitType(n *treemodel.NodeType) {
	fmt.Fprintln(&g.buf, "    def type(self):")
	fmt.Fprintf(&g.buf, "        return NodeType.%s\n\n", pyEnumValueName(n.Name))
}

// emitCopy is a shallow attribute copy: owning children are shared, not
// duplicated, matching gogen's Copy semantics.
func (g *generator) emitCopy(n *treemodel.NodeType) {
	fmt.Fprintln(&g.buf, "    def copy(self):")
	fmt.Fprintf(&g.buf, "        cp = %s.__new__(%s)\n", n.Name, n.Name)
	fmt.Fprintln(&g.buf, "        cp.__dict__.update(self.__dict__)")
	fmt.Fprintln(&g.buf, "        return cp")
	fmt.Fprintln(&g.buf)
}

func (g *generator) emitCloneInto(n *treemodel.NodeType) {
	fields := n.AllFields()
	fmt.Fprintln(&g.buf, "    def clone_into(self, ctx):")
	fmt.Fprintf(&g.buf, "        cp = %s.__new__(%s)\n", n.Name, n.Name)
	for _, f := range fields {
		name := pyFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.buf, "        cp.%s = self.%s.clone_into(ctx) if self.%s is not None else None\n", name, name, name)
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.buf, "        cp.%s = [it.clone_into(ctx) for it in self.%s if it is not None]\n", name, name)
		case treemodel.EdgeLink:
			// Copied as-is; fixup_links remaps it once the whole tree is cloned.
			fmt.Fprintf(&g.buf, "        cp.%s = self.%s\n", name, name)
		default:
			fmt.Fprintf(&g.buf, "        cp.%s = self.%s\n", name, name)
		}
	}
	fmt.Fprintln(&g.buf, "        ctx.mapping[id(self)] = cp")
	fmt.Fprintln(&g.buf, "        return cp")
	fmt.Fprintln(&g.buf)
}

func (g *generator) emitFixupLinks(n *treemodel.NodeType) {
	fields := n.AllFields()
	fmt.Fprintln(&g.buf, "    def fixup_links(self, ctx):")
	wrote := false
	for _, f := range fields {
		name := pyFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			wrote = true
			fmt.Fprintf(&g.buf, "        if self.%s is not None:\n", name)
			fmt.Fprintf(&g.buf, "            self.%s.fixup_links(ctx)\n", name)
		case treemodel.EdgeAny, treemodel.EdgeMany:
			wrote = true
			fmt.Fprintf(&g.buf, "        for it in self.%s:\n", name)
			fmt.Fprintln(&g.buf, "            if it is not None:")
			fmt.Fprintln(&g.buf, "                it.fixup_links(ctx)")
		case treemodel.EdgeLink:
			wrote = true
			fmt.Fprintf(&g.buf, "        if self.%s is not None:\n", name)
			fmt.Fprintf(&g.buf, "            self.%s = ctx.mapping.get(id(self.%s), self.%s)\n", name, name, name)
		}
	}
	if !wrote {
		fmt.Fprintln(&g.buf, "        pass")
	}
	fmt.Fprintln(&g.buf)
}

func (g *generator) emitClone(n *treemodel.NodeType) {
	fmt.Fprintln(&g.buf, "    def clone(self):")
	fmt.Fprintln(&g.buf, "        ctx = CloneContext()")
	fmt.Fprintln(&g.buf, "        cloned = self.clone_into(ctx)")
	fmt.Fprintln(&g.buf, "        cloned.fixup_links(ctx)")
	fmt.Fprintln(&g.buf, "        return cloned")
	fmt.Fprintln(&g.buf)
}

// emitEqual compares the owning subtree structurally; Link fields compare
// by identity, matching gogen's "links compared by reference" rule.
func (g *generator) emitEqual(n *treemodel.NodeType) {
	fields := n.AllFields()
	fmt.Fprintln(&g.buf, "    def equal(self, other):")
	fmt.Fprintf(&g.buf, "        if not isinstance(other, %s):\n", n.Name)
	fmt.Fprintln(&g.buf, "            return False")
	for _, f := range fields {
		name := pyFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.buf, "        if (self.%s is None) != (other.%s is None):\n            return False\n", name, name)
			fmt.Fprintf(&g.buf, "        if self.%s is not None and not self.%s.equal(other.%s):\n            return False\n", name, name, name)
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.buf, "        if len(self.%s) != len(other.%s):\n            return False\n", name, name)
			fmt.Fprintf(&g.buf, "        for a, b in zip(self.%s, other.%s):\n", name, name)
			fmt.Fprintln(&g.buf, "            if (a is None) != (b is None):")
			fmt.Fprintln(&g.buf, "                return False")
			fmt.Fprintln(&g.buf, "            if a is not None and not a.equal(b):")
			fmt.Fprintln(&g.buf, "                return False")
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.buf, "        if self.%s is not other.%s:\n            return False\n", name, name)
		default:
			fmt.Fprintf(&g.buf, "        if self.%s != other.%s:\n            return False\n", name, name)
		}
	}
	fmt.Fprintln(&g.buf, "        return True")
	fmt.Fprintln(&g.buf)
}

func (g *generator) emitVisit(n *treemodel.NodeType) {
	fmt.Fprintln(&g.buf, "    def visit(self, v):")
	fmt.Fprintf(&g.buf, "        v.%s(self)\n\n", pyVisitMethodName(n))
}

func (g *generator) emitDumpIndent(n *treemodel.NodeType) {
	fields := n.AllFields()
	fmt.Fprintln(&g.buf, "    def dump_indent(self, out, depth):")
	fmt.Fprintln(&g.buf, "        pad = \"  \" * depth")
	fmt.Fprintf(&g.buf, "        out.write(f\"{pad}%s\\n\")\n", n.Name)
	for _, f := range fields {
		name := pyFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.buf, "        if self.%s is not None:\n", name)
			fmt.Fprintf(&g.buf, "            out.write(f\"{pad}  %s:\\n\")\n", name)
			fmt.Fprintf(&g.buf, "            self.%s.dump_indent(out, depth + 2)\n", name)
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.buf, "        out.write(f\"{pad}  %s:\\n\")\n", name)
			fmt.Fprintf(&g.buf, "        for it in self.%s:\n", name)
			fmt.Fprintln(&g.buf, "            if it is not None:")
			fmt.Fprintln(&g.buf, "                it.dump_indent(out, depth + 2)")
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.buf, "        out.write(f\"{pad}  %s: <link>\\n\")\n", name)
		default:
			fmt.Fprintf(&g.buf, "        out.write(f\"{pad}  %s: {self.%s!r}\\n\")\n", name, name)
		}
	}
	fmt.Fprintln(&g.buf)
}

func (g *generator) emitDump(n *treemodel.NodeType) {
	fmt.Fprintln(&g.buf, "    def dump(self, out):")
	fmt.Fprintln(&g.buf, "        self.dump_indent(out, 0)")
	fmt.Fprintln(&g.buf)
}

// emitCheckComplete verifies One/Many non-emptiness and Link presence
// recursively, the same simplification gogen documents: full
// reachability-from-root of Link targets is left to serialize's
// path-based resolution.
func (g *generator) emitCheckComplete(n *treemodel.NodeType) {
	fields := n.AllFields()
	fmt.Fprintln(&g.buf, "    def check_complete(self):")
	wrote := false
	for _, f := range fields {
		name := pyFieldName(f)
		switch f.Kind {
		case treemodel.EdgeOne:
			wrote = true
			fmt.Fprintf(&g.buf, "        if self.%s is None:\n", name)
			fmt.Fprintf(&g.buf, "            raise ValueError(\"%s.%s: required field is None\")\n", n.Name, name)
			fmt.Fprintf(&g.buf, "        self.%s.check_complete()\n", name)
		case treemodel.EdgeMaybe:
			wrote = true
			fmt.Fprintf(&g.buf, "        if self.%s is not None:\n", name)
			fmt.Fprintf(&g.buf, "            self.%s.check_complete()\n", name)
		case treemodel.EdgeMany:
			wrote = true
			fmt.Fprintf(&g.buf, "        if not self.%s:\n", name)
			fmt.Fprintf(&g.buf, "            raise ValueError(\"%s.%s: at least one element required\")\n", n.Name, name)
			fmt.Fprintf(&g.buf, "        for it in self.%s:\n", name)
			fmt.Fprintln(&g.buf, "            if it is None:")
			fmt.Fprintf(&g.buf, "                raise ValueError(\"%s.%s: None element\")\n", n.Name, name)
			fmt.Fprintln(&g.buf, "            it.check_complete()")
		case treemodel.EdgeAny:
			wrote = true
			fmt.Fprintf(&g.buf, "        for it in self.%s:\n", name)
			fmt.Fprintln(&g.buf, "            if it is None:")
			fmt.Fprintf(&g.buf, "                raise ValueError(\"%s.%s: None element\")\n", n.Name, name)
			fmt.Fprintln(&g.buf, "            it.check_complete()")
		case treemodel.EdgeLink:
			wrote = true
			fmt.Fprintf(&g.buf, "        if self.%s is None:\n", name)
			fmt.Fprintf(&g.buf, "            raise ValueError(\"%s.%s: link does not resolve\")\n", n.Name, name)
		}
	}
	if !wrote {
		fmt.Fprintln(&g.buf, "        pass")
	}
	fmt.Fprintln(&g.buf)
}

// emitCollectPaths records, for every owning descendant reachable from
// self, the path from the serialization root to it. An indexed step
// (Any/Many) records only the integer index, matching gogen's Marshal,
// which drops the field name for indexed steps when writing the links
// table - kept here for bit-exact parity with the native encoding rather
// than independently "fixed".
func (g *generator) emitCollectPaths(n *treemodel.NodeType) {
	fields := n.AllFields()
	fmt.Fprintln(&g.buf, "    def collect_paths(self, ctx, path):")
	fmt.Fprintln(&g.buf, "        ctx.paths[id(self)] = path")
	for _, f := range fields {
		name := pyFieldName(f)
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.buf, "        if self.%s is not None:\n", name)
			fmt.Fprintf(&g.buf, "            self.%s.collect_paths(ctx, path + [%q])\n", name, name)
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.buf, "        for i, it in enumerate(self.%s):\n", name)
			fmt.Fprintln(&g.buf, "            if it is None:")
			fmt.Fprintln(&g.buf, "                continue")
			fmt.Fprintln(&g.buf, "            it.collect_paths(ctx, path + [i])")
		}
	}
	fmt.Fprintln(&g.buf)
}

// emitSerialize writes the CBOR wire form of §6: a "type" key, one key per
// field, and, if the model enables "source_location", a "location" key.
func (g *generator) emitSerialize(n *treemodel.NodeType) {
	fields := n.AllFields()
	fmt.Fprintln(&g.buf, "    def serialize(self, w, ctx):")
	fmt.Fprintf(&g.buf, "        w.write_text(\"type\", %q)\n", n.Name)
	for _, f := range fields {
		name := pyFieldName(f)
		key := f.Name
		switch f.Kind {
		case treemodel.EdgeMaybe, treemodel.EdgeOne:
			fmt.Fprintf(&g.buf, "        if self.%s is not None:\n", name)
			fmt.Fprintf(&g.buf, "            sub = w.begin_map(%q)\n", key)
			fmt.Fprintf(&g.buf, "            self.%s.serialize(sub, ctx)\n", name)
			fmt.Fprintln(&g.buf, "            sub.close()")
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.buf, "        arr = w.begin_array(%q)\n", key)
			fmt.Fprintf(&g.buf, "        for it in self.%s:\n", name)
			fmt.Fprintln(&g.buf, "            if it is None:")
			fmt.Fprintln(&g.buf, "                continue")
			fmt.Fprintln(&g.buf, "            elem = arr.begin_elem_map()")
			fmt.Fprintln(&g.buf, "            it.serialize(elem, ctx)")
			fmt.Fprintln(&g.buf, "            elem.close()")
			fmt.Fprintln(&g.buf, "        arr.close()")
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.buf, "        if self.%s is not None:\n", name)
			fmt.Fprintf(&g.buf, "            w.write_int(%q, ctx.link_id(self.%s))\n", key, name)
		default:
			g.emitSerializePrimitive(f, key, name)
		}
	}
	if g.model.HasFeature("source_location") {
		fmt.Fprintln(&g.buf, "        if self.location:")
		fmt.Fprintln(&g.buf, "            w.write_text(\"location\", self.location)")
	}
	fmt.Fprintln(&g.buf)
}

func (g *generator) emitSerializePrimitive(f *treemodel.Field, key, name string) {
	switch {
	case f.Type.Enum != nil:
		fmt.Fprintf(&g.buf, "        w.write_int(%q, int(self.%s))\n", key, name)
	case f.Type.Primitive != nil && f.Type.Primitive.Name == "Int":
		fmt.Fprintf(&g.buf, "        w.write_int(%q, self.%s)\n", key, name)
	case f.Type.Primitive != nil && f.Type.Primitive.Name == "String":
		fmt.Fprintf(&g.buf, "        w.write_text(%q, self.%s)\n", key, name)
	case f.Type.Primitive != nil && f.Type.Primitive.Name == "Bool":
		fmt.Fprintf(&g.buf, "        w.write_bool(%q, self.%s)\n", key, name)
	default:
		// Custom header-declared primitive: its declared serialize hook is a
		// free function taking the Python value and returning bytes.
		fmt.Fprintf(&g.buf, "        w.write_bytes(%q, %s(self.%s))\n", key, f.Type.Primitive.Serialize, name)
	}
}

// emitDeserialize writes the deserialize classmethod, the reverse of
// serialize: it reads n's fields (own and inherited, via AllFields, the
// same set serialize walks) back out of a decoded CBOR dict, recursing
// through dispatch_deserialize for owned children and deferring each Link
// field to a closure registered on ctx, since the link's target may not
// exist yet at the point its id is read (see DeserializeContext in
// runtime.go).
func (g *generator) emitDeserialize(n *treemodel.NodeType) {
	fields := n.AllFields()
	fmt.Fprintln(&g.buf, "    @classmethod")
	fmt.Fprintln(&g.buf, "    def deserialize(cls, m, ctx):")
	fmt.Fprintln(&g.buf, "        n = cls.__new__(cls)")
	for _, f := range fields {
		name := pyFieldName(f)
		key := f.Name
		switch f.Kind {
		case treemodel.EdgeOne:
			fmt.Fprintf(&g.buf, "        sub = m.get(%q)\n", key)
			fmt.Fprintln(&g.buf, "        if sub is None:")
			fmt.Fprintf(&g.buf, "            raise ValueError(\"%s.%s: required field missing\")\n", n.Name, name)
			fmt.Fprintf(&g.buf, "        n.%s = dispatch_deserialize(sub, ctx)\n", name)
		case treemodel.EdgeMaybe:
			fmt.Fprintf(&g.buf, "        sub = m.get(%q)\n", key)
			fmt.Fprintf(&g.buf, "        n.%s = dispatch_deserialize(sub, ctx) if sub is not None else None\n", name)
		case treemodel.EdgeAny, treemodel.EdgeMany:
			fmt.Fprintf(&g.buf, "        n.%s = [dispatch_deserialize(elem, ctx) for elem in m.get(%q, [])]\n", name, key)
			if f.Kind == treemodel.EdgeMany {
				fmt.Fprintf(&g.buf, "        if not n.%s:\n", name)
				fmt.Fprintf(&g.buf, "            raise ValueError(\"%s.%s: at least one element required\")\n", n.Name, name)
			}
		case treemodel.EdgeLink:
			fmt.Fprintf(&g.buf, "        link_id = m.get(%q)\n", key)
			fmt.Fprintf(&g.buf, "        n.%s = None\n", name)
			fmt.Fprintln(&g.buf, "        if link_id is not None:")
			fmt.Fprintf(&g.buf, "            def _fixup_%s(root, n=n, link_id=link_id):\n", name)
			fmt.Fprintf(&g.buf, "                n.%s = ctx.resolve_link(root, link_id)\n", name)
			fmt.Fprintf(&g.buf, "            ctx.fixups.append(_fixup_%s)\n", name)
		default:
			g.emitDeserializePrimitive(f, key, name)
		}
	}
	if g.model.HasFeature("source_location") {
		fmt.Fprintln(&g.buf, "        n.location = m.get(\"location\", \"\")")
	}
	fmt.Fprintln(&g.buf, "        return n")
	fmt.Fprintln(&g.buf)
}

func (g *generator) emitDeserializePrimitive(f *treemodel.Field, key, name string) {
	switch {
	case f.Type.Enum != nil:
		fmt.Fprintf(&g.buf, "        n.%s = %s(m.get(%q))\n", name, f.Type.Enum.Name, key)
	case f.Type.Primitive != nil && (f.Type.Primitive.Name == "Int" || f.Type.Primitive.Name == "String" || f.Type.Primitive.Name == "Bool"):
		fmt.Fprintf(&g.buf, "        n.%s = m.get(%q)\n", name, key)
	default:
		// Custom header-declared primitive: its declared deserialize hook is
		// a free function taking the decoded wire bytes back to a value.
		fmt.Fprintf(&g.buf, "        n.%s = %s(m.get(%q))\n", name, f.Type.Primitive.Deserialize, key)
	}
}

// emitResolveStep writes the per-class half of link-path resolution used by
// DeserializeContext.resolve_link: a direct field-name lookup for Maybe/One
// steps, and an index probed against every Any/Many field in declaration
// order for indexed steps, mirroring gogen's resolveStep and the same
// consequence: collect_paths/marshal write an indexed step as a bare
// integer with no field name, so a class with more than one Any/Many field
// cannot always disambiguate which field an indexed step belongs to.
func (g *generator) emitResolveStep(n *treemodel.NodeType) {
	fields := n.AllFields()
	fmt.Fprintln(&g.buf, "    def resolve_step(self, step):")
	fmt.Fprintln(&g.buf, "        if isinstance(step, str):")
	for _, f := range fields {
		if f.Kind != treemodel.EdgeMaybe && f.Kind != treemodel.EdgeOne {
			continue
		}
		name := pyFieldName(f)
		fmt.Fprintf(&g.buf, "            if step == %q:\n", f.Name)
		fmt.Fprintf(&g.buf, "                if self.%s is None:\n", name)
		fmt.Fprintf(&g.buf, "                    raise ValueError(\"%s.%s: link path step through None field\")\n", n.Name, name)
		fmt.Fprintf(&g.buf, "                return self.%s\n", name)
	}
	fmt.Fprintf(&g.buf, "            raise ValueError(\"%s: no such field %%r\" %% (step,))\n", n.Name)
	for _, f := range fields {
		if f.Kind != treemodel.EdgeAny && f.Kind != treemodel.EdgeMany {
			continue
		}
		name := pyFieldName(f)
		fmt.Fprintf(&g.buf, "        if 0 <= step < len(self.%s) and self.%s[step] is not None:\n", name, name)
		fmt.Fprintf(&g.buf, "            return self.%s[step]\n", name)
	}
	fmt.Fprintf(&g.buf, "        raise ValueError(\"%s: no indexed field holds index %%d\" %% step)\n", n.Name)
	fmt.Fprintln(&g.buf)
}
