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

package main

import (
	"fmt"
	"strings"

	"github.com/QE-Lab/tree-gen/treemodel"
)

// dumpModel renders m's node-type hierarchy as indented plain text: one
// line per node type, its own fields indented beneath it, children
// indented beneath their parent.
func dumpModel(m *treemodel.Model) string {
	var b strings.Builder
	fmt.Fprintf(&b, "namespace %q\n", m.Namespace)
	for _, name := range m.EnumOrder {
		e := m.Enums[name]
		fmt.Fprintf(&b, "enum %s { %s }\n", e.Name, strings.Join(e.Constants, ", "))
	}
	for _, name := range m.NodeOrder {
		n := m.Nodes[name]
		if n.Parent == nil {
			dumpNode(&b, n, 0)
		}
	}
	return b.String()
}

func dumpNode(b *strings.Builder, n *treemodel.NodeType, depth int) {
	pad := strings.Repeat("  ", depth)
	tag := ""
	switch {
	case n.IsRoot:
		tag = " [root]"
	case n.IsErr:
		tag = " [error]"
	}
	kind := "concrete"
	if n.Abstract() {
		kind = "abstract"
	}
	fmt.Fprintf(b, "%s%s (%s)%s\n", pad, n.Name, kind, tag)
	for _, f := range n.Fields {
		fmt.Fprintf(b, "%s  %s: %s\n", pad, f.Name, fieldKindLabel(f))
	}
	for _, c := range n.Children {
		dumpNode(b, c, depth+1)
	}
}

// fieldKindLabel renders a field's declared edge kind and referenced type
// name, e.g. "One<Expr>" or "Link<Symbol>".
func fieldKindLabel(f *treemodel.Field) string {
	name := f.Type.Name()
	switch f.Kind {
	case treemodel.EdgeMaybe:
		return "Maybe<" + name + ">"
	case treemodel.EdgeOne:
		return "One<" + name + ">"
	case treemodel.EdgeAny:
		return "Any<" + name + ">"
	case treemodel.EdgeMany:
		return "Many<" + name + ">"
	case treemodel.EdgeLink:
		return "Link<" + name + ">"
	case treemodel.EdgeExternal:
		return "external " + name
	default:
		return name
	}
}
