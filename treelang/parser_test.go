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

package treelang

import (
	"strings"
	"testing"

	"github.com/QE-Lab/tree-gen/treelang/ast"
)

func parseString(t *testing.T, src string) (*ast.File, error) {
	t.Helper()
	p, err := NewParser(strings.NewReader(src))
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p.ParseFile()
}

func TestParseHeaderAndNodes(t *testing.T) {
	src := `
header {
  namespace "demo";
  include_header "<memory>";
  source_location Position;
  primitive Int {
    include "<cstdint>";
    default "0";
    serialize write_int;
    deserialize read_int;
  }
  enable source_location;
}

// Expr is the abstract base of all expressions.
Expr {
}

Add : Expr {
  lhs: One<Expr>;
  rhs: One<Expr>;
}

Lit : Expr root {
  value: Int = 0;
}
`
	f, err := parseString(t, src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if f.Header == nil {
		t.Fatal("expected a header")
	}
	if f.Header.Namespace != "demo" {
		t.Errorf("Namespace = %q, want demo", f.Header.Namespace)
	}
	if len(f.Header.Primitives) != 1 || f.Header.Primitives[0].Name != "Int" {
		t.Fatalf("Primitives = %+v", f.Header.Primitives)
	}
	if len(f.Header.EnabledFeatures) != 1 || f.Header.EnabledFeatures[0] != "source_location" {
		t.Fatalf("EnabledFeatures = %+v", f.Header.EnabledFeatures)
	}
	if len(f.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(f.Nodes))
	}
	add := f.Nodes[1]
	if add.Name != "Add" || add.Parent != "Expr" {
		t.Fatalf("Add = %+v", add)
	}
	if len(add.Fields) != 2 || add.Fields[0].Kind != ast.EdgeOne || add.Fields[0].TypeRef != "Expr" {
		t.Fatalf("Add.Fields = %+v", add.Fields)
	}
	lit := f.Nodes[2]
	if !lit.IsRoot {
		t.Error("Lit should be marked root")
	}
	if lit.Fields[0].Default != "0" {
		t.Errorf("Lit.value default = %q, want 0", lit.Fields[0].Default)
	}
}

func TestParseEnum(t *testing.T) {
	src := `
enum Color {
  RED;
  GREEN;
  BLUE;
}
A {
  c: Color;
}
`
	f, err := parseString(t, src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(f.Enums) != 1 || f.Enums[0].Name != "Color" {
		t.Fatalf("Enums = %+v", f.Enums)
	}
	if len(f.Enums[0].Constants) != 3 {
		t.Fatalf("Constants = %+v", f.Enums[0].Constants)
	}
}

func TestParseThreadsDocComments(t *testing.T) {
	src := `
// a binary expression node
Expr {
  // the left-hand operand
  lhs: One<Expr>;
}
`
	f, err := parseString(t, src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(f.Nodes) != 1 {
		t.Fatalf("Nodes = %+v", f.Nodes)
	}
	n := f.Nodes[0]
	if n.Doc != "a binary expression node" {
		t.Errorf("node Doc = %q, want %q", n.Doc, "a binary expression node")
	}
	if len(n.Fields) != 1 || n.Fields[0].Doc != "the left-hand operand" {
		t.Errorf("field Doc = %+v, want %q", n.Fields, "the left-hand operand")
	}
}

func TestParseAllEdgeKinds(t *testing.T) {
	src := `
Expr {
}
K : Expr {
  a: Maybe<Expr>;
  b: One<Expr>;
  c: Any<Expr>;
  d: Many<Expr>;
  e: Link<Expr>;
  f: External<Custom>;
  g: Int;
}
`
	f, err := parseString(t, src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	k := f.Nodes[1]
	want := []ast.EdgeKind{ast.EdgeMaybe, ast.EdgeOne, ast.EdgeAny, ast.EdgeMany, ast.EdgeLink, ast.EdgeExternal, ast.EdgePrimitive}
	if len(k.Fields) != len(want) {
		t.Fatalf("len(Fields) = %d, want %d", len(k.Fields), len(want))
	}
	for i, w := range want {
		if k.Fields[i].Kind != w {
			t.Errorf("Fields[%d].Kind = %v, want %v", i, k.Fields[i].Kind, w)
		}
	}
}

func TestParseErrorHasPositionAndToken(t *testing.T) {
	src := `
A {
  x: ;
}
`
	_, err := parseString(t, src)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("err = %T, want *Error", err)
	}
	if perr.Pos.Line != 3 {
		t.Errorf("Pos.Line = %d, want 3", perr.Pos.Line)
	}
	if perr.Tok != ";" {
		t.Errorf("Tok = %q, want ;", perr.Tok)
	}
}

func TestParseRejectsDuplicateFieldName(t *testing.T) {
	src := `
A {
  x: Int;
  x: Int;
}
`
	_, err := parseString(t, src)
	if err == nil {
		t.Fatal("expected a duplicate field error")
	}
}

func TestParseRejectsDuplicateEnumConstant(t *testing.T) {
	src := `
enum Color {
  RED;
  RED;
}
`
	_, err := parseString(t, src)
	if err == nil {
		t.Fatal("expected a duplicate constant error")
	}
}
