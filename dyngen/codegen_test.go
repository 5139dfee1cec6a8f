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
	"strings"
	"testing"

	"github.com/QE-Lab/tree-gen/treelang"
	"github.com/QE-Lab/tree-gen/treemodel"
)

func mustModel(t *testing.T, src string) *treemodel.Model {
	t.Helper()
	p, err := treelang.NewParser(strings.NewReader(src))
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	file, err := p.ParseFile()
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	m, _, err := treemodel.Resolve(file)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return m
}

const exprSrc = `
Expr {
}
Add : Expr {
  lhs: One<Expr>;
  rhs: One<Expr>;
}
Lit : Expr root {
  value: Int;
}
`

func TestGenerateProducesExpectedShape(t *testing.T) {
	m := mustModel(t, exprSrc)
	cg := &CodeGenerator{Caller: "dyngen_test", ModuleName: "exprtree"}
	out, err := cg.Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	src := out.Source

	wantContains := []string{
		"class Expr(Node):",
		"class Add(Expr):",
		"class Lit(Expr):",
		"NODE_TYPE = NodeType.ADD",
		"NODE_TYPE = NodeType.LIT",
		"def __init__(self, lhs=None, rhs=None, **kwargs):",
		"def __init__(self, value=None, **kwargs):",
		"def is_expr(self):",
		"def clone_into(self, ctx):",
		"def fixup_links(self, ctx):",
		"def equal(self, other):",
		"def check_complete(self):",
		"def serialize(self, w, ctx):",
		`w.write_text("type", "Add")`,
		"class BaseVisitor:",
		"def visit_add(self, n):",
		"class NodeType(IntEnum):",
		"def deserialize(cls, m, ctx):",
		"def resolve_step(self, step):",
		`NODE_DESERIALIZERS["Add"] = Add.deserialize`,
		`NODE_DESERIALIZERS["Lit"] = Lit.deserialize`,
		"def unmarshal(data):",
		"def dispatch_deserialize(m, ctx):",
		"class DeserializeContext:",
	}
	for _, want := range wantContains {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q\n---\n%s", want, src)
		}
	}
}

func TestGenerateDefaultsModuleName(t *testing.T) {
	m := mustModel(t, exprSrc)
	cg := &CodeGenerator{}
	out, err := cg.Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out.Source, "treegenout") {
		t.Errorf("expected default module name treegenout in docstring, got:\n%s", out.Source)
	}
}

func TestGenerateEmitsLocationField(t *testing.T) {
	src := `
header {
  enable source_location;
}

Expr root {
}
Lit : Expr {
  value: Int;
}
`
	m := mustModel(t, src)
	cg := &CodeGenerator{ModuleName: "exprtree"}
	out, err := cg.Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out.Source, "location=\"\"") {
		t.Errorf("expected location parameter in root __init__, got:\n%s", out.Source)
	}
	if !strings.Contains(out.Source, `w.write_text("location", self.location)`) {
		t.Errorf("expected location serialization, got:\n%s", out.Source)
	}
	if !strings.Contains(out.Source, `n.location = m.get("location", "")`) {
		t.Errorf("expected location deserialization, got:\n%s", out.Source)
	}
}
