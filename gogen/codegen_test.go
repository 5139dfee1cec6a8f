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
	f, err := p.ParseFile()
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	m, warnings, err := treemodel.Resolve(f)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
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
	cg := &CodeGenerator{Caller: "gogen_test", PackageName: "exprtree"}
	out, err := cg.Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	header, source := out.Header, out.Source

	for _, want := range []string{
		"package exprtree",
		"type Expr interface {",
		"type AddFields struct {",
		"type Add struct {",
		"type Lit struct {",
		"func (ExprFields) isExpr() {}",
		"AddType NodeType = ",
		"LitType NodeType = ",
		"func NewAdd() *Add {",
		"func NewAddFull(lhs Expr, rhs Expr) *Add {",
	} {
		if !strings.Contains(header, want) {
			t.Errorf("header missing %q\n--- header ---\n%s", want, header)
		}
	}

	for _, want := range []string{
		"func (n *Add) Type() NodeType { return AddType }",
		"func (n *Add) Copy() Node {",
		"func (n *Add) Clone() Node {",
		"func (n *Add) cloneInto(ctx *cloneContext) Node {",
		"func (n *Add) fixupLinks(ctx *cloneContext) {",
		"func (n *Add) Equal(other Node) bool {",
		"func (n *Add) Visit(v Visitor) { v.VisitAdd(n) }",
		"func (n *Add) CheckComplete() error {",
		"func (n *Add) Serialize(w *cbor.MapWriter, ctx *serializeContext) error {",
		`if err := w.WriteText("type", "Add"); err != nil {`,
		"func deserializeAdd(m *cbor.Map, ctx *deserializeContext) (Node, error) {",
		"func deserializeLit(m *cbor.Map, ctx *deserializeContext) (Node, error) {",
		"func (n *Add) resolveStep(step pathStep) (Node, error) {",
	} {
		if !strings.Contains(source, want) {
			t.Errorf("source missing %q\n--- source ---\n%s", want, source)
		}
	}

	for _, want := range []string{
		`"Add": deserializeAdd,`,
		`"Lit": deserializeLit,`,
		"var nodeDeserializers = map[string]func(*cbor.Map, *deserializeContext) (Node, error){",
		"func Unmarshal(data []byte) (Node, error) {",
	} {
		if !strings.Contains(header, want) {
			t.Errorf("header missing %q\n--- header ---\n%s", want, header)
		}
	}

	// Lit is the root and has no Expr-typed fields, just a plain Int.
	if !strings.Contains(header, "Value int64") {
		t.Errorf("expected Lit's Value field to map to int64, header:\n%s", header)
	}
}

func TestGenerateEmitsExtOpDocNote(t *testing.T) {
	src := `
Expr {
}
Lit : Expr root {
  value: Int!;
}
`
	m := mustModel(t, src)
	cg := &CodeGenerator{PackageName: "exprtree"}
	out, err := cg.Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out.Source, "declared with the `!` marker") {
		t.Errorf("expected an ExtOp doc note ahead of Equal, source:\n%s", out.Source)
	}
}

func TestGenerateDefaultsPackageName(t *testing.T) {
	m := mustModel(t, exprSrc)
	cg := &CodeGenerator{}
	out, err := cg.Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out.Header, "package treegenout") {
		t.Errorf("expected default package name, got header:\n%s", out.Header)
	}
}
