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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validTree = `
header {
  namespace "exprtree";
}

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

func writeTemp(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return path
}

func TestRunGeneratesHeaderAndSource(t *testing.T) {
	dir := t.TempDir()
	input := writeTemp(t, dir, "expr.tree", validTree)
	headerOut := filepath.Join(dir, "expr.h.go")
	sourceOut := filepath.Join(dir, "expr.go")

	if err := run(input, headerOut, sourceOut, ""); err != nil {
		t.Fatalf("run: %v", err)
	}

	header, err := os.ReadFile(headerOut)
	if err != nil {
		t.Fatalf("ReadFile(header): %v", err)
	}
	if !strings.Contains(string(header), "type Add struct") {
		t.Errorf("header missing generated Add struct:\n%s", header)
	}

	source, err := os.ReadFile(sourceOut)
	if err != nil {
		t.Fatalf("ReadFile(source): %v", err)
	}
	if !strings.Contains(string(source), "func (n *Add) Type() NodeType") {
		t.Errorf("source missing generated Add.Type method:\n%s", source)
	}
}

func TestRunGeneratesDynamicOutputWhenRequested(t *testing.T) {
	dir := t.TempDir()
	input := writeTemp(t, dir, "expr.tree", validTree)
	headerOut := filepath.Join(dir, "expr.h.go")
	sourceOut := filepath.Join(dir, "expr.go")
	dynamicOut := filepath.Join(dir, "expr.py")

	if err := run(input, headerOut, sourceOut, dynamicOut); err != nil {
		t.Fatalf("run: %v", err)
	}

	py, err := os.ReadFile(dynamicOut)
	if err != nil {
		t.Fatalf("ReadFile(dynamic): %v", err)
	}
	if !strings.Contains(string(py), "class Add(Expr):") {
		t.Errorf("dynamic output missing generated Add class:\n%s", py)
	}
}

func TestRunReturnsLocatedErrorOnParseFailure(t *testing.T) {
	dir := t.TempDir()
	input := writeTemp(t, dir, "bad.tree", "Expr { this is not valid")

	err := run(input, filepath.Join(dir, "out.h.go"), filepath.Join(dir, "out.go"), "")
	if err == nil {
		t.Fatal("expected an error for malformed input")
	}
	// treelang/treemodel errors format as "<line>:<col>: <message>"; main
	// prepends the input path ahead of that when printing to stderr, but
	// run itself returns the bare located error.
	if !strings.Contains(err.Error(), ":") {
		t.Errorf("expected a located error, got %q", err.Error())
	}
}

func TestRunReturnsErrorForMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := run(filepath.Join(dir, "missing.tree"), filepath.Join(dir, "out.h.go"), filepath.Join(dir, "out.go"), "")
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}
