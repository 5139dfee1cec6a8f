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

const inspectTestTree = `
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

func writeTempTree(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "expr.tree")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDumpModel(t *testing.T) {
	m, err := resolveFile(writeTempTree(t, inspectTestTree))
	if err != nil {
		t.Fatalf("resolveFile: %v", err)
	}

	out := dumpModel(m)
	for _, want := range []string{
		`namespace "exprtree"`,
		"Lit (concrete) [root]",
		"Add (concrete)",
		"lhs: One<Expr>",
		"value: Int",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dumpModel output missing %q:\n%s", want, out)
		}
	}
}

func TestResolveFileReturnsErrorForMissingFile(t *testing.T) {
	if _, err := resolveFile(filepath.Join(t.TempDir(), "missing.tree")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestDumpCommandPrintsModel(t *testing.T) {
	path := writeTempTree(t, inspectTestTree)
	cmd := newDumpCommand()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "Add (concrete)") {
		t.Errorf("dump command output missing expected content:\n%s", out.String())
	}
}
