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

package genutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPresets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "primitives.yaml")
	const doc = `
presets:
  - name: go-builtins
    primitives:
      - name: Int
        default: "0"
      - name: String
        default: '""'
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	p, ok := presets["go-builtins"]
	if !ok {
		t.Fatal(`expected a "go-builtins" preset`)
	}
	if len(p.Primitives) != 2 || p.Primitives[0].Name != "Int" {
		t.Errorf("Primitives = %+v", p.Primitives)
	}
}

func TestLoadPresetsRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "primitives.yaml")
	const doc = `
presets:
  - name: dup
    primitives: []
  - name: dup
    primitives: []
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPresets(path); err == nil {
		t.Fatal("expected an error for a duplicate preset name")
	}
}

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	if _, ok := presets["go-builtins"]; !ok {
		t.Fatal(`expected a built-in "go-builtins" preset`)
	}
}
