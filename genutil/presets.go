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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PresetPrimitive mirrors one entry of a primitives.yaml preset file: a
// named, reusable primitive declaration. The parser records the name given
// by a .tree header's `primitive_preset "name";` directive, but
// treemodel.Resolve does not read it, so no preset is expanded into a
// model's primitives; header primitives are declared one by one.
type PresetPrimitive struct {
	Name        string `yaml:"name"`
	Include     string `yaml:"include"`
	Default     string `yaml:"default"`
	Serialize   string `yaml:"serialize"`
	Deserialize string `yaml:"deserialize"`
}

// Preset is a named, reusable bundle of primitive declarations.
type Preset struct {
	Name       string            `yaml:"name"`
	Primitives []PresetPrimitive `yaml:"primitives"`
}

type presetsFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets parses a primitives.yaml file of the shape documented on
// [Preset] and returns its presets indexed by name.
func LoadPresets(path string) (map[string]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genutil: reading preset file %q: %w", path, err)
	}
	var pf presetsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("genutil: parsing preset file %q: %w", path, err)
	}
	out := make(map[string]Preset, len(pf.Presets))
	for _, p := range pf.Presets {
		if _, ok := out[p.Name]; ok {
			return nil, fmt.Errorf("genutil: preset %q declared more than once in %q", p.Name, path)
		}
		out[p.Name] = p
	}
	return out, nil
}

// DefaultPresets returns the built-in preset set ("go-builtins") without
// reading any file, for callers (and tests) that do not want to depend on a
// presets.yaml existing on disk.
func DefaultPresets() map[string]Preset {
	return map[string]Preset{
		"go-builtins": {
			Name: "go-builtins",
			Primitives: []PresetPrimitive{
				{Name: "Int", Default: "0"},
				{Name: "String", Default: `""`},
				{Name: "Bool", Default: "false"},
				{Name: "Float", Default: "0.0"},
			},
		},
	}
}
