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

import "testing"

func TestMakeNameUnique(t *testing.T) {
	tests := []struct {
		name        string
		inPrevNames []string
		inName      string
		wantName    string
	}{{
		name:     "first use",
		inName:   "Type",
		wantName: "Type",
	}, {
		name:        "already defined",
		inPrevNames: []string{"Type"},
		inName:      "Type",
		wantName:    "Type_",
	}, {
		name:        "already defined twice",
		inPrevNames: []string{"Type", "Type_"},
		inName:      "Type",
		wantName:    "Type__",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := make(map[string]bool)
			for _, prev := range tt.inPrevNames {
				_ = MakeNameUnique(prev, ctx)
			}
			if got := MakeNameUnique(tt.inName, ctx); got != tt.wantName {
				t.Errorf("MakeNameUnique(%q) = %q, want %q", tt.inName, got, tt.wantName)
			}
		})
	}
}

func TestCallerName(t *testing.T) {
	if got := CallerName(); got == "" {
		t.Error("CallerName() returned an empty string")
	}
}
