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
	"runtime"
)

// CallerName returns the path of the Go source file that is currently
// running, for inclusion in generated-file header comments.
func CallerName() string {
	_, currentCodeFile, _, ok := runtime.Caller(0)
	if !ok {
		return "unknown - unable to determine calling binary name"
	}
	return currentCodeFile
}

// MakeNameUnique makes the name specified as an argument unique based on the
// names already defined within a particular context which are specified
// within the definedNames map. If the name has already been defined, an
// underscore is appended to the name until it is unique.
//
// gogen and dyngen use this to avoid collisions between a node type's own
// field names and the method names (Type, Copy, Clone, ...) that every
// generated node must carry.
func MakeNameUnique(name string, definedNames map[string]bool) string {
	for {
		if _, nameUsed := definedNames[name]; !nameUsed {
			definedNames[name] = true
			return name
		}
		name = fmt.Sprintf("%s_", name)
	}
}
