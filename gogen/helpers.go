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

import "strings"

// safeGoEnumeratedValueName sanitizes a declared enumeration constant name
// so that the generated Go constant (<EnumName><Constant>) is always a
// valid Go identifier, even if a future grammar revision of the .tree
// lexer widens what characters an enumeration constant may contain.
func safeGoEnumeratedValueName(name string) string {
	replacer := strings.NewReplacer(
		".", "_",
		"-", "_",
		"/", "_",
		"+", "_PLUS",
		",", "_COMMA",
		"@", "_AT",
		"$", "_DOLLAR",
		"*", "_ASTERISK",
		":", "_COLON",
		" ", "_")
	return replacer.Replace(name)
}
