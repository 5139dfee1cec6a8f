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

	"github.com/QE-Lab/tree-gen/treemodel"
)

// builtinPyType maps the three always-available primitives to their Python
// type names, as used by pyFieldTypeHint; a custom header-declared primitive
// has no such mapping, since its Python representation is whatever the
// .tree author's dynamic-language include supplies.
var builtinPyType = map[string]string{
	"Int":    "int",
	"String": "str",
	"Bool":   "bool",
}

// pyFieldName is the snake_case attribute name for a declared field,
// matching PEP 8 regardless of the .tree source's own naming convention.
func pyFieldName(f *treemodel.Field) string {
	return snakeCase(f.Name)
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pyVisitMethodName is the BaseVisitor method dispatched to for node type n.
func pyVisitMethodName(n *treemodel.NodeType) string {
	return "visit_" + snakeCase(n.Name)
}

// pyEnumValueName sanitizes a declared enumeration constant into the
// SCREAMING_SNAKE_CASE Python convention for IntEnum members.
func pyEnumValueName(name string) string {
	replacer := strings.NewReplacer(
		".", "_", "-", "_", "/", "_", "+", "_PLUS", ",", "_COMMA",
		"@", "_AT", "$", "_DOLLAR", "*", "_ASTERISK", ":", "_COLON", " ", "_")
	return strings.ToUpper(replacer.Replace(name))
}

// pyFieldTypeHint returns the Python type-hint spelling for a field. The
// emitter does not write it into the generated source, and the
// generated classes have no field setters: __init__ assigns each value as
// given, with no runtime isinstance check.
func pyFieldTypeHint(f *treemodel.Field) string {
	switch f.Kind {
	case treemodel.EdgeMaybe, treemodel.EdgeLink:
		return "Optional[" + f.Type.Name() + "]"
	case treemodel.EdgeOne:
		return f.Type.Name()
	case treemodel.EdgeAny, treemodel.EdgeMany:
		return "list[" + f.Type.Name() + "]"
	default:
		if f.Type.Enum != nil {
			return f.Type.Enum.Name
		}
		if bt, ok := builtinPyType[f.Type.Primitive.Name]; ok {
			return bt
		}
		return f.Type.Primitive.Name
	}
}

// pyFieldDefault returns the literal Python expression used to initialize a
// field in __init__ when the caller supplies no value.
func pyFieldDefault(f *treemodel.Field) string {
	switch f.Kind {
	case treemodel.EdgeMaybe, treemodel.EdgeLink:
		return "None"
	case treemodel.EdgeOne:
		return "None"
	case treemodel.EdgeAny, treemodel.EdgeMany:
		return "[]"
	default:
		if f.Type.Enum != nil {
			return f.Type.Enum.Name + "(0)"
		}
		switch f.Type.Primitive.Name {
		case "Int":
			return "0"
		case "String":
			return `""`
		case "Bool":
			return "False"
		default:
			return "None"
		}
	}
}
