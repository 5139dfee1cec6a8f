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

// Package cbor implements a strict subset of RFC 7049 (Concise Binary Object
// Representation) sufficient for the tree-gen wire format: the major types
// needed to represent node trees (unsigned/negative integers, byte and UTF-8
// strings, arrays, maps, booleans, null, and IEEE-754 doubles), with semantic
// tags transparently skipped. Half- and single-precision floats, the
// `undefined` simple value, and any unassigned simple-value encoding are
// rejected rather than silently widened.
//
// The reader decodes a shared, immutable byte buffer once at construction
// time into a tree of [Slice] values; the writer enforces a stacked
// active-writer discipline so that only the innermost open array or map may
// emit bytes at any one time, matching the single-threaded, batch nature of
// the rest of the generator (see the top-level design notes).
package cbor

import "fmt"

// Kind identifies the decoded type of a [Slice].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindText
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// StructureError reports that a [Slice] was asked to decode as a [Kind] it
// does not hold.
type StructureError struct {
	Expected Kind
	Found    Kind
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("unexpected CBOR structure: expected %s but found %s", e.Expected, e.Found)
}
