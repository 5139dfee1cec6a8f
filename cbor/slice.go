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

package cbor

// Slice is a decoded CBOR value held by a [Reader]. It is a view: the
// underlying byte/text payloads and child slices are shared, not copied, so
// a Slice is cheap to pass by value.
type Slice struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	bs   []byte
	s    string
	a    []Slice
	m    *Map
}

// Kind reports the decoded CBOR major-type grouping of s.
func (s Slice) Kind() Kind { return s.kind }

func (s Slice) IsNull() bool  { return s.kind == KindNull }
func (s Slice) IsBool() bool  { return s.kind == KindBool }
func (s Slice) IsInt() bool   { return s.kind == KindInt }
func (s Slice) IsFloat() bool { return s.kind == KindFloat }
func (s Slice) IsBytes() bool { return s.kind == KindBytes }
func (s Slice) IsText() bool  { return s.kind == KindText }
func (s Slice) IsArray() bool { return s.kind == KindArray }
func (s Slice) IsMap() bool   { return s.kind == KindMap }

// AsBool returns the decoded boolean, or a [*StructureError] if s is not a bool.
func (s Slice) AsBool() (bool, error) {
	if s.kind != KindBool {
		return false, &StructureError{Expected: KindBool, Found: s.kind}
	}
	return s.b, nil
}

// AsInt returns the decoded integer, or a [*StructureError] if s is not an int.
func (s Slice) AsInt() (int64, error) {
	if s.kind != KindInt {
		return 0, &StructureError{Expected: KindInt, Found: s.kind}
	}
	return s.i, nil
}

// AsFloat returns the decoded double, or a [*StructureError] if s is not a float.
func (s Slice) AsFloat() (float64, error) {
	if s.kind != KindFloat {
		return 0, &StructureError{Expected: KindFloat, Found: s.kind}
	}
	return s.f, nil
}

// AsBytes returns the decoded byte string, or a [*StructureError] if s is not bytes.
func (s Slice) AsBytes() ([]byte, error) {
	if s.kind != KindBytes {
		return nil, &StructureError{Expected: KindBytes, Found: s.kind}
	}
	return s.bs, nil
}

// AsText returns the decoded UTF-8 string, or a [*StructureError] if s is not text.
func (s Slice) AsText() (string, error) {
	if s.kind != KindText {
		return "", &StructureError{Expected: KindText, Found: s.kind}
	}
	return s.s, nil
}

// AsArray returns the ordered child slices, or a [*StructureError] if s is not an array.
func (s Slice) AsArray() ([]Slice, error) {
	if s.kind != KindArray {
		return nil, &StructureError{Expected: KindArray, Found: s.kind}
	}
	return s.a, nil
}

// AsMap returns the keyed child slices, or a [*StructureError] if s is not a map.
func (s Slice) AsMap() (*Map, error) {
	if s.kind != KindMap {
		return nil, &StructureError{Expected: KindMap, Found: s.kind}
	}
	return s.m, nil
}

// Map is an ordered, string-keyed collection of CBOR map entries. Key order
// is insertion (first-seen) order; per the open question on duplicate CBOR
// map keys, a later entry for a key already seen overwrites the value but
// does not move the key's position, giving callers both stable iteration
// order and last-wins lookup semantics.
type Map struct {
	keys   []string
	values map[string]Slice
}

func newMap() *Map {
	return &Map{values: make(map[string]Slice)}
}

func (m *Map) set(key string, v Slice) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Len reports the number of distinct keys in m.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the map's keys in insertion order. The returned slice must
// not be mutated by the caller.
func (m *Map) Keys() []string { return m.keys }

// Get looks up key, reporting whether it was present.
func (m *Map) Get(key string) (Slice, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Each calls f for every entry in key order, stopping and propagating the
// first error f returns.
func (m *Map) Each(f func(key string, v Slice) error) error {
	for _, k := range m.keys {
		if err := f(k, m.values[k]); err != nil {
			return err
		}
	}
	return nil
}
