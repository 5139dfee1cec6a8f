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

// Package annotation provides the process-wide serializer registry and the
// per-node heterogeneous annotation map shared by every node type the native
// emitter generates. An annotation is an opaque value of any user type,
// associated with a node by the runtime type identity of that value; the
// registry maps a type identity to the pair of callbacks needed to put that
// value on the CBOR wire and take it back off again.
//
// The registry is a singleton by necessity (the generated code for
// independently-compiled node types must all agree on how to (de)serialize a
// given annotation type) and must be fully populated - typically from
// package-level init() functions in generated or hand-written code - before
// the first node is serialized or deserialized. Registration after that
// point is undefined, mirroring the single-threaded, batch nature of the
// rest of the generator (see the concurrency notes in the top-level design).
package annotation

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/QE-Lab/tree-gen/cbor"
)

// SerializeFunc writes v's payload into the CBOR map opened for it by w. v
// is always a value of the type the func was registered for.
type SerializeFunc func(v any, w *cbor.MapWriter) error

// DeserializeFunc reconstructs a value from its CBOR payload map.
type DeserializeFunc func(m *cbor.Map) (any, error)

type entry struct {
	key       string
	rtype     reflect.Type
	serialize SerializeFunc
	deserialize DeserializeFunc
}

// Registry is a type-identity-indexed table of annotation serializers. The
// zero value is not usable; construct one with [NewRegistry]. Most callers
// use the process-wide [Register]/[Default] instead of constructing their
// own Registry.
type Registry struct {
	mu       sync.RWMutex
	byType   map[reflect.Type]*entry
	byKey    map[string]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*entry),
		byKey:  make(map[string]*entry),
	}
}

// Register associates the type of sample (a zero value of the annotation
// type) with key - its canonical name, used on the wire wrapped in braces as
// "{key}" - and the pair of callbacks used to (de)serialize it. It is an
// error to register the same type, or the same key, twice.
func (r *Registry) Register(sample any, key string, ser SerializeFunc, deser DeserializeFunc) error {
	rt := reflect.TypeOf(sample)
	if rt == nil {
		return fmt.Errorf("annotation: cannot register a nil sample value for key %q", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byType[rt]; ok {
		return fmt.Errorf("annotation: type %s is already registered", rt)
	}
	if _, ok := r.byKey[key]; ok {
		return fmt.Errorf("annotation: key %q is already registered", key)
	}
	e := &entry{key: key, rtype: rt, serialize: ser, deserialize: deser}
	r.byType[rt] = e
	r.byKey[key] = e
	return nil
}

// lookupType reports the entry for rt, and whether it was found.
func (r *Registry) lookupType(rt reflect.Type) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[rt]
	return e, ok
}

// lookupKey reports the entry for the bare (unbracketed) key, and whether it
// was found.
func (r *Registry) lookupKey(key string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byKey[key]
	return e, ok
}

// wireKey returns e's canonical name wrapped in the "{...}" braces used as
// its key on the wire, per the CBOR tree format in the top-level design
// notes: additional map keys of this shape hold per-annotation payloads.
func wireKey(key string) string {
	return "{" + key + "}"
}

// isWireKey reports whether s has the "{...}" shape, and if so returns the
// bare key inside.
func isWireKey(s string) (string, bool) {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return "", false
	}
	return s[1 : len(s)-1], true
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by generated code that
// does not thread its own Registry through explicitly.
func Default() *Registry { return defaultRegistry }

// Register registers sample, key, ser and deser with the process-wide
// default registry. See [Registry.Register].
func Register(sample any, key string, ser SerializeFunc, deser DeserializeFunc) error {
	return defaultRegistry.Register(sample, key, ser, deser)
}
