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

package annotation

import (
	"reflect"

	"github.com/QE-Lab/tree-gen/cbor"
)

// Annotatable is embedded by every generated node type to give it a
// heterogeneous, per-object annotation map keyed by runtime type identity.
// The zero value is ready to use.
type Annotatable struct {
	annotations map[reflect.Type]any
}

// SetAnnotation stores v, replacing any previously-stored value of the same
// dynamic type.
func (a *Annotatable) SetAnnotation(v any) {
	if a.annotations == nil {
		a.annotations = make(map[reflect.Type]any)
	}
	a.annotations[reflect.TypeOf(v)] = v
}

// Annotation returns the stored value of type rt, if any.
func (a *Annotatable) Annotation(rt reflect.Type) (any, bool) {
	v, ok := a.annotations[rt]
	return v, ok
}

// RemoveAnnotation deletes any stored value of type rt.
func (a *Annotatable) RemoveAnnotation(rt reflect.Type) {
	delete(a.annotations, rt)
}

// Annotations returns the full set of stored annotations, keyed by their
// dynamic type. The returned map must not be mutated by the caller.
func (a *Annotatable) Annotations() map[reflect.Type]any {
	return a.annotations
}

// CopyAnnotationsFrom copies other's annotation references into a. The
// values themselves are shared, not duplicated - copying annotations between
// nodes copies the shared reference, matching the semantics of a shallow
// [copy] vs. a deep [clone] of the owning node tree.
func (a *Annotatable) CopyAnnotationsFrom(other *Annotatable) {
	if len(other.annotations) == 0 {
		return
	}
	if a.annotations == nil {
		a.annotations = make(map[reflect.Type]any, len(other.annotations))
	}
	for rt, v := range other.annotations {
		a.annotations[rt] = v
	}
}

// SerializeTo writes one "{TypeName}" entry into mw for every stored
// annotation whose dynamic type is registered with reg. Annotations whose
// type was never registered are silently skipped, per the registry's
// extensibility contract.
func (a *Annotatable) SerializeTo(mw *cbor.MapWriter, reg *Registry) error {
	for rt, v := range a.annotations {
		e, ok := reg.lookupType(rt)
		if !ok {
			continue
		}
		payload, err := mw.BeginMap(wireKey(e.key))
		if err != nil {
			return err
		}
		if err := e.serialize(v, payload); err != nil {
			return err
		}
		if err := payload.Close(); err != nil {
			return err
		}
	}
	return nil
}

// DeserializeEntry inspects one top-level CBOR map entry (key, value) and,
// if key has the "{TypeName}" shape and TypeName is registered with reg,
// reconstructs the annotation and stores it on a, reporting handled=true.
// Any other key is left untouched (handled=false, err=nil) so the caller can
// continue processing it as an ordinary field.
func (a *Annotatable) DeserializeEntry(key string, value cbor.Slice, reg *Registry) (handled bool, err error) {
	bare, ok := isWireKey(key)
	if !ok {
		return false, nil
	}
	e, ok := reg.lookupKey(bare)
	if !ok {
		return false, nil
	}
	m, err := value.AsMap()
	if err != nil {
		return false, err
	}
	v, err := e.deserialize(m)
	if err != nil {
		return false, err
	}
	a.SetAnnotation(v)
	return true, nil
}
