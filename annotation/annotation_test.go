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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/QE-Lab/tree-gen/cbor"
)

type comment struct {
	Text string
}

func registerComment(t *testing.T, reg *Registry) {
	t.Helper()
	err := reg.Register(comment{}, "Comment",
		func(v any, w *cbor.MapWriter) error {
			return w.WriteText("text", v.(comment).Text)
		},
		func(m *cbor.Map) (any, error) {
			v, ok := m.Get("text")
			if !ok {
				return nil, nil
			}
			s, err := v.AsText()
			if err != nil {
				return nil, err
			}
			return comment{Text: s}, nil
		},
	)
	require.NoError(t, err)
}

func TestRegisterDuplicateTypeRejected(t *testing.T) {
	reg := NewRegistry()
	registerComment(t, reg)
	err := reg.Register(comment{}, "Other", nil, nil)
	require.Error(t, err)
}

func TestRegisterDuplicateKeyRejected(t *testing.T) {
	reg := NewRegistry()
	registerComment(t, reg)
	err := reg.Register(struct{ X int }{}, "Comment", nil, nil)
	require.Error(t, err)
}

func TestAnnotatableSetAndGet(t *testing.T) {
	var a Annotatable
	a.SetAnnotation(comment{Text: "hi"})
	v, ok := a.Annotation(reflect.TypeOf(comment{}))
	require.True(t, ok)
	require.Equal(t, comment{Text: "hi"}, v)
}

func TestAnnotatableCopySharesReference(t *testing.T) {
	var a, b Annotatable
	a.SetAnnotation(&comment{Text: "hi"})
	b.CopyAnnotationsFrom(&a)

	va, _ := a.Annotation(reflect.TypeOf(&comment{}))
	vb, _ := b.Annotation(reflect.TypeOf(&comment{}))
	require.Same(t, va.(*comment), vb.(*comment))
}

func TestSerializeSkipsUnregisteredTypes(t *testing.T) {
	reg := NewRegistry()
	var a Annotatable
	a.SetAnnotation(42) // int is never registered

	w := cbor.NewWriter()
	mw := w.Start()
	require.NoError(t, a.SerializeTo(mw, reg))
	require.NoError(t, mw.Close())

	r, err := cbor.NewReader(w.Bytes())
	require.NoError(t, err)
	m, err := r.Top().AsMap()
	require.NoError(t, err)
	require.Equal(t, 0, m.Len())
}

func TestAnnotationRoundTrip(t *testing.T) {
	reg := NewRegistry()
	registerComment(t, reg)

	var a Annotatable
	a.SetAnnotation(comment{Text: "round-trip me"})

	w := cbor.NewWriter()
	mw := w.Start()
	require.NoError(t, a.SerializeTo(mw, reg))
	require.NoError(t, mw.Close())

	r, err := cbor.NewReader(w.Bytes())
	require.NoError(t, err)
	m, err := r.Top().AsMap()
	require.NoError(t, err)
	require.Equal(t, []string{"{Comment}"}, m.Keys())

	var b Annotatable
	err = m.Each(func(key string, v cbor.Slice) error {
		_, err := b.DeserializeEntry(key, v, reg)
		return err
	})
	require.NoError(t, err)

	got, ok := b.Annotation(reflect.TypeOf(comment{}))
	require.True(t, ok)
	require.Equal(t, comment{Text: "round-trip me"}, got)
}

func TestDeserializeEntryIgnoresNonAnnotationKeys(t *testing.T) {
	reg := NewRegistry()
	var a Annotatable
	handled, err := a.DeserializeEntry("type", cbor.Slice{}, reg)
	require.NoError(t, err)
	require.False(t, handled)
}

func TestDeserializeEntryIgnoresUnregisteredWireKey(t *testing.T) {
	reg := NewRegistry()
	var a Annotatable
	handled, err := a.DeserializeEntry("{Unknown}", cbor.Slice{}, reg)
	require.NoError(t, err)
	require.False(t, handled)
}
