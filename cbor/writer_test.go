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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWriterSeedScenario builds the literal S2 scenario: a map with 7
// entries, including an array mixing positive and negative integers across
// every encoding width, then reads it back and checks every value round-trips.
func TestWriterSeedScenario(t *testing.T) {
	w := NewWriter()
	mw := w.Start()
	require.NoError(t, mw.WriteNull("null"))
	require.NoError(t, mw.WriteBool("false", false))
	require.NoError(t, mw.WriteBool("true", true))

	ints := []int64{3, 0x34, 0x3456, 0x3456789A, 0x3456789ABCDEF012, -3, -0x34, -0x3456, -0x3456789A, -0x3456789ABCDEF012}
	aw, err := mw.BeginArray("int-array")
	require.NoError(t, err)
	for _, v := range ints {
		require.NoError(t, aw.WriteInt(v))
	}
	require.NoError(t, aw.Close())

	require.NoError(t, mw.WriteFloat("pi", 3.14159265359))
	require.NoError(t, mw.WriteText("string", "hello"))
	require.NoError(t, mw.WriteBytes("binary", []byte("world")))
	require.NoError(t, mw.Close())

	r, err := NewReader(w.Bytes())
	require.NoError(t, err)
	m, err := r.Top().AsMap()
	require.NoError(t, err)

	require.True(t, mustGet(t, m, "null").IsNull())

	b, err := mustGet(t, m, "false").AsBool()
	require.NoError(t, err)
	require.False(t, b)

	b, err = mustGet(t, m, "true").AsBool()
	require.NoError(t, err)
	require.True(t, b)

	arr, err := mustGet(t, m, "int-array").AsArray()
	require.NoError(t, err)
	require.Len(t, arr, len(ints))
	for i, v := range ints {
		got, err := arr[i].AsInt()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	f, err := mustGet(t, m, "pi").AsFloat()
	require.NoError(t, err)
	require.Equal(t, 3.14159265359, f)

	s, err := mustGet(t, m, "string").AsText()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	bs, err := mustGet(t, m, "binary").AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("world"), bs)
}

func mustGet(t *testing.T, m *Map, key string) Slice {
	t.Helper()
	v, ok := m.Get(key)
	require.Truef(t, ok, "missing key %q", key)
	return v
}

func TestWriterDisciplineRejectsOuterWriteWhileInnerOpen(t *testing.T) {
	w := NewWriter()
	mw := w.Start()
	aw, err := mw.BeginArray("nested")
	require.NoError(t, err)

	err = mw.WriteInt("oops", 1)
	require.ErrorIs(t, err, ErrInactiveWriter)

	require.NoError(t, aw.WriteInt(1))
	require.NoError(t, aw.Close())
	require.NoError(t, mw.WriteInt("ok-now", 2))
	require.NoError(t, mw.Close())
}

func TestWriterDisciplineRejectsDoubleClose(t *testing.T) {
	w := NewWriter()
	mw := w.Start()
	require.NoError(t, mw.Close())
	err := mw.Close()
	require.True(t, errors.Is(err, ErrInactiveWriter))
}

func TestWriterEmitsIndefiniteContainersOnly(t *testing.T) {
	w := NewWriter()
	mw := w.Start()
	require.NoError(t, mw.Close())
	buf := w.Bytes()
	require.Equal(t, byte(majorMap<<5|addlIndef), buf[0])
	require.Equal(t, byte(0xFF), buf[len(buf)-1])
}

func TestRoundTripArbitraryValues(t *testing.T) {
	cases := []struct {
		name string
		v    int64
	}{
		{"zero", 0},
		{"minInt64", -9223372036854775808},
		{"maxInt64", 9223372036854775807},
		{"negOne", -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWriter()
			mw := w.Start()
			require.NoError(t, mw.WriteInt("v", c.v))
			require.NoError(t, mw.Close())

			r, err := NewReader(w.Bytes())
			require.NoError(t, err)
			m, err := r.Top().AsMap()
			require.NoError(t, err)
			got, err := mustGet(t, m, "v").AsInt()
			require.NoError(t, err)
			require.Equal(t, c.v, got)
		})
	}
}
