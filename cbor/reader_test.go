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
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// putUint appends the shortest-width CBOR head for major/n, mirroring the
// writer's own encodeUint so the fixture below is built the same way a
// conformant encoder would build it.
func putUint(buf []byte, major byte, n uint64) []byte {
	return encodeUint(buf, major, n)
}

func putNegInt(buf []byte, v int64) []byte {
	return encodeUint(buf, majorNegInt, uint64(-1-v))
}

// buildSeedFixture constructs the literal S1 scenario from the top-level
// design notes: a 9-element definite-length array containing null, false,
// true, an 11-element array of unsigned integer boundary samples, a
// break-terminated indefinite-length array of the negated-minus-one
// counterparts of the first ten of those samples, a double, a UTF-8 string,
// a byte string, and a 2-entry map.
func buildSeedFixture(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	buf = append(buf, majorArray<<5|9) // definite array, 9 elements

	buf = append(buf, majorSimple7<<5|simpleNull)
	buf = append(buf, majorSimple7<<5|simpleFalse)
	buf = append(buf, majorSimple7<<5|simpleTrue)

	widths := []uint64{0, 1, 23, 24, 255, 256, 65535, 65536, 4294967295, 4294967296, 9223372036854775807}
	buf = append(buf, majorArray<<5|byte(len(widths)))
	for _, w := range widths {
		buf = putUint(buf, majorUint, w)
	}

	buf = append(buf, majorArray<<5|addlIndef)
	for _, w := range widths[:10] {
		buf = putNegInt(buf, -1-int64(w))
	}
	buf = append(buf, 0xFF)

	fb := make([]byte, 8)
	binary.BigEndian.PutUint64(fb, math.Float64bits(3.14159265359))
	buf = append(buf, majorSimple7<<5|addlEightByte)
	buf = append(buf, fb...)

	buf = putUint(buf, majorText, 5)
	buf = append(buf, "hello"...)

	buf = putUint(buf, majorBytes, 5)
	buf = append(buf, "world"...)

	buf = append(buf, majorMap<<5|2)
	buf = putUint(buf, majorText, 1)
	buf = append(buf, "a"...)
	buf = putUint(buf, majorText, 1)
	buf = append(buf, "b"...)
	buf = putUint(buf, majorText, 1)
	buf = append(buf, "c"...)
	buf = putUint(buf, majorText, 1)
	buf = append(buf, "d"...)

	return buf
}

func TestReaderSeedScenario(t *testing.T) {
	buf := buildSeedFixture(t)
	r, err := NewReader(buf)
	require.NoError(t, err)

	top, err := r.Top().AsArray()
	require.NoError(t, err)
	require.Len(t, top, 9)

	require.True(t, top[0].IsNull())
	b, err := top[1].AsBool()
	require.NoError(t, err)
	require.False(t, b)
	b, err = top[2].AsBool()
	require.NoError(t, err)
	require.True(t, b)

	widths := []int64{0, 1, 23, 24, 255, 256, 65535, 65536, 4294967295, 4294967296, 9223372036854775807}
	posArr, err := top[3].AsArray()
	require.NoError(t, err)
	require.Len(t, posArr, 11)
	for i, w := range widths {
		v, err := posArr[i].AsInt()
		require.NoError(t, err)
		require.Equal(t, w, v)
	}

	negArr, err := top[4].AsArray()
	require.NoError(t, err)
	require.Len(t, negArr, 10)
	for i, w := range widths[:10] {
		v, err := negArr[i].AsInt()
		require.NoError(t, err)
		require.Equal(t, -1-w, v)
	}

	f, err := top[5].AsFloat()
	require.NoError(t, err)
	require.Equal(t, 3.14159265359, f)

	s, err := top[6].AsText()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	bs, err := top[7].AsBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("world"), bs)

	m, err := top[8].AsMap()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	s, err = v.AsText()
	require.NoError(t, err)
	require.Equal(t, "b", s)
	v, ok = m.Get("c")
	require.True(t, ok)
	s, err = v.AsText()
	require.NoError(t, err)
	require.Equal(t, "d", s)
}

func TestReaderIntegerBoundaries(t *testing.T) {
	widths := []uint64{0, 1, 23, 24, 255, 256, 65535, 65536, 4294967295, 4294967296, 9223372036854775807}
	for _, w := range widths {
		buf := putUint(nil, majorUint, w)
		r, err := NewReader(buf)
		require.NoErrorf(t, err, "width %d", w)
		v, err := r.Top().AsInt()
		require.NoError(t, err)
		require.Equal(t, int64(w), v)
	}
}

func TestReaderRejectsOutOfRangeUnsigned(t *testing.T) {
	buf := putUint(nil, majorUint, 1<<63)
	_, err := NewReader(buf)
	require.Error(t, err)
}

func TestReaderRejectsOutOfRangeNegative(t *testing.T) {
	buf := encodeUint(nil, majorNegInt, 1<<63)
	_, err := NewReader(buf)
	require.Error(t, err)
}

func TestReaderRejectsTrailingGarbage(t *testing.T) {
	buf := append(putUint(nil, majorUint, 1), 0x00)
	_, err := NewReader(buf)
	require.Error(t, err)
}

func TestReaderRejectsUndefined(t *testing.T) {
	buf := []byte{majorSimple7<<5 | simpleUndef}
	_, err := NewReader(buf)
	require.Error(t, err)
}

func TestReaderRejectsHalfAndSinglePrecisionFloats(t *testing.T) {
	for _, info := range []byte{25, 26} {
		buf := []byte{majorSimple7<<5 | info, 0, 0}
		_, err := NewReader(buf)
		require.Error(t, err)
	}
}

func TestReaderRejectsStrayBreak(t *testing.T) {
	buf := []byte{0xFF}
	_, err := NewReader(buf)
	require.Error(t, err)
}

func TestReaderRejectsMixedMajorInIndefiniteString(t *testing.T) {
	var buf []byte
	buf = append(buf, majorText<<5|addlIndef)
	buf = putUint(buf, majorText, 2)
	buf = append(buf, "hi"...)
	buf = putUint(buf, majorBytes, 2) // mismatched major inside indefinite text
	buf = append(buf, []byte{1, 2}...)
	buf = append(buf, 0xFF)
	_, err := NewReader(buf)
	require.Error(t, err)
}

func TestReaderRejectsNonTextMapKey(t *testing.T) {
	var buf []byte
	buf = append(buf, majorMap<<5|1)
	buf = putUint(buf, majorUint, 1) // key must be text, not uint
	buf = putUint(buf, majorUint, 2)
	_, err := NewReader(buf)
	require.Error(t, err)
}

func TestMapDuplicateKeyLastWins(t *testing.T) {
	var buf []byte
	buf = append(buf, majorMap<<5|2)
	buf = putUint(buf, majorText, 1)
	buf = append(buf, "a"...)
	buf = putUint(buf, majorText, 1)
	buf = append(buf, "1"...)
	buf = putUint(buf, majorText, 1)
	buf = append(buf, "a"...)
	buf = putUint(buf, majorText, 1)
	buf = append(buf, "2"...)

	r, err := NewReader(buf)
	require.NoError(t, err)
	m, err := r.Top().AsMap()
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	s, err := v.AsText()
	require.NoError(t, err)
	require.Equal(t, "2", s)
}

func TestReaderSkipsTagsTransparently(t *testing.T) {
	var buf []byte
	buf = putUint(buf, majorTag, 0) // tag 0
	buf = putUint(buf, majorUint, 42)
	r, err := NewReader(buf)
	require.NoError(t, err)
	v, err := r.Top().AsInt()
	require.NoError(t, err)
	require.Equal(t, int64(42), v)
}

func TestAsArrayOnNonArrayReturnsStructureError(t *testing.T) {
	buf := putUint(nil, majorUint, 1)
	r, err := NewReader(buf)
	require.NoError(t, err)
	_, err = r.Top().AsArray()
	var se *StructureError
	require.ErrorAs(t, err, &se)
	require.Equal(t, KindArray, se.Expected)
	require.Equal(t, KindInt, se.Found)
}
