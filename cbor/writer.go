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
	"errors"
	"math"
)

// ErrInactiveWriter is returned whenever a [MapWriter] or [ArrayWriter] that
// is not the innermost currently-open container is asked to write. The
// stacked active-writer discipline only permits the writer at the top of the
// open-container stack to emit bytes; every other writer is "inactive" until
// the containers above it on the stack are closed.
var ErrInactiveWriter = errors.New("write to inactive writer")

// Writer builds a single top-level CBOR value out of nested, indefinite-
// length arrays and maps terminated by the CBOR break byte, using the
// shortest encoding available for every integer. It is not safe for
// concurrent use: the active-writer discipline it enforces is explicitly
// single-threaded (see the package doc).
type Writer struct {
	buf    []byte
	nextID int
	stack  []int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Start opens the top-level map and returns a writer for it. It is the only
// legal entry point into the hierarchy: a tree-gen CBOR document is always a
// map at the top level (see the wire format in the top-level design notes).
func (w *Writer) Start() *MapWriter {
	id := w.pushContainer(majorMap)
	return &MapWriter{w: w, id: id}
}

// Bytes returns the encoded CBOR document built so far. It is only
// meaningful once every opened writer has been closed.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) pushContainer(major byte) int {
	id := w.nextID
	w.nextID++
	w.stack = append(w.stack, id)
	w.buf = append(w.buf, major<<5|addlIndef)
	return id
}

func (w *Writer) checkActive(id int) error {
	if len(w.stack) == 0 || w.stack[len(w.stack)-1] != id {
		return ErrInactiveWriter
	}
	return nil
}

func (w *Writer) closeContainer(id int) error {
	if err := w.checkActive(id); err != nil {
		return err
	}
	w.stack = w.stack[:len(w.stack)-1]
	w.buf = append(w.buf, 0xFF)
	return nil
}

func encodeUint(buf []byte, major byte, n uint64) []byte {
	switch {
	case n < addlOneByte:
		return append(buf, major<<5|byte(n))
	case n <= math.MaxUint8:
		return append(buf, major<<5|addlOneByte, byte(n))
	case n <= math.MaxUint16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		return append(append(buf, major<<5|addlTwoByte), b...)
	case n <= math.MaxUint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(n))
		return append(append(buf, major<<5|addlFourByte), b...)
	default:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, n)
		return append(append(buf, major<<5|addlEightByte), b...)
	}
}

func appendInt(buf []byte, v int64) []byte {
	if v >= 0 {
		return encodeUint(buf, majorUint, uint64(v))
	}
	return encodeUint(buf, majorNegInt, uint64(-1-v))
}

func appendText(buf []byte, s string) []byte {
	buf = encodeUint(buf, majorText, uint64(len(s)))
	return append(buf, s...)
}

func appendBytes(buf []byte, b []byte) []byte {
	buf = encodeUint(buf, majorBytes, uint64(len(b)))
	return append(buf, b...)
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, majorSimple7<<5|simpleTrue)
	}
	return append(buf, majorSimple7<<5|simpleFalse)
}

func appendNull(buf []byte) []byte {
	return append(buf, majorSimple7<<5|simpleNull)
}

func appendFloat(buf []byte, v float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return append(append(buf, majorSimple7<<5|addlEightByte), b...)
}

// MapWriter emits the entries of one CBOR map. Only the innermost writer on
// the active-writer stack may successfully call any of its methods; any
// other call returns [ErrInactiveWriter].
type MapWriter struct {
	w  *Writer
	id int
}

func (m *MapWriter) writeKey(key string) error {
	if err := m.w.checkActive(m.id); err != nil {
		return err
	}
	m.w.buf = appendText(m.w.buf, key)
	return nil
}

func (m *MapWriter) WriteNull(key string) error {
	if err := m.writeKey(key); err != nil {
		return err
	}
	m.w.buf = appendNull(m.w.buf)
	return nil
}

func (m *MapWriter) WriteBool(key string, v bool) error {
	if err := m.writeKey(key); err != nil {
		return err
	}
	m.w.buf = appendBool(m.w.buf, v)
	return nil
}

func (m *MapWriter) WriteInt(key string, v int64) error {
	if err := m.writeKey(key); err != nil {
		return err
	}
	m.w.buf = appendInt(m.w.buf, v)
	return nil
}

func (m *MapWriter) WriteFloat(key string, v float64) error {
	if err := m.writeKey(key); err != nil {
		return err
	}
	m.w.buf = appendFloat(m.w.buf, v)
	return nil
}

func (m *MapWriter) WriteText(key string, v string) error {
	if err := m.writeKey(key); err != nil {
		return err
	}
	m.w.buf = appendText(m.w.buf, v)
	return nil
}

func (m *MapWriter) WriteBytes(key string, v []byte) error {
	if err := m.writeKey(key); err != nil {
		return err
	}
	m.w.buf = appendBytes(m.w.buf, v)
	return nil
}

// BeginArray writes key and opens a nested array as its value, returning the
// writer for that array. m becomes inactive until the returned writer (and
// any writers nested within it) is closed.
func (m *MapWriter) BeginArray(key string) (*ArrayWriter, error) {
	if err := m.writeKey(key); err != nil {
		return nil, err
	}
	id := m.w.pushContainer(majorArray)
	return &ArrayWriter{w: m.w, id: id}, nil
}

// BeginMap writes key and opens a nested map as its value, returning the
// writer for that map. m becomes inactive until the returned writer (and any
// writers nested within it) is closed.
func (m *MapWriter) BeginMap(key string) (*MapWriter, error) {
	if err := m.writeKey(key); err != nil {
		return nil, err
	}
	id := m.w.pushContainer(majorMap)
	return &MapWriter{w: m.w, id: id}, nil
}

// Close terminates the map with a break byte, returning control to its
// parent writer (if any).
func (m *MapWriter) Close() error {
	return m.w.closeContainer(m.id)
}

// ArrayWriter emits the elements of one CBOR array. Only the innermost
// writer on the active-writer stack may successfully call any of its
// methods; any other call returns [ErrInactiveWriter].
type ArrayWriter struct {
	w  *Writer
	id int
}

func (a *ArrayWriter) WriteNull() error {
	if err := a.w.checkActive(a.id); err != nil {
		return err
	}
	a.w.buf = appendNull(a.w.buf)
	return nil
}

func (a *ArrayWriter) WriteBool(v bool) error {
	if err := a.w.checkActive(a.id); err != nil {
		return err
	}
	a.w.buf = appendBool(a.w.buf, v)
	return nil
}

func (a *ArrayWriter) WriteInt(v int64) error {
	if err := a.w.checkActive(a.id); err != nil {
		return err
	}
	a.w.buf = appendInt(a.w.buf, v)
	return nil
}

func (a *ArrayWriter) WriteFloat(v float64) error {
	if err := a.w.checkActive(a.id); err != nil {
		return err
	}
	a.w.buf = appendFloat(a.w.buf, v)
	return nil
}

func (a *ArrayWriter) WriteText(v string) error {
	if err := a.w.checkActive(a.id); err != nil {
		return err
	}
	a.w.buf = appendText(a.w.buf, v)
	return nil
}

func (a *ArrayWriter) WriteBytes(v []byte) error {
	if err := a.w.checkActive(a.id); err != nil {
		return err
	}
	a.w.buf = appendBytes(a.w.buf, v)
	return nil
}

// BeginArray opens a nested array element, returning the writer for it. a
// becomes inactive until the returned writer is closed.
func (a *ArrayWriter) BeginArray() (*ArrayWriter, error) {
	if err := a.w.checkActive(a.id); err != nil {
		return nil, err
	}
	id := a.w.pushContainer(majorArray)
	return &ArrayWriter{w: a.w, id: id}, nil
}

// BeginMap opens a nested map element, returning the writer for it. a
// becomes inactive until the returned writer is closed.
func (a *ArrayWriter) BeginMap() (*MapWriter, error) {
	if err := a.w.checkActive(a.id); err != nil {
		return nil, err
	}
	id := a.w.pushContainer(majorMap)
	return &MapWriter{w: a.w, id: id}, nil
}

// Close terminates the array with a break byte, returning control to its
// parent writer (if any).
func (a *ArrayWriter) Close() error {
	return a.w.closeContainer(a.id)
}
