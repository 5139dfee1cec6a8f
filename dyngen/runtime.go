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

// runtimeSupport is the Python CBOR codec shared by every generated class,
// a line-for-line port of the strict indefinite-length-only subset
// implemented by package cbor: major types 0-5 plus the three simple
// values false/true/null and IEEE-754 doubles, shortest-width integers,
// text-only map keys.
// Emitted once per output file so bit-exact round-tripping with gogen's
// output does not depend on an external CBOR library (none in the pack
// targets this exact subset).
const runtimeSupport = `_MAJOR_UINT = 0
_MAJOR_NEGINT = 1
_MAJOR_BYTES = 2
_MAJOR_TEXT = 3
_MAJOR_ARRAY = 4
_MAJOR_MAP = 5
_MAJOR_SIMPLE = 7
_ADDL_FALSE = 20
_ADDL_TRUE = 21
_ADDL_NULL = 22
_ADDL_ONE = 24
_ADDL_TWO = 25
_ADDL_FOUR = 26
_ADDL_EIGHT = 27
_ADDL_INDEF = 31
_BREAK = 0xFF


class CBORWriter:
    """Builds one top-level CBOR map out of nested indefinite-length
    arrays and maps terminated by the break byte, using the shortest
    encoding available for every integer -- matches package cbor bit for
    bit."""

    def __init__(self):
        self._buf = bytearray()
        self._stack = []

    def start(self):
        self._buf.append((_MAJOR_MAP << 5) | _ADDL_INDEF)
        self._stack.append("map")
        return self

    def _encode_uint(self, major, n):
        if n < _ADDL_ONE:
            self._buf.append((major << 5) | n)
        elif n <= 0xFF:
            self._buf.append((major << 5) | _ADDL_ONE)
            self._buf.append(n)
        elif n <= 0xFFFF:
            self._buf.append((major << 5) | _ADDL_TWO)
            self._buf.extend(struct.pack(">H", n))
        elif n <= 0xFFFFFFFF:
            self._buf.append((major << 5) | _ADDL_FOUR)
            self._buf.extend(struct.pack(">I", n))
        else:
            self._buf.append((major << 5) | _ADDL_EIGHT)
            self._buf.extend(struct.pack(">Q", n))

    def _write_int(self, v):
        if v >= 0:
            self._encode_uint(_MAJOR_UINT, v)
        else:
            self._encode_uint(_MAJOR_NEGINT, -1 - v)

    def _write_text(self, s):
        data = s.encode("utf-8")
        self._encode_uint(_MAJOR_TEXT, len(data))
        self._buf.extend(data)

    def _write_bytes(self, b):
        self._encode_uint(_MAJOR_BYTES, len(b))
        self._buf.extend(b)

    def write_key(self, key):
        self._write_text(key)

    def write_null(self, key):
        self.write_key(key)
        self._buf.append((_MAJOR_SIMPLE << 5) | _ADDL_NULL)

    def write_bool(self, key, v):
        self.write_key(key)
        self._buf.append((_MAJOR_SIMPLE << 5) | (_ADDL_TRUE if v else _ADDL_FALSE))

    def write_int(self, key, v):
        self.write_key(key)
        self._write_int(v)

    def write_float(self, key, v):
        self.write_key(key)
        self._buf.append((_MAJOR_SIMPLE << 5) | _ADDL_EIGHT)
        self._buf.extend(struct.pack(">d", v))

    def write_text(self, key, v):
        self.write_key(key)
        self._write_text(v)

    def write_bytes(self, key, v):
        self.write_key(key)
        self._write_bytes(v)

    def begin_array(self, key):
        self.write_key(key)
        self._buf.append((_MAJOR_ARRAY << 5) | _ADDL_INDEF)
        self._stack.append("array")
        return self

    def begin_map(self, key):
        self.write_key(key)
        self._buf.append((_MAJOR_MAP << 5) | _ADDL_INDEF)
        self._stack.append("map")
        return self

    # Array-context element writers (no key).
    def write_elem_int(self, v):
        self._write_int(v)

    def write_elem_text(self, v):
        self._write_text(v)

    def begin_elem_map(self):
        self._buf.append((_MAJOR_MAP << 5) | _ADDL_INDEF)
        self._stack.append("map")
        return self

    def close(self):
        self._stack.pop()
        self._buf.append(_BREAK)
        return self

    def bytes(self):
        return bytes(self._buf)


class CBORReader:
    """Decodes the same indefinite-length-only subset CBORWriter emits."""

    def __init__(self, data):
        self._data = data
        self._pos = 0

    def _read_byte(self):
        b = self._data[self._pos]
        self._pos += 1
        return b

    def _read_uint(self, addl):
        if addl < _ADDL_ONE:
            return addl
        if addl == _ADDL_ONE:
            v = self._data[self._pos]
            self._pos += 1
            return v
        if addl == _ADDL_TWO:
            v = struct.unpack_from(">H", self._data, self._pos)[0]
            self._pos += 2
            return v
        if addl == _ADDL_FOUR:
            v = struct.unpack_from(">I", self._data, self._pos)[0]
            self._pos += 4
            return v
        if addl == _ADDL_EIGHT:
            v = struct.unpack_from(">Q", self._data, self._pos)[0]
            self._pos += 8
            return v
        raise ValueError("indefinite-length scalar")

    def read_value(self):
        head = self._read_byte()
        major = head >> 5
        addl = head & 0x1F
        if major == _MAJOR_UINT:
            return self._read_uint(addl)
        if major == _MAJOR_NEGINT:
            return -1 - self._read_uint(addl)
        if major == _MAJOR_BYTES:
            n = self._read_uint(addl)
            b = bytes(self._data[self._pos:self._pos + n])
            self._pos += n
            return b
        if major == _MAJOR_TEXT:
            n = self._read_uint(addl)
            s = self._data[self._pos:self._pos + n].decode("utf-8")
            self._pos += n
            return s
        if major == _MAJOR_ARRAY:
            if addl != _ADDL_INDEF:
                raise ValueError("only indefinite-length arrays are supported")
            out = []
            while self._data[self._pos] != _BREAK:
                out.append(self.read_value())
            self._pos += 1
            return out
        if major == _MAJOR_MAP:
            if addl != _ADDL_INDEF:
                raise ValueError("only indefinite-length maps are supported")
            out = {}
            while self._data[self._pos] != _BREAK:
                key = self.read_value()
                out[key] = self.read_value()
            self._pos += 1
            return out
        if major == _MAJOR_SIMPLE:
            if addl == _ADDL_FALSE:
                return False
            if addl == _ADDL_TRUE:
                return True
            if addl == _ADDL_NULL:
                return None
            if addl == _ADDL_EIGHT:
                v = struct.unpack_from(">d", self._data, self._pos)[0]
                self._pos += 8
                return v
        raise ValueError("unsupported CBOR major type %d" % major)


class Node:
    """Common base of every generated node class. __init__ absorbs stray
    keyword arguments at the root of a constructor chain so that each
    generated class's __init__ can forward **kwargs to super() uniformly,
    whether or not its parent is itself Node."""

    def __init__(self, **kwargs):
        pass

    def is_node(self):
        return True


class CloneContext:
    """Mirrors gogen's cloneContext: maps an original node's id() to its
    clone, so Link fields pointing within the same clone operation can be
    remapped once the whole owning subtree has been copied."""

    def __init__(self):
        self.mapping = {}


class SerializeContext:
    """Mirrors gogen's serializeContext: the path from the serialization
    root to every owning descendant, plus lazily-assigned link ids."""

    def __init__(self):
        self.paths = {}
        self.link_ids = {}
        self.order = []

    def link_id(self, target):
        key = id(target)
        if key in self.link_ids:
            return self.link_ids[key]
        new_id = len(self.order)
        self.link_ids[key] = new_id
        self.order.append(target)
        return new_id


def marshal(root):
    """Serializes root to the bit-exact CBOR tree format of the top-level
    design notes; see gogen.Marshal for the Go counterpart."""
    root.check_complete()
    ctx = SerializeContext()
    root.collect_paths(ctx, [])
    w = CBORWriter().start()
    root.serialize(w, ctx)
    if ctx.order:
        links = w.begin_map("links")
        for i, target in enumerate(ctx.order):
            arr = links.begin_array(str(i))
            for step in ctx.paths[id(target)]:
                if isinstance(step, int):
                    arr.write_elem_int(step)
                else:
                    arr.write_elem_text(step)
            arr.close()
        links.close()
    w.close()
    return w.bytes()


class DeserializeContext:
    """Mirrors gogen's deserializeContext: the link-id-to-path table read
    from the wire's "links" map, plus the fixup callbacks deferred until
    the whole tree (and therefore every link target) exists."""

    def __init__(self, link_paths):
        self.link_paths = link_paths
        self.fixups = []

    def resolve_link(self, root, link_id):
        if link_id < 0 or link_id >= len(self.link_paths):
            raise ValueError("link id %d out of range" % link_id)
        return resolve_path(root, self.link_paths[link_id])


def resolve_path(root, path):
    """Walks path from root one step at a time via resolve_step, the
    Python counterpart of gogen's resolvePath."""
    cur = root
    for step in path:
        cur = cur.resolve_step(step)
    return cur


def _build_link_paths(m):
    links = m.get("links")
    if links is None:
        return []
    paths = [None] * len(links)
    for key, arr in links.items():
        paths[int(key)] = arr
    return paths


def dispatch_deserialize(m, ctx):
    """Reads m["type"] and looks it up in NODE_DESERIALIZERS, the table
    built alongside each class's deserialize classmethod - the Python
    counterpart of gogen's dispatchDeserialize."""
    type_name = m.get("type")
    if type_name is None:
        raise ValueError("deserialize: map has no \"type\" key")
    fn = NODE_DESERIALIZERS.get(type_name)
    if fn is None:
        raise ValueError("deserialize: unknown node type %r" % type_name)
    return fn(m, ctx)


def unmarshal(data):
    """Reconstructs a node tree from the bit-exact CBOR tree format
    marshal produces; see gogen.Unmarshal for the Go counterpart. Every
    deferred Link fixup runs against the now-complete root before
    check_complete verifies the result, mirroring marshal's own
    precondition check."""
    m = CBORReader(data).read_value()
    ctx = DeserializeContext(_build_link_paths(m))
    root = dispatch_deserialize(m, ctx)
    for fixup in ctx.fixups:
        fixup(root)
    root.check_complete()
    return root

`
