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

package gogen

// runtimeSupport is emitted once per generated package (into the header),
// ahead of any node type: the shared plumbing that Clone's link-remapping
// pass and Serialize's link-table pass need, so that the per-type generated
// methods can stay a single field loop each.
const runtimeSupport = `func indent(depth int) string {
	b := make([]byte, depth)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// cloneContext records the original-to-clone mapping built while a Clone
// operation is in progress, so that Link fields pointing at a node cloned
// within the same operation can be remapped to the clone afterwards.
type cloneContext struct {
	mapping map[Node]Node
}

func newCloneContext() *cloneContext {
	return &cloneContext{mapping: map[Node]Node{}}
}

// pathStep is one step (a field name, or a field name plus an index into
// an Any/Many slice) on the path from a serialization root to a
// descendant node, used to resolve Link fields into the wire format's
// "links" path table.
type pathStep struct {
	Field    string
	Index    int
	HasIndex bool
}

// serializeContext accumulates, for one Marshal call, the path from the
// root to every owning node reachable from it, plus the link-id
// assignment for every distinct Link target actually encountered while
// writing fields.
type serializeContext struct {
	paths   map[Node][]pathStep
	linkIDs map[Node]int
	order   []Node
}

func newSerializeContext(root Node) *serializeContext {
	ctx := &serializeContext{
		paths:   map[Node][]pathStep{},
		linkIDs: map[Node]int{},
	}
	root.collectPaths(ctx, nil)
	return ctx
}

func (ctx *serializeContext) linkID(target Node) int {
	if id, ok := ctx.linkIDs[target]; ok {
		return id
	}
	id := len(ctx.order)
	ctx.linkIDs[target] = id
	ctx.order = append(ctx.order, target)
	return id
}

// Marshal serializes root to the bit-exact CBOR tree format described in
// the top-level design notes: a "type" key, one key per field, and (only
// if any Link field was encountered) a "links" table mapping each link id
// to the path from root to its target.
func Marshal(root Node) ([]byte, error) {
	if err := root.CheckComplete(); err != nil {
		return nil, err
	}
	ctx := newSerializeContext(root)
	w := cbor.NewWriter()
	mw := w.Start()
	if err := root.Serialize(mw, ctx); err != nil {
		return nil, err
	}
	if len(ctx.order) > 0 {
		links, err := mw.BeginMap("links")
		if err != nil {
			return nil, err
		}
		for id, target := range ctx.order {
			arr, err := links.BeginArray(fmt.Sprintf("%d", id))
			if err != nil {
				return nil, err
			}
			path, ok := ctx.paths[target]
			if !ok {
				return nil, fmt.Errorf("link %d: target is not reachable from the serialization root", id)
			}
			for _, step := range path {
				if step.HasIndex {
					if err := arr.WriteInt(int64(step.Index)); err != nil {
						return nil, err
					}
					continue
				}
				if err := arr.WriteText(step.Field); err != nil {
					return nil, err
				}
			}
			if err := arr.Close(); err != nil {
				return nil, err
			}
		}
		if err := links.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// deserializeContext accumulates, for one Unmarshal call, the link-id to
// root-relative-path table read from the wire's "links" map, plus the
// fixup closures registered while walking the tree: a Link field cannot be
// resolved until the whole tree (and therefore its target) has been
// constructed, so each deserializeXxx defers the resolution instead of
// doing it inline.
type deserializeContext struct {
	linkPaths [][]pathStep
	fixups    []func(root Node) error
}

// newDeserializeContext reads top's "links" map, if present, into a
// link-id-indexed table of paths. Link ids are assigned densely from 0 by
// Marshal, so the table can be a plain slice rather than a map.
func newDeserializeContext(top *cbor.Map) (*deserializeContext, error) {
	ctx := &deserializeContext{}
	linksVal, ok := top.Get("links")
	if !ok {
		return ctx, nil
	}
	linksMap, err := linksVal.AsMap()
	if err != nil {
		return nil, err
	}
	ctx.linkPaths = make([][]pathStep, linksMap.Len())
	for _, key := range linksMap.Keys() {
		v, _ := linksMap.Get(key)
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid link id %q: %w", key, err)
		}
		if id < 0 || id >= len(ctx.linkPaths) {
			return nil, fmt.Errorf("link id %d out of range", id)
		}
		elems, err := v.AsArray()
		if err != nil {
			return nil, err
		}
		path := make([]pathStep, len(elems))
		for i, elem := range elems {
			if elem.IsText() {
				s, err := elem.AsText()
				if err != nil {
					return nil, err
				}
				path[i] = pathStep{Field: s}
				continue
			}
			idx, err := elem.AsInt()
			if err != nil {
				return nil, fmt.Errorf("link path step %d: expected a field name or an index", i)
			}
			path[i] = pathStep{Index: int(idx), HasIndex: true}
		}
		ctx.linkPaths[id] = path
	}
	return ctx, nil
}

// resolvePath walks path from root one step at a time via resolveStep.
func resolvePath(root Node, path []pathStep) (Node, error) {
	cur := root
	for _, step := range path {
		next, err := cur.resolveStep(step)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (ctx *deserializeContext) resolveLink(root Node, id int) (Node, error) {
	if id < 0 || id >= len(ctx.linkPaths) {
		return nil, fmt.Errorf("link id %d out of range", id)
	}
	return resolvePath(root, ctx.linkPaths[id])
}

// dispatchDeserialize reads m's "type" key and looks it up in
// nodeDeserializers, the per-package table emitDiscriminators writes
// alongside the NodeType constants.
func dispatchDeserialize(m *cbor.Map, ctx *deserializeContext) (Node, error) {
	v, ok := m.Get("type")
	if !ok {
		return nil, fmt.Errorf("deserialize: map has no \"type\" key")
	}
	name, err := v.AsText()
	if err != nil {
		return nil, err
	}
	fn, ok := nodeDeserializers[name]
	if !ok {
		return nil, fmt.Errorf("deserialize: unknown node type %q", name)
	}
	return fn(m, ctx)
}

// Unmarshal reconstructs a Node tree from the bit-exact CBOR tree format
// Marshal produces: dispatchDeserialize rebuilds every owning node, then
// every deferred Link fixup runs against the now-complete root, and finally
// CheckComplete verifies the result, mirroring Marshal's own precondition
// check.
func Unmarshal(data []byte) (Node, error) {
	r, err := cbor.NewReader(data)
	if err != nil {
		return nil, err
	}
	top, err := r.Top().AsMap()
	if err != nil {
		return nil, err
	}
	ctx, err := newDeserializeContext(top)
	if err != nil {
		return nil, err
	}
	root, err := dispatchDeserialize(top, ctx)
	if err != nil {
		return nil, err
	}
	for _, fixup := range ctx.fixups {
		if err := fixup(root); err != nil {
			return nil, err
		}
	}
	if err := root.CheckComplete(); err != nil {
		return nil, err
	}
	return root, nil
}
`
