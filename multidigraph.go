package graph

import (
	"strconv"

	"github.com/hashicorp/go-hclog"
)

// MultiDiGraph composes MultiGraph's parallel-edge key-maps with DiGraph's
// twin succ/pred adjacency: the two independent extensions of Graph applied
// together (spec.md §4.5).
//
// The zero value is not usable; construct with NewMultiDiGraph,
// NewMultiDiGraphFromEdges, or NewMultiDiGraphFrom.
type MultiDiGraph[K comparable] struct {
	attr   AttrMap
	nodes  *KeyedMap[K, AttrMap]
	succ   *KeyedMap[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]]
	pred   *KeyedMap[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]]
	logger hclog.Logger
}

// NewMultiDiGraph creates an empty multi-edge directed graph.
func NewMultiDiGraph[K comparable](opts ...GraphOption) *MultiDiGraph[K] {
	cfg := newGraphConfig(opts)
	return &MultiDiGraph[K]{
		attr:   cfg.attr,
		nodes:  NewKeyedMap[K, AttrMap](),
		succ:   NewKeyedMap[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]](),
		pred:   NewKeyedMap[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]](),
		logger: cfg.logger,
	}
}

// NewMultiDiGraphFromEdges creates a multi-edge directed graph by
// constructing it empty and adding every element (each a MultiEdge3[K] or
// MultiEdge4[K]).
func NewMultiDiGraphFromEdges[K comparable](elements []any, opts ...GraphOption) (*MultiDiGraph[K], error) {
	d := NewMultiDiGraph[K](opts...)
	for i, el := range elements {
		switch e := el.(type) {
		case MultiEdge3[K]:
			d.AddEdge(e.U, e.V, nil, e.Attr)
		case MultiEdge4[K]:
			d.AddEdge(e.U, e.V, e.Key, e.Attr)
		default:
			return nil, &MalformedInputError{
				Reason: edgeArityErrorReason(i),
			}
		}
	}
	return d, nil
}

func edgeArityErrorReason(i int) string {
	return "element is neither a 3-tuple nor a 4-tuple multi-edge at index " + strconv.Itoa(i)
}

// NewMultiDiGraphFrom creates a multi-edge directed graph by
// copy-constructing from a GraphLike source's nodes and edges (a Graph or a
// DiGraph; the multi variants do not satisfy GraphLike).
func NewMultiDiGraphFrom[K comparable](init GraphLike[K], opts ...GraphOption) *MultiDiGraph[K] {
	d := NewMultiDiGraph[K](opts...)
	for _, n := range init.Nodes() {
		attr, _ := init.NodeAttr(n)
		d.AddNode(n, attr)
	}
	for _, e := range init.Edges() {
		d.AddEdge(e.U, e.V, nil, e.Attr)
	}
	return d
}

// Attr returns the graph-level attribute record.
func (d *MultiDiGraph[K]) Attr() AttrMap { return d.attr }

// Name returns the graph's name attribute, or "" if unset.
func (d *MultiDiGraph[K]) Name() string { return graphName(d.attr) }

// AddNode adds n to the graph, idempotently, merging attr into any existing
// record.
func (d *MultiDiGraph[K]) AddNode(n K, attr AttrMap) {
	d.logger.Trace("add_node", "node", n)
	if existing, ok := d.nodes.Get(n); ok {
		d.nodes.Set(n, mergeAttrs(existing, attr))
		return
	}
	d.nodes.Set(n, mergeAttrs(nil, attr))
	d.succ.Set(n, NewKeyedMap[K, *KeyedMap[any, AttrMap]]())
	d.pred.Set(n, NewKeyedMap[K, *KeyedMap[any, AttrMap]]())
}

// AddNodesFrom adds every node in ns, each merged with attr as AddNode
// would.
func (d *MultiDiGraph[K]) AddNodesFrom(ns []K, attr AttrMap) {
	for _, n := range ns {
		d.AddNode(n, attr)
	}
}

// AddEdge adds a directed parallel edge from u to v under key, creating
// either endpoint that doesn't already exist. If key is nil, the smallest
// non-negative integer not already used between u and v is assigned. The
// assigned key is returned.
func (d *MultiDiGraph[K]) AddEdge(u, v K, key any, attr AttrMap) any {
	d.logger.Trace("add_edge", "u", u, "v", v, "key", key)
	d.AddNode(u, nil)
	d.AddNode(v, nil)

	uSucc, _ := d.succ.Get(u)
	vPred, _ := d.pred.Get(v)

	km, ok := uSucc.Get(v)
	if !ok {
		km = NewKeyedMap[any, AttrMap]()
		uSucc.Set(v, km)
		vPred.Set(u, km)
	}

	if key == nil {
		key = smallestFreeKey(km)
	}

	if existing, ok := km.Get(key); ok {
		km.Set(key, mergeAttrs(existing, attr))
	} else {
		km.Set(key, mergeAttrs(nil, attr))
	}
	return key
}

// AddEdgesFrom adds every edge described by elements (each a MultiEdge3[K]
// or MultiEdge4[K]), with attr as the shared base.
func (d *MultiDiGraph[K]) AddEdgesFrom(elements []any, attr AttrMap) error {
	for i, el := range elements {
		switch e := el.(type) {
		case MultiEdge3[K]:
			d.AddEdge(e.U, e.V, nil, mergeAttrs(cloneAttrs(attr), e.Attr))
		case MultiEdge4[K]:
			d.AddEdge(e.U, e.V, e.Key, mergeAttrs(cloneAttrs(attr), e.Attr))
		default:
			return &MalformedInputError{Reason: edgeArityErrorReason(i)}
		}
	}
	return nil
}

// RemoveNode removes n and every edge incident to it (both as source and
// target). It fails with a lookup error if n doesn't exist.
func (d *MultiDiGraph[K]) RemoveNode(n K) error {
	if !d.nodes.Has(n) {
		return &NodeNotFoundError[K]{Hash: n}
	}
	d.logger.Trace("remove_node", "node", n)

	if nSucc, ok := d.succ.Get(n); ok {
		it := nSucc.Iter()
		for {
			succ, _, ok, _ := it.Next()
			if !ok {
				break
			}
			if pred, ok := d.pred.Get(succ); ok {
				pred.Remove(n)
			}
		}
	}
	if nPred, ok := d.pred.Get(n); ok {
		it := nPred.Iter()
		for {
			pred, _, ok, _ := it.Next()
			if !ok {
				break
			}
			if succ, ok := d.succ.Get(pred); ok {
				succ.Remove(n)
			}
		}
	}

	d.succ.Remove(n)
	d.pred.Remove(n)
	d.nodes.Remove(n)
	return nil
}

// RemoveNodesFrom removes every node in ns, silently skipping any that
// don't exist.
func (d *MultiDiGraph[K]) RemoveNodesFrom(ns []K) {
	for _, n := range ns {
		_ = d.RemoveNode(n)
	}
}

// RemoveEdge removes the directed parallel edge from u to v under key. If
// key is nil, an arbitrary one of the existing keys is removed. The
// succ[u][v] and pred[v][u] key-map entries are deleted once empty.
func (d *MultiDiGraph[K]) RemoveEdge(u, v K, key any) error {
	uSucc, ok := d.succ.Get(u)
	if !ok {
		return &EdgeNotFoundError[K]{Source: u, Target: v, Key: key}
	}
	km, ok := uSucc.Get(v)
	if !ok || km.Count() == 0 {
		return &EdgeNotFoundError[K]{Source: u, Target: v, Key: key}
	}

	if key == nil {
		key = km.Keys()[0]
	}
	if !km.Remove(key) {
		return &EdgeNotFoundError[K]{Source: u, Target: v, Key: key}
	}
	d.logger.Trace("remove_edge", "u", u, "v", v, "key", key)

	if km.Count() == 0 {
		uSucc.Remove(v)
		if vPred, ok := d.pred.Get(v); ok {
			vPred.Remove(u)
		}
	}
	return nil
}

// HasNode reports whether n is a node of the graph.
func (d *MultiDiGraph[K]) HasNode(n K) bool { return d.nodes.Has(n) }

// HasEdge reports whether a directed edge exists from u to v, optionally
// scoped to a specific key.
func (d *MultiDiGraph[K]) HasEdge(u, v K, key any) bool {
	uSucc, ok := d.succ.Get(u)
	if !ok {
		return false
	}
	km, ok := uSucc.Get(v)
	if !ok {
		return false
	}
	if key == nil {
		return km.Count() > 0
	}
	return km.Has(key)
}

// Successors returns the distinct nodes u has an outgoing edge to, in
// insertion order. It fails with a lookup error if n doesn't exist.
func (d *MultiDiGraph[K]) Successors(n K) ([]K, error) {
	nSucc, ok := d.succ.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	return nSucc.Keys(), nil
}

// Predecessors returns the distinct nodes with an outgoing edge to n, in
// insertion order. It fails with a lookup error if n doesn't exist.
func (d *MultiDiGraph[K]) Predecessors(n K) ([]K, error) {
	nPred, ok := d.pred.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	return nPred.Keys(), nil
}

// Nodes returns every node in insertion order.
func (d *MultiDiGraph[K]) Nodes() []K { return d.nodes.Keys() }

// NodesIter returns a lazy iterator over every node's hash and attribute
// record.
func (d *MultiDiGraph[K]) NodesIter() *KeyedMapIterator[K, AttrMap] { return d.nodes.Iter() }

// NodeAttr returns n's attribute record, or false if n doesn't exist.
func (d *MultiDiGraph[K]) NodeAttr(n K) (AttrMap, bool) { return d.nodes.Get(n) }

// GetEdgeData returns the attribute record of the directed edge from u to v
// under key, or def if no such edge exists.
func (d *MultiDiGraph[K]) GetEdgeData(u, v K, key any, def AttrMap) AttrMap {
	uSucc, ok := d.succ.Get(u)
	if !ok {
		return def
	}
	km, ok := uSucc.Get(v)
	if !ok || km.Count() == 0 {
		return def
	}
	if key == nil {
		return km.Values()[0]
	}
	if attr, ok := km.Get(key); ok {
		return attr
	}
	return def
}

// directedMultiEdgeIterator is the shared engine behind OutEdgesIter,
// InEdgesIter and EdgesIter: each walks a succ- or pred-shaped KeyedMap,
// the differences being which node's adjacency row they start from and, for
// pred rows, that each edge's endpoints are swapped back (flip).
type directedMultiEdgeIterator[K comparable] struct {
	outer *KeyedMapIterator[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]]
	inner *KeyedMapIterator[K, *KeyedMap[any, AttrMap]]
	keys  *KeyedMapIterator[any, AttrMap]
	node  K
	peer  K
	flip  bool
}

// Next returns the next directed edge, or ok=false once exhausted.
func (it *directedMultiEdgeIterator[K]) Next() (edge MultiSimpleEdge[K], ok bool, err error) {
	for {
		if it.inner == nil {
			node, succ, got, err := it.outer.Next()
			if err != nil {
				return MultiSimpleEdge[K]{}, false, err
			}
			if !got {
				return MultiSimpleEdge[K]{}, false, nil
			}
			it.node = node
			it.inner = succ.Iter()
			continue
		}

		if it.keys == nil {
			target, km, got, err := it.inner.Next()
			if err != nil {
				return MultiSimpleEdge[K]{}, false, err
			}
			if !got {
				it.inner = nil
				continue
			}
			it.peer = target
			it.keys = km.Iter()
			continue
		}

		key, attr, got, err := it.keys.Next()
		if err != nil {
			return MultiSimpleEdge[K]{}, false, err
		}
		if !got {
			it.keys = nil
			continue
		}
		if it.flip {
			return MultiSimpleEdge[K]{U: it.peer, V: it.node, Key: key, Attr: attr}, true, nil
		}
		return MultiSimpleEdge[K]{U: it.node, V: it.peer, Key: key, Attr: attr}, true, nil
	}
}

// EdgesIter returns a lazy iterator over every directed parallel edge.
func (d *MultiDiGraph[K]) EdgesIter() *directedMultiEdgeIterator[K] {
	return &directedMultiEdgeIterator[K]{outer: d.succ.Iter()}
}

// Edges materializes every directed parallel edge.
func (d *MultiDiGraph[K]) Edges() []MultiSimpleEdge[K] {
	var out []MultiSimpleEdge[K]
	it := d.EdgesIter()
	for {
		e, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		out = append(out, e)
	}
	return out
}

// SimpleEdges flattens every directed parallel edge into the
// variant-agnostic SimpleEdge shape, dropping the key. MultiDiGraph itself
// does not satisfy GraphLike, because its Edges method returns
// MultiSimpleEdge values.
func (d *MultiDiGraph[K]) SimpleEdges() []SimpleEdge[K] {
	edges := d.Edges()
	out := make([]SimpleEdge[K], len(edges))
	for i, e := range edges {
		out[i] = SimpleEdge[K]{U: e.U, V: e.V, Attr: e.Attr}
	}
	return out
}

// OutEdgesIter returns a lazy iterator over every edge with n as its
// source. It fails with a lookup error if n doesn't exist.
func (d *MultiDiGraph[K]) OutEdgesIter(n K) (*directedMultiEdgeIterator[K], error) {
	nSucc, ok := d.succ.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	single := NewKeyedMap[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]]()
	single.Set(n, nSucc)
	return &directedMultiEdgeIterator[K]{outer: single.Iter()}, nil
}

// InEdgesIter returns a lazy iterator over every edge with n as its
// target. It fails with a lookup error if n doesn't exist. The returned
// edges report U as the predecessor and V as n, matching the orientation
// OutEdgesIter uses for source.
func (d *MultiDiGraph[K]) InEdgesIter(n K) (*directedMultiEdgeIterator[K], error) {
	nPred, ok := d.pred.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	single := NewKeyedMap[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]]()
	single.Set(n, nPred)
	it := &directedMultiEdgeIterator[K]{outer: single.Iter(), flip: true}
	return it, nil
}

// InDegree returns the number of incoming parallel edges to n, across all
// predecessors. It fails with a lookup error if n doesn't exist.
func (d *MultiDiGraph[K]) InDegree(n K) (int, error) {
	nPred, ok := d.pred.Get(n)
	if !ok {
		return 0, &NodeNotFoundError[K]{Hash: n}
	}
	total := 0
	it := nPred.Iter()
	for {
		_, km, got, err := it.Next()
		if err != nil || !got {
			break
		}
		total += km.Count()
	}
	return total, nil
}

// OutDegree returns the number of outgoing parallel edges from n, across
// all successors. It fails with a lookup error if n doesn't exist.
func (d *MultiDiGraph[K]) OutDegree(n K) (int, error) {
	nSucc, ok := d.succ.Get(n)
	if !ok {
		return 0, &NodeNotFoundError[K]{Hash: n}
	}
	total := 0
	it := nSucc.Iter()
	for {
		_, km, got, err := it.Next()
		if err != nil || !got {
			break
		}
		total += km.Count()
	}
	return total, nil
}

// Degree returns the sum of n's in- and out-degree. It fails with a lookup
// error if n doesn't exist.
func (d *MultiDiGraph[K]) Degree(n K) (int, error) {
	in, err := d.InDegree(n)
	if err != nil {
		return 0, err
	}
	out, err := d.OutDegree(n)
	if err != nil {
		return 0, err
	}
	return in + out, nil
}

// Order returns the number of nodes.
func (d *MultiDiGraph[K]) Order() int { return d.nodes.Count() }

// Size returns the total number of directed parallel edges.
func (d *MultiDiGraph[K]) Size() int {
	total := 0
	it := d.succ.Iter()
	for {
		_, succ, ok, _ := it.Next()
		if !ok {
			break
		}
		inner := succ.Iter()
		for {
			_, km, got, _ := inner.Next()
			if !got {
				break
			}
			total += km.Count()
		}
	}
	return total
}

// NumberOfEdges returns the number of directed parallel edges from u to v.
func (d *MultiDiGraph[K]) NumberOfEdges(u, v K) int {
	uSucc, ok := d.succ.Get(u)
	if !ok {
		return 0
	}
	km, ok := uSucc.Get(v)
	if !ok {
		return 0
	}
	return km.Count()
}

// NumberOfEdgesTotal returns the total number of directed parallel edges in
// the graph.
func (d *MultiDiGraph[K]) NumberOfEdgesTotal() int { return d.Size() }

// Subgraph returns a new MultiDiGraph whose nodes are bunch restricted to
// members of the original and whose edges are the original edges (with all
// their parallel keys) with both endpoints in bunch, re-mirrored in both
// succ and pred.
func (d *MultiDiGraph[K]) Subgraph(bunch []K) *MultiDiGraph[K] {
	keep := make(map[K]struct{}, len(bunch))
	sub := NewMultiDiGraph[K](WithGraphAttr(d.attr))

	for _, n := range bunch {
		if attr, ok := d.nodes.Get(n); ok {
			keep[n] = struct{}{}
			sub.nodes.Set(n, attr)
			sub.succ.Set(n, NewKeyedMap[K, *KeyedMap[any, AttrMap]]())
			sub.pred.Set(n, NewKeyedMap[K, *KeyedMap[any, AttrMap]]())
		}
	}

	for n := range keep {
		nSucc, _ := d.succ.Get(n)
		it := nSucc.Iter()
		for {
			target, km, ok, err := it.Next()
			if err != nil || !ok {
				break
			}
			if _, ok := keep[target]; !ok {
				continue
			}
			subSucc, _ := sub.succ.Get(n)
			subSucc.Set(target, km)
			subPred, _ := sub.pred.Get(target)
			subPred.Set(n, km)
		}
	}

	return sub
}

// ToUndirected builds a MultiGraph copy. When reciprocal is true, only
// edges present with the same key in both directions survive; when false,
// every directed parallel edge yields an undirected parallel edge under
// the same key.
func (d *MultiDiGraph[K]) ToUndirected(reciprocal bool) *MultiGraph[K] {
	g := NewMultiGraph[K](WithGraphAttr(d.attr))
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		g.AddNode(n, cloneAttrs(attr))
	}

	for _, e := range d.Edges() {
		if reciprocal && !d.HasEdge(e.V, e.U, e.Key) {
			continue
		}
		g.AddEdge(e.U, e.V, e.Key, cloneAttrs(e.Attr))
	}
	return g
}

// Reverse returns a graph with every edge's direction flipped, preserving
// keys. When copy is true, an independent deep copy is returned; when
// false, succ and pred are swapped in place and the same *MultiDiGraph is
// returned.
func (d *MultiDiGraph[K]) Reverse(copy bool) *MultiDiGraph[K] {
	if !copy {
		d.succ, d.pred = d.pred, d.succ
		return d
	}

	r := NewMultiDiGraph[K](WithGraphAttr(d.attr))
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		r.AddNode(n, cloneAttrs(attr))
	}
	for _, e := range d.Edges() {
		r.AddEdge(e.V, e.U, e.Key, cloneAttrs(e.Attr))
	}
	return r
}

// Clone returns an independent deep copy.
func (d *MultiDiGraph[K]) Clone() *MultiDiGraph[K] {
	clone := NewMultiDiGraph[K](WithGraphAttr(d.attr))
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		clone.AddNode(n, cloneAttrs(attr))
	}
	for _, e := range d.Edges() {
		clone.AddEdge(e.U, e.V, e.Key, cloneAttrs(e.Attr))
	}
	return clone
}

// Clear removes every node, edge, and graph attribute.
func (d *MultiDiGraph[K]) Clear() {
	d.nodes.Clear()
	d.succ.Clear()
	d.pred.Clear()
	d.attr = AttrMap{}
}

// NodesWithSelfloops returns every node with at least one self-loop, in
// insertion order.
func (d *MultiDiGraph[K]) NodesWithSelfloops() []K {
	var out []K
	it := d.NodesIter()
	for {
		n, _, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		if d.HasEdge(n, n, nil) {
			out = append(out, n)
		}
	}
	return out
}

// SelfloopEdges returns every self-loop edge, across all parallel keys.
func (d *MultiDiGraph[K]) SelfloopEdges() []MultiSimpleEdge[K] {
	var out []MultiSimpleEdge[K]
	for _, n := range d.NodesWithSelfloops() {
		nSucc, _ := d.succ.Get(n)
		km, _ := nSucc.Get(n)
		for _, e := range km.Entries() {
			out = append(out, MultiSimpleEdge[K]{U: n, V: n, Key: e.Key, Attr: e.Value})
		}
	}
	return out
}

// AddStar adds a new directed parallel edge from center to every node in
// leaves.
func (d *MultiDiGraph[K]) AddStar(center K, leaves []K, attr AttrMap) {
	for _, leaf := range leaves {
		d.AddEdge(center, leaf, nil, attr)
	}
}

// AddPath adds a new directed parallel edge from each node to the next.
func (d *MultiDiGraph[K]) AddPath(nodes []K, attr AttrMap) {
	for i := 0; i+1 < len(nodes); i++ {
		d.AddEdge(nodes[i], nodes[i+1], nil, attr)
	}
}

// AddCycle adds a new directed parallel edge from each node to the next,
// plus one closing the cycle from the last back to the first.
func (d *MultiDiGraph[K]) AddCycle(nodes []K, attr AttrMap) {
	d.AddPath(nodes, attr)
	if len(nodes) > 1 {
		d.AddEdge(nodes[len(nodes)-1], nodes[0], nil, attr)
	}
}
