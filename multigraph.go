package graph

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// MultiGraph is an undirected graph allowing parallel edges between the
// same pair of nodes, distinguished by an edge key. It extends Graph's data
// model by replacing the per-neighbor attribute record with a key-map
// edge-key -> attr (spec.md §4.4).
//
// The zero value is not usable; construct with NewMultiGraph,
// NewMultiGraphFromEdges, or NewMultiGraphFrom.
type MultiGraph[K comparable] struct {
	attr  AttrMap
	nodes *KeyedMap[K, AttrMap]
	// adj maps node -> (neighbor -> (edge-key -> attr)). For every unordered
	// pair {u,v}, adj[u][v] and adj[v][u] reference the same key-map.
	adj    *KeyedMap[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]]
	logger hclog.Logger
}

// NewMultiGraph creates an empty multigraph.
func NewMultiGraph[K comparable](opts ...GraphOption) *MultiGraph[K] {
	cfg := newGraphConfig(opts)
	return &MultiGraph[K]{
		attr:   cfg.attr,
		nodes:  NewKeyedMap[K, AttrMap](),
		adj:    NewKeyedMap[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]](),
		logger: cfg.logger,
	}
}

// MultiEdge3 is a (u, v, attr) edge specification for AddEdgesFrom, with no
// caller-supplied key: one is auto-assigned.
type MultiEdge3[K comparable] struct {
	U, V K
	Attr AttrMap
}

// MultiEdge4 is a (u, v, key, attr) edge specification for AddEdgesFrom,
// carrying a caller-supplied key.
type MultiEdge4[K comparable] struct {
	U, V K
	Key  any
	Attr AttrMap
}

// NewMultiGraphFromEdges creates a multigraph by constructing it empty and
// then adding every element (each a MultiEdge3[K] or MultiEdge4[K]).
func NewMultiGraphFromEdges[K comparable](elements []any, opts ...GraphOption) (*MultiGraph[K], error) {
	g := NewMultiGraph[K](opts...)
	for i, el := range elements {
		switch e := el.(type) {
		case MultiEdge3[K]:
			g.AddEdge(e.U, e.V, nil, e.Attr)
		case MultiEdge4[K]:
			g.AddEdge(e.U, e.V, e.Key, e.Attr)
		default:
			return nil, &MalformedInputError{
				Reason: fmt.Sprintf("element %d is neither a 3-tuple nor a 4-tuple multi-edge", i),
			}
		}
	}
	return g, nil
}

// NewMultiGraphFrom creates a multigraph by copy-constructing from a
// GraphLike source's nodes and edges (a Graph or a DiGraph; the multi
// variants do not satisfy GraphLike); each source edge contributes one
// auto-keyed edge.
func NewMultiGraphFrom[K comparable](init GraphLike[K], opts ...GraphOption) *MultiGraph[K] {
	g := NewMultiGraph[K](opts...)
	for _, n := range init.Nodes() {
		attr, _ := init.NodeAttr(n)
		g.AddNode(n, attr)
	}
	for _, e := range init.Edges() {
		g.AddEdge(e.U, e.V, nil, e.Attr)
	}
	return g
}

// Attr returns the graph-level attribute record.
func (g *MultiGraph[K]) Attr() AttrMap { return g.attr }

// Name returns the graph's name attribute, or "" if unset.
func (g *MultiGraph[K]) Name() string { return graphName(g.attr) }

// AddNode adds n to the graph, idempotently, merging attr into any existing
// record.
func (g *MultiGraph[K]) AddNode(n K, attr AttrMap) {
	g.logger.Trace("add_node", "node", n)
	if existing, ok := g.nodes.Get(n); ok {
		g.nodes.Set(n, mergeAttrs(existing, attr))
		return
	}
	g.nodes.Set(n, mergeAttrs(nil, attr))
	g.adj.Set(n, NewKeyedMap[K, *KeyedMap[any, AttrMap]]())
}

// AddNodesFrom adds every node in ns, each merged with attr as AddNode
// would.
func (g *MultiGraph[K]) AddNodesFrom(ns []K, attr AttrMap) {
	for _, n := range ns {
		g.AddNode(n, attr)
	}
}

// smallestFreeKey returns the smallest non-negative integer not already a
// key in km, the auto-assignment policy spec.md §3 requires.
func smallestFreeKey(km *KeyedMap[any, AttrMap]) int {
	candidate := 0
	for km.Has(candidate) {
		candidate++
	}
	return candidate
}

// AddEdge adds a parallel edge between u and v under key, creating either
// endpoint that doesn't already exist. If key is nil, the smallest
// non-negative integer not already used between u and v is assigned. If
// key matches an existing entry, attr is merged into it; otherwise a new
// entry is created. The assigned (possibly auto-generated) key is
// returned.
func (g *MultiGraph[K]) AddEdge(u, v K, key any, attr AttrMap) any {
	g.logger.Trace("add_edge", "u", u, "v", v, "key", key)
	g.AddNode(u, nil)
	g.AddNode(v, nil)

	uAdj, _ := g.adj.Get(u)
	km, ok := uAdj.Get(v)
	if !ok {
		km = NewKeyedMap[any, AttrMap]()
		uAdj.Set(v, km)
		if v != u {
			vAdj, _ := g.adj.Get(v)
			vAdj.Set(u, km)
		}
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
func (g *MultiGraph[K]) AddEdgesFrom(elements []any, attr AttrMap) error {
	for i, el := range elements {
		switch e := el.(type) {
		case MultiEdge3[K]:
			g.AddEdge(e.U, e.V, nil, mergeAttrs(cloneAttrs(attr), e.Attr))
		case MultiEdge4[K]:
			g.AddEdge(e.U, e.V, e.Key, mergeAttrs(cloneAttrs(attr), e.Attr))
		default:
			return &MalformedInputError{
				Reason: fmt.Sprintf("element %d is neither a 3-tuple nor a 4-tuple multi-edge", i),
			}
		}
	}
	return nil
}

// RemoveNode removes n and every edge incident to it. It fails with a
// lookup error if n doesn't exist.
func (g *MultiGraph[K]) RemoveNode(n K) error {
	if !g.nodes.Has(n) {
		return &NodeNotFoundError[K]{Hash: n}
	}
	g.logger.Trace("remove_node", "node", n)

	nAdj, _ := g.adj.Get(n)
	it := nAdj.Iter()
	for {
		neighbor, _, ok, _ := it.Next()
		if !ok {
			break
		}
		if neighbor != n {
			if neighborAdj, ok := g.adj.Get(neighbor); ok {
				neighborAdj.Remove(n)
			}
		}
	}

	g.adj.Remove(n)
	g.nodes.Remove(n)
	return nil
}

// RemoveNodesFrom removes every node in ns, silently skipping any that
// don't exist.
func (g *MultiGraph[K]) RemoveNodesFrom(ns []K) {
	for _, n := range ns {
		_ = g.RemoveNode(n)
	}
}

// RemoveEdge removes the edge between u and v under key. If key is nil, an
// arbitrary one of the existing keys is removed. It fails with a lookup
// error if no matching edge exists. The key-map entry for (u,v) (and its
// mirror at (v,u)) is deleted once it becomes empty.
func (g *MultiGraph[K]) RemoveEdge(u, v K, key any) error {
	uAdj, ok := g.adj.Get(u)
	if !ok {
		return &EdgeNotFoundError[K]{Source: u, Target: v, Key: key}
	}
	km, ok := uAdj.Get(v)
	if !ok || km.Count() == 0 {
		return &EdgeNotFoundError[K]{Source: u, Target: v, Key: key}
	}

	if key == nil {
		key = km.Keys()[0]
	}
	if !km.Remove(key) {
		return &EdgeNotFoundError[K]{Source: u, Target: v, Key: key}
	}
	g.logger.Trace("remove_edge", "u", u, "v", v, "key", key)

	if km.Count() == 0 {
		uAdj.Remove(v)
		if v != u {
			if vAdj, ok := g.adj.Get(v); ok {
				vAdj.Remove(u)
			}
		}
	}
	return nil
}

// HasNode reports whether n is a node of the graph.
func (g *MultiGraph[K]) HasNode(n K) bool { return g.nodes.Has(n) }

// HasEdge reports whether an edge exists between u and v, optionally
// scoped to a specific key.
func (g *MultiGraph[K]) HasEdge(u, v K, key any) bool {
	uAdj, ok := g.adj.Get(u)
	if !ok {
		return false
	}
	km, ok := uAdj.Get(v)
	if !ok {
		return false
	}
	if key == nil {
		return km.Count() > 0
	}
	return km.Has(key)
}

// Neighbors returns the distinct nodes adjacent to n, in insertion order,
// one entry per neighbor regardless of how many parallel edges connect
// them. It fails with a lookup error if n doesn't exist.
func (g *MultiGraph[K]) Neighbors(n K) ([]K, error) {
	nAdj, ok := g.adj.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	return nAdj.Keys(), nil
}

// Nodes returns every node in insertion order.
func (g *MultiGraph[K]) Nodes() []K { return g.nodes.Keys() }

// NodesIter returns a lazy iterator over every node's hash and attribute
// record.
func (g *MultiGraph[K]) NodesIter() *KeyedMapIterator[K, AttrMap] { return g.nodes.Iter() }

// NodeAttr returns n's attribute record, or false if n doesn't exist.
func (g *MultiGraph[K]) NodeAttr(n K) (AttrMap, bool) { return g.nodes.Get(n) }

// GetEdgeData returns the attribute record of the edge between u and v
// under key, or def if no such edge (or either node) exists. If key is nil
// and multiple parallel edges exist, an arbitrary one's record is
// returned.
func (g *MultiGraph[K]) GetEdgeData(u, v K, key any, def AttrMap) AttrMap {
	uAdj, ok := g.adj.Get(u)
	if !ok {
		return def
	}
	km, ok := uAdj.Get(v)
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

// MultiSimpleEdge is one parallel edge between U and V, carrying its
// assigned Key alongside its attribute record — the richer edge shape
// MultiGraph's Edges/EdgesIter expose, independent of Graph's
// variant-agnostic SimpleEdge used for GraphLike conversions.
type MultiSimpleEdge[K comparable] struct {
	U, V K
	Key  any
	Attr AttrMap
}

// MultiEdgeIterator lazily walks a MultiGraph's edges, each exactly once,
// via the same seen-set technique Graph's EdgeIterator uses, applied one
// level deeper to account for parallel edges.
type MultiEdgeIterator[K comparable] struct {
	outer *KeyedMapIterator[K, *KeyedMap[K, *KeyedMap[any, AttrMap]]]
	inner *KeyedMapIterator[K, *KeyedMap[any, AttrMap]]
	keys  *KeyedMapIterator[any, AttrMap]
	seen  map[K]struct{}
	node  K
	peer  K
}

// Next returns the next edge, or ok=false once exhausted.
func (it *MultiEdgeIterator[K]) Next() (edge MultiSimpleEdge[K], ok bool, err error) {
	for {
		if it.inner == nil {
			node, nAdj, got, err := it.outer.Next()
			if err != nil {
				return MultiSimpleEdge[K]{}, false, err
			}
			if !got {
				return MultiSimpleEdge[K]{}, false, nil
			}
			it.node = node
			it.inner = nAdj.Iter()
			continue
		}

		if it.keys == nil {
			neighbor, km, got, err := it.inner.Next()
			if err != nil {
				return MultiSimpleEdge[K]{}, false, err
			}
			if !got {
				it.seen[it.node] = struct{}{}
				it.inner = nil
				continue
			}
			if _, skip := it.seen[neighbor]; skip {
				continue
			}
			it.peer = neighbor
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
		return MultiSimpleEdge[K]{U: it.node, V: it.peer, Key: key, Attr: attr}, true, nil
	}
}

// EdgesIter returns a lazy iterator over every parallel edge, each yielded
// exactly once with its key and attribute record.
func (g *MultiGraph[K]) EdgesIter() *MultiEdgeIterator[K] {
	return &MultiEdgeIterator[K]{outer: g.adj.Iter(), seen: make(map[K]struct{})}
}

// Edges materializes every parallel edge, each exactly once.
func (g *MultiGraph[K]) Edges() []MultiSimpleEdge[K] {
	var out []MultiSimpleEdge[K]
	it := g.EdgesIter()
	for {
		e, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		out = append(out, e)
	}
	return out
}

// SimpleEdges flattens every parallel edge into the variant-agnostic
// SimpleEdge shape, dropping the key. MultiGraph itself does not satisfy
// GraphLike, because its Edges method returns MultiSimpleEdge values, so it
// cannot be passed to the NewFrom-style constructors.
func (g *MultiGraph[K]) SimpleEdges() []SimpleEdge[K] {
	edges := g.Edges()
	out := make([]SimpleEdge[K], len(edges))
	for i, e := range edges {
		out[i] = SimpleEdge[K]{U: e.U, V: e.V, Attr: e.Attr}
	}
	return out
}

// Degree returns n's unweighted degree: the total number of parallel edges
// incident to n across every neighbor, with a self-loop's key-map size
// counted twice. It fails with a lookup error if n doesn't exist.
func (g *MultiGraph[K]) Degree(n K) (int, error) {
	nAdj, ok := g.adj.Get(n)
	if !ok {
		return 0, &NodeNotFoundError[K]{Hash: n}
	}
	degree := 0
	it := nAdj.Iter()
	for {
		neighbor, km, got, err := it.Next()
		if err != nil || !got {
			break
		}
		degree += km.Count()
		if neighbor == n {
			degree += km.Count()
		}
	}
	return degree, nil
}

// Order returns the number of nodes.
func (g *MultiGraph[K]) Order() int { return g.nodes.Count() }

// Size returns the total number of parallel edges.
func (g *MultiGraph[K]) Size() int { return len(g.Edges()) }

// NumberOfEdges returns the number of parallel edges between u and v, or 0
// if there are none. The total edge count is available from
// NumberOfEdgesTotal.
func (g *MultiGraph[K]) NumberOfEdges(u, v K) int {
	uAdj, ok := g.adj.Get(u)
	if !ok {
		return 0
	}
	km, ok := uAdj.Get(v)
	if !ok {
		return 0
	}
	return km.Count()
}

// NumberOfEdgesTotal returns the total number of parallel edges in the
// graph, the no-nodes-specified form of spec.md §4.4's number_of_edges.
func (g *MultiGraph[K]) NumberOfEdgesTotal() int { return g.Size() }

// Subgraph returns a new multigraph whose nodes are bunch restricted to
// members of the original and whose edges are the original edges (with all
// their parallel keys) with both endpoints in bunch. Attribute records and
// key-maps are shared with the original.
func (g *MultiGraph[K]) Subgraph(bunch []K) *MultiGraph[K] {
	keep := make(map[K]struct{}, len(bunch))
	sub := NewMultiGraph[K](WithGraphAttr(g.attr))

	for _, n := range bunch {
		if attr, ok := g.nodes.Get(n); ok {
			keep[n] = struct{}{}
			sub.nodes.Set(n, attr)
			sub.adj.Set(n, NewKeyedMap[K, *KeyedMap[any, AttrMap]]())
		}
	}

	for n := range keep {
		nAdj, _ := g.adj.Get(n)
		it := nAdj.Iter()
		for {
			neighbor, km, ok, err := it.Next()
			if err != nil || !ok {
				break
			}
			if _, ok := keep[neighbor]; !ok {
				continue
			}
			subAdj, _ := sub.adj.Get(n)
			subAdj.Set(neighbor, km)
		}
	}

	return sub
}

// ToDirected returns an independent MultiDiGraph with both (u,v) and (v,u)
// for every undirected parallel edge {u,v}, each with its own deep copy of
// the edge's attribute record and the same key.
func (g *MultiGraph[K]) ToDirected() *MultiDiGraph[K] {
	d := NewMultiDiGraph[K](WithGraphAttr(g.attr))
	it := g.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		d.AddNode(n, cloneAttrs(attr))
	}
	for _, e := range g.Edges() {
		d.AddEdge(e.U, e.V, e.Key, cloneAttrs(e.Attr))
		if e.U != e.V {
			d.AddEdge(e.V, e.U, e.Key, cloneAttrs(e.Attr))
		}
	}
	return d
}

// ToUndirected returns an independent deep copy, matching spec.md §4.2's
// self-conversion behavior.
func (g *MultiGraph[K]) ToUndirected() *MultiGraph[K] { return g.Clone() }

// Clone returns an independent deep copy: the same nodes, edges, and
// attributes, with mutation of the clone never affecting the original.
func (g *MultiGraph[K]) Clone() *MultiGraph[K] {
	clone := NewMultiGraph[K](WithGraphAttr(g.attr))
	it := g.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		clone.AddNode(n, cloneAttrs(attr))
	}
	for _, e := range g.Edges() {
		clone.AddEdge(e.U, e.V, e.Key, cloneAttrs(e.Attr))
	}
	return clone
}

// Clear removes every node, edge, and graph attribute.
func (g *MultiGraph[K]) Clear() {
	g.nodes.Clear()
	g.adj.Clear()
	g.attr = AttrMap{}
}

// NodesWithSelfloops returns every node with at least one self-loop, in
// insertion order.
func (g *MultiGraph[K]) NodesWithSelfloops() []K {
	var out []K
	it := g.NodesIter()
	for {
		n, _, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		if g.HasEdge(n, n, nil) {
			out = append(out, n)
		}
	}
	return out
}

// SelfloopEdges returns every self-loop edge, across all parallel keys.
func (g *MultiGraph[K]) SelfloopEdges() []MultiSimpleEdge[K] {
	var out []MultiSimpleEdge[K]
	for _, n := range g.NodesWithSelfloops() {
		nAdj, _ := g.adj.Get(n)
		km, _ := nAdj.Get(n)
		for _, e := range km.Entries() {
			out = append(out, MultiSimpleEdge[K]{U: n, V: n, Key: e.Key, Attr: e.Value})
		}
	}
	return out
}

// AddStar adds a new parallel edge from center to every node in leaves.
func (g *MultiGraph[K]) AddStar(center K, leaves []K, attr AttrMap) {
	for _, leaf := range leaves {
		g.AddEdge(center, leaf, nil, attr)
	}
}

// AddPath adds a new parallel edge between every consecutive pair of
// nodes.
func (g *MultiGraph[K]) AddPath(nodes []K, attr AttrMap) {
	for i := 0; i+1 < len(nodes); i++ {
		g.AddEdge(nodes[i], nodes[i+1], nil, attr)
	}
}

// AddCycle adds a new parallel edge between every consecutive pair of
// nodes plus one closing the cycle from the last back to the first.
func (g *MultiGraph[K]) AddCycle(nodes []K, attr AttrMap) {
	g.AddPath(nodes, attr)
	if len(nodes) > 1 {
		g.AddEdge(nodes[len(nodes)-1], nodes[0], nil, attr)
	}
}
