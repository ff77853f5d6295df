package graph

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// DiGraph is a simple directed graph: nodes identified by a comparable
// value K, with at most one directed edge from any u to any v. It extends
// the data model of Graph by keeping two adjacency maps, succ and pred, in
// lockstep (spec.md §4.3).
//
// The zero value is not usable; construct with NewDiGraph, NewDiGraphFromEdges,
// or NewDiGraphFrom.
type DiGraph[K comparable] struct {
	attr  AttrMap
	nodes *KeyedMap[K, AttrMap]
	// succ maps node -> (successor -> attr); pred maps node -> (predecessor
	// -> attr). For every edge (u,v), succ[u][v] and pred[v][u] hold the
	// identical attribute record.
	succ   *KeyedMap[K, *KeyedMap[K, AttrMap]]
	pred   *KeyedMap[K, *KeyedMap[K, AttrMap]]
	logger hclog.Logger
}

// NewDiGraph creates an empty simple directed graph.
func NewDiGraph[K comparable](opts ...GraphOption) *DiGraph[K] {
	cfg := newGraphConfig(opts)
	return &DiGraph[K]{
		attr:   cfg.attr,
		nodes:  NewKeyedMap[K, AttrMap](),
		succ:   NewKeyedMap[K, *KeyedMap[K, AttrMap]](),
		pred:   NewKeyedMap[K, *KeyedMap[K, AttrMap]](),
		logger: cfg.logger,
	}
}

// NewDiGraphFromEdges creates a directed graph by constructing it empty and
// then calling AddEdgesFrom with elements.
func NewDiGraphFromEdges[K comparable](elements []any, opts ...GraphOption) (*DiGraph[K], error) {
	d := NewDiGraph[K](opts...)
	if err := d.AddEdgesFrom(elements, nil); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDiGraphFrom creates a directed graph by copy-constructing from a
// GraphLike source's nodes and edges (a Graph or a DiGraph; the multi
// variants do not satisfy GraphLike).
func NewDiGraphFrom[K comparable](init GraphLike[K], opts ...GraphOption) *DiGraph[K] {
	d := NewDiGraph[K](opts...)
	for _, n := range init.Nodes() {
		attr, _ := init.NodeAttr(n)
		d.AddNode(n, attr)
	}
	for _, e := range init.Edges() {
		d.AddEdge(e.U, e.V, e.Attr)
	}
	return d
}

// Attr returns the graph-level attribute record.
func (d *DiGraph[K]) Attr() AttrMap { return d.attr }

// Name returns the graph's name attribute, or "" if unset.
func (d *DiGraph[K]) Name() string { return graphName(d.attr) }

// AddNode adds n to the graph, idempotently, merging attr into any
// existing record.
func (d *DiGraph[K]) AddNode(n K, attr AttrMap) {
	d.logger.Trace("add_node", "node", n)
	if existing, ok := d.nodes.Get(n); ok {
		d.nodes.Set(n, mergeAttrs(existing, attr))
		return
	}
	d.nodes.Set(n, mergeAttrs(nil, attr))
	d.succ.Set(n, NewKeyedMap[K, AttrMap]())
	d.pred.Set(n, NewKeyedMap[K, AttrMap]())
}

// AddNodesFrom adds every node in ns, each merged with attr as AddNode
// would.
func (d *DiGraph[K]) AddNodesFrom(ns []K, attr AttrMap) {
	for _, n := range ns {
		d.AddNode(n, attr)
	}
}

// AddEdge adds a directed edge from u to v, creating either endpoint that
// doesn't already exist. If the edge already exists, attr is merged into
// its existing record.
func (d *DiGraph[K]) AddEdge(u, v K, attr AttrMap) {
	d.logger.Trace("add_edge", "u", u, "v", v)
	d.AddNode(u, nil)
	d.AddNode(v, nil)

	uSucc, _ := d.succ.Get(u)
	vPred, _ := d.pred.Get(v)

	if existing, ok := uSucc.Get(v); ok {
		merged := mergeAttrs(existing, attr)
		uSucc.Set(v, merged)
		vPred.Set(u, merged)
		return
	}

	edgeAttr := mergeAttrs(nil, attr)
	uSucc.Set(v, edgeAttr)
	vPred.Set(u, edgeAttr)
}

// AddEdgesFrom adds every edge described by elements (each an Edge2[K] or
// Edge3[K]).
func (d *DiGraph[K]) AddEdgesFrom(elements []any, attr AttrMap) error {
	parsed, err := parseEdgeElements[K](elements)
	if err != nil {
		return err
	}
	for _, e := range parsed {
		d.AddEdge(e.U, e.V, mergeAttrs(cloneAttrs(attr), e.Attr))
	}
	return nil
}

// AddWeightedEdgesFrom adds every edge described by elements (each a
// WeightedEdge3[K]), synthesizing {weightName: w} over attr.
func (d *DiGraph[K]) AddWeightedEdgesFrom(elements []any, weightName string, attr AttrMap) error {
	if weightName == "" {
		weightName = "weight"
	}
	for i, el := range elements {
		w, ok := el.(WeightedEdge3[K])
		if !ok {
			return &MalformedInputError{
				Reason: fmt.Sprintf("weighted edge element %d is missing a weight", i),
			}
		}
		merged := cloneAttrs(attr)
		merged[weightName] = w.Weight
		d.AddEdge(w.U, w.V, merged)
	}
	return nil
}

// RemoveNode removes n and every edge incident to it (both as a source and
// as a target). It fails with a lookup error if n doesn't exist.
func (d *DiGraph[K]) RemoveNode(n K) error {
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
func (d *DiGraph[K]) RemoveNodesFrom(ns []K) {
	for _, n := range ns {
		_ = d.RemoveNode(n)
	}
}

// RemoveEdge removes the directed edge from u to v. It fails with a lookup
// error if the edge doesn't exist.
func (d *DiGraph[K]) RemoveEdge(u, v K) error {
	uSucc, ok := d.succ.Get(u)
	if !ok || !uSucc.Has(v) {
		return &EdgeNotFoundError[K]{Source: u, Target: v}
	}
	d.logger.Trace("remove_edge", "u", u, "v", v)

	uSucc.Remove(v)
	if vPred, ok := d.pred.Get(v); ok {
		vPred.Remove(u)
	}
	return nil
}

// RemoveEdgesFrom removes every edge in edges, silently skipping any that
// don't exist.
func (d *DiGraph[K]) RemoveEdgesFrom(edges []Edge2[K]) {
	for _, e := range edges {
		_ = d.RemoveEdge(e.U, e.V)
	}
}

// HasNode reports whether n is a node of the graph.
func (d *DiGraph[K]) HasNode(n K) bool { return d.nodes.Has(n) }

// HasEdge reports whether a directed edge exists from u to v.
func (d *DiGraph[K]) HasEdge(u, v K) bool {
	uSucc, ok := d.succ.Get(u)
	return ok && uSucc.Has(v)
}

// Successors returns the nodes n has outgoing edges to, in insertion
// order. It fails with a lookup error if n doesn't exist.
func (d *DiGraph[K]) Successors(n K) ([]K, error) {
	nSucc, ok := d.succ.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	return nSucc.Keys(), nil
}

// Neighbors is an alias for Successors, matching the convention that a
// directed graph's default adjacency view is its successors.
func (d *DiGraph[K]) Neighbors(n K) ([]K, error) { return d.Successors(n) }

// Predecessors returns the nodes with an outgoing edge to n, in insertion
// order. It fails with a lookup error if n doesn't exist.
func (d *DiGraph[K]) Predecessors(n K) ([]K, error) {
	nPred, ok := d.pred.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	return nPred.Keys(), nil
}

// SuccessorsIter returns a lazy iterator over n's successors. It fails with
// a lookup error if n doesn't exist.
func (d *DiGraph[K]) SuccessorsIter(n K) (*KeyedMapIterator[K, AttrMap], error) {
	nSucc, ok := d.succ.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	return nSucc.Iter(), nil
}

// PredecessorsIter returns a lazy iterator over n's predecessors. It fails
// with a lookup error if n doesn't exist.
func (d *DiGraph[K]) PredecessorsIter(n K) (*KeyedMapIterator[K, AttrMap], error) {
	nPred, ok := d.pred.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	return nPred.Iter(), nil
}

// Nodes returns every node in insertion order.
func (d *DiGraph[K]) Nodes() []K { return d.nodes.Keys() }

// NodesIter returns a lazy iterator over every node's hash and attribute
// record.
func (d *DiGraph[K]) NodesIter() *KeyedMapIterator[K, AttrMap] { return d.nodes.Iter() }

// NodeAttr returns n's attribute record, or false if n doesn't exist.
func (d *DiGraph[K]) NodeAttr(n K) (AttrMap, bool) { return d.nodes.Get(n) }

// GetEdgeData returns the attribute record of the directed edge from u to
// v, or def if no such edge (or either node) exists.
func (d *DiGraph[K]) GetEdgeData(u, v K, def AttrMap) AttrMap {
	uSucc, ok := d.succ.Get(u)
	if !ok {
		return def
	}
	if attr, ok := uSucc.Get(v); ok {
		return attr
	}
	return def
}

// DirectedEdgeIterator lazily walks a DiGraph's edges. Unlike Graph's
// EdgeIterator, no seen-set is needed: each directed edge appears exactly
// once in succ.
type DirectedEdgeIterator[K comparable] struct {
	outer *KeyedMapIterator[K, *KeyedMap[K, AttrMap]]
	inner *KeyedMapIterator[K, AttrMap]
	node  K
}

// Next returns the next edge, or ok=false once exhausted.
func (it *DirectedEdgeIterator[K]) Next() (edge SimpleEdge[K], ok bool, err error) {
	for {
		if it.inner == nil {
			node, succ, got, err := it.outer.Next()
			if err != nil {
				return SimpleEdge[K]{}, false, err
			}
			if !got {
				return SimpleEdge[K]{}, false, nil
			}
			it.node = node
			it.inner = succ.Iter()
			continue
		}

		target, attr, got, err := it.inner.Next()
		if err != nil {
			return SimpleEdge[K]{}, false, err
		}
		if !got {
			it.inner = nil
			continue
		}
		return SimpleEdge[K]{U: it.node, V: target, Attr: attr}, true, nil
	}
}

// EdgesIter returns a lazy iterator over every directed edge.
func (d *DiGraph[K]) EdgesIter() *DirectedEdgeIterator[K] {
	return &DirectedEdgeIterator[K]{outer: d.succ.Iter()}
}

// Edges materializes every directed edge.
func (d *DiGraph[K]) Edges() []SimpleEdge[K] {
	var out []SimpleEdge[K]
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

// OutEdges returns every edge with n as its source.
func (d *DiGraph[K]) OutEdges(n K) ([]SimpleEdge[K], error) {
	nSucc, ok := d.succ.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	var out []SimpleEdge[K]
	for _, e := range nSucc.Entries() {
		out = append(out, SimpleEdge[K]{U: n, V: e.Key, Attr: e.Value})
	}
	return out, nil
}

// InEdges returns every edge with n as its target.
func (d *DiGraph[K]) InEdges(n K) ([]SimpleEdge[K], error) {
	nPred, ok := d.pred.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	var out []SimpleEdge[K]
	for _, e := range nPred.Entries() {
		out = append(out, SimpleEdge[K]{U: e.Key, V: n, Attr: e.Value})
	}
	return out, nil
}

// InDegree returns the number of incoming edges to n, with a self-loop
// counted once. It fails with a lookup error if n doesn't exist.
func (d *DiGraph[K]) InDegree(n K) (int, error) {
	nPred, ok := d.pred.Get(n)
	if !ok {
		return 0, &NodeNotFoundError[K]{Hash: n}
	}
	return nPred.Count(), nil
}

// OutDegree returns the number of outgoing edges from n, with a self-loop
// counted once. It fails with a lookup error if n doesn't exist.
func (d *DiGraph[K]) OutDegree(n K) (int, error) {
	nSucc, ok := d.succ.Get(n)
	if !ok {
		return 0, &NodeNotFoundError[K]{Hash: n}
	}
	return nSucc.Count(), nil
}

// Degree returns the sum of n's in- and out-degree; a self-loop thus
// contributes 2. It fails with a lookup error if n doesn't exist.
func (d *DiGraph[K]) Degree(n K) (int, error) {
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
func (d *DiGraph[K]) Order() int { return d.nodes.Count() }

// Size returns the number of directed edges.
func (d *DiGraph[K]) Size() int {
	total := 0
	it := d.succ.Iter()
	for {
		_, succ, ok, _ := it.Next()
		if !ok {
			break
		}
		total += succ.Count()
	}
	return total
}

// NumberOfEdges is an alias for Size.
func (d *DiGraph[K]) NumberOfEdges() int { return d.Size() }

// Subgraph returns a new DiGraph whose nodes are bunch restricted to
// members of the original and whose edges are the original edges with both
// endpoints in bunch, re-mirrored in both succ and pred (spec.md §9's
// resolution of the directed subgraph open question). Attribute records
// are shared with the original.
func (d *DiGraph[K]) Subgraph(bunch []K) *DiGraph[K] {
	keep := make(map[K]struct{}, len(bunch))
	sub := NewDiGraph[K](WithGraphAttr(d.attr))

	for _, n := range bunch {
		if attr, ok := d.nodes.Get(n); ok {
			keep[n] = struct{}{}
			sub.nodes.Set(n, attr)
			sub.succ.Set(n, NewKeyedMap[K, AttrMap]())
			sub.pred.Set(n, NewKeyedMap[K, AttrMap]())
		}
	}

	for n := range keep {
		nSucc, _ := d.succ.Get(n)
		for _, e := range nSucc.Entries() {
			if _, ok := keep[e.Key]; !ok {
				continue
			}
			subSucc, _ := sub.succ.Get(n)
			subSucc.Set(e.Key, e.Value)
			subPred, _ := sub.pred.Get(e.Key)
			subPred.Set(n, e.Value)
		}
	}

	return sub
}

// ToUndirected builds an undirected copy. When reciprocal is true, only
// node pairs with edges in both directions survive; when false, every
// directed edge yields an undirected edge, and collisions (both (u,v) and
// (v,u) present) resolve in the order encountered.
func (d *DiGraph[K]) ToUndirected(reciprocal bool) *Graph[K] {
	g := New[K](WithGraphAttr(d.attr))
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		g.AddNode(n, cloneAttrs(attr))
	}

	for _, e := range d.Edges() {
		if reciprocal && !d.HasEdge(e.V, e.U) {
			continue
		}
		g.AddEdge(e.U, e.V, cloneAttrs(e.Attr))
	}
	return g
}

// Reverse returns a graph with every edge's direction flipped. When copy is
// true (the default behavior callers should use), an independent deep copy
// is returned; when false, the reversal happens in place (succ and pred are
// swapped) and the same *DiGraph is returned.
func (d *DiGraph[K]) Reverse(copy bool) *DiGraph[K] {
	if !copy {
		d.succ, d.pred = d.pred, d.succ
		return d
	}

	r := NewDiGraph[K](WithGraphAttr(d.attr))
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		r.AddNode(n, cloneAttrs(attr))
	}
	for _, e := range d.Edges() {
		r.AddEdge(e.V, e.U, cloneAttrs(e.Attr))
	}
	return r
}

// Clone returns an independent deep copy.
func (d *DiGraph[K]) Clone() *DiGraph[K] {
	clone := NewDiGraph[K](WithGraphAttr(d.attr))
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		clone.AddNode(n, cloneAttrs(attr))
	}
	for _, e := range d.Edges() {
		clone.AddEdge(e.U, e.V, cloneAttrs(e.Attr))
	}
	return clone
}

// Clear removes every node, edge, and graph attribute.
func (d *DiGraph[K]) Clear() {
	d.nodes.Clear()
	d.succ.Clear()
	d.pred.Clear()
	d.attr = AttrMap{}
}

// NodesWithSelfloops returns every node with a self-loop, in insertion
// order.
func (d *DiGraph[K]) NodesWithSelfloops() []K {
	var out []K
	it := d.NodesIter()
	for {
		n, _, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		if d.HasEdge(n, n) {
			out = append(out, n)
		}
	}
	return out
}

// SelfloopEdges returns every self-loop edge.
func (d *DiGraph[K]) SelfloopEdges() []SimpleEdge[K] {
	var out []SimpleEdge[K]
	for _, n := range d.NodesWithSelfloops() {
		attr := d.GetEdgeData(n, n, AttrMap{})
		out = append(out, SimpleEdge[K]{U: n, V: n, Attr: attr})
	}
	return out
}

// AddStar adds a directed edge from center to every node in leaves.
func (d *DiGraph[K]) AddStar(center K, leaves []K, attr AttrMap) {
	for _, leaf := range leaves {
		d.AddEdge(center, leaf, attr)
	}
}

// AddPath adds a directed edge from each node to the next.
func (d *DiGraph[K]) AddPath(nodes []K, attr AttrMap) {
	for i := 0; i+1 < len(nodes); i++ {
		d.AddEdge(nodes[i], nodes[i+1], attr)
	}
}

// AddCycle adds a directed edge from each node to the next, plus one
// closing the cycle from the last back to the first.
func (d *DiGraph[K]) AddCycle(nodes []K, attr AttrMap) {
	d.AddPath(nodes, attr)
	if len(nodes) > 1 {
		d.AddEdge(nodes[len(nodes)-1], nodes[0], attr)
	}
}
