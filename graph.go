package graph

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Graph is a simple undirected graph: nodes identified by a comparable
// value K, attribute records on the graph, each node, and each edge, and at
// most one edge between any pair of nodes. See DiGraph, MultiGraph, and
// MultiDiGraph for the other three variants.
//
// The zero value is not usable; construct with New, NewFromEdges, or
// NewFrom.
type Graph[K comparable] struct {
	attr AttrMap
	// nodes maps every node to its attribute record. Every key that
	// appears anywhere in adj also has an entry here (spec.md §3's
	// universal invariant).
	nodes *KeyedMap[K, AttrMap]
	// adj is the adjacency map: node -> (neighbor -> attr). For every edge
	// {u,v}, adj[u][v] and adj[v][u] hold the identical attribute record,
	// kept in sync explicitly on every mutation (see AddEdge).
	adj    *KeyedMap[K, *KeyedMap[K, AttrMap]]
	logger hclog.Logger
}

// New creates an empty simple undirected graph.
func New[K comparable](opts ...GraphOption) *Graph[K] {
	cfg := newGraphConfig(opts)
	return &Graph[K]{
		attr:   cfg.attr,
		nodes:  NewKeyedMap[K, AttrMap](),
		adj:    NewKeyedMap[K, *KeyedMap[K, AttrMap]](),
		logger: cfg.logger,
	}
}

// NewFromEdges creates a graph by constructing it empty and then calling
// AddEdgesFrom with elements, matching spec.md §6's "edge list" initializer:
// equal to empty construction followed by add_edges_from.
func NewFromEdges[K comparable](elements []any, opts ...GraphOption) (*Graph[K], error) {
	g := New[K](opts...)
	if err := g.AddEdgesFrom(elements, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// NewFrom creates a graph by copy-constructing from a GraphLike source's
// nodes and edges (a Graph or a DiGraph; the multi variants do not satisfy
// GraphLike), the "convert to graph" path spec.md §6 describes. Node and
// edge attribute records are deep-copied.
func NewFrom[K comparable](init GraphLike[K], opts ...GraphOption) *Graph[K] {
	g := New[K](opts...)
	for _, n := range init.Nodes() {
		attr, _ := init.NodeAttr(n)
		g.AddNode(n, attr)
	}
	for _, e := range init.Edges() {
		g.AddEdge(e.U, e.V, e.Attr)
	}
	return g
}

// Attr returns the graph-level attribute record.
func (g *Graph[K]) Attr() AttrMap { return g.attr }

// Name returns the graph's name attribute, or "" if unset.
func (g *Graph[K]) Name() string { return graphName(g.attr) }

// AddNode adds n to the graph, idempotently. If n already exists, attr is
// merged into its existing record; otherwise n is created with attr (empty
// if nil).
func (g *Graph[K]) AddNode(n K, attr AttrMap) {
	g.logger.Trace("add_node", "node", n)
	if existing, ok := g.nodes.Get(n); ok {
		g.nodes.Set(n, mergeAttrs(existing, attr))
		return
	}
	g.nodes.Set(n, mergeAttrs(nil, attr))
	g.adj.Set(n, NewKeyedMap[K, AttrMap]())
}

// AddNodesFrom adds every node in ns, each merged with attr as AddNode
// would.
func (g *Graph[K]) AddNodesFrom(ns []K, attr AttrMap) {
	for _, n := range ns {
		g.AddNode(n, attr)
	}
}

// AddEdge adds an edge between u and v, creating either endpoint that
// doesn't already exist. If the edge already exists, attr is merged into
// its existing record; otherwise a new shared attribute record is created.
func (g *Graph[K]) AddEdge(u, v K, attr AttrMap) {
	g.logger.Trace("add_edge", "u", u, "v", v)
	g.AddNode(u, nil)
	g.AddNode(v, nil)

	uAdj, _ := g.adj.Get(u)
	if existing, ok := uAdj.Get(v); ok {
		merged := mergeAttrs(existing, attr)
		uAdj.Set(v, merged)
		if v != u {
			vAdj, _ := g.adj.Get(v)
			vAdj.Set(u, merged)
		}
		return
	}

	edgeAttr := mergeAttrs(nil, attr)
	uAdj.Set(v, edgeAttr)
	if v != u {
		vAdj, _ := g.adj.Get(v)
		vAdj.Set(u, edgeAttr)
	}
}

// AddEdgesFrom adds every edge described by elements (each an Edge2[K] or
// Edge3[K]), with attr as the shared base and each element's own attribute
// record, if any, overriding it. Any element that is neither shape is a
// structural error.
func (g *Graph[K]) AddEdgesFrom(elements []any, attr AttrMap) error {
	parsed, err := parseEdgeElements[K](elements)
	if err != nil {
		return err
	}
	for _, e := range parsed {
		g.AddEdge(e.U, e.V, mergeAttrs(cloneAttrs(attr), e.Attr))
	}
	return nil
}

// AddWeightedEdgesFrom adds every edge described by elements (each a
// WeightedEdge3[K]), synthesizing {weightName: w} over attr. weightName
// defaults to "weight" if empty. A 2-tuple element (missing its weight) is
// a structural error.
func (g *Graph[K]) AddWeightedEdgesFrom(elements []any, weightName string, attr AttrMap) error {
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
		g.AddEdge(w.U, w.V, merged)
	}
	return nil
}

// RemoveNode removes n and every edge incident to it. It fails with a
// lookup error (ErrNodeNotFound) if n doesn't exist.
func (g *Graph[K]) RemoveNode(n K) error {
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
func (g *Graph[K]) RemoveNodesFrom(ns []K) {
	for _, n := range ns {
		_ = g.RemoveNode(n)
	}
}

// RemoveEdge removes the edge between u and v. It fails with a lookup error
// (ErrEdgeNotFound) if the edge doesn't exist.
func (g *Graph[K]) RemoveEdge(u, v K) error {
	uAdj, ok := g.adj.Get(u)
	if !ok || !uAdj.Has(v) {
		return &EdgeNotFoundError[K]{Source: u, Target: v}
	}
	g.logger.Trace("remove_edge", "u", u, "v", v)

	uAdj.Remove(v)
	if v != u {
		if vAdj, ok := g.adj.Get(v); ok {
			vAdj.Remove(u)
		}
	}
	return nil
}

// RemoveEdgesFrom removes every edge in edges, silently skipping any that
// don't exist.
func (g *Graph[K]) RemoveEdgesFrom(edges []Edge2[K]) {
	for _, e := range edges {
		_ = g.RemoveEdge(e.U, e.V)
	}
}

// HasNode reports whether n is a node of the graph.
func (g *Graph[K]) HasNode(n K) bool { return g.nodes.Has(n) }

// HasEdge reports whether an edge exists between u and v.
func (g *Graph[K]) HasEdge(u, v K) bool {
	uAdj, ok := g.adj.Get(u)
	return ok && uAdj.Has(v)
}

// Neighbors returns the nodes adjacent to n, in insertion order. It fails
// with a lookup error if n doesn't exist.
func (g *Graph[K]) Neighbors(n K) ([]K, error) {
	nAdj, ok := g.adj.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	return nAdj.Keys(), nil
}

// NeighborsIter returns a lazy iterator over the nodes adjacent to n. It
// fails with a lookup error if n doesn't exist.
func (g *Graph[K]) NeighborsIter(n K) (*KeyedMapIterator[K, AttrMap], error) {
	nAdj, ok := g.adj.Get(n)
	if !ok {
		return nil, &NodeNotFoundError[K]{Hash: n}
	}
	return nAdj.Iter(), nil
}

// Nodes returns every node in insertion order.
func (g *Graph[K]) Nodes() []K { return g.nodes.Keys() }

// NodesIter returns a lazy iterator over every node's hash and attribute
// record.
func (g *Graph[K]) NodesIter() *KeyedMapIterator[K, AttrMap] { return g.nodes.Iter() }

// NodeAttr returns n's attribute record, or false if n doesn't exist.
func (g *Graph[K]) NodeAttr(n K) (AttrMap, bool) { return g.nodes.Get(n) }

// GetEdgeData returns the attribute record of the edge between u and v, or
// def if no such edge (or either node) exists. Unlike most accessors,
// GetEdgeData never raises on a missing node.
func (g *Graph[K]) GetEdgeData(u, v K, def AttrMap) AttrMap {
	uAdj, ok := g.adj.Get(u)
	if !ok {
		return def
	}
	if attr, ok := uAdj.Get(v); ok {
		return attr
	}
	return def
}

// EdgeIterator lazily walks a Graph's edges, each exactly once, by skipping
// neighbors already marked seen the way spec.md §4.2 describes.
type EdgeIterator[K comparable] struct {
	outer *KeyedMapIterator[K, *KeyedMap[K, AttrMap]]
	inner *KeyedMapIterator[K, AttrMap]
	seen  map[K]struct{}
	node  K
}

// Next returns the next edge, or ok=false once exhausted.
func (it *EdgeIterator[K]) Next() (edge SimpleEdge[K], ok bool, err error) {
	for {
		if it.inner == nil {
			node, nAdj, got, err := it.outer.Next()
			if err != nil {
				return SimpleEdge[K]{}, false, err
			}
			if !got {
				return SimpleEdge[K]{}, false, nil
			}
			it.node = node
			it.inner = nAdj.Iter()
			continue
		}

		neighbor, attr, got, err := it.inner.Next()
		if err != nil {
			return SimpleEdge[K]{}, false, err
		}
		if !got {
			it.seen[it.node] = struct{}{}
			it.inner = nil
			continue
		}
		if _, skip := it.seen[neighbor]; skip {
			continue
		}

		return SimpleEdge[K]{U: it.node, V: neighbor, Attr: attr}, true, nil
	}
}

// EdgesIter returns a lazy iterator over every edge, each yielded exactly
// once.
func (g *Graph[K]) EdgesIter() *EdgeIterator[K] {
	return &EdgeIterator[K]{outer: g.adj.Iter(), seen: make(map[K]struct{})}
}

// Edges materializes every edge, each exactly once.
func (g *Graph[K]) Edges() []SimpleEdge[K] {
	var out []SimpleEdge[K]
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

// Degree returns n's unweighted degree: the number of adjacent edges, with
// a self-loop contributing 2. It fails with a lookup error if n doesn't
// exist.
func (g *Graph[K]) Degree(n K) (int, error) {
	nAdj, ok := g.adj.Get(n)
	if !ok {
		return 0, &NodeNotFoundError[K]{Hash: n}
	}
	degree := nAdj.Count()
	if nAdj.Has(n) {
		degree++
	}
	return degree, nil
}

// WeightedDegree sums the numeric value stored at weightName on every edge
// incident to n, defaulting to 1 for any edge missing that attribute, with
// a self-loop contributing its weight once via adj[n][n] plus once more for
// the self-loop adjustment. It fails with a lookup error if n doesn't
// exist.
func (g *Graph[K]) WeightedDegree(n K, weightName string) (float64, error) {
	nAdj, ok := g.adj.Get(n)
	if !ok {
		return 0, &NodeNotFoundError[K]{Hash: n}
	}

	var total float64
	it := nAdj.Iter()
	for {
		_, attr, got, err := it.Next()
		if err != nil || !got {
			break
		}
		total += edgeWeight(attr, weightName)
	}
	if selfAttr, ok := nAdj.Get(n); ok {
		total += edgeWeight(selfAttr, weightName)
	}
	return total, nil
}

func edgeWeight(attr AttrMap, weightName string) float64 {
	v, ok := attr[weightName]
	if !ok {
		return 1
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 1
	}
}

// Order returns the number of nodes.
func (g *Graph[K]) Order() int { return g.nodes.Count() }

// Size returns the number of edges.
func (g *Graph[K]) Size() int { return len(g.Edges()) }

// NumberOfEdges is an alias for Size, matching spec.md §4.2's naming.
func (g *Graph[K]) NumberOfEdges() int { return g.Size() }

// Subgraph returns a new graph whose nodes are bunch restricted to members
// of the original and whose edges are the original edges with both
// endpoints in bunch. Attribute records are shared (a shallow view); call
// Clone on the result for an independent copy.
func (g *Graph[K]) Subgraph(bunch []K) *Graph[K] {
	keep := make(map[K]struct{}, len(bunch))
	sub := New[K](WithGraphAttr(g.attr))

	for _, n := range bunch {
		if attr, ok := g.nodes.Get(n); ok {
			keep[n] = struct{}{}
			sub.nodes.Set(n, attr)
			sub.adj.Set(n, NewKeyedMap[K, AttrMap]())
		}
	}

	for n := range keep {
		nAdj, _ := g.adj.Get(n)
		it := nAdj.Iter()
		for {
			neighbor, attr, ok, err := it.Next()
			if err != nil || !ok {
				break
			}
			if _, ok := keep[neighbor]; !ok {
				continue
			}
			subAdj, _ := sub.adj.Get(n)
			subAdj.Set(neighbor, attr)
		}
	}

	return sub
}

// ToDirected returns an independent DiGraph with both (u,v) and (v,u) for
// every undirected edge {u,v}, each with its own deep copy of the edge's
// attribute record.
func (g *Graph[K]) ToDirected() *DiGraph[K] {
	d := NewDiGraph[K](WithGraphAttr(g.attr))
	it := g.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		d.AddNode(n, cloneAttrs(attr))
	}
	for _, e := range g.Edges() {
		d.AddEdge(e.U, e.V, cloneAttrs(e.Attr))
		if e.U != e.V {
			d.AddEdge(e.V, e.U, cloneAttrs(e.Attr))
		}
	}
	return d
}

// ToUndirected returns an independent deep copy. For a simple undirected
// graph this behaves the same as Clone, per spec.md §4.2.
func (g *Graph[K]) ToUndirected() *Graph[K] { return g.Clone() }

// Clone returns an independent deep copy: the same nodes, edges, and
// attributes, with mutation of the clone never affecting the original.
func (g *Graph[K]) Clone() *Graph[K] {
	clone := New[K](WithGraphAttr(g.attr))
	it := g.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		clone.AddNode(n, cloneAttrs(attr))
	}
	for _, e := range g.Edges() {
		clone.AddEdge(e.U, e.V, cloneAttrs(e.Attr))
	}
	return clone
}

// Clear removes every node, edge, and graph attribute.
func (g *Graph[K]) Clear() {
	g.nodes.Clear()
	g.adj.Clear()
	g.attr = AttrMap{}
}

// NodesWithSelfloops returns every node with a self-loop, in insertion
// order.
func (g *Graph[K]) NodesWithSelfloops() []K {
	var out []K
	it := g.NodesIter()
	for {
		n, _, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		if g.HasEdge(n, n) {
			out = append(out, n)
		}
	}
	return out
}

// SelfloopEdges returns every self-loop edge.
func (g *Graph[K]) SelfloopEdges() []SimpleEdge[K] {
	var out []SimpleEdge[K]
	for _, n := range g.NodesWithSelfloops() {
		attr := g.GetEdgeData(n, n, AttrMap{})
		out = append(out, SimpleEdge[K]{U: n, V: n, Attr: attr})
	}
	return out
}

// AddStar adds an edge from center to every node in leaves, merging attr
// into each new edge.
func (g *Graph[K]) AddStar(center K, leaves []K, attr AttrMap) {
	for _, leaf := range leaves {
		g.AddEdge(center, leaf, attr)
	}
}

// AddPath adds an edge between every consecutive pair of nodes, merging
// attr into each new edge.
func (g *Graph[K]) AddPath(nodes []K, attr AttrMap) {
	for i := 0; i+1 < len(nodes); i++ {
		g.AddEdge(nodes[i], nodes[i+1], attr)
	}
}

// AddCycle adds an edge between every consecutive pair of nodes plus one
// closing the cycle from the last back to the first, merging attr into each
// new edge.
func (g *Graph[K]) AddCycle(nodes []K, attr AttrMap) {
	g.AddPath(nodes, attr)
	if len(nodes) > 1 {
		g.AddEdge(nodes[len(nodes)-1], nodes[0], attr)
	}
}
