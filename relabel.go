package graph

import (
	"golang.org/x/exp/slices"
)

// LabelOrdering selects the traversal order ConvertNodeLabelsToIntegers
// assigns integer labels in.
type LabelOrdering string

const (
	// OrderingDefault assigns integers in the graph's own insertion order.
	OrderingDefault LabelOrdering = "default"
	// OrderingSorted assigns integers in ascending order of the node's own
	// key value, via a caller-supplied less function.
	OrderingSorted LabelOrdering = "sorted"
	// OrderingIncreasingDegree assigns integers from lowest degree to
	// highest, ties broken by original order.
	OrderingIncreasingDegree LabelOrdering = "increasing degree"
	// OrderingDecreasingDegree assigns integers from highest degree to
	// lowest, ties broken by original order.
	OrderingDecreasingDegree LabelOrdering = "decreasing degree"
)

// materializeMapping normalizes a relabel mapping into a plain map. A
// map[K]K is used as given (a partial mapping); a func(K) K is applied to
// every current node, matching spec.md §4.6's "when the mapping is a
// function, it is pre-materialized into a dictionary."
func materializeMapping[K comparable](nodes []K, mapping any) (map[K]K, error) {
	switch mp := mapping.(type) {
	case map[K]K:
		return mp, nil
	case func(K) K:
		out := make(map[K]K, len(nodes))
		for _, n := range nodes {
			out[n] = mp(n)
		}
		return out, nil
	default:
		return nil, &MalformedInputError{Reason: "relabel mapping must be a map[K]K or a func(K) K"}
	}
}

// splitMapping returns the set of old labels and the set of new labels a
// mapping assigns, excluding no-op entries (old == new).
func splitMapping[K comparable](m map[K]K) (oldSet, newSet map[K]struct{}) {
	oldSet = make(map[K]struct{}, len(m))
	newSet = make(map[K]struct{}, len(m))
	for old, new := range m {
		if old == new {
			continue
		}
		oldSet[old] = struct{}{}
		newSet[new] = struct{}{}
	}
	return oldSet, newSet
}

func disjointSets[K comparable](a, b map[K]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return false
		}
	}
	return true
}

// relabelDisjointOrder returns the mapping's old labels, in the issuing
// graph's own node order where possible so the common case is
// deterministic; any mapping key absent from nodes (an error case) is
// appended last so the rewrite step still surfaces its lookup error.
func relabelDisjointOrder[K comparable](nodes []K, m map[K]K) []K {
	seen := make(map[K]struct{}, len(m))
	out := make([]K, 0, len(m))
	for _, n := range nodes {
		if new, ok := m[n]; ok && new != n {
			out = append(out, n)
			seen[n] = struct{}{}
		}
	}
	for old, new := range m {
		if old == new {
			continue
		}
		if _, ok := seen[old]; ok {
			continue
		}
		out = append(out, old)
	}
	return out
}

// orderNodesForIntegerLabels returns nodes reordered per ordering, the
// traversal order ConvertNodeLabelsToIntegers assigns first, first+1, ...
// along.
func orderNodesForIntegerLabels[K comparable](nodes []K, ordering LabelOrdering, less func(a, b K) bool, degreeOf func(K) (int, error)) ([]K, error) {
	out := make([]K, len(nodes))
	copy(out, nodes)

	switch ordering {
	case "", OrderingDefault:
		return out, nil

	case OrderingSorted:
		if less == nil {
			return nil, &MalformedInputError{Reason: "sorted ordering requires a less function over node keys"}
		}
		slices.SortStableFunc(out, func(a, b K) bool { return less(a, b) })
		return out, nil

	case OrderingIncreasingDegree, OrderingDecreasingDegree:
		degrees := make(map[K]int, len(nodes))
		for _, n := range nodes {
			d, err := degreeOf(n)
			if err != nil {
				return nil, err
			}
			degrees[n] = d
		}
		increasing := ordering == OrderingIncreasingDegree
		slices.SortStableFunc(out, func(a, b K) bool {
			if increasing {
				return degrees[a] < degrees[b]
			}
			return degrees[a] > degrees[b]
		})
		return out, nil

	default:
		return nil, &UnknownOrderingError{Ordering: string(ordering)}
	}
}

// relabelTopoOrder builds a throwaway digraph over the mapping's (old, new)
// pairs, excluding no-ops, and returns its topological order. A non-nil
// error means the mapping's induced digraph has a cycle beyond a bare
// self-loop, per spec.md §9's resolution of in-place relabel cycle
// detection: reuse topological sort rather than a bespoke cycle check.
func relabelTopoOrder[K comparable](m map[K]K) ([]K, error) {
	d := NewDiGraph[K]()
	for old, new := range m {
		if old == new {
			continue
		}
		d.AddEdge(old, new, nil)
	}
	return TopologicalSort(d)
}

func rewriteName(name string) string { return "(" + name + ")" }

// --- Graph ---

// RelabelGraph renames G's nodes per mapping (a map[K]K or a func(K) K). In
// copy mode (the default copy=true) it returns a new graph, leaving G
// untouched; in in-place mode it mutates and returns G itself, failing with
// a lookup error if a mapped node doesn't exist, or an infeasibility error
// if the mapping's induced cycle can't be processed safely.
func RelabelGraph[K comparable](g *Graph[K], mapping any, copy bool) (*Graph[K], error) {
	m, err := materializeMapping(g.Nodes(), mapping)
	if err != nil {
		return nil, err
	}
	if copy {
		return relabelGraphCopy(g, m), nil
	}
	if err := relabelGraphInPlace(g, m); err != nil {
		return nil, err
	}
	return g, nil
}

func relabelGraphCopy[K comparable](g *Graph[K], m map[K]K) *Graph[K] {
	newAttr := cloneAttrs(g.attr)
	newAttr[NameAttr] = rewriteName(g.Name())
	h := New[K](WithGraphAttr(newAttr))

	rewrite := func(n K) K {
		if nn, ok := m[n]; ok {
			return nn
		}
		return n
	}

	for _, e := range g.Edges() {
		h.AddEdge(rewrite(e.U), rewrite(e.V), cloneAttrs(e.Attr))
	}
	it := g.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		h.AddNode(rewrite(n), cloneAttrs(attr))
	}
	return h
}

func relabelGraphInPlace[K comparable](g *Graph[K], m map[K]K) error {
	oldSet, newSet := splitMapping(m)
	if disjointSets(oldSet, newSet) {
		for _, old := range relabelDisjointOrder(g.Nodes(), m) {
			if err := rewriteGraphNode(g, old, m[old]); err != nil {
				return err
			}
		}
		return nil
	}

	order, err := relabelTopoOrder(m)
	if err != nil {
		return err
	}
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if new, ok := m[n]; ok && new != n {
			if err := rewriteGraphNode(g, n, new); err != nil {
				return err
			}
		}
	}
	return nil
}

func rewriteGraphNode[K comparable](g *Graph[K], old, new K) error {
	if !g.HasNode(old) {
		return &NodeNotFoundError[K]{Hash: old}
	}
	oldAttr, _ := g.NodeAttr(old)
	g.AddNode(new, cloneAttrs(oldAttr))

	type incident struct {
		peer K
		attr AttrMap
	}
	var edges []incident
	neighbors, _ := g.Neighbors(old)
	for _, peer := range neighbors {
		edges = append(edges, incident{peer: peer, attr: g.GetEdgeData(old, peer, AttrMap{})})
	}

	_ = g.RemoveNode(old)

	for _, e := range edges {
		target := e.peer
		if target == old {
			target = new
		}
		g.AddEdge(new, target, e.attr)
	}
	return nil
}

// ConvertGraphNodeLabelsToIntegers builds a new int-keyed graph by assigning
// the integers first, first+1, ... to G's nodes in the given ordering,
// equivalent to a copy-mode relabel by the resulting mapping. When
// discardOld is false, the original node->integer mapping is attached to
// the result under OriginalLabelsAttr.
func ConvertGraphNodeLabelsToIntegers[K comparable](g *Graph[K], first int, ordering LabelOrdering, discardOld bool, less func(a, b K) bool) (*Graph[int], error) {
	ordered, err := orderNodesForIntegerLabels(g.Nodes(), ordering, less, g.Degree)
	if err != nil {
		return nil, err
	}

	mapping := make(map[K]int, len(ordered))
	original := make(map[int]K, len(ordered))
	for i, n := range ordered {
		label := first + i
		mapping[n] = label
		original[label] = n
	}

	newAttr := cloneAttrs(g.attr)
	newAttr[NameAttr] = g.Name() + "_with_int_labels"
	if !discardOld {
		newAttr[OriginalLabelsAttr] = original
	}

	h := New[int](WithGraphAttr(newAttr))
	for _, e := range g.Edges() {
		h.AddEdge(mapping[e.U], mapping[e.V], cloneAttrs(e.Attr))
	}
	it := g.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		h.AddNode(mapping[n], cloneAttrs(attr))
	}
	return h, nil
}

// --- DiGraph ---

// RelabelDiGraph is DiGraph's analogue of RelabelGraph.
func RelabelDiGraph[K comparable](d *DiGraph[K], mapping any, copy bool) (*DiGraph[K], error) {
	m, err := materializeMapping(d.Nodes(), mapping)
	if err != nil {
		return nil, err
	}
	if copy {
		return relabelDiGraphCopy(d, m), nil
	}
	if err := relabelDiGraphInPlace(d, m); err != nil {
		return nil, err
	}
	return d, nil
}

func relabelDiGraphCopy[K comparable](d *DiGraph[K], m map[K]K) *DiGraph[K] {
	newAttr := cloneAttrs(d.attr)
	newAttr[NameAttr] = rewriteName(d.Name())
	h := NewDiGraph[K](WithGraphAttr(newAttr))

	rewrite := func(n K) K {
		if nn, ok := m[n]; ok {
			return nn
		}
		return n
	}

	for _, e := range d.Edges() {
		h.AddEdge(rewrite(e.U), rewrite(e.V), cloneAttrs(e.Attr))
	}
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		h.AddNode(rewrite(n), cloneAttrs(attr))
	}
	return h
}

func relabelDiGraphInPlace[K comparable](d *DiGraph[K], m map[K]K) error {
	oldSet, newSet := splitMapping(m)
	if disjointSets(oldSet, newSet) {
		for _, old := range relabelDisjointOrder(d.Nodes(), m) {
			if err := rewriteDiGraphNode(d, old, m[old]); err != nil {
				return err
			}
		}
		return nil
	}

	order, err := relabelTopoOrder(m)
	if err != nil {
		return err
	}
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if new, ok := m[n]; ok && new != n {
			if err := rewriteDiGraphNode(d, n, new); err != nil {
				return err
			}
		}
	}
	return nil
}

func rewriteDiGraphNode[K comparable](d *DiGraph[K], old, new K) error {
	if !d.HasNode(old) {
		return &NodeNotFoundError[K]{Hash: old}
	}
	oldAttr, _ := d.NodeAttr(old)
	d.AddNode(new, cloneAttrs(oldAttr))

	outEdges, _ := d.OutEdges(old)
	inEdges, _ := d.InEdges(old)

	_ = d.RemoveNode(old)

	for _, e := range outEdges {
		target := e.V
		if target == old {
			target = new
		}
		d.AddEdge(new, target, e.Attr)
	}
	for _, e := range inEdges {
		if e.U == old {
			continue // self-loop already re-added via outEdges
		}
		d.AddEdge(e.U, new, e.Attr)
	}
	return nil
}

// ConvertDiGraphNodeLabelsToIntegers is DiGraph's analogue of
// ConvertGraphNodeLabelsToIntegers.
func ConvertDiGraphNodeLabelsToIntegers[K comparable](d *DiGraph[K], first int, ordering LabelOrdering, discardOld bool, less func(a, b K) bool) (*DiGraph[int], error) {
	ordered, err := orderNodesForIntegerLabels(d.Nodes(), ordering, less, d.Degree)
	if err != nil {
		return nil, err
	}

	mapping := make(map[K]int, len(ordered))
	original := make(map[int]K, len(ordered))
	for i, n := range ordered {
		label := first + i
		mapping[n] = label
		original[label] = n
	}

	newAttr := cloneAttrs(d.attr)
	newAttr[NameAttr] = d.Name() + "_with_int_labels"
	if !discardOld {
		newAttr[OriginalLabelsAttr] = original
	}

	h := NewDiGraph[int](WithGraphAttr(newAttr))
	for _, e := range d.Edges() {
		h.AddEdge(mapping[e.U], mapping[e.V], cloneAttrs(e.Attr))
	}
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		h.AddNode(mapping[n], cloneAttrs(attr))
	}
	return h, nil
}

// --- MultiGraph ---

// RelabelMultiGraph is MultiGraph's analogue of RelabelGraph; parallel-edge
// keys are preserved across the rewrite.
func RelabelMultiGraph[K comparable](g *MultiGraph[K], mapping any, copy bool) (*MultiGraph[K], error) {
	m, err := materializeMapping(g.Nodes(), mapping)
	if err != nil {
		return nil, err
	}
	if copy {
		return relabelMultiGraphCopy(g, m), nil
	}
	if err := relabelMultiGraphInPlace(g, m); err != nil {
		return nil, err
	}
	return g, nil
}

func relabelMultiGraphCopy[K comparable](g *MultiGraph[K], m map[K]K) *MultiGraph[K] {
	newAttr := cloneAttrs(g.attr)
	newAttr[NameAttr] = rewriteName(g.Name())
	h := NewMultiGraph[K](WithGraphAttr(newAttr))

	rewrite := func(n K) K {
		if nn, ok := m[n]; ok {
			return nn
		}
		return n
	}

	for _, e := range g.Edges() {
		h.AddEdge(rewrite(e.U), rewrite(e.V), e.Key, cloneAttrs(e.Attr))
	}
	it := g.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		h.AddNode(rewrite(n), cloneAttrs(attr))
	}
	return h
}

func relabelMultiGraphInPlace[K comparable](g *MultiGraph[K], m map[K]K) error {
	oldSet, newSet := splitMapping(m)
	if disjointSets(oldSet, newSet) {
		for _, old := range relabelDisjointOrder(g.Nodes(), m) {
			if err := rewriteMultiGraphNode(g, old, m[old]); err != nil {
				return err
			}
		}
		return nil
	}

	order, err := relabelTopoOrder(m)
	if err != nil {
		return err
	}
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if new, ok := m[n]; ok && new != n {
			if err := rewriteMultiGraphNode(g, n, new); err != nil {
				return err
			}
		}
	}
	return nil
}

func rewriteMultiGraphNode[K comparable](g *MultiGraph[K], old, new K) error {
	if !g.HasNode(old) {
		return &NodeNotFoundError[K]{Hash: old}
	}
	oldAttr, _ := g.NodeAttr(old)
	g.AddNode(new, cloneAttrs(oldAttr))

	type incident struct {
		peer     K
		key      any
		attr     AttrMap
		selfLoop bool
	}
	var edges []incident
	for _, e := range g.Edges() {
		switch {
		case e.U == old && e.V == old:
			edges = append(edges, incident{peer: old, key: e.Key, attr: e.Attr, selfLoop: true})
		case e.U == old:
			edges = append(edges, incident{peer: e.V, key: e.Key, attr: e.Attr})
		case e.V == old:
			edges = append(edges, incident{peer: e.U, key: e.Key, attr: e.Attr})
		}
	}

	_ = g.RemoveNode(old)

	for _, e := range edges {
		target := e.peer
		if e.selfLoop {
			target = new
		}
		g.AddEdge(new, target, e.key, e.attr)
	}
	return nil
}

// ConvertMultiGraphNodeLabelsToIntegers is MultiGraph's analogue of
// ConvertGraphNodeLabelsToIntegers.
func ConvertMultiGraphNodeLabelsToIntegers[K comparable](g *MultiGraph[K], first int, ordering LabelOrdering, discardOld bool, less func(a, b K) bool) (*MultiGraph[int], error) {
	ordered, err := orderNodesForIntegerLabels(g.Nodes(), ordering, less, g.Degree)
	if err != nil {
		return nil, err
	}

	mapping := make(map[K]int, len(ordered))
	original := make(map[int]K, len(ordered))
	for i, n := range ordered {
		label := first + i
		mapping[n] = label
		original[label] = n
	}

	newAttr := cloneAttrs(g.attr)
	newAttr[NameAttr] = g.Name() + "_with_int_labels"
	if !discardOld {
		newAttr[OriginalLabelsAttr] = original
	}

	h := NewMultiGraph[int](WithGraphAttr(newAttr))
	for _, e := range g.Edges() {
		h.AddEdge(mapping[e.U], mapping[e.V], e.Key, cloneAttrs(e.Attr))
	}
	it := g.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		h.AddNode(mapping[n], cloneAttrs(attr))
	}
	return h, nil
}

// --- MultiDiGraph ---

// RelabelMultiDiGraph is MultiDiGraph's analogue of RelabelGraph. In-place
// rewrite enumerates both in- and out-edges of the renamed node, preserving
// each edge's key, per spec.md §9's resolution for the directed-multi case.
func RelabelMultiDiGraph[K comparable](d *MultiDiGraph[K], mapping any, copy bool) (*MultiDiGraph[K], error) {
	m, err := materializeMapping(d.Nodes(), mapping)
	if err != nil {
		return nil, err
	}
	if copy {
		return relabelMultiDiGraphCopy(d, m), nil
	}
	if err := relabelMultiDiGraphInPlace(d, m); err != nil {
		return nil, err
	}
	return d, nil
}

func relabelMultiDiGraphCopy[K comparable](d *MultiDiGraph[K], m map[K]K) *MultiDiGraph[K] {
	newAttr := cloneAttrs(d.attr)
	newAttr[NameAttr] = rewriteName(d.Name())
	h := NewMultiDiGraph[K](WithGraphAttr(newAttr))

	rewrite := func(n K) K {
		if nn, ok := m[n]; ok {
			return nn
		}
		return n
	}

	for _, e := range d.Edges() {
		h.AddEdge(rewrite(e.U), rewrite(e.V), e.Key, cloneAttrs(e.Attr))
	}
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		h.AddNode(rewrite(n), cloneAttrs(attr))
	}
	return h
}

func relabelMultiDiGraphInPlace[K comparable](d *MultiDiGraph[K], m map[K]K) error {
	oldSet, newSet := splitMapping(m)
	if disjointSets(oldSet, newSet) {
		for _, old := range relabelDisjointOrder(d.Nodes(), m) {
			if err := rewriteMultiDiGraphNode(d, old, m[old]); err != nil {
				return err
			}
		}
		return nil
	}

	order, err := relabelTopoOrder(m)
	if err != nil {
		return err
	}
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if new, ok := m[n]; ok && new != n {
			if err := rewriteMultiDiGraphNode(d, n, new); err != nil {
				return err
			}
		}
	}
	return nil
}

func rewriteMultiDiGraphNode[K comparable](d *MultiDiGraph[K], old, new K) error {
	if !d.HasNode(old) {
		return &NodeNotFoundError[K]{Hash: old}
	}
	oldAttr, _ := d.NodeAttr(old)
	d.AddNode(new, cloneAttrs(oldAttr))

	var outEdges, inEdges []MultiSimpleEdge[K]
	for _, e := range d.Edges() {
		if e.U == old {
			outEdges = append(outEdges, e)
		} else if e.V == old {
			inEdges = append(inEdges, e)
		}
	}

	_ = d.RemoveNode(old)

	for _, e := range outEdges {
		target := e.V
		if target == old {
			target = new
		}
		d.AddEdge(new, target, e.Key, e.Attr)
	}
	for _, e := range inEdges {
		d.AddEdge(e.U, new, e.Key, e.Attr)
	}
	return nil
}

// ConvertMultiDiGraphNodeLabelsToIntegers is MultiDiGraph's analogue of
// ConvertGraphNodeLabelsToIntegers.
func ConvertMultiDiGraphNodeLabelsToIntegers[K comparable](d *MultiDiGraph[K], first int, ordering LabelOrdering, discardOld bool, less func(a, b K) bool) (*MultiDiGraph[int], error) {
	ordered, err := orderNodesForIntegerLabels(d.Nodes(), ordering, less, d.Degree)
	if err != nil {
		return nil, err
	}

	mapping := make(map[K]int, len(ordered))
	original := make(map[int]K, len(ordered))
	for i, n := range ordered {
		label := first + i
		mapping[n] = label
		original[label] = n
	}

	newAttr := cloneAttrs(d.attr)
	newAttr[NameAttr] = d.Name() + "_with_int_labels"
	if !discardOld {
		newAttr[OriginalLabelsAttr] = original
	}

	h := NewMultiDiGraph[int](WithGraphAttr(newAttr))
	for _, e := range d.Edges() {
		h.AddEdge(mapping[e.U], mapping[e.V], e.Key, cloneAttrs(e.Attr))
	}
	it := d.NodesIter()
	for {
		n, attr, ok, err := it.Next()
		if err != nil || !ok {
			break
		}
		h.AddNode(mapping[n], cloneAttrs(attr))
	}
	return h, nil
}
