package graph

import (
	"errors"
	"sort"
)

// TopologicalSort runs a topological sort on a directed graph and returns
// the node hashes in topological order: an edge from u to v implies u
// appears before v in the result. The order is not unique; if there are
// multiple valid orderings, an arbitrary one is returned. Use
// StableTopologicalSort for a deterministic tie-break.
//
// This implementation works non-recursively via Kahn's algorithm, operating
// directly on the succ/pred KeyedMaps rather than materializing an
// intermediate adjacency map.
func TopologicalSort[K comparable](d *DiGraph[K]) ([]K, error) {
	remaining := make(map[K]int, d.Order())
	for _, n := range d.Nodes() {
		indeg, err := d.InDegree(n)
		if err != nil {
			return nil, err
		}
		remaining[n] = indeg
	}

	queue := make([]K, 0)
	for _, n := range d.Nodes() {
		if remaining[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]K, 0, d.Order())
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		succs, err := d.Successors(current)
		if err != nil {
			return nil, err
		}
		for _, succ := range succs {
			remaining[succ]--
			if remaining[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != d.Order() {
		return nil, &RelabelCycleError{Cause: errors.New("topological sort cannot be computed on a graph with cycles")}
	}

	return order, nil
}

// StableTopologicalSort does the same as TopologicalSort, but breaks ties
// among simultaneously-ready nodes with less, giving a deterministic output
// even when the graph admits multiple valid orderings.
func StableTopologicalSort[K comparable](d *DiGraph[K], less func(a, b K) bool) ([]K, error) {
	remaining := make(map[K]int, d.Order())
	for _, n := range d.Nodes() {
		indeg, err := d.InDegree(n)
		if err != nil {
			return nil, err
		}
		remaining[n] = indeg
	}

	queue := make([]K, 0)
	for _, n := range d.Nodes() {
		if remaining[n] == 0 {
			queue = append(queue, n)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return less(queue[i], queue[j]) })

	order := make([]K, 0, d.Order())
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		succs, err := d.Successors(current)
		if err != nil {
			return nil, err
		}

		frontier := make([]K, 0)
		for _, succ := range succs {
			remaining[succ]--
			if remaining[succ] == 0 {
				frontier = append(frontier, succ)
			}
		}
		sort.Slice(frontier, func(i, j int) bool { return less(frontier[i], frontier[j]) })
		queue = append(queue, frontier...)
	}

	if len(order) != d.Order() {
		return nil, &RelabelCycleError{Cause: errors.New("topological sort cannot be computed on a graph with cycles")}
	}

	return order, nil
}
