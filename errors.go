package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below wraps exactly one of these, so
// callers can discriminate error kinds with errors.Is without caring about
// the concrete type — the same shape as the teacher's ErrVertexNotFound /
// ErrEdgeAlreadyExists / Unwrap pattern.
var (
	// ErrNodeNotFound and ErrEdgeNotFound signal a lookup error: the caller
	// referenced a node or edge that does not exist.
	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrMalformedInput signals a structural error: the shape of the
	// caller's input (an edge tuple's arity, an attribute argument's type,
	// a missing weight) doesn't match what the operation expects.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnknownOrdering signals that ConvertNodeLabelsToIntegers was asked
	// for an ordering it doesn't implement.
	ErrUnknownOrdering = errors.New("unknown ordering")

	// ErrRelabelCycle signals an infeasibility error: in-place relabeling
	// cannot proceed because the mapping's induced digraph contains a cycle
	// after self-loops are discounted.
	ErrRelabelCycle = errors.New("relabel mapping induces a cycle; use copy mode")

	// ErrMapChangedDuringIteration is returned by a KeyedMapIterator whose
	// underlying map was mutated since the iterator was created.
	ErrMapChangedDuringIteration = errors.New("map changed during iteration")
)

// NodeNotFoundError reports that a node referenced by its hash is absent
// from the graph.
type NodeNotFoundError[K comparable] struct {
	Hash K
}

func (e *NodeNotFoundError[K]) Error() string {
	return fmt.Sprintf("node %v not found", e.Hash)
}

func (e *NodeNotFoundError[K]) Unwrap() error { return ErrNodeNotFound }

// EdgeNotFoundError reports that no edge joins the given source and target,
// optionally scoped to a specific multigraph edge key.
type EdgeNotFoundError[K comparable] struct {
	Source, Target K
	Key            any
}

func (e *EdgeNotFoundError[K]) Error() string {
	if e.Key != nil {
		return fmt.Sprintf("edge %v -> %v (key %v) not found", e.Source, e.Target, e.Key)
	}
	return fmt.Sprintf("edge %v -> %v not found", e.Source, e.Target)
}

func (e *EdgeNotFoundError[K]) Unwrap() error { return ErrEdgeNotFound }

// MalformedInputError reports that an operation received input whose shape
// it cannot process, e.g. an edge tuple of the wrong arity.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

// UnknownOrderingError reports that ConvertNodeLabelsToIntegers was called
// with an ordering name it does not recognize.
type UnknownOrderingError struct {
	Ordering string
}

func (e *UnknownOrderingError) Error() string {
	return fmt.Sprintf("unknown ordering %q", e.Ordering)
}

func (e *UnknownOrderingError) Unwrap() error { return ErrUnknownOrdering }

// RelabelCycleError reports that in-place relabeling failed because the
// mapping's induced digraph has a cycle that isn't just a self-loop.
type RelabelCycleError struct {
	Cause error
}

func (e *RelabelCycleError) Error() string {
	return fmt.Sprintf("cannot relabel in place: %v", ErrRelabelCycle)
}

func (e *RelabelCycleError) Unwrap() error { return ErrRelabelCycle }
