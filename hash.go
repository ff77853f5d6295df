package graph

import (
	"fmt"
	"sync"
)

// Hash is a hashing function that takes a node of type T and returns a hash value of type K.
//
// The graph types are keyed directly by a comparable K and hold no hashing function of their
// own. A Hash is a helper for projecting a richer value T down to the K a graph is keyed by,
// before calling AddNode or AddEdge. You can either use one of the predefined hashing
// functions or provide your own:
//
//	cityHash := func(c City) string {
//		return c.Name
//	}
//
// The K returned by the hashing function is the K of the graph the projected keys go into.
type Hash[K comparable, T any] func(T) K

// StringHash is a hashing function that accepts a string and returns that string as a hash value
// at the same time.
func StringHash(v string) string {
	return v
}

// IntHash is a hashing function that accepts a int and returns that int as a hash value at the
// same time.
func IntHash(v int) int {
	return v
}

// Int32Hash is a hashing function that accepts a int32 and returns that int32 as a hash value at
// the same time.
func Int32Hash(v int32) int32 {
	return v
}

// Int64Hash is a hashing function that accepts a int64 and returns that int64 as a hash value at
// the same time.
func Int64Hash(v int64) int64 {
	return v
}

// Uint32Hash is a hashing function that accepts a uint32 and returns that uint32 as a hash value
// at the same time.
func Uint32Hash(v uint32) uint32 {
	return v
}

// Uint64Hash is a hashing function that accepts a uint64 and returns that uint64 as a hash value
// at the same time.
func Uint64Hash(v uint64) uint64 {
	return v
}

// Identity is a hashing function for graphs where the node value already is
// its own hash (T == K), the common case for any comparable node type that
// isn't wrapped in a richer record.
func Identity[K comparable](v K) K {
	return v
}

// StructHash builds a hashing function for structural node records: two
// values with the same fields in the same order hash identically, giving
// the "structural equality" policy spec.md §3/§4.1 describes, rendered as a
// stable string encoding rather than a field-walking equals method.
//
// StructHash is appropriate when T has no natural comparable projection of
// its own; for anything that already has one (an ID field, a name), prefer
// a hash function that returns that field directly.
func StructHash[T any]() Hash[string, T] {
	return func(v T) string {
		return fmt.Sprintf("%#v", v)
	}
}

// IdentityHash returns a hashing function implementing the "identity"
// policy for pointer-shaped node records: two distinct *T values hash
// differently even if their contents are equal, and the same *T always
// hashes the same way. This is the fallback spec.md §3 describes for
// structural records with no natural key: a stable unique id minted the
// first time a given pointer is seen.
//
// The returned function is stateful and must not be shared between graphs
// that should assign independent identities to the same pointer.
func IdentityHash[T any]() Hash[uintptr, *T] {
	var (
		mu     sync.Mutex
		ids    = make(map[*T]uintptr)
		nextID uintptr
	)

	return func(v *T) uintptr {
		mu.Lock()
		defer mu.Unlock()

		if id, ok := ids[v]; ok {
			return id
		}

		nextID++
		ids[v] = nextID
		return nextID
	}
}
