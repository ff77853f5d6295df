package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMap_SetGet(t *testing.T) {
	m := NewKeyedMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = m.Get("missing")
	require.False(t, ok)

	require.Equal(t, 3, m.GetOrDefault("c", 3))
}

func TestKeyedMap_SetOverwriteDoesNotReorderOrVersion(t *testing.T) {
	m := NewKeyedMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	before := m.version

	m.Set("a", 100)

	require.Equal(t, before, m.version)
	require.Equal(t, []string{"a", "b"}, m.Keys())
	v, _ := m.Get("a")
	require.Equal(t, 100, v)
}

func TestKeyedMap_InsertionOrder(t *testing.T) {
	m := NewKeyedMap[int, string]()
	m.Set(3, "c")
	m.Set(1, "a")
	m.Set(2, "b")

	require.Equal(t, []int{3, 1, 2}, m.Keys())
	require.Equal(t, []string{"c", "a", "b"}, m.Values())
}

func TestKeyedMap_Remove(t *testing.T) {
	m := NewKeyedMap[int, string]()
	m.Set(1, "a")
	m.Set(2, "b")
	m.Set(3, "c")

	require.True(t, m.Remove(2))
	require.False(t, m.Has(2))
	require.Equal(t, 2, m.Count())
	require.ElementsMatch(t, []int{1, 3}, m.Keys())

	require.False(t, m.Remove(2))
}

func TestKeyedMap_RemovePreservesInsertionOrder(t *testing.T) {
	m := NewKeyedMap[int, string]()
	m.Set(1, "a")
	m.Set(2, "b")
	m.Set(3, "c")
	m.Set(4, "d")

	require.True(t, m.Remove(2))
	require.Equal(t, []int{1, 3, 4}, m.Keys())
	require.Equal(t, []string{"a", "c", "d"}, m.Values())

	m.Set(5, "e")
	require.Equal(t, []int{1, 3, 4, 5}, m.Keys())
}

func TestKeyedMap_CloneIsIndependent(t *testing.T) {
	m := NewKeyedMap[string, int]()
	m.Set("a", 1)

	clone := m.Clone()
	clone.Set("b", 2)

	require.Equal(t, 1, m.Count())
	require.Equal(t, 2, clone.Count())
}

func TestKeyedMap_Clear(t *testing.T) {
	m := NewKeyedMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	m.Clear()

	require.Equal(t, 0, m.Count())
	require.False(t, m.Has("a"))
}

func TestKeyedMap_Entries(t *testing.T) {
	m := NewKeyedMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	require.Equal(t, []Entry[string, int]{{Key: "a", Value: 1}, {Key: "b", Value: 2}}, m.Entries())
}

func TestKeyedMap_IteratorWalksInOrder(t *testing.T) {
	m := NewKeyedMap[int, string]()
	m.Set(1, "a")
	m.Set(2, "b")
	m.Set(3, "c")

	it := m.Iter()
	var keys []int
	for {
		k, _, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, k)
	}
	require.Equal(t, []int{1, 2, 3}, keys)
}

func TestKeyedMap_IteratorFailsOnStructuralMutation(t *testing.T) {
	m := NewKeyedMap[int, string]()
	m.Set(1, "a")
	m.Set(2, "b")

	it := m.Iter()
	_, _, _, err := it.Next()
	require.NoError(t, err)

	m.Set(3, "c") // new key: structural mutation

	_, _, _, err = it.Next()
	require.ErrorIs(t, err, ErrMapChangedDuringIteration)
}

func TestKeyedMap_IteratorSurvivesValueOnlyMutation(t *testing.T) {
	m := NewKeyedMap[int, string]()
	m.Set(1, "a")
	m.Set(2, "b")

	it := m.Iter()
	m.Set(1, "overwritten") // not a structural mutation

	_, v, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "overwritten", v)
}

func TestKeyedMap_IteratorPartiallyConsumed(t *testing.T) {
	m := NewKeyedMap[int, string]()
	m.Set(1, "a")
	m.Set(2, "b")
	m.Set(3, "c")

	it := m.Iter()
	k, _, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, k)
	// it is fine to abandon the iterator without exhausting it.
}
