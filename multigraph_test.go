package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiGraph_AddEdge_AutoAssignsSmallestFreeKey(t *testing.T) {
	g := NewMultiGraph[string]()
	k0 := g.AddEdge("A", "B", nil, nil)
	k1 := g.AddEdge("A", "B", nil, nil)

	require.Equal(t, 0, k0)
	require.Equal(t, 1, k1)
	require.Equal(t, 2, g.NumberOfEdges("A", "B"))
}

func TestMultiGraph_AddEdge_ReusesFreedKey(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "B", 0, nil)
	g.AddEdge("A", "B", 1, nil)

	require.NoError(t, g.RemoveEdge("A", "B", 0))

	k := g.AddEdge("A", "B", nil, nil)
	require.Equal(t, 0, k)
}

func TestMultiGraph_AddEdge_ExplicitKeyMerges(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "B", "e1", AttrMap{"w": 1})
	g.AddEdge("A", "B", "e1", AttrMap{"color": "red"})

	attr := g.GetEdgeData("A", "B", "e1", nil)
	require.Equal(t, AttrMap{"w": 1, "color": "red"}, attr)
	require.Equal(t, 1, g.NumberOfEdges("A", "B"))
}

func TestMultiGraph_ParallelEdgesScenario(t *testing.T) {
	// spec.md §8 scenario 4 (copy-mode half): edge list [[a,b],[a,b]].
	g, err := NewMultiGraphFromEdges[string]([]any{
		MultiEdge3[string]{U: "a", V: "b"},
		MultiEdge3[string]{U: "a", V: "b"},
	})
	require.NoError(t, err)

	require.Equal(t, 2, g.NumberOfEdges("a", "b"))
	require.Equal(t, 2, g.Size())
}

func TestMultiGraph_RemoveEdge_DeletesEntryWhenLastKeyGone(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "B", "only", nil)

	require.NoError(t, g.RemoveEdge("A", "B", "only"))

	require.False(t, g.HasEdge("A", "B", nil))
	require.True(t, g.HasNode("A")) // RemoveEdge never removes nodes
	require.False(t, g.adjHasEntry("A", "B"))
	require.False(t, g.adjHasEntry("B", "A"))
}

// adjHasEntry is a small test helper reaching into the unexported adjacency
// map to confirm the (u,v) entry itself, not just a specific key, is gone.
func (g *MultiGraph[K]) adjHasEntry(u, v K) bool {
	uAdj, ok := g.adj.Get(u)
	if !ok {
		return false
	}
	return uAdj.Has(v)
}

func TestMultiGraph_RemoveEdge_UnknownKeyIsLookupError(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "B", "e1", nil)

	err := g.RemoveEdge("A", "B", "nope")
	require.ErrorIs(t, err, ErrEdgeNotFound)
}

func TestMultiGraph_KeyMapNeverEmptyInvariant(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "B", "k1", nil)
	g.AddEdge("A", "B", "k2", nil)

	require.NoError(t, g.RemoveEdge("A", "B", "k1"))
	require.True(t, g.HasEdge("A", "B", nil)) // still one left

	require.NoError(t, g.RemoveEdge("A", "B", "k2"))
	require.False(t, g.adjHasEntry("A", "B"))
	require.False(t, g.adjHasEntry("B", "A"))
}

func TestMultiGraph_SelfLoop_CountsTwiceInDegree(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "A", nil, nil)

	degree, err := g.Degree("A")
	require.NoError(t, err)
	require.Equal(t, 2, degree)
}

func TestMultiGraph_EdgesIter_YieldsEachParallelEdgeOnce(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "B", nil, nil)
	g.AddEdge("A", "B", nil, nil)
	g.AddEdge("B", "C", nil, nil)

	edges := g.Edges()
	require.Len(t, edges, 3)
}

func TestMultiGraph_Clone_PreservesKeys(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "B", "k1", AttrMap{"w": 1})
	g.AddEdge("A", "B", "k2", nil)

	clone := g.Clone()
	require.Equal(t, 2, clone.NumberOfEdges("A", "B"))

	clone.GetEdgeData("A", "B", "k1", nil)["w"] = 99
	require.Equal(t, 1, g.GetEdgeData("A", "B", "k1", nil)["w"])
}

func TestMultiGraph_ToDirected(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "B", "k1", nil)

	d := g.ToDirected()
	require.True(t, d.HasEdge("A", "B", "k1"))
	require.True(t, d.HasEdge("B", "A", "k1"))
}

func TestMultiGraph_Subgraph_SharesKeyMaps(t *testing.T) {
	g := NewMultiGraph[string]()
	g.AddEdge("A", "B", "k1", AttrMap{"w": 1})
	g.AddEdge("B", "C", "k2", nil)

	sub := g.Subgraph([]string{"A", "B"})
	require.True(t, sub.HasEdge("A", "B", "k1"))
	require.False(t, sub.HasEdge("B", "C", nil))
}
