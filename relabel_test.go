package graph

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func pawGraph(t *testing.T) *Graph[string] {
	t.Helper()
	g := New[string]()
	err := g.AddEdgesFrom([]any{
		Edge2[string]{U: "A", V: "B"},
		Edge2[string]{U: "A", V: "C"},
		Edge2[string]{U: "B", V: "C"},
		Edge2[string]{U: "C", V: "D"},
	}, nil)
	require.NoError(t, err)
	return g
}

func TestRelabelGraph_CopyMode_Scenario(t *testing.T) {
	// spec.md §8 scenario 2.
	g := pawGraph(t)
	mapping := map[string]string{"A": "aardvark", "B": "bear", "C": "cat", "D": "dog"}

	h, err := RelabelGraph(g, mapping, true)
	require.NoError(t, err)

	nodes := h.Nodes()
	sort.Strings(nodes)
	require.Equal(t, []string{"aardvark", "bear", "cat", "dog"}, nodes)
	require.True(t, h.HasEdge("aardvark", "bear"))
	require.True(t, h.HasEdge("cat", "dog"))

	// original untouched.
	require.True(t, g.HasNode("A"))
}

func TestRelabelGraph_CopyMode_WrapsNameInParens(t *testing.T) {
	g := New[string](WithName("social"))
	g.AddNode("A", nil)

	h, err := RelabelGraph(g, map[string]string{"A": "B"}, true)
	require.NoError(t, err)
	require.Equal(t, "(social)", h.Name())
}

func TestRelabelGraph_ByFunction_Scenario(t *testing.T) {
	// spec.md §8 scenario 3: relabeling by a function "n -> charCode(n)". The
	// function is pre-materialized into a map[K]K, so it stays within a
	// single node type; this exercises the func(K) K branch directly rather
	// than the shape of ConvertNodeLabelsToIntegers, which is scenario 6.
	g := New[int]()
	err := g.AddEdgesFrom([]any{
		Edge2[int]{U: 65, V: 66},
		Edge2[int]{U: 65, V: 67},
		Edge2[int]{U: 66, V: 67},
		Edge2[int]{U: 67, V: 68},
	}, nil)
	require.NoError(t, err)

	doubled := func(n int) int { return n * 2 }
	h, err := RelabelGraph(g, doubled, true)
	require.NoError(t, err)

	nodes := h.Nodes()
	sort.Ints(nodes)
	require.Equal(t, []int{130, 132, 134, 136}, nodes)
	require.True(t, h.HasEdge(130, 132))
}

func TestRelabelMultiGraph_InPlace_Scenario(t *testing.T) {
	// spec.md §8 scenario 4.
	g, err := NewMultiGraphFromEdges[string]([]any{
		MultiEdge3[string]{U: "a", V: "b"},
		MultiEdge3[string]{U: "a", V: "b"},
	})
	require.NoError(t, err)

	mapping := map[string]string{"a": "aardvark", "b": "bear"}
	h, err := RelabelMultiGraph(g, mapping, false)
	require.NoError(t, err)
	require.Same(t, g, h)

	nodes := h.Nodes()
	sort.Strings(nodes)
	require.Equal(t, []string{"aardvark", "bear"}, nodes)
	require.Equal(t, 2, h.NumberOfEdges("aardvark", "bear"))
}

func TestRelabelGraph_InPlace_MissingNodeIsLookupError(t *testing.T) {
	// spec.md §8 scenario 5.
	g := pawGraph(t)
	mapping := map[string]string{"0": "aardvark"}

	_, err := RelabelGraph(g, mapping, false)
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestRelabelGraph_InPlace_DisjointLabelsRewriteInAnyOrder(t *testing.T) {
	g := New[string]()
	g.AddEdge("A", "B", AttrMap{"w": 1})

	h, err := RelabelGraph(g, map[string]string{"A": "X", "B": "Y"}, false)
	require.NoError(t, err)
	require.Same(t, g, h)
	require.True(t, h.HasEdge("X", "Y"))
	require.Equal(t, 1, h.GetEdgeData("X", "Y", nil)["w"])
}

func TestRelabelGraph_InPlace_OverlappingLabelsUseTopologicalOrder(t *testing.T) {
	// A chain rename A->B->C->D: processing in forward order would have the
	// A->B rewrite collide with the not-yet-renamed original B.
	g := New[string]()
	g.AddEdge("A", "Z", nil)
	g.AddEdge("B", "Z", nil)
	g.AddEdge("C", "Z", nil)

	mapping := map[string]string{"A": "B", "B": "C", "C": "D"}
	h, err := RelabelGraph(g, mapping, false)
	require.NoError(t, err)

	require.False(t, h.HasNode("A"))
	require.True(t, h.HasNode("B"))
	require.True(t, h.HasNode("C"))
	require.True(t, h.HasNode("D"))
	// every original edge to Z survives under its new source name.
	require.True(t, h.HasEdge("B", "Z"))
	require.True(t, h.HasEdge("C", "Z"))
	require.True(t, h.HasEdge("D", "Z"))
}

func TestRelabelGraph_InPlace_CyclicMappingFails(t *testing.T) {
	g := New[string]()
	g.AddNode("A", nil)
	g.AddNode("B", nil)

	mapping := map[string]string{"A": "B", "B": "A"}
	_, err := RelabelGraph(g, mapping, false)
	require.ErrorIs(t, err, ErrRelabelCycle)
}

func TestRelabelGraph_Identity_ProducesEqualGraph(t *testing.T) {
	g := pawGraph(t)
	identity := func(n string) string { return n }

	h, err := RelabelGraph(g, identity, true)
	require.NoError(t, err)

	require.ElementsMatch(t, g.Nodes(), h.Nodes())
	require.ElementsMatch(t, g.Edges(), h.Edges())
}

func TestRelabelGraph_BijectionRoundTrip(t *testing.T) {
	g := pawGraph(t)
	fwd := map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"}
	bwd := map[string]string{"1": "A", "2": "B", "3": "C", "4": "D"}

	once, err := RelabelGraph(g, fwd, true)
	require.NoError(t, err)
	twice, err := RelabelGraph(once, bwd, true)
	require.NoError(t, err)

	require.ElementsMatch(t, g.Nodes(), twice.Nodes())
	for _, e := range g.Edges() {
		require.True(t, twice.HasEdge(e.U, e.V))
	}
}

func TestConvertGraphNodeLabelsToIntegers_ProducesContiguousRange(t *testing.T) {
	g := pawGraph(t)

	h, err := ConvertGraphNodeLabelsToIntegers(g, 10, OrderingDefault, true, nil)
	require.NoError(t, err)

	nodes := h.Nodes()
	sort.Ints(nodes)
	require.Equal(t, []int{10, 11, 12, 13}, nodes)
}

func TestConvertGraphNodeLabelsToIntegers_IncreasingDegreeScenario(t *testing.T) {
	// spec.md §8 scenario 6: paw graph, increasing-degree ordering.
	// Degrees: A=2, B=2, C=3, D=1.
	g := pawGraph(t)

	h, err := ConvertGraphNodeLabelsToIntegers(g, 0, OrderingIncreasingDegree, true, nil)
	require.NoError(t, err)

	deg0, err := h.Degree(0)
	require.NoError(t, err)
	deg1, err := h.Degree(1)
	require.NoError(t, err)
	deg2, err := h.Degree(2)
	require.NoError(t, err)
	deg3, err := h.Degree(3)
	require.NoError(t, err)

	require.Equal(t, 1, deg0)
	require.Equal(t, 2, deg1)
	require.Equal(t, 2, deg2)
	require.Equal(t, 3, deg3)
}

func TestConvertGraphNodeLabelsToIntegers_RetainsOriginalMappingWhenNotDiscarded(t *testing.T) {
	g := pawGraph(t)

	h, err := ConvertGraphNodeLabelsToIntegers(g, 0, OrderingDefault, false, nil)
	require.NoError(t, err)

	original, ok := h.Attr()[OriginalLabelsAttr]
	require.True(t, ok)
	require.NotNil(t, original)
}

func TestConvertGraphNodeLabelsToIntegers_NameGetsSuffixed(t *testing.T) {
	g := New[string](WithName("social"))
	g.AddNode("A", nil)

	h, err := ConvertGraphNodeLabelsToIntegers(g, 0, OrderingDefault, true, nil)
	require.NoError(t, err)
	require.Equal(t, "social_with_int_labels", h.Name())
}

func TestConvertGraphNodeLabelsToIntegers_UnknownOrderingIsStructuralError(t *testing.T) {
	g := pawGraph(t)
	_, err := ConvertGraphNodeLabelsToIntegers(g, 0, LabelOrdering("bogus"), true, nil)
	require.ErrorIs(t, err, ErrUnknownOrdering)
}

func TestConvertGraphNodeLabelsToIntegers_SortedOrderingNeedsLess(t *testing.T) {
	g := pawGraph(t)
	_, err := ConvertGraphNodeLabelsToIntegers(g, 0, OrderingSorted, true, nil)
	require.ErrorIs(t, err, ErrMalformedInput)

	h, err := ConvertGraphNodeLabelsToIntegers(g, 0, OrderingSorted, true, func(a, b string) bool { return a < b })
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3}, h.Nodes())
}

func TestRelabelDiGraph_InPlace_PreservesDirection(t *testing.T) {
	d := NewDiGraph[string]()
	d.AddEdge("A", "B", AttrMap{"w": 1})
	d.AddEdge("B", "C", nil)

	h, err := RelabelDiGraph(d, map[string]string{"A": "X"}, false)
	require.NoError(t, err)

	require.True(t, h.HasEdge("X", "B"))
	require.False(t, h.HasEdge("B", "X"))
}

func TestRelabelDiGraph_InPlace_SelfLoopPreserved(t *testing.T) {
	d := NewDiGraph[string]()
	d.AddEdge("A", "A", AttrMap{"w": 1})

	h, err := RelabelDiGraph(d, map[string]string{"A": "B"}, false)
	require.NoError(t, err)

	require.True(t, h.HasEdge("B", "B"))
	require.False(t, h.HasNode("A"))
}

func TestRelabelMultiDiGraph_InPlace_PreservesKeysBothDirections(t *testing.T) {
	d := NewMultiDiGraph[string]()
	d.AddEdge("A", "B", "k1", nil)
	d.AddEdge("C", "A", "k2", nil)

	h, err := RelabelMultiDiGraph(d, map[string]string{"A": "X"}, false)
	require.NoError(t, err)

	require.True(t, h.HasEdge("X", "B", "k1"))
	require.True(t, h.HasEdge("C", "X", "k2"))
}

func TestMaterializeMapping_RejectsUnknownShape(t *testing.T) {
	_, err := materializeMapping([]string{"A"}, 42)
	require.ErrorIs(t, err, ErrMalformedInput)
}
