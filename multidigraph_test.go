package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiDiGraph_AddEdge_AutoAssignsSmallestFreeKey(t *testing.T) {
	d := NewMultiDiGraph[string]()
	k0 := d.AddEdge("A", "B", nil, nil)
	k1 := d.AddEdge("A", "B", nil, nil)

	require.Equal(t, 0, k0)
	require.Equal(t, 1, k1)
	require.Equal(t, 2, d.NumberOfEdges("A", "B"))
}

func TestMultiDiGraph_MirrorsSuccPredAcrossKeys(t *testing.T) {
	d := NewMultiDiGraph[string]()
	d.AddEdge("A", "B", "k1", nil)
	d.AddEdge("A", "B", "k2", nil)

	require.True(t, d.HasEdge("A", "B", "k1"))
	require.False(t, d.HasEdge("B", "A", "k1"))

	preds, err := d.Predecessors("B")
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, preds)
}

func TestMultiDiGraph_RemoveNode_CascadesBothDirections(t *testing.T) {
	d := NewMultiDiGraph[string]()
	d.AddEdge("A", "B", "k1", nil)
	d.AddEdge("C", "A", "k2", nil)

	require.NoError(t, d.RemoveNode("A"))

	require.False(t, d.HasNode("A"))
	require.Equal(t, 0, d.NumberOfEdges("A", "B"))
	require.Equal(t, 0, d.NumberOfEdges("C", "A"))
}

func TestMultiDiGraph_InOutDegreeAcrossParallelEdges(t *testing.T) {
	d := NewMultiDiGraph[string]()
	d.AddEdge("A", "B", "k1", nil)
	d.AddEdge("A", "B", "k2", nil)
	d.AddEdge("C", "A", "k3", nil)

	out, err := d.OutDegree("A")
	require.NoError(t, err)
	require.Equal(t, 2, out)

	in, err := d.InDegree("A")
	require.NoError(t, err)
	require.Equal(t, 1, in)
}

func TestMultiDiGraph_OutEdgesIterInEdgesIter(t *testing.T) {
	d := NewMultiDiGraph[string]()
	d.AddEdge("A", "B", "k1", nil)
	d.AddEdge("A", "B", "k2", nil)
	d.AddEdge("X", "A", "k3", nil)

	outIt, err := d.OutEdgesIter("A")
	require.NoError(t, err)
	var outEdges []MultiSimpleEdge[string]
	for {
		e, ok, err := outIt.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		outEdges = append(outEdges, e)
	}
	require.Len(t, outEdges, 2)

	inIt, err := d.InEdgesIter("A")
	require.NoError(t, err)
	e, ok, err := inIt.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "X", e.U)
}

func TestMultiDiGraph_ToUndirected_Reciprocal(t *testing.T) {
	d := NewMultiDiGraph[string]()
	d.AddEdge("A", "B", "k1", nil)
	d.AddEdge("B", "A", "k1", nil)
	d.AddEdge("B", "C", "k2", nil)

	u := d.ToUndirected(true)
	require.True(t, u.HasEdge("A", "B", "k1"))
	require.False(t, u.HasEdge("B", "C", nil))
}

func TestMultiDiGraph_Reverse_PreservesKeys(t *testing.T) {
	d := NewMultiDiGraph[string]()
	d.AddEdge("A", "B", "k1", AttrMap{"w": 1})

	r := d.Reverse(true)
	require.True(t, r.HasEdge("B", "A", "k1"))
}

func TestMultiDiGraph_Subgraph_ReMirrorsBothDirections(t *testing.T) {
	d := NewMultiDiGraph[string]()
	d.AddEdge("A", "B", "k1", nil)
	d.AddEdge("B", "C", "k2", nil)

	sub := d.Subgraph([]string{"A", "B"})
	require.True(t, sub.HasEdge("A", "B", "k1"))
	preds, err := sub.Predecessors("B")
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, preds)
}

func TestMultiDiGraph_SelfLoop(t *testing.T) {
	d := NewMultiDiGraph[string]()
	d.AddEdge("A", "A", nil, nil)

	require.Equal(t, []string{"A"}, d.NodesWithSelfloops())
	require.Len(t, d.SelfloopEdges(), 1)
}
