package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithName_SetsNameAttr(t *testing.T) {
	g := New[string](WithName("social"))
	require.Equal(t, "social", g.Name())
}

func TestWithGraphAttr_ClonesInput(t *testing.T) {
	attr := AttrMap{"k": "v"}
	g := New[string](WithGraphAttr(attr))

	attr["k"] = "mutated"
	require.Equal(t, "v", g.Attr()["k"])
}

func TestMergeAttrs_NilDestinationAllocates(t *testing.T) {
	out := mergeAttrs(nil, AttrMap{"a": 1})
	require.Equal(t, AttrMap{"a": 1}, out)
}

func TestCloneAttrs_Independent(t *testing.T) {
	src := AttrMap{"a": 1}
	clone := cloneAttrs(src)
	clone["a"] = 2

	require.Equal(t, 1, src["a"])
}

func TestParseEdgeElements_AcceptsBothArities(t *testing.T) {
	parsed, err := parseEdgeElements[string]([]any{
		Edge2[string]{U: "A", V: "B"},
		Edge3[string]{U: "A", V: "C", Attr: AttrMap{"w": 1}},
	})
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	require.Equal(t, AttrMap{"w": 1}, parsed[1].Attr)
}

func TestParseEdgeElements_RejectsOtherArity(t *testing.T) {
	_, err := parseEdgeElements[string]([]any{42})
	require.ErrorIs(t, err, ErrMalformedInput)
}
