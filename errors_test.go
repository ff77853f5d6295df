package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorKinds_AreDiscriminableViaErrorsIs(t *testing.T) {
	var nodeErr error = &NodeNotFoundError[string]{Hash: "ghost"}
	var edgeErr error = &EdgeNotFoundError[string]{Source: "A", Target: "B"}
	var structuralErr error = &MalformedInputError{Reason: "bad shape"}
	var orderingErr error = &UnknownOrderingError{Ordering: "nonsense"}
	var cycleErr error = &RelabelCycleError{Cause: errors.New("cycle")}

	require.ErrorIs(t, nodeErr, ErrNodeNotFound)
	require.ErrorIs(t, edgeErr, ErrEdgeNotFound)
	require.ErrorIs(t, structuralErr, ErrMalformedInput)
	require.ErrorIs(t, orderingErr, ErrUnknownOrdering)
	require.ErrorIs(t, cycleErr, ErrRelabelCycle)

	// cross-kind checks must fail.
	require.NotErrorIs(t, nodeErr, ErrEdgeNotFound)
	require.NotErrorIs(t, structuralErr, ErrRelabelCycle)
}

func TestEdgeNotFoundError_MessageIncludesKeyWhenScoped(t *testing.T) {
	withKey := &EdgeNotFoundError[string]{Source: "A", Target: "B", Key: "k1"}
	withoutKey := &EdgeNotFoundError[string]{Source: "A", Target: "B"}

	require.Contains(t, withKey.Error(), "k1")
	require.NotContains(t, withoutKey.Error(), "key")
}
