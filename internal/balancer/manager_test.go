package balancer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbalancer/internal/graph"
	"github.com/vk/gridbalancer/internal/opmodel"
	"github.com/vk/gridbalancer/internal/placer"
	"github.com/vk/gridbalancer/internal/testutil"
)

func newManager(t *testing.T, f testutil.Fixture, rows, cols int) *PolicyManager {
	t.Helper()
	return NewPolicyManager(f.Graph, DefaultConfig(placer.Grid{Rows: rows, Cols: cols}), f.Catalog)
}

func nextOp(t *testing.T, pm *PolicyManager) graph.Node {
	t.Helper()
	n, ok, err := pm.NextOp()
	require.NoError(t, err)
	require.True(t, ok)
	return n
}

func legalFor(t *testing.T, pm *PolicyManager, n graph.Node) []opmodel.OpModel {
	t.Helper()
	legal, err := pm.LegalOpModels(context.Background(), n)
	require.NoError(t, err)
	require.NotEmpty(t, legal)
	return legal
}

func TestPolicyManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := testutil.Chain(t, []string{"a", "b", "c"}, testutil.M(1, 1, 2, 100))
	pm := newManager(t, f, 1, 2)

	assert.Equal(t, Scheduling, pm.State())
	assert.Equal(t, 2, pm.Capacity())
	assert.Equal(t, 0, pm.CurrentRibbonSize())

	a := nextOp(t, pm)
	assert.Equal(t, "a", a.ID)
	res, err := pm.Commit(ctx, a, legalFor(t, pm, a)[0])
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.False(t, res.EpochCompleted)
	assert.Equal(t, 2, pm.CurrentRibbonSize())
	assert.Equal(t, 1, pm.Remaining())

	b := nextOp(t, pm)
	assert.Equal(t, "b", b.ID)
	res, err = pm.Commit(ctx, b, legalFor(t, pm, b)[0])
	require.NoError(t, err)
	assert.True(t, res.EpochCompleted)
	assert.Equal(t, EpochFull, pm.State())

	t.Run("full epoch blocks NextOp and Commit", func(t *testing.T) {
		_, _, err := pm.NextOp()
		assert.ErrorIs(t, err, ErrInvalidState)
		_, err = pm.Commit(ctx, b, legalFor(t, pm, b)[0])
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	require.NoError(t, pm.FinishCurrentEpoch(ctx))
	assert.Equal(t, Scheduling, pm.State())
	assert.Equal(t, 0, pm.CurrentRibbonSize(), "ribbon size resets with the epoch")
	assert.Equal(t, 2, pm.Remaining())

	_, err = pm.AssembleSolution(ctx, placer.Linear{})
	assert.ErrorIs(t, err, ErrInvalidState, "cannot assemble before every node is committed")

	c := nextOp(t, pm)
	res, err = pm.Commit(ctx, c, legalFor(t, pm, c)[0])
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.False(t, res.EpochCompleted)

	_, ok, err := pm.NextOp()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Done, pm.State())
	assert.ErrorIs(t, pm.FinishCurrentEpoch(ctx), ErrInvalidState)

	sol, err := pm.AssembleSolution(ctx, placer.Linear{})
	require.NoError(t, err)
	require.Len(t, sol.Epochs, 2)
	assert.Len(t, sol.Epochs[0].Commitments, 2)
	assert.Len(t, sol.Epochs[1].Commitments, 1, "pending epoch is finalized on assembly")
	assert.Equal(t, 200, sol.TotalCycles())
	assert.Len(t, sol.Placement.Placements, 3)
}

func TestPolicyManager_CommitRejections(t *testing.T) {
	ctx := context.Background()
	f := testutil.Build(t,
		testutil.Op{ID: "a", Models: []opmodel.OpModel{testutil.M(1, 1, 1, 10), testutil.M(2, 2, 1, 5)}},
		testutil.Op{ID: "b", Operands: []string{"a"}, Models: []opmodel.OpModel{testutil.M(1, 1, 1, 10)}},
	)
	pm := newManager(t, f, 1, 3)
	a := nextOp(t, pm)

	t.Run("wrong node is a state error", func(t *testing.T) {
		_, err := pm.Commit(ctx, graph.Node{ID: "b", Kind: graph.KindCompute}, opmodel.OpModel{NodeID: "b"})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("foreign op model is rejected", func(t *testing.T) {
		res, err := pm.Commit(ctx, a, opmodel.OpModel{NodeID: "b", GridR: 1, GridC: 1, T: 1, Cycles: 10})
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Diagnostic, "belongs to 'b'")
	})

	t.Run("op model outside the legal set is rejected", func(t *testing.T) {
		res, err := pm.Commit(ctx, a, opmodel.OpModel{NodeID: "a", GridR: 1, GridC: 1, T: 8, Cycles: 1})
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Diagnostic, "not in the current legal set")
	})

	t.Run("oversize op model is rejected without side effects", func(t *testing.T) {
		legal := legalFor(t, pm, a)
		res, err := pm.Commit(ctx, a, legal[1])
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Contains(t, res.Diagnostic, "exceeds remaining capacity")
		assert.True(t, pm.EpochEmpty())
		assert.Equal(t, 3, pm.Remaining())
		_, committed := pm.Committed("a")
		assert.False(t, committed)
	})
}

func TestPolicyManager_EpochCompletesWhenNextNodeCannotFit(t *testing.T) {
	ctx := context.Background()
	f := testutil.Build(t,
		testutil.Op{ID: "a", Models: []opmodel.OpModel{testutil.M(1, 2, 1, 10)}},
		testutil.Op{ID: "b", Operands: []string{"a"}, Models: []opmodel.OpModel{testutil.M(1, 2, 1, 10)}},
	)
	pm := newManager(t, f, 1, 3)

	a := nextOp(t, pm)
	res, err := pm.Commit(ctx, a, legalFor(t, pm, a)[0])
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.True(t, res.EpochCompleted, "one core left and b needs two")
}
