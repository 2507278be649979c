package legalizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbalancer/internal/config"
	"github.com/vk/gridbalancer/internal/graph"
	"github.com/vk/gridbalancer/internal/opmodel"
)

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("builds graph and catalog", func(t *testing.T) {
		model := &config.Model{
			Device:   config.Device{Rows: 1, Cols: 2},
			Balancer: config.NewBalancer(),
			Ops: []*config.Op{
				{Name: "in", Kind: "input"},
				{Name: "mm", Kind: "compute", Operands: []string{"in"}, OpModels: []*config.OpModel{
					{GridR: 1, GridC: 2, T: 1, Cycles: 10, Classes: []string{"dense_matmul_prologue"}},
				}},
			},
		}

		g, cat, err := Build(ctx, model)
		require.NoError(t, err)
		assert.Equal(t, 2, g.Len())

		legal, err := cat.LegalOpModels(ctx, g, "mm", stateMap{})
		require.NoError(t, err)
		require.Len(t, legal, 1)
		assert.Equal(t, opmodel.DenseMatmulPrologue, legal[0].Classes)
	})

	t.Run("unknown operand", func(t *testing.T) {
		model := &config.Model{Ops: []*config.Op{
			{Name: "mm", Kind: "compute", Operands: []string{"ghost"}},
		}}
		_, _, err := Build(ctx, model)
		assert.ErrorIs(t, err, graph.ErrInvalidGraph)
		assert.ErrorContains(t, err, "op 'mm'")
	})

	t.Run("cycle", func(t *testing.T) {
		model := &config.Model{Ops: []*config.Op{
			{Name: "a", Kind: "compute", Operands: []string{"b"}},
			{Name: "b", Kind: "compute", Operands: []string{"a"}},
		}}
		_, _, err := Build(ctx, model)
		assert.ErrorIs(t, err, graph.ErrCycleDetected)
	})

	t.Run("unknown class", func(t *testing.T) {
		model := &config.Model{Ops: []*config.Op{
			{Name: "a", Kind: "compute", OpModels: []*config.OpModel{{GridR: 1, GridC: 1, T: 1, Classes: []string{"nope"}}}},
		}}
		_, _, err := Build(ctx, model)
		assert.ErrorContains(t, err, "unknown op model class")
	})
}
