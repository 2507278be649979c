package placer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinear_Place(t *testing.T) {
	ctx := context.Background()
	grid := Grid{Rows: 2, Cols: 3}

	t.Run("packs each epoch from core zero", func(t *testing.T) {
		sol, err := Linear{}.Place(ctx, grid, [][]Request{
			{{NodeID: "a", Cores: 2}, {NodeID: "b", Cores: 3}},
			{{NodeID: "c", Cores: 6}},
		})
		require.NoError(t, err)
		require.Len(t, sol.Placements, 3)

		assert.Equal(t, Placement{NodeID: "a", Epoch: 0, FirstCore: 0, Cores: 2, Row: 0, Col: 0}, sol.Placements["a"])
		assert.Equal(t, Placement{NodeID: "b", Epoch: 0, FirstCore: 2, Cores: 3, Row: 0, Col: 2}, sol.Placements["b"])
		assert.Equal(t, Placement{NodeID: "c", Epoch: 1, FirstCore: 0, Cores: 6, Row: 0, Col: 0}, sol.Placements["c"])
	})

	t.Run("overflow is rejected", func(t *testing.T) {
		_, err := Linear{}.Place(ctx, grid, [][]Request{
			{{NodeID: "a", Cores: 4}, {NodeID: "b", Cores: 3}},
		})
		assert.ErrorContains(t, err, "overflows the grid")
	})

	t.Run("duplicate node is rejected", func(t *testing.T) {
		_, err := Linear{}.Place(ctx, grid, [][]Request{
			{{NodeID: "a", Cores: 1}},
			{{NodeID: "a", Cores: 1}},
		})
		assert.ErrorContains(t, err, "placed twice")
	})

	t.Run("invalid grid", func(t *testing.T) {
		_, err := Linear{}.Place(ctx, Grid{}, nil)
		assert.ErrorContains(t, err, "invalid grid")
	})
}
