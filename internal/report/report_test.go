package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbalancer/internal/balancer"
	"github.com/vk/gridbalancer/internal/opmodel"
	"github.com/vk/gridbalancer/internal/placer"
	"gopkg.in/yaml.v3"
)

func sampleSolution() *balancer.Solution {
	mm := opmodel.OpModel{NodeID: "matmul_0", GridR: 1, GridC: 2, T: 4, Cycles: 3000, Classes: opmodel.DenseMatmulPrologue}
	add := opmodel.OpModel{NodeID: "add_1", GridR: 1, GridC: 1, T: 4, Cycles: 800}
	relu := opmodel.OpModel{NodeID: "relu_2", GridR: 2, GridC: 2, T: 2, Cycles: 1200}
	return &balancer.Solution{
		RunID:    "run-42",
		Policy:   "ribbon",
		Capacity: 4,
		Epochs: []balancer.EpochRecord{
			{
				Index:       0,
				Commitments: []balancer.Commitment{{NodeID: "matmul_0", OpModel: mm}, {NodeID: "add_1", OpModel: add}},
				Footprint:   3,
				Cycles:      3000,
				RibbonSize:  4,
			},
			{
				Index:       1,
				Commitments: []balancer.Commitment{{NodeID: "relu_2", OpModel: relu}},
				Footprint:   4,
				Cycles:      1200,
				RibbonSize:  2,
			},
		},
		Placement: &placer.Solution{
			Grid: placer.Grid{Rows: 2, Cols: 2},
			Placements: map[string]placer.Placement{
				"matmul_0": {NodeID: "matmul_0", Epoch: 0, FirstCore: 0, Cores: 2},
				"add_1":    {NodeID: "add_1", Epoch: 0, FirstCore: 2, Cores: 1, Row: 1},
				"relu_2":   {NodeID: "relu_2", Epoch: 1, FirstCore: 0, Cores: 4},
			},
		},
	}
}

func TestNew(t *testing.T) {
	r := New(sampleSolution())

	assert.Equal(t, "run-42", r.RunID)
	assert.Equal(t, 4200, r.TotalCycles)
	require.Len(t, r.Epochs, 2)
	require.Len(t, r.Epochs[0].Ops, 2)
	assert.Equal(t, Op{
		Node: "matmul_0", GridR: 1, GridC: 2, T: 4, Cycles: 3000,
		Classes: "dense_matmul_prologue",
	}, r.Epochs[0].Ops[0])
	assert.Equal(t, 2, r.Epochs[0].Ops[1].FirstCore)
	assert.Equal(t, 1, r.Epochs[0].Ops[1].Row)
	assert.Empty(t, r.Epochs[0].Ops[1].Classes)
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "yaml", "json"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}
	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, "unknown report format")
}

func TestWrite(t *testing.T) {
	r := New(sampleSolution())

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatText, r))
		out := buf.String()
		assert.Contains(t, out, "Balancing report")
		assert.Contains(t, out, "policy ribbon, capacity 4 cores, 2 epochs, 4200 total cycles")
		assert.Contains(t, out, "Epoch 1")
		assert.Contains(t, out, "footprint 3/4  cycles 3000  ribbon 4")
		assert.Contains(t, out, "matmul_0")
		assert.Contains(t, out, "dense_matmul_prologue")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatYAML, r))
		assert.Contains(t, buf.String(), "run_id: run-42")
		assert.Contains(t, buf.String(), "ribbon_size: 2")

		var decoded Report
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, *r, decoded)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatJSON, r))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "ribbon", decoded["policy"])
		assert.EqualValues(t, 4200, decoded["total_cycles"])
		assert.Len(t, decoded["epochs"], 2)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), r))
	})
}
