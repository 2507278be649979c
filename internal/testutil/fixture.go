// Package testutil holds graph and catalog fixtures shared by the balancer
// tests.
package testutil

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gridbalancer/internal/graph"
	"github.com/vk/gridbalancer/internal/legalizer"
	"github.com/vk/gridbalancer/internal/opmodel"
)

// Op declares one node of a fixture graph.
type Op struct {
	ID       string
	Kind     graph.Kind
	Operands []string
	Models   []opmodel.OpModel
}

// Fixture is a frozen graph plus the catalog serving its op models.
type Fixture struct {
	Graph   *graph.Graph
	Catalog *legalizer.StaticCatalog
}

// M is shorthand for an op model with the given grid, t and cycles.
func M(gridR, gridC, t, cycles int) opmodel.OpModel {
	return opmodel.OpModel{GridR: gridR, GridC: gridC, T: t, Cycles: cycles}
}

// Build freezes the declared ops. A zero Kind means compute.
func Build(t testing.TB, ops ...Op) Fixture {
	t.Helper()
	b := graph.New()
	models := make(map[string][]opmodel.OpModel)
	for _, op := range ops {
		kind := op.Kind
		if kind == "" {
			kind = graph.KindCompute
		}
		require.NoError(t, b.AddNode(op.ID, kind))
		if len(op.Models) > 0 {
			models[op.ID] = op.Models
		}
	}
	for _, op := range ops {
		for _, operand := range op.Operands {
			require.NoError(t, b.AddEdge(operand, op.ID))
		}
	}
	g, err := b.Freeze()
	require.NoError(t, err)
	return Fixture{Graph: g, Catalog: legalizer.NewStaticCatalog(models)}
}

// Chain builds ids[0] -> ids[1] -> ... with every node offering models.
func Chain(t testing.TB, ids []string, models ...opmodel.OpModel) Fixture {
	t.Helper()
	ops := make([]Op, 0, len(ids))
	for i, id := range ids {
		op := Op{ID: id, Models: models}
		if i > 0 {
			op.Operands = []string{ids[i-1]}
		}
		ops = append(ops, op)
	}
	return Build(t, ops...)
}

// RandomDAG builds a reproducible graph of n compute nodes fed by one input.
// Every node gets between one and four op models whose footprint never
// exceeds maxCores; some of them carry prepass classes or operand t matching.
func RandomDAG(t testing.TB, seed int64, n, maxCores int) Fixture {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	classes := []opmodel.Class{0, 0, opmodel.DenseMatmulPrologue, opmodel.SparseDenseGridPairing, opmodel.DenseMatmulBetterUkt}

	ops := []Op{{ID: "input", Kind: graph.KindInput}}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("op%02d", i)
		op := Op{ID: id, Operands: []string{"input"}}
		for j := 0; j < i; j++ {
			if rng.Intn(4) == 0 {
				op.Operands = append(op.Operands, fmt.Sprintf("op%02d", j))
			}
		}
		count := 1 + rng.Intn(4)
		for k := 0; k < count; k++ {
			r := 1 + rng.Intn(maxCores)
			c := 1 + rng.Intn(maxCores/r)
			m := M(r, c, 1<<rng.Intn(3), 1000+rng.Intn(60000))
			m.Classes = classes[rng.Intn(len(classes))]
			m.OperandTMatch = k > 0 && rng.Intn(3) == 0
			op.Models = append(op.Models, m)
		}
		ops = append(ops, op)
	}
	ops = append(ops, Op{ID: "output", Kind: graph.KindOutput, Operands: []string{fmt.Sprintf("op%02d", n-1)}})
	return Build(t, ops...)
}
