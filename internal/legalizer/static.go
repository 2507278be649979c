package legalizer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vk/gridbalancer/internal/graph"
	"github.com/vk/gridbalancer/internal/opmodel"
)

// StaticCatalog serves op models declared ahead of time, keyed by node ID.
// It is safe for concurrent use.
type StaticCatalog struct {
	models map[string][]opmodel.OpModel
	// evaluations counts EstimateCycles calls.
	evaluations atomic.Int64
}

// NewStaticCatalog creates a catalog from a node ID to op model mapping. The
// slices are copied; declaration order is preserved.
func NewStaticCatalog(models map[string][]opmodel.OpModel) *StaticCatalog {
	c := &StaticCatalog{models: make(map[string][]opmodel.OpModel, len(models))}
	for id, ms := range models {
		cp := make([]opmodel.OpModel, len(ms))
		copy(cp, ms)
		for i := range cp {
			cp[i].NodeID = id
		}
		c.models[id] = cp
	}
	return c
}

// LegalOpModels implements Catalog.
func (c *StaticCatalog) LegalOpModels(ctx context.Context, g *graph.Graph, nodeID string, state ScheduleState) ([]opmodel.OpModel, error) {
	n, ok := g.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("node '%s' not found in graph", nodeID)
	}
	if !n.Schedulable() {
		return nil, nil
	}

	var legal []opmodel.OpModel
	for _, m := range c.models[nodeID] {
		if m.OperandTMatch && !operandsMatchT(g, nodeID, m.T, state) {
			continue
		}
		legal = append(legal, m)
	}
	return legal, nil
}

// operandsMatchT reports whether every committed compute operand of nodeID
// was scheduled with pipelining depth t.
func operandsMatchT(g *graph.Graph, nodeID string, t int, state ScheduleState) bool {
	for _, operand := range g.Operands(nodeID) {
		if !operand.Schedulable() {
			continue
		}
		committed, ok := state.Committed(operand.ID)
		if !ok {
			continue
		}
		if committed.T != t {
			return false
		}
	}
	return true
}

// EstimateCycles implements CostEstimator.
func (c *StaticCatalog) EstimateCycles(m opmodel.OpModel) int {
	c.evaluations.Add(1)
	return m.Cycles
}

// Footprint implements CostEstimator.
func (c *StaticCatalog) Footprint(m opmodel.OpModel) int {
	return m.Footprint()
}

// Evaluations returns how many cost estimates were requested.
func (c *StaticCatalog) Evaluations() int64 {
	return c.evaluations.Load()
}
