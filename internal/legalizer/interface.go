package legalizer

import (
	"context"

	"github.com/vk/gridbalancer/internal/graph"
	"github.com/vk/gridbalancer/internal/opmodel"
)

// ScheduleState exposes the commitments made so far in the current run.
type ScheduleState interface {
	// Committed returns the op model chosen for nodeID, if any.
	Committed(nodeID string) (opmodel.OpModel, bool)
}

// Catalog enumerates legal op models for a node.
type Catalog interface {
	// LegalOpModels returns the op models legal for nodeID given the
	// commitments in state. It must be deterministic for a given state and
	// may return an empty slice only for non-schedulable nodes.
	LegalOpModels(ctx context.Context, g *graph.Graph, nodeID string, state ScheduleState) ([]opmodel.OpModel, error)
}

// CostEstimator turns an op model into a cycle estimate and a footprint.
type CostEstimator interface {
	EstimateCycles(m opmodel.OpModel) int
	Footprint(m opmodel.OpModel) int
}

// Oracle is the full capability set the balancer consumes.
type Oracle interface {
	Catalog
	CostEstimator
}
