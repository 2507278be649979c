package balancer

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/gridbalancer/internal/config"
	"github.com/vk/gridbalancer/internal/graph"
	"github.com/vk/gridbalancer/internal/legalizer"
	"github.com/vk/gridbalancer/internal/opmodel"
)

// SelectionContext is everything a heuristic may look at when picking an op
// model for one node.
type SelectionContext struct {
	Node graph.Node
	// Candidates is the legal set, minus op models already rejected for this
	// node in the current epoch. Never empty when passed to Select.
	Candidates []opmodel.OpModel
	// RibbonSize is the current epoch's width parameter, 0 when unset.
	RibbonSize   int
	TargetCycles int
	Capacity     int
	// Remaining is the capacity still free in the current epoch.
	Remaining int
	Estimator legalizer.CostEstimator
	Cache     Cache
}

// Heuristic picks one op model out of the candidates. The result must be a
// member of sc.Candidates.
type Heuristic interface {
	Name() string
	Select(ctx context.Context, sc SelectionContext) (opmodel.OpModel, error)
}

// NewHeuristic returns the heuristic named by cfg.Policy.
func NewHeuristic(cfg Config) (Heuristic, error) {
	switch cfg.Policy {
	case config.PolicyRibbon, "":
		return &RibbonPolicy{Prepass: cfg.RibbonPrepass}, nil
	case config.PolicyMaximizeTMinimizeGrid:
		return &MaxTMinGridPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown balancer policy %q", cfg.Policy)
}

// evaluated is a candidate after validation.
type evaluated struct {
	model     opmodel.OpModel
	cycles    int
	footprint int
	// valid means the op model fits an empty epoch.
	valid bool
}

func (e evaluated) fits(remaining int) bool {
	return e.valid && e.footprint <= remaining
}

// evaluate validates every candidate, skipping the cost estimate for those
// already in the cache.
func evaluate(sc SelectionContext) []evaluated {
	out := make([]evaluated, 0, len(sc.Candidates))
	for _, m := range sc.Candidates {
		id := m.ID()
		footprint := sc.Estimator.Footprint(m)
		if sc.Cache.Has(id) {
			if cycles, ok := sc.Cache.Cycles(id); ok {
				out = append(out, evaluated{model: m, cycles: cycles, footprint: footprint, valid: footprint <= sc.Capacity})
				continue
			}
		}
		cycles := sc.Estimator.EstimateCycles(m)
		valid := footprint <= sc.Capacity && cycles >= 0
		if valid {
			sc.Cache.MarkValidated(id, cycles)
		}
		out = append(out, evaluated{model: m, cycles: cycles, footprint: footprint, valid: valid})
	}
	return out
}

func filterEvaluated(in []evaluated, keep func(evaluated) bool) []evaluated {
	var out []evaluated
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// best returns the first element under less. in must not be empty.
func best(in []evaluated, less func(a, b evaluated) bool) evaluated {
	sorted := append([]evaluated(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted[0]
}
