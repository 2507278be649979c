package balancer

import (
	"context"

	"github.com/vk/gridbalancer/internal/ctxlog"
	"github.com/vk/gridbalancer/internal/opmodel"
)

// suboptimalClasses are dropped by the ribbon prepass.
const suboptimalClasses = opmodel.SparseDenseGridPairing | opmodel.DenseMatmulPrologue | opmodel.DenseMatmulBetterUkt

// RibbonPolicy favours op models whose t matches the epoch's ribbon size and
// whose cycles stay under the target budget.
type RibbonPolicy struct {
	// Prepass drops suboptimal op model classes before scoring, unless that
	// would leave nothing to choose from.
	Prepass bool
}

func (p *RibbonPolicy) Name() string { return "ribbon" }

// Select implements Heuristic. The first non-empty tier wins:
//  1. fits, matches the ribbon size, within the cycle budget
//  2. fits, matches the ribbon size
//  3. fits
//  4. any valid candidate, then any candidate at all
//
// Within a tier the cheapest op model is taken.
func (p *RibbonPolicy) Select(ctx context.Context, sc SelectionContext) (opmodel.OpModel, error) {
	if len(sc.Candidates) == 0 {
		return opmodel.OpModel{}, infeasible(sc.Node.ID, ErrNoCandidates.Error(), nil)
	}
	if p.Prepass {
		sc.Candidates = prepass(sc.Candidates)
	}

	all := evaluate(sc)
	matches := func(e evaluated) bool {
		return sc.RibbonSize == 0 || e.model.T == sc.RibbonSize
	}

	tiers := [][]evaluated{
		filterEvaluated(all, func(e evaluated) bool {
			return e.fits(sc.Remaining) && matches(e) && e.cycles <= sc.TargetCycles
		}),
		filterEvaluated(all, func(e evaluated) bool { return e.fits(sc.Remaining) && matches(e) }),
		filterEvaluated(all, func(e evaluated) bool { return e.fits(sc.Remaining) }),
		filterEvaluated(all, func(e evaluated) bool { return e.valid }),
		all,
	}
	for tier, pool := range tiers {
		if len(pool) == 0 {
			continue
		}
		choice := best(pool, cheapest)
		ctxlog.FromContext(ctx).Debug("Ribbon selection.",
			"node", sc.Node.ID, "tier", tier+1, "ribbon_size", sc.RibbonSize,
			"candidates", len(sc.Candidates), "op_model", choice.model.String())
		return choice.model, nil
	}
	// Unreachable: the last tier holds every candidate.
	return opmodel.OpModel{}, ErrNoCandidates
}

// prepass removes suboptimal classes. It never empties the set.
func prepass(models []opmodel.OpModel) []opmodel.OpModel {
	var kept []opmodel.OpModel
	for _, m := range models {
		if !m.Classes.Has(suboptimalClasses) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return models
	}
	return kept
}

// cheapest orders by cycles, then larger t, smaller footprint and ID.
func cheapest(a, b evaluated) bool {
	if a.cycles != b.cycles {
		return a.cycles < b.cycles
	}
	if a.model.T != b.model.T {
		return a.model.T > b.model.T
	}
	if a.footprint != b.footprint {
		return a.footprint < b.footprint
	}
	return a.model.ID() < b.model.ID()
}
