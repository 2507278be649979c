package balancer

import (
	"context"

	"github.com/vk/gridbalancer/internal/ctxlog"
	"github.com/vk/gridbalancer/internal/opmodel"
)

// MaxTMinGridPolicy picks, per node, the smallest grid and among those the
// largest t; cycles break the remaining ties.
type MaxTMinGridPolicy struct{}

func (p *MaxTMinGridPolicy) Name() string { return "maximize_t_minimize_grid" }

// Select implements Heuristic. Candidates fitting the current epoch are
// preferred; otherwise every valid candidate, then every candidate, competes.
func (p *MaxTMinGridPolicy) Select(ctx context.Context, sc SelectionContext) (opmodel.OpModel, error) {
	if len(sc.Candidates) == 0 {
		return opmodel.OpModel{}, infeasible(sc.Node.ID, ErrNoCandidates.Error(), nil)
	}

	all := evaluate(sc)
	pool := filterEvaluated(all, func(e evaluated) bool { return e.fits(sc.Remaining) })
	if len(pool) == 0 {
		pool = filterEvaluated(all, func(e evaluated) bool { return e.valid })
	}
	if len(pool) == 0 {
		pool = all
	}

	choice := best(pool, func(a, b evaluated) bool {
		if a.footprint != b.footprint {
			return a.footprint < b.footprint
		}
		if a.model.T != b.model.T {
			return a.model.T > b.model.T
		}
		if a.cycles != b.cycles {
			return a.cycles < b.cycles
		}
		return a.model.ID() < b.model.ID()
	})
	ctxlog.FromContext(ctx).Debug("MaxTMinGrid selection.",
		"node", sc.Node.ID, "candidates", len(sc.Candidates), "op_model", choice.model.String())
	return choice.model, nil
}
