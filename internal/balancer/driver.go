package balancer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/gridbalancer/internal/ctxlog"
	"github.com/vk/gridbalancer/internal/graph"
	"github.com/vk/gridbalancer/internal/legalizer"
	"github.com/vk/gridbalancer/internal/opmodel"
	"github.com/vk/gridbalancer/internal/placer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vk/gridbalancer/internal/balancer"

type runOptions struct {
	tracer    trace.Tracer
	placer    placer.Placer
	heuristic Heuristic
	cache     Cache
}

// Option customizes a single Run.
type Option func(*runOptions)

// WithTracer sets the tracer used for the run span.
func WithTracer(t trace.Tracer) Option {
	return func(o *runOptions) { o.tracer = t }
}

// WithPlacer replaces the default linear placer.
func WithPlacer(p placer.Placer) Option {
	return func(o *runOptions) { o.placer = p }
}

// WithHeuristic overrides the heuristic selected by Config.Policy.
func WithHeuristic(h Heuristic) Option {
	return func(o *runOptions) { o.heuristic = h }
}

// WithCache injects the validated cache. The cache must not be shared with
// another run.
func WithCache(c Cache) Option {
	return func(o *runOptions) { o.cache = c }
}

// Run performs one balancing pass over g and returns the assembled solution.
// No partial solution is returned on error.
func Run(ctx context.Context, g *graph.Graph, cfg Config, oracle legalizer.Oracle, opts ...Option) (_ *Solution, err error) {
	o := runOptions{
		tracer: otel.Tracer(tracerName),
		placer: placer.Linear{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.heuristic == nil {
		h, err := NewHeuristic(cfg)
		if err != nil {
			return nil, err
		}
		o.heuristic = h
	}
	if o.cache == nil {
		if cfg.DisableCache {
			o.cache = DisabledCache()
		} else {
			o.cache = NewValidatedCache()
		}
	}
	if cfg.Capacity() <= 0 {
		return nil, fmt.Errorf("epoch capacity must be positive, got %d", cfg.Capacity())
	}

	runID := uuid.NewString()
	ctx, span := o.tracer.Start(ctx, "balancer.Run", trace.WithAttributes(
		attribute.String("balancer.run_id", runID),
		attribute.String("balancer.policy", o.heuristic.Name()),
		attribute.Int("balancer.capacity", cfg.Capacity()),
		attribute.Int("balancer.target_cycles", cfg.TargetCycles),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	ctx = ctxlog.With(ctx, "run_id", runID, "policy", o.heuristic.Name())
	logger := ctxlog.FromContext(ctx)
	logger.Info("Starting balancing.", "nodes", g.Len(), "capacity", cfg.Capacity(), "target_cycles", cfg.TargetCycles, "prepass", cfg.RibbonPrepass)

	pm := NewPolicyManager(g, cfg, oracle)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("balancing aborted: %w", err)
		}
		n, ok, err := pm.NextOp()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := scheduleNode(ctx, pm, cfg, oracle, o.heuristic, o.cache, n); err != nil {
			return nil, err
		}
	}

	sol, err := pm.AssembleSolution(ctx, o.placer)
	if err != nil {
		return nil, err
	}
	sol.RunID = runID
	sol.Policy = o.heuristic.Name()

	span.SetAttributes(
		attribute.Int("balancer.epochs", len(sol.Epochs)),
		attribute.Int("balancer.total_cycles", sol.TotalCycles()),
	)
	logger.Info("Balancing finished.", "epochs", len(sol.Epochs), "total_cycles", sol.TotalCycles(), "cache_entries", o.cache.Len())
	return sol, nil
}

// scheduleNode commits n, reselecting after each rejected commit and closing
// the epoch early once every candidate has been rejected in it.
func scheduleNode(ctx context.Context, pm *PolicyManager, cfg Config, est legalizer.CostEstimator, h Heuristic, cache Cache, n graph.Node) error {
	logger := ctxlog.FromContext(ctx)

	rejected := make(map[uint64]struct{})
	var attempted []uint64
	forced := 0

	for {
		legal, err := pm.LegalOpModels(ctx, n)
		if err != nil {
			return err
		}
		if len(legal) == 0 {
			return infeasible(n.ID, "no legal op models", attempted)
		}

		candidates := make([]opmodel.OpModel, 0, len(legal))
		for _, m := range legal {
			if _, skip := rejected[m.ID()]; !skip {
				candidates = append(candidates, m)
			}
		}

		if len(candidates) == 0 {
			if pm.EpochEmpty() {
				return infeasible(n.ID, "no legal op model fits an empty epoch", attempted)
			}
			if forced >= cfg.MaxEpochRetries {
				return infeasible(n.ID, fmt.Sprintf("still rejected after %d forced epoch breaks", forced), attempted)
			}
			forced++
			logger.Debug("Forcing epoch break.", "node", n.ID, "rejected", len(rejected))
			if err := pm.FinishCurrentEpoch(ctx); err != nil {
				return err
			}
			rejected = make(map[uint64]struct{})
			continue
		}

		choice, err := h.Select(ctx, SelectionContext{
			Node:         n,
			Candidates:   candidates,
			RibbonSize:   pm.CurrentRibbonSize(),
			TargetCycles: cfg.TargetCycles,
			Capacity:     pm.Capacity(),
			Remaining:    pm.Remaining(),
			Estimator:    est,
			Cache:        cache,
		})
		if err != nil {
			return fmt.Errorf("selecting op model for '%s': %w", n.ID, err)
		}

		res, err := pm.Commit(ctx, n, choice)
		if err != nil {
			return err
		}
		if res.Accepted {
			if res.EpochCompleted {
				return pm.FinishCurrentEpoch(ctx)
			}
			return nil
		}

		logger.Debug("Commit rejected.", "node", n.ID, "op_model", choice.String(), "reason", res.Diagnostic)
		id := choice.ID()
		if _, seen := rejected[id]; seen {
			return fmt.Errorf("heuristic %s returned an op model outside the candidate set for '%s'", h.Name(), n.ID)
		}
		rejected[id] = struct{}{}
		attempted = append(attempted, id)
	}
}
