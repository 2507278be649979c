package app

import (
	"context"
	"fmt"

	"github.com/vk/gridbalancer/internal/balancer"
	"github.com/vk/gridbalancer/internal/ctxlog"
	"github.com/vk/gridbalancer/internal/legalizer"
	"github.com/vk/gridbalancer/internal/report"
)

// Run balances the loaded problem and writes the report.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.logger.Debug("Building op graph from config model...")
	graph, catalog, err := legalizer.Build(ctx, a.model)
	if err != nil {
		return fmt.Errorf("failed to build op graph: %w", err)
	}
	a.logger.Debug("Op graph built.", "node_count", graph.Len(), "compute_nodes", len(graph.ComputeNodes()))

	if len(graph.ComputeNodes()) == 0 {
		a.logger.Warn("No compute ops found in graph, the report will be empty.")
	}

	sol, err := balancer.Run(ctx, graph, balancer.ConfigFromModel(a.model), catalog)
	if err != nil {
		return fmt.Errorf("balancing failed: %w", err)
	}
	a.logger.Info("Balancing complete.", "run_id", sol.RunID, "epochs", len(sol.Epochs), "total_cycles", sol.TotalCycles(), "cost_estimates", catalog.Evaluations())

	if err := report.Write(a.outW, a.config.OutputFormat, report.New(sol)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
