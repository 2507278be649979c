package legalizer

import (
	"context"
	"fmt"

	"github.com/vk/gridbalancer/internal/config"
	"github.com/vk/gridbalancer/internal/ctxlog"
	"github.com/vk/gridbalancer/internal/graph"
	"github.com/vk/gridbalancer/internal/opmodel"
)

// Build constructs the frozen graph and the static catalog from a config
// model.
func Build(ctx context.Context, model *config.Model) (*graph.Graph, *StaticCatalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "op_count", len(model.Ops))

	b := graph.New()

	// First pass: create all nodes.
	for _, op := range model.Ops {
		if err := b.AddNode(op.Name, graph.Kind(op.Kind)); err != nil {
			return nil, nil, err
		}
	}

	// Second pass: link operands.
	for _, op := range model.Ops {
		for _, operand := range op.Operands {
			if err := b.AddEdge(operand, op.Name); err != nil {
				return nil, nil, fmt.Errorf("op '%s': %w", op.Name, err)
			}
		}
	}

	g, err := b.Freeze()
	if err != nil {
		return nil, nil, fmt.Errorf("error validating op graph: %w", err)
	}
	logger.Debug("Build: Graph frozen.", "node_count", g.Len())

	models := make(map[string][]opmodel.OpModel, len(model.Ops))
	for _, op := range model.Ops {
		for i, om := range op.OpModels {
			var classes opmodel.Class
			for _, name := range om.Classes {
				c, err := opmodel.ParseClass(name)
				if err != nil {
					return nil, nil, fmt.Errorf("op '%s' op_model #%d: %w", op.Name, i, err)
				}
				classes |= c
			}
			models[op.Name] = append(models[op.Name], opmodel.OpModel{
				NodeID:        op.Name,
				GridR:         om.GridR,
				GridC:         om.GridC,
				T:             om.T,
				Cycles:        om.Cycles,
				Classes:       classes,
				OperandTMatch: om.OperandTMatch,
			})
		}
	}
	logger.Debug("Build: Static catalog populated.", "ops_with_models", len(models))

	return g, NewStaticCatalog(models), nil
}
