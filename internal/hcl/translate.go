package hcl

import (
	"github.com/vk/gridbalancer/internal/config"
	"github.com/vk/gridbalancer/internal/graph"
)

func translateDevice(d *deviceBlock) config.Device {
	return config.Device{Rows: d.Rows, Cols: d.Cols}
}

// applyBalancer overlays the attributes present in the block onto b.
func applyBalancer(b *config.Balancer, blk *balancerBlock) {
	if blk.Policy != nil {
		b.Policy = *blk.Policy
	}
	if blk.TargetCycles != nil {
		b.TargetCycles = *blk.TargetCycles
	}
	if blk.RibbonPrepass != nil {
		b.RibbonPrepass = *blk.RibbonPrepass
	}
	if blk.MaxEpochRetries != nil {
		b.MaxEpochRetries = *blk.MaxEpochRetries
	}
	if blk.DisableCache != nil {
		b.DisableCache = *blk.DisableCache
	}
}

func translateOp(op *opBlock) *config.Op {
	kind := string(graph.KindCompute)
	if op.Kind != nil {
		kind = *op.Kind
	}
	out := &config.Op{
		Name:     op.Name,
		Kind:     kind,
		Operands: op.Operands,
	}
	for _, m := range op.OpModels {
		out.OpModels = append(out.OpModels, &config.OpModel{
			GridR:         m.GridR,
			GridC:         m.GridC,
			T:             m.T,
			Cycles:        m.Cycles,
			Classes:       m.Classes,
			OperandTMatch: m.OperandTMatch,
		})
	}
	return out
}
