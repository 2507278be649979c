package balancer

import (
	"context"
	"fmt"

	"github.com/vk/gridbalancer/internal/ctxlog"
	"github.com/vk/gridbalancer/internal/graph"
	"github.com/vk/gridbalancer/internal/legalizer"
	"github.com/vk/gridbalancer/internal/opmodel"
	"github.com/vk/gridbalancer/internal/placer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// State is the PolicyManager lifecycle state.
type State int

const (
	// Scheduling accepts commits into the current epoch.
	Scheduling State = iota
	// EpochFull waits for FinishCurrentEpoch.
	EpochFull
	// Done means every compute node is committed; only AssembleSolution is
	// allowed.
	Done
)

func (s State) String() string {
	switch s {
	case Scheduling:
		return "scheduling"
	case EpochFull:
		return "epoch_full"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// CommitResult is the outcome of PolicyManager.Commit.
type CommitResult struct {
	Accepted bool
	// EpochCompleted is set on an accepted commit that leaves no room for
	// the next node.
	EpochCompleted bool
	// Diagnostic explains a rejection.
	Diagnostic string
}

// openEpoch is the mutable epoch being filled.
type openEpoch struct {
	commitments []Commitment
	footprint   int
	cycles      int
	ribbonSize  int
}

// PolicyManager is the epoch scheduler. It owns all per-run bookkeeping,
// keyed by node ID, and implements legalizer.ScheduleState.
type PolicyManager struct {
	graph  *graph.Graph
	oracle legalizer.Oracle
	cfg    Config

	// pending holds the compute nodes in topological order; cursor points at
	// the next one to commit.
	pending []graph.Node
	cursor  int

	committed map[string]opmodel.OpModel
	current   openEpoch
	epochs    []EpochRecord
	state     State
}

// NewPolicyManager creates a manager for one run over g.
func NewPolicyManager(g *graph.Graph, cfg Config, oracle legalizer.Oracle) *PolicyManager {
	return &PolicyManager{
		graph:     g,
		oracle:    oracle,
		cfg:       cfg,
		pending:   g.ComputeNodes(),
		committed: make(map[string]opmodel.OpModel),
		state:     Scheduling,
	}
}

// State returns the current lifecycle state.
func (pm *PolicyManager) State() State {
	return pm.state
}

// Committed implements legalizer.ScheduleState.
func (pm *PolicyManager) Committed(nodeID string) (opmodel.OpModel, bool) {
	m, ok := pm.committed[nodeID]
	return m, ok
}

// Capacity is the per-epoch core budget.
func (pm *PolicyManager) Capacity() int {
	return pm.cfg.Capacity()
}

// Remaining is the capacity still free in the current epoch.
func (pm *PolicyManager) Remaining() int {
	return pm.cfg.Capacity() - pm.current.footprint
}

// EpochEmpty reports whether the current epoch holds no commitment.
func (pm *PolicyManager) EpochEmpty() bool {
	return len(pm.current.commitments) == 0
}

// CurrentRibbonSize returns the t of the current epoch's first commitment,
// or 0 for an empty epoch.
func (pm *PolicyManager) CurrentRibbonSize() int {
	return pm.current.ribbonSize
}

// NextOp returns the next compute node to commit. Every operand of the
// returned node is already committed. It returns false, and moves to Done,
// once every compute node is committed.
func (pm *PolicyManager) NextOp() (graph.Node, bool, error) {
	switch pm.state {
	case EpochFull:
		return graph.Node{}, false, invalidStatef("NextOp called with a full epoch")
	case Done:
		return graph.Node{}, false, nil
	}
	if pm.cursor >= len(pm.pending) {
		pm.state = Done
		return graph.Node{}, false, nil
	}
	return pm.pending[pm.cursor], true, nil
}

// LegalOpModels asks the catalog for the op models legal for n given the
// commitments so far.
func (pm *PolicyManager) LegalOpModels(ctx context.Context, n graph.Node) ([]opmodel.OpModel, error) {
	models, err := pm.oracle.LegalOpModels(ctx, pm.graph, n.ID, pm)
	if err != nil {
		return nil, fmt.Errorf("legal op models for '%s': %w", n.ID, err)
	}
	return models, nil
}

// Commit books m for n in the current epoch. A rejected commit leaves every
// piece of state untouched.
func (pm *PolicyManager) Commit(ctx context.Context, n graph.Node, m opmodel.OpModel) (CommitResult, error) {
	if pm.state != Scheduling {
		return CommitResult{}, invalidStatef("Commit called in state %s", pm.state)
	}
	if pm.cursor >= len(pm.pending) || pm.pending[pm.cursor].ID != n.ID {
		return CommitResult{}, invalidStatef("node '%s' is not the next schedulable node", n.ID)
	}
	if m.NodeID != n.ID {
		return CommitResult{Diagnostic: fmt.Sprintf("op model belongs to '%s'", m.NodeID)}, nil
	}

	legal, err := pm.LegalOpModels(ctx, n)
	if err != nil {
		return CommitResult{}, err
	}
	if !containsOpModel(legal, m) {
		return CommitResult{Diagnostic: "op model is not in the current legal set"}, nil
	}

	footprint := pm.oracle.Footprint(m)
	if footprint > pm.Remaining() {
		return CommitResult{Diagnostic: fmt.Sprintf("footprint %d exceeds remaining capacity %d", footprint, pm.Remaining())}, nil
	}

	if len(pm.current.commitments) == 0 {
		pm.current.ribbonSize = m.T
	}
	pm.current.commitments = append(pm.current.commitments, Commitment{NodeID: n.ID, OpModel: m})
	pm.current.footprint += footprint
	if cycles := pm.oracle.EstimateCycles(m); cycles > pm.current.cycles {
		pm.current.cycles = cycles
	}
	pm.committed[n.ID] = m
	pm.cursor++

	completed, err := pm.epochCompleted(ctx)
	if err != nil {
		return CommitResult{}, err
	}
	if completed {
		pm.state = EpochFull
	}

	ctxlog.FromContext(ctx).Debug("Op committed.",
		"node", n.ID, "op_model", m.String(), "epoch", len(pm.epochs),
		"footprint", pm.current.footprint, "capacity", pm.Capacity(), "epoch_completed", completed)
	return CommitResult{Accepted: true, EpochCompleted: completed}, nil
}

// epochCompleted reports whether the current epoch is at capacity or the
// next node has no legal op model that fits what is left.
func (pm *PolicyManager) epochCompleted(ctx context.Context) (bool, error) {
	remaining := pm.Remaining()
	if remaining <= 0 {
		return true, nil
	}
	if pm.cursor >= len(pm.pending) {
		return false, nil
	}
	next, err := pm.LegalOpModels(ctx, pm.pending[pm.cursor])
	if err != nil {
		return false, err
	}
	for _, m := range next {
		if pm.oracle.Footprint(m) <= remaining {
			return false, nil
		}
	}
	return true, nil
}

// FinishCurrentEpoch freezes the current epoch, if it holds anything, and
// opens a fresh one with the ribbon size reset.
func (pm *PolicyManager) FinishCurrentEpoch(ctx context.Context) error {
	if pm.state == Done {
		return invalidStatef("FinishCurrentEpoch called after scheduling finished")
	}
	pm.finalize(ctx)
	pm.state = Scheduling
	return nil
}

func (pm *PolicyManager) finalize(ctx context.Context) {
	if len(pm.current.commitments) == 0 {
		pm.current = openEpoch{}
		return
	}
	record := EpochRecord{
		Index:       len(pm.epochs),
		Commitments: append([]Commitment(nil), pm.current.commitments...),
		Footprint:   pm.current.footprint,
		Cycles:      pm.current.cycles,
		RibbonSize:  pm.current.ribbonSize,
	}
	pm.epochs = append(pm.epochs, record)
	pm.current = openEpoch{}

	trace.SpanFromContext(ctx).AddEvent("epoch.finalized", trace.WithAttributes(
		attribute.Int("epoch.index", record.Index),
		attribute.Int("epoch.ops", len(record.Commitments)),
		attribute.Int("epoch.footprint", record.Footprint),
		attribute.Int("epoch.cycles", record.Cycles),
	))
	ctxlog.FromContext(ctx).Info("Epoch finalized.",
		"epoch", record.Index, "ops", len(record.Commitments),
		"footprint", record.Footprint, "cycles", record.Cycles, "ribbon_size", record.RibbonSize)
}

// AssembleSolution closes any pending epoch, runs the placer and returns the
// solution. It is only valid once NextOp has reported that no node remains.
func (pm *PolicyManager) AssembleSolution(ctx context.Context, p placer.Placer) (*Solution, error) {
	if pm.state != Done {
		return nil, invalidStatef("AssembleSolution called in state %s", pm.state)
	}
	pm.finalize(ctx)

	reqs := make([][]placer.Request, 0, len(pm.epochs))
	for _, e := range pm.epochs {
		reqs = append(reqs, e.requests(pm.oracle.Footprint))
	}
	placement, err := p.Place(ctx, pm.cfg.Grid, reqs)
	if err != nil {
		return nil, fmt.Errorf("placement failed: %w", err)
	}

	return &Solution{
		Policy:    pm.cfg.Policy,
		Capacity:  pm.Capacity(),
		Epochs:    append([]EpochRecord(nil), pm.epochs...),
		Placement: placement,
	}, nil
}

func containsOpModel(models []opmodel.OpModel, m opmodel.OpModel) bool {
	for _, candidate := range models {
		if candidate == m {
			return true
		}
	}
	return false
}
