package balancer

import (
	"github.com/vk/gridbalancer/internal/opmodel"
	"github.com/vk/gridbalancer/internal/placer"
)

// Commitment binds a node to the op model chosen for it.
type Commitment struct {
	NodeID  string
	OpModel opmodel.OpModel
}

// EpochRecord is a finalized, immutable epoch.
type EpochRecord struct {
	Index       int
	Commitments []Commitment
	// Footprint is the number of cores the epoch uses.
	Footprint int
	// Cycles is the epoch estimate: the slowest op bounds a pipelined epoch.
	Cycles int
	// RibbonSize is the t of the epoch's first commitment.
	RibbonSize int
}

// Solution is the outcome of a successful run.
type Solution struct {
	RunID     string
	Policy    string
	Capacity  int
	Epochs    []EpochRecord
	Placement *placer.Solution
}

// TotalCycles sums the estimate of every epoch.
func (s *Solution) TotalCycles() int {
	total := 0
	for _, e := range s.Epochs {
		total += e.Cycles
	}
	return total
}

// NodeCount returns how many nodes were committed.
func (s *Solution) NodeCount() int {
	n := 0
	for _, e := range s.Epochs {
		n += len(e.Commitments)
	}
	return n
}

// EpochOf returns the index of the epoch holding nodeID.
func (s *Solution) EpochOf(nodeID string) (int, bool) {
	for _, e := range s.Epochs {
		for _, c := range e.Commitments {
			if c.NodeID == nodeID {
				return e.Index, true
			}
		}
	}
	return 0, false
}

// OpModelOf returns the op model committed for nodeID.
func (s *Solution) OpModelOf(nodeID string) (opmodel.OpModel, bool) {
	for _, e := range s.Epochs {
		for _, c := range e.Commitments {
			if c.NodeID == nodeID {
				return c.OpModel, true
			}
		}
	}
	return opmodel.OpModel{}, false
}

func (e EpochRecord) requests(est func(opmodel.OpModel) int) []placer.Request {
	reqs := make([]placer.Request, 0, len(e.Commitments))
	for _, c := range e.Commitments {
		reqs = append(reqs, placer.Request{NodeID: c.NodeID, Cores: est(c.OpModel)})
	}
	return reqs
}
