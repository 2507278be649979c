// Package placer is the downstream consumer of a balancer solution. It maps
// every committed op onto physical cores of the device grid, epoch by epoch.
package placer

import (
	"context"
	"fmt"
)

// Grid is the device core grid available to a single epoch.
type Grid struct {
	Rows int
	Cols int
}

// Cores is the number of cores in the grid.
func (g Grid) Cores() int {
	return g.Rows * g.Cols
}

// Request asks for a contiguous allocation of cores for one op.
type Request struct {
	NodeID string
	Cores  int
}

// Placement is the physical location assigned to one op.
type Placement struct {
	NodeID    string `json:"node" yaml:"node"`
	Epoch     int    `json:"epoch" yaml:"epoch"`
	FirstCore int    `json:"first_core" yaml:"first_core"`
	Cores     int    `json:"cores" yaml:"cores"`
	Row       int    `json:"row" yaml:"row"`
	Col       int    `json:"col" yaml:"col"`
}

// Solution is the placement of every op, indexed by node ID.
type Solution struct {
	Grid       Grid                 `json:"grid" yaml:"grid"`
	Placements map[string]Placement `json:"placements" yaml:"placements"`
}

// Placer turns ordered epochs of requests into a placement solution.
type Placer interface {
	Place(ctx context.Context, grid Grid, epochs [][]Request) (*Solution, error)
}

// Linear hands out cores row-major, packing the ops of each epoch one after
// the other starting at core 0.
type Linear struct{}

// Place implements Placer.
func (Linear) Place(ctx context.Context, grid Grid, epochs [][]Request) (*Solution, error) {
	if grid.Rows <= 0 || grid.Cols <= 0 {
		return nil, fmt.Errorf("placer: invalid grid %dx%d", grid.Rows, grid.Cols)
	}
	sol := &Solution{Grid: grid, Placements: make(map[string]Placement)}
	for epoch, reqs := range epochs {
		next := 0
		for _, r := range reqs {
			if r.Cores <= 0 {
				return nil, fmt.Errorf("placer: node '%s' requests %d cores", r.NodeID, r.Cores)
			}
			if next+r.Cores > grid.Cores() {
				return nil, fmt.Errorf("placer: epoch %d overflows the grid at node '%s' (%d + %d > %d)", epoch, r.NodeID, next, r.Cores, grid.Cores())
			}
			if _, dup := sol.Placements[r.NodeID]; dup {
				return nil, fmt.Errorf("placer: node '%s' placed twice", r.NodeID)
			}
			sol.Placements[r.NodeID] = Placement{
				NodeID:    r.NodeID,
				Epoch:     epoch,
				FirstCore: next,
				Cores:     r.Cores,
				Row:       next / grid.Cols,
				Col:       next % grid.Cols,
			}
			next += r.Cores
		}
	}
	return sol, nil
}
