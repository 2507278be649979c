package config

import (
	"errors"
	"fmt"
)

// Policy names accepted in the balancer block.
const (
	PolicyRibbon                = "ribbon"
	PolicyMaximizeTMinimizeGrid = "maximize_t_minimize_grid"
)

// Defaults applied by NewBalancer and the loaders.
const (
	DefaultTargetCycles    = 45000
	DefaultMaxEpochRetries = 1
)

// Model is the unified, format-agnostic representation of one balancing
// problem: the device, the balancer tunables and the operation graph with its
// candidate op models.
type Model struct {
	Device   Device
	Balancer Balancer
	Ops      []*Op
}

// Device describes the core grid available to one epoch.
type Device struct {
	Rows int
	Cols int
}

// Capacity is the number of cores available concurrently in one epoch.
func (d Device) Capacity() int {
	return d.Rows * d.Cols
}

// Balancer holds the tunables read once at the start of a run.
type Balancer struct {
	Policy          string
	TargetCycles    int
	RibbonPrepass   bool
	MaxEpochRetries int
	DisableCache    bool
}

// NewBalancer returns balancer tunables populated with defaults.
func NewBalancer() Balancer {
	return Balancer{
		Policy:          PolicyRibbon,
		TargetCycles:    DefaultTargetCycles,
		MaxEpochRetries: DefaultMaxEpochRetries,
	}
}

// Op is the format-agnostic representation of an `op` block.
type Op struct {
	Name     string
	Kind     string
	Operands []string
	OpModels []*OpModel
}

// OpModel is one candidate configuration listed for an op.
type OpModel struct {
	GridR         int
	GridC         int
	T             int
	Cycles        int
	Classes       []string
	OperandTMatch bool
}

// Validate checks the model for values no run can work with.
func (m *Model) Validate() error {
	if m.Device.Rows <= 0 || m.Device.Cols <= 0 {
		return fmt.Errorf("device grid must be positive, got %dx%d", m.Device.Rows, m.Device.Cols)
	}
	if err := m.Balancer.Validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(m.Ops))
	for _, op := range m.Ops {
		if _, dup := seen[op.Name]; dup {
			return fmt.Errorf("op '%s' declared more than once", op.Name)
		}
		seen[op.Name] = struct{}{}
		for i, om := range op.OpModels {
			if om.GridR <= 0 || om.GridC <= 0 || om.T <= 0 || om.Cycles < 0 {
				return fmt.Errorf("op '%s' op_model #%d: grid and t must be positive and cycles non-negative", op.Name, i)
			}
		}
	}
	return nil
}

// Validate checks the balancer tunables.
func (b Balancer) Validate() error {
	switch b.Policy {
	case PolicyRibbon, PolicyMaximizeTMinimizeGrid:
	default:
		return fmt.Errorf("unknown balancer policy %q", b.Policy)
	}
	if b.TargetCycles <= 0 {
		return errors.New("target_cycles must be positive")
	}
	if b.MaxEpochRetries < 0 {
		return errors.New("max_epoch_retries cannot be negative")
	}
	return nil
}
