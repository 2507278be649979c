package balancer

import (
	"errors"
	"fmt"
)

var (
	// ErrInfeasibleNode is the kind of every InfeasibleNodeError.
	ErrInfeasibleNode = errors.New("infeasible node")
	// ErrInvalidState is returned when a PolicyManager method is called in a
	// state that does not allow it.
	ErrInvalidState = errors.New("invalid policy manager state")
	// ErrNoCandidates is returned by a heuristic given an empty candidate set.
	ErrNoCandidates = errors.New("no candidate op models")
)

// InfeasibleNodeError reports a compute node that no epoch can hold.
type InfeasibleNodeError struct {
	NodeID string
	Reason string
	// Attempted holds the IDs of the op models whose commit was rejected.
	Attempted []uint64
}

func (e *InfeasibleNodeError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s '%s': %s", ErrInfeasibleNode, e.NodeID, e.Reason)
	if len(e.Attempted) > 0 {
		msg += fmt.Sprintf(" (attempted %d op models: %x)", len(e.Attempted), e.Attempted)
	}
	return msg
}

func (e *InfeasibleNodeError) Unwrap() error { return ErrInfeasibleNode }

func infeasible(nodeID, reason string, attempted []uint64) error {
	return &InfeasibleNodeError{NodeID: nodeID, Reason: reason, Attempted: attempted}
}

func invalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
