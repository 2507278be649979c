package graph

import "errors"

var (
	// ErrInvalidGraph is returned when a graph references unknown nodes or
	// declares conflicting node kinds.
	ErrInvalidGraph = errors.New("invalid graph")
	// ErrCycleDetected is returned by Freeze when the edges form a cycle.
	ErrCycleDetected = errors.New("cycle detected")
)

// Kind tags a node with the operation class it represents.
type Kind string

const (
	// KindCompute is an operation executed on the device. Only compute nodes
	// are scheduled by the balancer.
	KindCompute Kind = "compute"
	// KindInput is a graph input fed from the host.
	KindInput Kind = "input"
	// KindParameter is a trainable or constant parameter tensor.
	KindParameter Kind = "parameter"
	// KindConstant is a constant tensor baked into the graph.
	KindConstant Kind = "constant"
	// KindOutput is a graph output drained to the host.
	KindOutput Kind = "output"
)

// Valid reports whether k is one of the known node kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCompute, KindInput, KindParameter, KindConstant, KindOutput:
		return true
	}
	return false
}

// Node is the public, value-typed view of a graph vertex.
type Node struct {
	ID   string
	Kind Kind
}

// Schedulable reports whether the balancer must assign an op model to n.
func (n Node) Schedulable() bool {
	return n.Kind == KindCompute
}

// vertex is the internal representation of a node. It is un-exported so that
// callers interact with the graph through IDs rather than pointers.
type vertex struct {
	node Node
	// deps holds the set of vertices this one consumes (operands).
	deps map[string]*vertex
	// dependents holds the set of vertices that consume this one (users).
	dependents map[string]*vertex
}
