// Package graph holds the read-only dataflow graph consumed by the balancer.
//
// A graph is assembled with a Builder (AddNode, AddEdge) and then frozen into
// an immutable Graph. Freezing validates the structure (no dangling edges, no
// cycles) and precomputes a deterministic topological order: nodes are sorted
// by depth (longest path from any root) and then by ID. Every operand of a
// node therefore appears before the node itself.
//
// The Graph never carries scheduling state. Balancer components key their
// bookkeeping by node ID instead of attaching fields to nodes.
package graph
