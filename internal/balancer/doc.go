// Package balancer assigns an op model to every compute node of a graph and
// groups the committed nodes into capacity-bounded epochs.
//
// # How It Works
//
// Run drives one balancing pass:
//  1. PolicyManager.NextOp yields the next compute node in topological order
//  2. the active Heuristic picks one op model from the node's legal set,
//     consulting the run's validated cache before evaluating a candidate
//  3. PolicyManager.Commit books the op model against the current epoch
//  4. when Commit reports the epoch as complete, FinishCurrentEpoch freezes it
//  5. once no node remains, AssembleSolution hands the epochs to the placer
//
// A rejected commit is recovered inside Run: the heuristic picks again among
// the remaining candidates, and once those are exhausted the epoch is closed
// early and the node retried in a fresh one. A node that cannot be committed
// to an empty epoch aborts the run with an InfeasibleNodeError.
//
// # Policies
//
// Two heuristics share the same loop: RibbonPolicy keeps the pipelining depth
// of an epoch consistent under a cycle budget, MaxTMinGridPolicy picks the
// smallest grid with the largest t for every node independently.
//
// Runs are single-threaded and share no mutable state: every call to Run
// builds its own PolicyManager and cache.
package balancer
