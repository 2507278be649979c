package graph

import (
	"fmt"
	"sort"
	"sync"
)

// Builder accumulates nodes and edges before the graph is frozen. All
// operations on the builder are concurrency-safe.
type Builder struct {
	mutex    sync.Mutex
	vertices map[string]*vertex
}

// New creates and returns an initialized, empty Builder.
func New() *Builder {
	return &Builder{
		vertices: make(map[string]*vertex),
	}
}

// AddNode adds a node with the given ID and kind. Adding the same ID twice
// with the same kind is a no-op; a different kind is an error.
func (b *Builder) AddNode(id string, kind Kind) error {
	if id == "" {
		return fmt.Errorf("%w: node id cannot be empty", ErrInvalidGraph)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: node '%s' has unknown kind %q", ErrInvalidGraph, id, kind)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if existing, ok := b.vertices[id]; ok {
		if existing.node.Kind != kind {
			return fmt.Errorf("%w: node '%s' redeclared as %s (was %s)", ErrInvalidGraph, id, kind, existing.node.Kind)
		}
		return nil
	}

	b.vertices[id] = &vertex{
		node:       Node{ID: id, Kind: kind},
		deps:       make(map[string]*vertex),
		dependents: make(map[string]*vertex),
	}
	return nil
}

// AddEdge creates a data-dependency edge: the `toID` node consumes the output
// of the `fromID` node. An error is returned if either node does not exist or
// if the edge would be a self-reference.
func (b *Builder) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("%w: self-referential edge not allowed: %s -> %s", ErrInvalidGraph, fromID, fromID)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	from, ok := b.vertices[fromID]
	if !ok {
		return fmt.Errorf("%w: source node not found: %s", ErrInvalidGraph, fromID)
	}
	to, ok := b.vertices[toID]
	if !ok {
		return fmt.Errorf("%w: destination node not found: %s", ErrInvalidGraph, toID)
	}

	to.deps[fromID] = from
	from.dependents[toID] = to
	return nil
}

// Freeze validates the accumulated structure and returns an immutable Graph.
// The builder must not be used afterwards.
func (b *Builder) Freeze() (*Graph, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if err := detectCycles(b.vertices); err != nil {
		return nil, err
	}

	depth := computeDepths(b.vertices)

	order := make([]string, 0, len(b.vertices))
	for id := range b.vertices {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		a, c := order[i], order[j]
		if depth[a] != depth[c] {
			return depth[a] < depth[c]
		}
		return a < c
	})

	index := make(map[string]int, len(order))
	for i, id := range order {
		index[id] = i
	}

	return &Graph{
		vertices: b.vertices,
		order:    order,
		index:    index,
		depth:    depth,
	}, nil
}

// detectCycles uses depth-first search with two sets of nodes:
// permanent: nodes fully visited and known not to be part of a cycle.
// temporary: nodes on the current recursion stack.
// IDs are visited in sorted order so the reported node is stable.
func detectCycles(vertices map[string]*vertex) error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(v *vertex) error
	visit = func(v *vertex) error {
		id := v.node.ID
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("%w: involving node '%s'", ErrCycleDetected, id)
		}
		temporary[id] = true

		for _, next := range sortedVertices(v.dependents) {
			if err := visit(next); err != nil {
				return err
			}
		}

		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, v := range sortedVertices(vertices) {
		if err := visit(v); err != nil {
			return err
		}
	}
	return nil
}

// computeDepths returns, for every vertex, the length of the longest path
// from a root. Must only be called on acyclic input.
func computeDepths(vertices map[string]*vertex) map[string]int {
	depth := make(map[string]int, len(vertices))
	var visit func(v *vertex) int
	visit = func(v *vertex) int {
		if d, ok := depth[v.node.ID]; ok {
			return d
		}
		d := 0
		for _, dep := range v.deps {
			if dd := visit(dep) + 1; dd > d {
				d = dd
			}
		}
		depth[v.node.ID] = d
		return d
	}
	for _, v := range vertices {
		visit(v)
	}
	return depth
}

func sortedVertices(m map[string]*vertex) []*vertex {
	out := make([]*vertex, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].node.ID < out[j].node.ID })
	return out
}
