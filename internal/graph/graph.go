package graph

// Graph is a frozen, read-only DAG. It is safe for concurrent reads.
type Graph struct {
	vertices map[string]*vertex
	// order is the deterministic topological order (depth asc, ID asc).
	order []string
	index map[string]int
	depth map[string]int
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	v, ok := g.vertices[id]
	if !ok {
		return Node{}, false
	}
	return v.node, true
}

// Nodes returns every node in topological order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.vertices[id].node)
	}
	return out
}

// ComputeNodes returns the schedulable nodes in topological order.
func (g *Graph) ComputeNodes() []Node {
	var out []Node
	for _, id := range g.order {
		if n := g.vertices[id].node; n.Schedulable() {
			out = append(out, n)
		}
	}
	return out
}

// Operands returns the nodes id consumes, in topological order. Unknown IDs
// yield nil.
func (g *Graph) Operands(id string) []Node {
	v, ok := g.vertices[id]
	if !ok {
		return nil
	}
	return g.ordered(v.deps)
}

// Users returns the nodes that consume id, in topological order.
func (g *Graph) Users(id string) []Node {
	v, ok := g.vertices[id]
	if !ok {
		return nil
	}
	return g.ordered(v.dependents)
}

// Depth returns the longest-path distance of id from a root.
func (g *Graph) Depth(id string) (int, bool) {
	d, ok := g.depth[id]
	return d, ok
}

// Position returns the index of id in the topological order.
func (g *Graph) Position(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

func (g *Graph) ordered(set map[string]*vertex) []Node {
	out := make([]Node, 0, len(set))
	for _, id := range g.order {
		if v, ok := set[id]; ok {
			out = append(out, v.node)
		}
	}
	return out
}
