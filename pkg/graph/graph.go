package graph

// Graph is a directed graph keyed by comparable node values.
// Nodes are reported in insertion order; duplicate edges are ignored.
type Graph[T comparable] struct {
	index map[T]int
	nodes []T
	out   [][]int
	seen  []map[int]struct{}
}

// New creates an empty graph
func New[T comparable]() *Graph[T] {
	return &Graph[T]{index: make(map[T]int)}
}

// AddNode registers a node without edges and returns its position
func (g *Graph[T]) AddNode(node T) int {
	if i, ok := g.index[node]; ok {
		return i
	}
	i := len(g.nodes)
	g.index[node] = i
	g.nodes = append(g.nodes, node)
	g.out = append(g.out, nil)
	g.seen = append(g.seen, make(map[int]struct{}))
	return i
}

// Connect adds a directed edge, registering missing endpoints
func (g *Graph[T]) Connect(from, to T) {
	a := g.AddNode(from)
	b := g.AddNode(to)
	if _, ok := g.seen[a][b]; ok {
		return
	}
	g.seen[a][b] = struct{}{}
	g.out[a] = append(g.out[a], b)
}

// HasConnection reports whether a direct edge from -> to exists
func (g *Graph[T]) HasConnection(from, to T) bool {
	a, ok := g.index[from]
	if !ok {
		return false
	}
	b, ok := g.index[to]
	if !ok {
		return false
	}
	_, ok = g.seen[a][b]
	return ok
}

// Contains reports whether the node is part of the graph
func (g *Graph[T]) Contains(node T) bool {
	_, ok := g.index[node]
	return ok
}

// Len returns the number of nodes
func (g *Graph[T]) Len() int {
	return len(g.nodes)
}

// Nodes returns the nodes in insertion order
func (g *Graph[T]) Nodes() []T {
	out := make([]T, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Successors returns the direct successors of node in edge insertion order
func (g *Graph[T]) Successors(node T) []T {
	i, ok := g.index[node]
	if !ok {
		return nil
	}
	out := make([]T, 0, len(g.out[i]))
	for _, j := range g.out[i] {
		out = append(out, g.nodes[j])
	}
	return out
}
