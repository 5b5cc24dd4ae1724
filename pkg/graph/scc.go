package graph

// Merged is a node of a condensed graph. Acyclic nodes carry Single and a nil
// List; strongly connected components (two or more members, or a node with an
// edge to itself) carry their members in discovery order in List.
type Merged[T comparable] struct {
	Single T
	List   []T
}

// IsCycle reports whether the merged node represents a cycle
func (m *Merged[T]) IsCycle() bool {
	return m.List != nil
}

// Members returns every original node folded into m
func (m *Merged[T]) Members() []T {
	if m.List != nil {
		return m.List
	}
	return []T{m.Single}
}

// MergeStrongConnectedComponents condenses the graph with Tarjan's algorithm.
// Every original node maps to exactly one merged node and every edge between
// distinct components is preserved between their merged nodes.
// A method on Graph[T] returning Graph[*Merged[T]] would form an instantiation cycle.
func MergeStrongConnectedComponents[T comparable](g *Graph[T]) *Graph[*Merged[T]] {
	n := len(g.nodes)
	const unvisited = -1

	index := make([]int, n)
	lowLink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	var (
		counter    int
		stack      []int
		components [][]int
	)

	// callFrame replaces recursion so deep chains do not exhaust the goroutine stack.
	type callFrame struct {
		node      int
		edgeIndex int
		phase     int // 0=init, 1=edges, 2=post-child, 3=finalize
		child     int
	}

	strongConnect := func(start int) {
		callStack := []callFrame{{node: start}}

		for len(callStack) > 0 {
			frame := &callStack[len(callStack)-1]

			switch frame.phase {
			case 0:
				index[frame.node] = counter
				lowLink[frame.node] = counter
				counter++
				stack = append(stack, frame.node)
				onStack[frame.node] = true
				frame.phase = 1

			case 1:
				descended := false
				for frame.edgeIndex < len(g.out[frame.node]) {
					next := g.out[frame.node][frame.edgeIndex]
					frame.edgeIndex++

					if index[next] == unvisited {
						frame.phase = 2
						frame.child = next
						callStack = append(callStack, callFrame{node: next})
						descended = true
						break
					} else if onStack[next] && index[next] < lowLink[frame.node] {
						lowLink[frame.node] = index[next]
					}
				}
				if !descended {
					frame.phase = 3
				}

			case 2:
				if lowLink[frame.child] < lowLink[frame.node] {
					lowLink[frame.node] = lowLink[frame.child]
				}
				frame.phase = 1

			case 3:
				if lowLink[frame.node] == index[frame.node] {
					var component []int
					for {
						w := stack[len(stack)-1]
						stack = stack[:len(stack)-1]
						onStack[w] = false
						component = append(component, w)
						if w == frame.node {
							break
						}
					}
					// popped order is reverse discovery order
					for i, j := 0, len(component)-1; i < j; i, j = i+1, j-1 {
						component[i], component[j] = component[j], component[i]
					}
					components = append(components, component)
				}
				callStack = callStack[:len(callStack)-1]
			}
		}
	}

	for i := 0; i < n; i++ {
		if index[i] == unvisited {
			strongConnect(i)
		}
	}

	merged := New[*Merged[T]]()
	owner := make([]*Merged[T], n)
	for _, component := range components {
		m := &Merged[T]{}
		if len(component) == 1 {
			only := component[0]
			if _, selfLoop := g.seen[only][only]; selfLoop {
				m.List = []T{g.nodes[only]}
			} else {
				m.Single = g.nodes[only]
			}
		} else {
			m.List = make([]T, len(component))
			for i, member := range component {
				m.List[i] = g.nodes[member]
			}
		}
		for _, member := range component {
			owner[member] = m
		}
		merged.AddNode(m)
	}

	for from := 0; from < n; from++ {
		for _, to := range g.out[from] {
			if owner[from] != owner[to] {
				merged.Connect(owner[from], owner[to])
			}
		}
	}

	return merged
}
