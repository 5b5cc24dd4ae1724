package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/pkg/graph"
)

func TestMerge_AcyclicGraphYieldsSingles(t *testing.T) {
	// Arrange
	g := graph.New[string]()
	g.Connect("a", "b")
	g.Connect("b", "c")
	g.Connect("a", "c")
	g.AddNode("d")

	// Act
	merged := graph.MergeStrongConnectedComponents(g)

	// Assert
	require.Equal(t, 4, merged.Len())
	for _, node := range merged.Nodes() {
		assert.False(t, node.IsCycle())
		assert.Nil(t, node.List)
	}
}

func TestMerge_SingleCycleYieldsOneList(t *testing.T) {
	// Arrange
	g := graph.New[int]()
	for i := 0; i < 5; i++ {
		g.Connect(i, (i+1)%5)
	}

	// Act
	merged := graph.MergeStrongConnectedComponents(g)

	// Assert
	require.Equal(t, 1, merged.Len())
	node := merged.Nodes()[0]
	assert.True(t, node.IsCycle())
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, node.List)
}

func TestMerge_SelfLoopIsCycle(t *testing.T) {
	g := graph.New[string]()
	g.Connect("x", "x")
	g.Connect("x", "y")

	merged := graph.MergeStrongConnectedComponents(g)

	require.Equal(t, 2, merged.Len())
	var cycles int
	for _, node := range merged.Nodes() {
		if node.IsCycle() {
			cycles++
			assert.Equal(t, []string{"x"}, node.List)
		}
	}
	assert.Equal(t, 1, cycles)
}

func TestMerge_PreservesEdgesBetweenComponents(t *testing.T) {
	// Arrange: a <-> b feeds c <-> d, which feeds e
	g := graph.New[string]()
	g.Connect("a", "b")
	g.Connect("b", "a")
	g.Connect("b", "c")
	g.Connect("c", "d")
	g.Connect("d", "c")
	g.Connect("d", "e")

	// Act
	merged := graph.MergeStrongConnectedComponents(g)

	// Assert
	require.Equal(t, 3, merged.Len())
	byMember := map[string]*graph.Merged[string]{}
	for _, node := range merged.Nodes() {
		for _, member := range node.Members() {
			byMember[member] = node
		}
	}
	assert.Same(t, byMember["a"], byMember["b"])
	assert.Same(t, byMember["c"], byMember["d"])
	assert.False(t, byMember["e"].IsCycle())
	assert.True(t, merged.HasConnection(byMember["a"], byMember["c"]))
	assert.True(t, merged.HasConnection(byMember["c"], byMember["e"]))
	assert.False(t, merged.HasConnection(byMember["e"], byMember["a"]))
	assert.False(t, merged.HasConnection(byMember["a"], byMember["a"]))
}

func TestMerge_EveryNodeMapsToExactlyOneComponent(t *testing.T) {
	g := graph.New[int]()
	edges := [][2]int{{1, 2}, {2, 3}, {3, 1}, {3, 4}, {4, 5}, {5, 6}, {6, 4}, {7, 7}, {8, 1}}
	for _, e := range edges {
		g.Connect(e[0], e[1])
	}

	merged := graph.MergeStrongConnectedComponents(g)

	counts := map[int]int{}
	for _, node := range merged.Nodes() {
		for _, member := range node.Members() {
			counts[member]++
		}
	}
	assert.Len(t, counts, g.Len())
	for node, count := range counts {
		assert.Equalf(t, 1, count, "node %d", node)
	}
}

func TestMerge_DeepChainDoesNotRecurse(t *testing.T) {
	g := graph.New[int]()
	const depth = 200000
	for i := 0; i < depth; i++ {
		g.Connect(i, i+1)
	}
	g.Connect(depth, 0)

	merged := graph.MergeStrongConnectedComponents(g)

	require.Equal(t, 1, merged.Len())
	assert.Len(t, merged.Nodes()[0].List, depth+1)
}

func TestMerge_CondensedGraphCanBeCondensedAgain(t *testing.T) {
	// Arrange
	g := graph.New[string]()
	g.Connect("a", "b")
	g.Connect("b", "a")
	g.Connect("b", "c")
	once := graph.MergeStrongConnectedComponents(g)

	// Act
	twice := graph.MergeStrongConnectedComponents(once)

	// Assert
	require.Equal(t, 2, twice.Len())
	for _, node := range twice.Nodes() {
		assert.False(t, node.IsCycle(), "a condensation is acyclic")
		assert.NotNil(t, node.Single)
	}
	first, second := twice.Nodes()[0].Single, twice.Nodes()[1].Single
	assert.True(t, twice.HasConnection(twice.Nodes()[0], twice.Nodes()[1]) ||
		twice.HasConnection(twice.Nodes()[1], twice.Nodes()[0]))
	assert.NotEqual(t, first.IsCycle(), second.IsCycle())
}

func TestHasConnection(t *testing.T) {
	g := graph.New[string]()
	g.Connect("a", "b")

	assert.True(t, g.HasConnection("a", "b"))
	assert.False(t, g.HasConnection("b", "a"))
	assert.False(t, g.HasConnection("a", "missing"))
	assert.Equal(t, []string{"b"}, g.Successors("a"))
}
