package services

import (
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// DependencyGraph holds the forward dependency groups and the deduplicated
// reverse index of every catalog object. It is immutable once built.
type DependencyGraph struct {
	dependencies [][]catalog.DependencyList
	reverse      [][]catalog.ID
}

// DependencyGraphBuilder builds dependency graphs from a catalog
type DependencyGraphBuilder struct{}

// NewDependencyGraphBuilder creates a new dependency graph builder
func NewDependencyGraphBuilder() *DependencyGraphBuilder {
	return &DependencyGraphBuilder{}
}

// Build asks every object for its dependency groups and inverts all edges.
//
// Example:
//
//	gear-wheel  -> Source: [gear-recipe]
//	gear-recipe -> Ingredient(AND): [iron-plate]; CraftingEntity(ANY, one-time): [assembler]
//
// Reverse index:
//
//	iron-plate -> [gear-recipe]
//	assembler  -> [gear-recipe]
//	gear-recipe -> [gear-wheel]
func (b *DependencyGraphBuilder) Build(c *catalog.Catalog) *DependencyGraph {
	g := &DependencyGraph{
		dependencies: make([][]catalog.DependencyList, c.Size()),
		reverse:      make([][]catalog.ID, c.Size()),
	}

	for _, o := range c.Objects() {
		g.dependencies[o.Meta().ID] = catalog.Dependencies(o)
	}

	// last[x] remembers the most recent dependent appended to reverse[x];
	// objects are visited once each, so this is enough to deduplicate
	last := make([]catalog.ID, c.Size())
	for _, o := range c.Objects() {
		id := o.Meta().ID
		for _, group := range g.dependencies[id] {
			for _, element := range group.Elements {
				if element <= catalog.NoID || int(element) >= c.Size() {
					continue
				}
				if last[element] == id {
					continue
				}
				last[element] = id
				g.reverse[element] = append(g.reverse[element], id)
			}
		}
	}

	return g
}

// Dependencies returns the dependency groups of an object
func (g *DependencyGraph) Dependencies(id catalog.ID) []catalog.DependencyList {
	if int(id) >= len(g.dependencies) || id <= catalog.NoID {
		return nil
	}
	return g.dependencies[id]
}

// ReverseDependencies returns every object that lists id in one of its groups
func (g *DependencyGraph) ReverseDependencies(id catalog.ID) []catalog.ID {
	if int(id) >= len(g.reverse) || id <= catalog.NoID {
		return nil
	}
	return g.reverse[id]
}

// Size returns the id space covered by the graph
func (g *DependencyGraph) Size() int {
	return len(g.dependencies)
}
