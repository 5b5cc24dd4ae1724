package services

import (
	"context"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/pkg/graph"
)

// TechnologyLoop is a set of technologies that require each other
type TechnologyLoop struct {
	Technologies []catalog.ID
}

// TechnologyLoopFinder reports prerequisite cycles, which make research impossible
type TechnologyLoopFinder struct{}

// NewTechnologyLoopFinder creates a new technology loop finder
func NewTechnologyLoopFinder() *TechnologyLoopFinder {
	return &TechnologyLoopFinder{}
}

// FindLoops connects every prerequisite to the technology it unlocks and
// returns the cyclic components of that graph in discovery order.
func (f *TechnologyLoopFinder) FindLoops(ctx context.Context, c *catalog.Catalog) []TechnologyLoop {
	logger := common.LoggerFromContext(ctx)

	g := graph.New[catalog.ID]()
	for _, t := range c.Technologies() {
		g.AddNode(t.ID)
		for _, prerequisite := range t.Prerequisites {
			g.Connect(prerequisite, t.ID)
		}
	}

	var loops []TechnologyLoop
	for _, merged := range graph.MergeStrongConnectedComponents(g).Nodes() {
		if !merged.IsCycle() {
			continue
		}
		members := make([]catalog.ID, len(merged.List))
		copy(members, merged.List)
		loops = append(loops, TechnologyLoop{Technologies: members})

		names := make([]string, len(members))
		for i, id := range members {
			names[i] = c.Name(id)
		}
		logger.Log(common.LevelWarning, "Technology loop found", map[string]interface{}{
			"technologies": names,
		})
	}

	if len(loops) == 0 {
		logger.Log(common.LevelInfo, "No technology loops found", nil)
	}
	return loops
}
