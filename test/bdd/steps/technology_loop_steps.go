package steps

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cucumber/godog"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
)

type technologyLoopContext struct {
	catalog *CatalogContext
	loops   [][]string
}

func (tc *technologyLoopContext) reset() {
	tc.loops = nil
}

func (tc *technologyLoopContext) technologyLoopsAreSearched() error {
	c, err := tc.catalog.Catalog()
	if err != nil {
		return err
	}
	for _, loop := range services.NewTechnologyLoopFinder().FindLoops(context.Background(), c) {
		names := make([]string, len(loop.Technologies))
		for i, id := range loop.Technologies {
			names[i] = c.Name(id)
		}
		sort.Strings(names)
		tc.loops = append(tc.loops, names)
	}
	return nil
}

func (tc *technologyLoopContext) noLoopShouldBeReported() error {
	if len(tc.loops) != 0 {
		return fmt.Errorf("expected no loops, got %v", tc.loops)
	}
	return nil
}

func (tc *technologyLoopContext) loopsShouldBeReported(count int) error {
	if len(tc.loops) != count {
		return fmt.Errorf("expected %d loop(s), got %d: %v", count, len(tc.loops), tc.loops)
	}
	return nil
}

func (tc *technologyLoopContext) aLoopShouldContain(members string) error {
	expected := splitList(members)
	sort.Strings(expected)
	want := strings.Join(expected, ",")
	for _, loop := range tc.loops {
		if strings.Join(loop, ",") == want {
			return nil
		}
	}
	return fmt.Errorf("no loop made of %s among %v", want, tc.loops)
}

// InitializeTechnologyLoopScenario registers prerequisite loop steps
func InitializeTechnologyLoopScenario(ctx *godog.ScenarioContext, catalog *CatalogContext) {
	tc := &technologyLoopContext{catalog: catalog}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^technology loops are searched$`, tc.technologyLoopsAreSearched)
	ctx.Step(`^no loop should be reported$`, tc.noLoopShouldBeReported)
	ctx.Step(`^(\d+) loops? should be reported$`, tc.loopsShouldBeReported)
	ctx.Step(`^a loop should contain "([^"]*)"$`, tc.aLoopShouldContain)
}
