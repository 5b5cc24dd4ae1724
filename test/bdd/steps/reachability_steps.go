package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
)

type reachabilityContext struct {
	catalog *CatalogContext
	result  *services.Reachability
}

func (rc *reachabilityContext) reset() {
	rc.result = nil
}

func (rc *reachabilityContext) automationIsAnalyzed() error {
	c, err := rc.catalog.Catalog()
	if err != nil {
		return err
	}
	graph := services.NewDependencyGraphBuilder().Build(c)
	rc.result = services.NewReachabilityAnalyzer().Analyze(context.Background(), c, graph)
	return nil
}

func (rc *reachabilityContext) shouldBeAutomatable(name, expected string) error {
	if rc.result == nil {
		return fmt.Errorf("automation was not analyzed")
	}
	id, err := rc.catalog.ID(name)
	if err != nil {
		return err
	}
	if status := rc.result.Status(id).String(); status != expected {
		return fmt.Errorf("expected %s to be %s, got %s", name, expected, status)
	}
	return nil
}

// InitializeReachabilityScenario registers automation status steps
func InitializeReachabilityScenario(ctx *godog.ScenarioContext, catalog *CatalogContext) {
	rc := &reachabilityContext{catalog: catalog}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		rc.reset()
		return ctx, nil
	})

	ctx.Step(`^automation is analyzed$`, rc.automationIsAnalyzed)
	ctx.Step(`^"([^"]*)" should be automatable (NOW|LATER|NOT_AUTOMATABLE)$`, rc.shouldBeAutomatable)
}
