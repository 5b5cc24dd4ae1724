package steps

import (
	"context"
	"fmt"
	"math"

	"github.com/cucumber/godog"

	solver "github.com/have-fun-was-taken/yafc-ce/internal/adapters/optimization"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

const flowTolerance = 1e-6

type flowSolverContext struct {
	catalog   *CatalogContext
	root      *production.FlowNetwork
	instances map[string]*production.ProcessInstance
	links     map[string]*production.FlowLink
	outcome   *services.SolveOutcome
	solveErr  error
}

func (fc *flowSolverContext) reset() {
	fc.root = production.NewFlowNetwork()
	fc.instances = make(map[string]*production.ProcessInstance)
	fc.links = make(map[string]*production.FlowLink)
	fc.outcome = nil
	fc.solveErr = nil
}

// Given steps

func (fc *flowSolverContext) thePageLinksAtPerSecond(resource string, amount float64, algorithm string) error {
	id, err := fc.catalog.IDOf(resource, catalog.KindResource)
	if err != nil {
		return err
	}
	parsed, err := production.ParseLinkAlgorithm(algorithm)
	if err != nil {
		return err
	}
	link, err := fc.root.AddLink(id, amount, parsed)
	if err != nil {
		return err
	}
	fc.links[resource] = link
	return nil
}

func (fc *flowSolverContext) thePageRequestsPerSecond(amount float64, resource string) error {
	return fc.thePageLinksAtPerSecond(resource, amount, production.LinkMatch.String())
}

func (fc *flowSolverContext) thePageBalances(resource string) error {
	return fc.thePageLinksAtPerSecond(resource, 0, production.LinkMatch.String())
}

func (fc *flowSolverContext) thePageRunsIn(recipe, entity string) error {
	recipeID, err := fc.catalog.IDOf(recipe, catalog.KindProcess)
	if err != nil {
		return err
	}
	entityID, err := fc.catalog.IDOf(entity, catalog.KindEntity)
	if err != nil {
		return err
	}
	instance := fc.root.AddProcess(recipeID)
	instance.Entity = entityID
	fc.instances[recipe] = instance
	return nil
}

func (fc *flowSolverContext) isPinnedToBuildings(recipe string, buildings float64) error {
	instance, err := fc.instance(recipe)
	if err != nil {
		return err
	}
	instance.FixedBuildings = buildings
	return nil
}

// When steps

func (fc *flowSolverContext) thePageIsSolved() error {
	c, err := fc.catalog.Catalog()
	if err != nil {
		return err
	}
	flowSolver := services.NewFlowSolver(c, nil, solver.NewGonumSolverFactory(solver.DefaultTolerance), 3, services.InlineSuspender{})
	fc.outcome, fc.solveErr = flowSolver.Solve(context.Background(), fc.root)
	return nil
}

// Then steps

func (fc *flowSolverContext) theSolveShouldSucceed() error {
	if fc.solveErr != nil {
		return fmt.Errorf("expected solve to succeed, got %v", fc.solveErr)
	}
	if fc.outcome.Diagnosed {
		return fmt.Errorf("expected no diagnosis pass, but the slack model ran")
	}
	return nil
}

func (fc *flowSolverContext) theSolveShouldNeedADiagnosis() error {
	if fc.solveErr != nil {
		return fmt.Errorf("expected diagnosis to find a result, got %v", fc.solveErr)
	}
	if !fc.outcome.Diagnosed {
		return fmt.Errorf("expected the slack model to run")
	}
	return nil
}

func (fc *flowSolverContext) shouldRunTimesPerSecond(recipe string, expected float64) error {
	instance, err := fc.instance(recipe)
	if err != nil {
		return err
	}
	if math.Abs(instance.Rate()-expected) > flowTolerance {
		return fmt.Errorf("expected %s to run %g times per second, got %g", recipe, expected, instance.Rate())
	}
	return nil
}

func (fc *flowSolverContext) shouldUseBuildings(recipe string, expected float64) error {
	instance, err := fc.instance(recipe)
	if err != nil {
		return err
	}
	if math.Abs(instance.BuildingCount()-expected) > flowTolerance {
		return fmt.Errorf("expected %s to use %g buildings, got %g", recipe, expected, instance.BuildingCount())
	}
	return nil
}

func (fc *flowSolverContext) theLinkShouldBe(resource, state string) error {
	link, ok := fc.links[resource]
	if !ok {
		return fmt.Errorf("no link for %s", resource)
	}
	if link.State().String() != state {
		return fmt.Errorf("expected %s link to be %s, got %s", resource, state, link.State())
	}
	return nil
}

func (fc *flowSolverContext) oneLinkShouldBeRelaxedBy(expected float64) error {
	var relaxed []*production.FlowLink
	for _, link := range fc.links {
		if link.State() == production.LinkRecursiveNotMatched {
			relaxed = append(relaxed, link)
		}
	}
	if len(relaxed) != 1 {
		return fmt.Errorf("expected exactly one relaxed link, got %d", len(relaxed))
	}
	if math.Abs(relaxed[0].NotMatchedFlow()-expected) > flowTolerance {
		return fmt.Errorf("expected unmatched flow %g, got %g", expected, relaxed[0].NotMatchedFlow())
	}
	return nil
}

func (fc *flowSolverContext) shouldBeFlaggedAsADeadlockCandidate(recipe string) error {
	instance, err := fc.instance(recipe)
	if err != nil {
		return err
	}
	if !instance.Warnings().Has(production.WarningDeadlockCandidate) {
		return fmt.Errorf("expected %s to be a deadlock candidate, warnings are %s", recipe, instance.Warnings())
	}
	return nil
}

func (fc *flowSolverContext) instance(recipe string) (*production.ProcessInstance, error) {
	instance, ok := fc.instances[recipe]
	if !ok {
		return nil, fmt.Errorf("page does not run %s", recipe)
	}
	return instance, nil
}

// InitializeFlowSolverScenario registers production page steps
func InitializeFlowSolverScenario(ctx *godog.ScenarioContext, catalogCtx *CatalogContext) {
	fc := &flowSolverContext{catalog: catalogCtx}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		fc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the page requests (-?\d+(?:\.\d+)?) "([^"]*)" per second$`, fc.thePageRequestsPerSecond)
	ctx.Step(`^the page balances "([^"]*)"$`, fc.thePageBalances)
	ctx.Step(`^the page links "([^"]*)" at (-?\d+(?:\.\d+)?) per second using (MATCH|ALLOW_OVER_CONSUMPTION|ALLOW_OVER_PRODUCTION)$`, fc.thePageLinksAtPerSecond)
	ctx.Step(`^the page runs "([^"]*)" in "([^"]*)"$`, fc.thePageRunsIn)
	ctx.Step(`^"([^"]*)" is pinned to (\d+(?:\.\d+)?) buildings$`, fc.isPinnedToBuildings)

	// When steps
	ctx.Step(`^the page is solved$`, fc.thePageIsSolved)

	// Then steps
	ctx.Step(`^the solve should succeed$`, fc.theSolveShouldSucceed)
	ctx.Step(`^the solve should need a diagnosis$`, fc.theSolveShouldNeedADiagnosis)
	ctx.Step(`^"([^"]*)" should run (\d+(?:\.\d+)?) times per second$`, fc.shouldRunTimesPerSecond)
	ctx.Step(`^"([^"]*)" should use (\d+(?:\.\d+)?) buildings$`, fc.shouldUseBuildings)
	ctx.Step(`^the "([^"]*)" link should be ([A-Z_]+)$`, fc.theLinkShouldBe)
	ctx.Step(`^one link should be relaxed by (-?\d+(?:\.\d+)?)$`, fc.oneLinkShouldBeRelaxedBy)
	ctx.Step(`^"([^"]*)" should be flagged as a deadlock candidate$`, fc.shouldBeFlaggedAsADeadlockCandidate)
}
