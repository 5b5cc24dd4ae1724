package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/shared"
)

type solveRunContext struct {
	run             *production.SolveRun
	clock           *shared.MockClock
	transitionError error
}

func (sc *solveRunContext) reset() {
	sc.clock = shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	sc.run = nil
	sc.transitionError = nil
}

// Given steps

func (sc *solveRunContext) aSolveRunInState(state string) error {
	sc.run = production.NewSolveRun(production.NewPageID(), sc.clock)

	switch state {
	case "PENDING":
		return nil
	case "RUNNING":
		return sc.run.Start(2, 1)
	case "COMPLETED":
		if err := sc.run.Start(2, 1); err != nil {
			return err
		}
		return sc.run.Complete(3, false, "")
	case "FAILED":
		if err := sc.run.Start(2, 1); err != nil {
			return err
		}
		return sc.run.Fail(errors.New("model is infeasible"))
	default:
		return fmt.Errorf("unknown state: %s", state)
	}
}

func (sc *solveRunContext) secondsHavePassed(seconds int) error {
	sc.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

// When steps

func (sc *solveRunContext) iStartTheRunWithInstancesAndLinks(instances, links int) error {
	sc.transitionError = sc.run.Start(instances, links)
	return nil
}

func (sc *solveRunContext) iCompleteTheRunWithObjective(objective float64) error {
	sc.transitionError = sc.run.Complete(objective, false, "")
	return nil
}

func (sc *solveRunContext) iCompleteTheRunAfterADiagnosisWithMessage(message string) error {
	sc.transitionError = sc.run.Complete(0, true, message)
	return nil
}

func (sc *solveRunContext) iFailTheRunWithError(message string) error {
	sc.transitionError = sc.run.Fail(errors.New(message))
	return nil
}

// Then steps

func (sc *solveRunContext) theRunStatusShouldBe(expected string) error {
	if string(sc.run.Status()) != expected {
		return fmt.Errorf("expected status %s, got %s", expected, sc.run.Status())
	}
	return nil
}

func (sc *solveRunContext) theRunShouldRecordInstancesAndLinks(instances, links int) error {
	if sc.run.Instances() != instances || sc.run.Links() != links {
		return fmt.Errorf("expected %d instances and %d links, got %d and %d",
			instances, links, sc.run.Instances(), sc.run.Links())
	}
	return nil
}

func (sc *solveRunContext) theRunDurationShouldBeSeconds(seconds int) error {
	expected := time.Duration(seconds) * time.Second
	if sc.run.Duration() != expected {
		return fmt.Errorf("expected duration %v, got %v", expected, sc.run.Duration())
	}
	return nil
}

func (sc *solveRunContext) theRunShouldBeMarkedAsDiagnosed() error {
	if !sc.run.Diagnosed() {
		return fmt.Errorf("expected run to be marked as diagnosed")
	}
	return nil
}

func (sc *solveRunContext) theRunMessageShouldBe(expected string) error {
	if sc.run.Message() != expected {
		return fmt.Errorf("expected message %q, got %q", expected, sc.run.Message())
	}
	return nil
}

func (sc *solveRunContext) theTransitionShouldFailWith(expected string) error {
	if sc.transitionError == nil {
		return fmt.Errorf("expected transition to fail with %q, but it succeeded", expected)
	}
	if !strings.Contains(sc.transitionError.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, sc.transitionError.Error())
	}
	return nil
}

// InitializeSolveRunScenario registers solve run lifecycle steps
func InitializeSolveRunScenario(ctx *godog.ScenarioContext) {
	sc := &solveRunContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a solve run in "([^"]*)" state$`, sc.aSolveRunInState)
	ctx.Step(`^(\d+) seconds have passed$`, sc.secondsHavePassed)

	// When steps
	ctx.Step(`^I start the run with (\d+) instances and (\d+) links$`, sc.iStartTheRunWithInstancesAndLinks)
	ctx.Step(`^I complete the run with objective (-?\d+(?:\.\d+)?)$`, sc.iCompleteTheRunWithObjective)
	ctx.Step(`^I complete the run after a diagnosis with message "([^"]*)"$`, sc.iCompleteTheRunAfterADiagnosisWithMessage)
	ctx.Step(`^I fail the run with error "([^"]*)"$`, sc.iFailTheRunWithError)

	// Then steps
	ctx.Step(`^the run status should be "([^"]*)"$`, sc.theRunStatusShouldBe)
	ctx.Step(`^the run should record (\d+) instances and (\d+) links$`, sc.theRunShouldRecordInstancesAndLinks)
	ctx.Step(`^the run duration should be (\d+) seconds$`, sc.theRunDurationShouldBeSeconds)
	ctx.Step(`^the run should be marked as diagnosed$`, sc.theRunShouldBeMarkedAsDiagnosed)
	ctx.Step(`^the run message should be "([^"]*)"$`, sc.theRunMessageShouldBe)
	ctx.Step(`^the transition should fail with "([^"]*)"$`, sc.theTransitionShouldFailWith)
}
