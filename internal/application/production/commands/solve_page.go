package commands

import (
	"context"
	"fmt"
	"time"

	analysis "github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/dtos"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/shared"
)

// SolvePageCommand solves a stored page and records the run
type SolvePageCommand struct {
	PageName string
}

// SolvePageResponse carries the run summary and the solved network
type SolvePageResponse struct {
	RunID          string
	PageName       string
	Status         string
	Attempts       int
	Diagnosed      bool
	ObjectiveValue float64
	PrunedLinks    int
	Message        string
	Duration       time.Duration
	Network        dtos.NetworkDTO
}

// SolvePageHandler handles the SolvePage command
type SolvePageHandler struct {
	pages     production.PageRepository
	runs      production.SolveRunRepository
	sessions  *analysis.SessionCache
	solvers   optimization.SolverFactory
	attempts  int
	suspender services.Suspender
	clock     shared.Clock
}

// NewSolvePageHandler creates a new SolvePageHandler
func NewSolvePageHandler(
	pages production.PageRepository,
	runs production.SolveRunRepository,
	sessions *analysis.SessionCache,
	solvers optimization.SolverFactory,
	attempts int,
	suspender services.Suspender,
	clock shared.Clock,
) *SolvePageHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &SolvePageHandler{
		pages:     pages,
		runs:      runs,
		sessions:  sessions,
		solvers:   solvers,
		attempts:  attempts,
		suspender: suspender,
		clock:     clock,
	}
}

// Handle executes the SolvePage command. A run that fails is still recorded.
func (h *SolvePageHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SolvePageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SolvePageCommand")
	}

	session, err := h.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	page, err := h.pages.FindByName(ctx, cmd.PageName)
	if err != nil {
		return nil, err
	}

	run := production.NewSolveRun(page.ID, h.clock)
	if err := h.runs.Add(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record solve run: %w", err)
	}
	if err := run.Start(page.Stats()); err != nil {
		return nil, err
	}

	solver := services.NewFlowSolver(session.Catalog, session.Cost, h.solvers, h.attempts, h.suspender)
	outcome, solveErr := solver.Solve(ctx, page.Root)
	if solveErr != nil {
		if err := run.Fail(solveErr); err != nil {
			return nil, err
		}
		if err := h.runs.Update(ctx, run); err != nil {
			common.LoggerFromContext(ctx).Log(common.LevelError, "Failed to record failed solve run", map[string]interface{}{
				"run":   run.ID(),
				"error": err.Error(),
			})
		}
		return nil, fmt.Errorf("failed to solve page %s: %w", page.Name, solveErr)
	}

	if err := run.Complete(outcome.ObjectiveValue, outcome.Diagnosed, outcome.Message); err != nil {
		return nil, err
	}
	if err := h.runs.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record solve run: %w", err)
	}

	return &SolvePageResponse{
		RunID:          run.ID(),
		PageName:       page.Name,
		Status:         outcome.Status.String(),
		Attempts:       outcome.Attempts,
		Diagnosed:      outcome.Diagnosed,
		ObjectiveValue: outcome.ObjectiveValue,
		PrunedLinks:    outcome.PrunedLinks,
		Message:        outcome.Message,
		Duration:       outcome.Duration,
		Network:        dtos.NetworkToDTO(session.Catalog, page.Root),
	}, nil
}
