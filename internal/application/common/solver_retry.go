package common

import (
	"context"
	"time"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/metrics"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
)

// DefaultSolveAttempts bounds how often an abnormal solve is retried
const DefaultSolveAttempts = 3

// SolveResult summarises a bounded solve
type SolveResult struct {
	Status   optimization.Status
	Attempts int
	Duration time.Duration
}

// SolveWithDifferentSeeds solves up to attempts times. Only an ABNORMAL
// result triggers another attempt, each with a fresh deterministic seed; any
// other status is returned as is. Exhausting the attempts yields ABNORMAL.
func SolveWithDifferentSeeds(ctx context.Context, model string, solver optimization.LinearSolver, attempts int) SolveResult {
	if attempts <= 0 {
		attempts = DefaultSolveAttempts
	}
	logger := LoggerFromContext(ctx)
	start := time.Now()

	for attempt := 1; attempt <= attempts; attempt++ {
		attemptStart := time.Now()
		status := solver.Solve(ctx)
		metrics.RecordLPSolve(model, status.String(), time.Since(attemptStart).Seconds())

		if status != optimization.StatusAbnormal {
			return SolveResult{Status: status, Attempts: attempt, Duration: time.Since(start)}
		}

		logger.Log(LevelWarning, "Solver returned an abnormal result, retrying with a new seed", map[string]interface{}{
			"model":   model,
			"attempt": attempt,
		})
		metrics.RecordSeedRetry(model)
		solver.SetSeed(seedForAttempt(attempt))
	}

	return SolveResult{Status: optimization.StatusAbnormal, Attempts: attempts, Duration: time.Since(start)}
}

func seedForAttempt(attempt int) int64 {
	return int64(attempt)*7919 + 17
}

// AddCoefficient accumulates onto an existing coefficient so a resource
// listed twice for one variable is counted twice
func AddCoefficient(solver optimization.LinearSolver, c optimization.Constraint, v optimization.Variable, value float64) {
	solver.SetCoefficient(c, v, solver.Coefficient(c, v)+value)
}
