package services

import (
	"context"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
)

// Suspender wraps the only blocking call of a flow solve, the LP invocation.
// It must run solve exactly once and return its result.
type Suspender interface {
	Suspend(ctx context.Context, solve func() common.SolveResult) common.SolveResult
}

// InlineSuspender runs the solve on the calling goroutine
type InlineSuspender struct{}

func (InlineSuspender) Suspend(_ context.Context, solve func() common.SolveResult) common.SolveResult {
	return solve()
}

// BackgroundSuspender runs the solve on a worker goroutine and waits for it.
// The solve is never abandoned: the caller regains control only once it returns.
type BackgroundSuspender struct{}

func (BackgroundSuspender) Suspend(ctx context.Context, solve func() common.SolveResult) common.SolveResult {
	done := make(chan common.SolveResult, 1)
	go func() {
		done <- solve()
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Context done while the flow model is solving, waiting for the solver", nil)
		return <-done
	}
}

// NewSuspender returns the background variant when requested, inline otherwise
func NewSuspender(background bool) Suspender {
	if background {
		return BackgroundSuspender{}
	}
	return InlineSuspender{}
}
