package common_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
	"github.com/have-fun-was-taken/yafc-ce/test/helpers"
)

func TestSolveWithDifferentSeeds_ReturnsFirstNonAbnormal(t *testing.T) {
	// Arrange
	solver := helpers.NewMockLinearSolver(optimization.StatusAbnormal, optimization.StatusOptimal)

	// Act
	result := common.SolveWithDifferentSeeds(context.Background(), "test", solver, 3)

	// Assert
	assert.Equal(t, optimization.StatusOptimal, result.Status)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 2, solver.SolveCalls)
	assert.Len(t, solver.Seeds, 1)
}

func TestSolveWithDifferentSeeds_InfeasibleIsNotRetried(t *testing.T) {
	// Arrange
	solver := helpers.NewMockLinearSolver(optimization.StatusInfeasible)

	// Act
	result := common.SolveWithDifferentSeeds(context.Background(), "test", solver, 3)

	// Assert
	assert.Equal(t, optimization.StatusInfeasible, result.Status)
	assert.Equal(t, 1, solver.SolveCalls)
	assert.Empty(t, solver.Seeds)
}

func TestSolveWithDifferentSeeds_GivesUpAfterAttempts(t *testing.T) {
	// Arrange
	solver := helpers.NewMockLinearSolver(optimization.StatusAbnormal)

	// Act
	result := common.SolveWithDifferentSeeds(context.Background(), "test", solver, 3)

	// Assert
	assert.Equal(t, optimization.StatusAbnormal, result.Status)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, solver.SolveCalls)
	assert.Len(t, solver.Seeds, 3)
	assert.NotEqual(t, solver.Seeds[0], solver.Seeds[1])
}

func TestSolveWithDifferentSeeds_DefaultsAttempts(t *testing.T) {
	// Arrange
	solver := helpers.NewMockLinearSolver(optimization.StatusAbnormal)

	// Act
	result := common.SolveWithDifferentSeeds(context.Background(), "test", solver, 0)

	// Assert
	assert.Equal(t, common.DefaultSolveAttempts, solver.SolveCalls)
	assert.Equal(t, optimization.StatusAbnormal, result.Status)
}
