package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	solver "github.com/have-fun-was-taken/yafc-ce/internal/adapters/optimization"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
	"github.com/have-fun-was-taken/yafc-ce/test/helpers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// twoStepCatalog: make-x yields one X per execution, make-y turns two X into one Y
type twoStepCatalog struct {
	c         *catalog.Catalog
	x, y      catalog.ID
	makeX     catalog.ID
	makeY     catalog.ID
	assembler catalog.ID
}

func newTwoStepCatalog(t *testing.T) twoStepCatalog {
	t.Helper()
	f := helpers.NewCatalogFixture()
	x := f.Item("x")
	y := f.Item("y")
	assembler := f.Machine("assembler", 1)
	makeX := f.Recipe("make-x", 1, helpers.IDs(assembler), nil, helpers.Out(x, 1))
	makeY := f.Recipe("make-y", 1, helpers.IDs(assembler), helpers.In(x, 2), helpers.Out(y, 1))
	return twoStepCatalog{c: f.Build(t), x: x, y: y, makeX: makeX, makeY: makeY, assembler: assembler}
}

func newGonumFlowSolver(c *catalog.Catalog, suspender services.Suspender) *services.FlowSolver {
	return services.NewFlowSolver(c, nil, solver.NewGonumSolverFactory(solver.DefaultTolerance), 3, suspender)
}

func addLink(t *testing.T, n *production.FlowNetwork, resource catalog.ID, amount float64, algorithm production.LinkAlgorithm) *production.FlowLink {
	t.Helper()
	link, err := n.AddLink(resource, amount, algorithm)
	require.NoError(t, err)
	return link
}

func TestFlowSolver_EmptyNetworkSolvesTrivially(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	link := addLink(t, network, cat.y, 5, production.LinkMatch)

	// Act
	outcome, err := newGonumFlowSolver(cat.c, nil).Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, optimization.StatusOptimal, outcome.Status)
	assert.Equal(t, 0, outcome.Attempts)
	assert.Equal(t, 1, outcome.PrunedLinks)
	assert.Equal(t, production.LinkPruned, link.State())
	assert.Empty(t, network.Flow())
}

func TestFlowSolver_InstancesWithoutLinksRunAtZero(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	makeX := network.AddProcess(cat.makeX)
	makeX.Entity = cat.assembler
	makeY := network.AddProcess(cat.makeY)
	makeY.Entity = cat.assembler

	// Act
	_, err := newGonumFlowSolver(cat.c, nil).Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, makeX.Rate())
	assert.Zero(t, makeY.Rate())
}

func TestFlowSolver_SingleProcessMeetsTarget(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	makeX := network.AddProcess(cat.makeX)
	makeX.Entity = cat.assembler
	link := addLink(t, network, cat.x, 3, production.LinkMatch)

	// Act
	outcome, err := newGonumFlowSolver(cat.c, nil).Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.False(t, outcome.Diagnosed)
	assert.InDelta(t, 3.0, makeX.Rate(), 1e-9)
	assert.InDelta(t, 3.0, makeX.BuildingCount(), 1e-9)
	assert.Equal(t, production.LinkMatched, link.State())
	assert.InDelta(t, 3.0, link.LinkFlow(), 1e-9)
	assert.True(t, makeX.HierarchyEnabled())
}

func TestFlowSolver_TwoProcessChain(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	makeX := network.AddProcess(cat.makeX)
	makeX.Entity = cat.assembler
	makeY := network.AddProcess(cat.makeY)
	makeY.Entity = cat.assembler
	addLink(t, network, cat.y, 5, production.LinkMatch)
	xLink := addLink(t, network, cat.x, 0, production.LinkMatch)

	// Act
	_, err := newGonumFlowSolver(cat.c, nil).Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 5.0, makeY.Rate(), 1e-9)
	assert.InDelta(t, 10.0, makeX.Rate(), 1e-9)
	assert.True(t, xLink.IsMatched())
	assert.Empty(t, network.Flow(), "matched links claim their resources")
}

func TestFlowSolver_SolveIsIdempotent(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	makeX := network.AddProcess(cat.makeX)
	makeX.Entity = cat.assembler
	makeY := network.AddProcess(cat.makeY)
	makeY.Entity = cat.assembler
	addLink(t, network, cat.y, 5, production.LinkMatch)
	addLink(t, network, cat.x, 0, production.LinkMatch)
	flowSolver := newGonumFlowSolver(cat.c, nil)

	_, err := flowSolver.Solve(context.Background(), network)
	require.NoError(t, err)
	firstX, firstY := makeX.Rate(), makeY.Rate()

	// Act
	_, err = flowSolver.Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, firstX, makeX.Rate(), 1e-9)
	assert.InDelta(t, firstY, makeY.Rate(), 1e-9)
}

func TestFlowSolver_PinnedInstanceKeepsBuildingCount(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	x := f.Item("x")
	assembler := f.Machine("assembler", 2)
	makeX := f.Recipe("make-x", 4, helpers.IDs(assembler), nil, helpers.Out(x, 1))
	c := f.Build(t)

	network := production.NewFlowNetwork()
	instance := network.AddProcess(makeX)
	instance.Entity = assembler
	instance.FixedBuildings = 3

	// Act
	_, err := newGonumFlowSolver(c, nil).Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 2.0, instance.Parameters().RecipeTime, 1e-9)
	assert.InDelta(t, 1.5, instance.Rate(), 1e-9)
	assert.InDelta(t, 3.0, instance.BuildingCount(), 1e-9)
}

func TestFlowSolver_NestedLinkShadowsOuterLink(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	root := production.NewFlowNetwork()
	addLink(t, root, cat.y, 5, production.LinkMatch)
	makeY := root.AddProcess(cat.makeY)
	makeY.Entity = cat.assembler
	nested := makeY.CreateSubgroup()
	nestedX := addLink(t, nested, cat.x, 0, production.LinkMatch)
	makeX := nested.AddProcess(cat.makeX)
	makeX.Entity = cat.assembler

	// Act
	_, err := newGonumFlowSolver(cat.c, nil).Solve(context.Background(), root)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 5.0, makeY.Rate(), 1e-9)
	assert.InDelta(t, 10.0, makeX.Rate(), 1e-9)
	assert.True(t, nestedX.IsMatched())

	require.Len(t, nested.Flow(), 1)
	assert.Equal(t, cat.y, nested.Flow()[0].Resource)
	assert.InDelta(t, 5.0, nested.Flow()[0].Amount, 1e-9)
	assert.Empty(t, root.Flow())
}

func TestFlowSolver_DisabledSubtreeIsCleared(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	root := production.NewFlowNetwork()
	addLink(t, root, cat.x, 2, production.LinkMatch)
	active := root.AddProcess(cat.makeX)
	active.Entity = cat.assembler
	parent := root.AddProcess(cat.makeY)
	parent.Entity = cat.assembler
	child := parent.CreateSubgroup().AddProcess(cat.makeX)
	child.Entity = cat.assembler
	flowSolver := newGonumFlowSolver(cat.c, nil)

	_, err := flowSolver.Solve(context.Background(), root)
	require.NoError(t, err)
	parent.Enabled = false

	// Act
	outcome, err := flowSolver.Solve(context.Background(), root)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Instances)
	assert.InDelta(t, 2.0, active.Rate(), 1e-9)
	assert.Zero(t, parent.Rate())
	assert.Zero(t, child.Rate())
	assert.False(t, parent.HierarchyEnabled())
	assert.False(t, child.HierarchyEnabled())
}

func TestFlowSolver_FuelIsConsumedPerExecution(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	coal := f.Fuel("coal", 4)
	plate := f.Item("plate")
	furnace := f.BurnerMachine("furnace", 1, 1, coal)
	smelt := f.Recipe("smelt", 1, helpers.IDs(furnace), nil, helpers.Out(plate, 1))
	c := f.Build(t)

	network := production.NewFlowNetwork()
	instance := network.AddProcess(smelt)
	instance.Entity = furnace
	instance.Fuel = coal
	addLink(t, network, plate, 5, production.LinkMatch)
	coalLink := addLink(t, network, coal, -1.25, production.LinkMatch)

	// Act
	_, err := newGonumFlowSolver(c, nil).Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 0.25, instance.Parameters().FuelUsagePerSecondPerRecipe, 1e-9)
	assert.InDelta(t, 5.0, instance.Rate(), 1e-9)
	assert.Equal(t, production.LinkMatched, coalLink.State())
}

func TestFlowSolver_BuiltCountExceeded(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	makeX := network.AddProcess(cat.makeX)
	makeX.Entity = cat.assembler
	built := 1.0
	makeX.BuiltBuildings = &built
	addLink(t, network, cat.x, 4, production.LinkMatch)

	// Act
	outcome, err := newGonumFlowSolver(cat.c, nil).Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, services.BuiltCountExceededMessage, outcome.Message)
	assert.True(t, makeX.Warnings().Has(production.WarningExceedsBuiltCount))
}

func TestFlowSolver_DeadlockLoopIsDiagnosed(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	a := f.Item("a")
	b := f.Item("b")
	y := f.Item("y")
	assembler := f.Machine("assembler", 1)
	aToB := f.Recipe("a-to-b", 1, helpers.IDs(assembler), helpers.In(a, 1), helpers.Out(b, 1))
	bToA := f.Recipe("b-to-a", 1, helpers.IDs(assembler), helpers.In(b, 1), helpers.Out(a, 1))
	aToY := f.Recipe("a-to-y", 1, helpers.IDs(assembler), helpers.In(a, 1), helpers.Out(y, 1))
	c := f.Build(t)

	network := production.NewFlowNetwork()
	forward := network.AddProcess(aToB)
	backward := network.AddProcess(bToA)
	output := network.AddProcess(aToY)
	for _, instance := range []*production.ProcessInstance{forward, backward, output} {
		instance.Entity = assembler
	}
	aLink := addLink(t, network, a, 0, production.LinkMatch)
	bLink := addLink(t, network, b, 0, production.LinkMatch)
	addLink(t, network, y, 5, production.LinkMatch)

	// Act
	outcome, err := newGonumFlowSolver(c, nil).Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.True(t, outcome.Diagnosed)
	assert.InDelta(t, 5.0, output.Rate(), 1e-9)

	var relaxed *production.FlowLink
	for _, link := range []*production.FlowLink{aLink, bLink} {
		if link.State() == production.LinkRecursiveNotMatched {
			relaxed = link
		}
	}
	require.NotNil(t, relaxed, "one loop link is relaxed")
	assert.InDelta(t, -5.0, relaxed.NotMatchedFlow(), 1e-9)
	assert.True(t, forward.Warnings().Has(production.WarningDeadlockCandidate))
	assert.True(t, backward.Warnings().Has(production.WarningDeadlockCandidate))
}

func TestFlowSolver_FailedDiagnosisLeavesNetworkUntouched(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	makeX := network.AddProcess(cat.makeX)
	makeX.Entity = cat.assembler
	link := addLink(t, network, cat.x, 3, production.LinkMatch)

	_, err := newGonumFlowSolver(cat.c, nil).Solve(context.Background(), network)
	require.NoError(t, err)

	failing := services.NewFlowSolver(cat.c, nil, helpers.NewMockSolverFactory(optimization.StatusInfeasible), 3, nil)

	// Act
	outcome, err := failing.Solve(context.Background(), network)

	// Assert
	var solveErr *production.SolveError
	require.True(t, errors.As(err, &solveErr))
	assert.Equal(t, production.SolveErrorInfeasible, solveErr.Kind)
	assert.True(t, outcome.Diagnosed)
	assert.InDelta(t, 3.0, makeX.Rate(), 1e-9)
	assert.Equal(t, production.LinkMatched, link.State())
}

func TestFlowSolver_AbnormalModelIsRetriedThenReported(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	network.AddProcess(cat.makeX).Entity = cat.assembler
	addLink(t, network, cat.x, 3, production.LinkMatch)
	factory := helpers.NewMockSolverFactory(optimization.StatusAbnormal)

	// Act
	outcome, err := services.NewFlowSolver(cat.c, nil, factory, 3, nil).Solve(context.Background(), network)

	// Assert
	var solveErr *production.SolveError
	require.True(t, errors.As(err, &solveErr))
	assert.Equal(t, production.SolveErrorAbnormal, solveErr.Kind)
	assert.Equal(t, 6, outcome.Attempts)
	require.Len(t, factory.Created, 1)
	assert.Equal(t, 6, factory.Created[0].SolveCalls)
}

func TestFlowSolver_UnknownRecipeIsRejected(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	network.AddProcess(catalog.ID(9999))

	// Act
	_, err := newGonumFlowSolver(cat.c, nil).Solve(context.Background(), network)

	// Assert
	var unknown *catalog.ErrUnknownObject
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, catalog.ID(9999), unknown.ID)
}

func TestFlowSolver_BackgroundSuspenderMatchesInline(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	network := production.NewFlowNetwork()
	makeX := network.AddProcess(cat.makeX)
	makeX.Entity = cat.assembler
	makeY := network.AddProcess(cat.makeY)
	makeY.Entity = cat.assembler
	addLink(t, network, cat.y, 5, production.LinkMatch)
	addLink(t, network, cat.x, 0, production.LinkMatch)

	// Act
	_, err := newGonumFlowSolver(cat.c, services.NewSuspender(true)).Solve(context.Background(), network)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 5.0, makeY.Rate(), 1e-9)
	assert.InDelta(t, 10.0, makeX.Rate(), 1e-9)
}

func TestFlowSolver_CanceledContextIsRejected(t *testing.T) {
	// Arrange
	cat := newTwoStepCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, err := newGonumFlowSolver(cat.c, nil).Solve(ctx, production.NewFlowNetwork())

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
}
