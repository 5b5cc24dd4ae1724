package queries_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	solver "github.com/have-fun-was-taken/yafc-ce/internal/adapters/optimization"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/queries"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/test/helpers"
)

type fixedCatalogRepository struct {
	catalog *catalog.Catalog
}

func (r fixedCatalogRepository) Load(ctx context.Context) (*catalog.Catalog, error) {
	return r.catalog, nil
}

func (r fixedCatalogRepository) Save(ctx context.Context, c *catalog.Catalog) error {
	return nil
}

func newSessions(c *catalog.Catalog, milestones bool) *services.SessionCache {
	return services.NewSessionCache(fixedCatalogRepository{catalog: c}, solver.NewGonumSolverFactory(solver.DefaultTolerance), services.SessionOptions{
		Attempts:          3,
		IncludeMilestones: milestones,
	})
}

func smeltingCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	f := helpers.NewCatalogFixture()
	ore := f.Item("ore")
	plate := f.Item("plate")
	machine := f.Machine("machine", 1)
	f.Recipe("mine", 1, helpers.IDs(machine), nil, helpers.Out(ore, 1))
	f.Recipe("smelt", 1, helpers.IDs(machine), helpers.In(ore, 1), helpers.Out(plate, 1))
	return f.Build(t)
}

func loopingCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	f := helpers.NewCatalogFixture()
	lab := f.Machine("lab", 1)
	first := f.Technology("alpha", 10, helpers.IDs(lab), nil)
	second := f.Technology("beta", 10, helpers.IDs(lab), nil, first)
	f.Object(first).(*catalog.Technology).Prerequisites = helpers.IDs(second)
	return f.Build(t)
}

func TestGetObjectCostHandler_ReturnsProcessFigures(t *testing.T) {
	// Arrange
	handler := queries.NewGetObjectCostHandler(newSessions(smeltingCatalog(t), true))

	// Act
	response, err := handler.Handle(context.Background(), &queries.GetObjectCostQuery{Name: "smelt"})

	// Assert
	require.NoError(t, err)
	dto := response.(*queries.ObjectCostDTO)
	assert.Equal(t, "smelt", dto.Name)
	assert.Equal(t, "PROCESS", dto.Kind)
	assert.Equal(t, "NOW", dto.Automation)
	assert.Greater(t, dto.RecipeCost, 0.0)
	require.NotNil(t, dto.CostNow)
	assert.False(t, math.IsInf(dto.Cost, 1))
}

func TestGetObjectCostHandler_ResourceHasNoProcessFigures(t *testing.T) {
	handler := queries.NewGetObjectCostHandler(newSessions(smeltingCatalog(t), false))

	response, err := handler.Handle(context.Background(), &queries.GetObjectCostQuery{Name: "plate"})

	require.NoError(t, err)
	dto := response.(*queries.ObjectCostDTO)
	assert.Equal(t, "RESOURCE", dto.Kind)
	assert.Greater(t, dto.Cost, 0.0)
	assert.Nil(t, dto.CostNow)
	assert.Zero(t, dto.RecipeCost)
	assert.Zero(t, dto.Waste)
}

func TestGetObjectCostHandler_UnknownName(t *testing.T) {
	handler := queries.NewGetObjectCostHandler(newSessions(smeltingCatalog(t), false))

	_, err := handler.Handle(context.Background(), &queries.GetObjectCostQuery{Name: "gold"})

	var unknown *catalog.ErrUnknownObject
	assert.ErrorAs(t, err, &unknown)
}

func TestGetObjectCostHandler_KindSelectsBetweenSharedNames(t *testing.T) {
	// Arrange: the recipe is named after the plate it makes
	f := helpers.NewCatalogFixture()
	ore := f.Item("ore")
	plate := f.Item("plate")
	machine := f.Machine("machine", 1)
	f.Recipe("mine", 1, helpers.IDs(machine), nil, helpers.Out(ore, 1))
	f.Recipe("plate", 1, helpers.IDs(machine), helpers.In(ore, 1), helpers.Out(plate, 1))
	handler := queries.NewGetObjectCostHandler(newSessions(f.Build(t), false))

	// Act
	byDefault, err := handler.Handle(context.Background(), &queries.GetObjectCostQuery{Name: "plate"})
	require.NoError(t, err)
	asProcess, err := handler.Handle(context.Background(), &queries.GetObjectCostQuery{Name: "plate", Kind: "process"})
	require.NoError(t, err)
	_, badKind := handler.Handle(context.Background(), &queries.GetObjectCostQuery{Name: "plate", Kind: "fluid"})

	// Assert
	assert.Equal(t, "RESOURCE", byDefault.(*queries.ObjectCostDTO).Kind)
	assert.Equal(t, int(plate), byDefault.(*queries.ObjectCostDTO).ID)
	assert.Equal(t, "PROCESS", asProcess.(*queries.ObjectCostDTO).Kind)
	assert.Greater(t, asProcess.(*queries.ObjectCostDTO).RecipeCost, 0.0)
	assert.ErrorContains(t, badKind, "unknown object kind")
}

func TestGetDependenciesHandler_ListsGroupsAndDependents(t *testing.T) {
	// Arrange
	handler := queries.NewGetDependenciesHandler(newSessions(smeltingCatalog(t), false))

	// Act
	response, err := handler.Handle(context.Background(), &queries.GetDependenciesQuery{Name: "smelt"})
	require.NoError(t, err)
	oreResponse, err := handler.Handle(context.Background(), &queries.GetDependenciesQuery{Name: "ore"})
	require.NoError(t, err)

	// Assert
	result := response.(*queries.GetDependenciesResponse)
	var elements []string
	for _, group := range result.Groups {
		elements = append(elements, group.Elements...)
	}
	assert.Contains(t, elements, "ore")
	assert.Contains(t, elements, "machine")
	assert.Contains(t, oreResponse.(*queries.GetDependenciesResponse).Dependents, "smelt")
}

func TestFindTechnologyLoopsHandler_ReportsCycle(t *testing.T) {
	// Arrange
	handler := queries.NewFindTechnologyLoopsHandler(newSessions(loopingCatalog(t), false))

	// Act
	response, err := handler.Handle(context.Background(), &queries.FindTechnologyLoopsQuery{})

	// Assert
	require.NoError(t, err)
	loops := response.(*queries.FindTechnologyLoopsResponse).Loops
	require.Len(t, loops, 1)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, loops[0])
}

func TestFindTechnologyLoopsHandler_NoLoops(t *testing.T) {
	handler := queries.NewFindTechnologyLoopsHandler(newSessions(smeltingCatalog(t), false))

	response, err := handler.Handle(context.Background(), &queries.FindTechnologyLoopsQuery{})

	require.NoError(t, err)
	assert.Empty(t, response.(*queries.FindTechnologyLoopsResponse).Loops)
}
