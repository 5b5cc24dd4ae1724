package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/persistence"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/shared"
	"github.com/have-fun-was-taken/yafc-ce/test/helpers"
)

func newPageRepository(t *testing.T) *persistence.GormPageRepository {
	t.Helper()
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return persistence.NewGormPageRepository(helpers.NewTestDB(t), clock)
}

func buildPage(t *testing.T, name string) *production.Page {
	t.Helper()
	page, err := production.NewPage(name)
	require.NoError(t, err)

	_, err = page.Root.AddLink(catalog.ID(3), 5, production.LinkAllowOverProduction)
	require.NoError(t, err)
	smelter := page.Root.AddProcess(catalog.ID(7))
	smelter.Entity = catalog.ID(4)
	smelter.Fuel = catalog.ID(1)
	smelter.FixedBuildings = 2
	built := 3.0
	smelter.BuiltBuildings = &built

	nested := smelter.CreateSubgroup()
	_, err = nested.AddLink(catalog.ID(2), 0, production.LinkMatch)
	require.NoError(t, err)
	miner := nested.AddProcess(catalog.ID(8))
	miner.Enabled = false
	return page
}

func TestPageRepository_SaveAndFindByID(t *testing.T) {
	// Arrange
	repo := newPageRepository(t)
	page := buildPage(t, "plates")

	// Act
	err := repo.Save(context.Background(), page)
	require.NoError(t, err)
	found, err := repo.FindByID(context.Background(), page.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, page.ID, found.ID)
	assert.Equal(t, "plates", found.Name)

	links := found.Root.Links()
	require.Len(t, links, 1)
	assert.Equal(t, catalog.ID(3), links[0].Resource)
	assert.Equal(t, 5.0, links[0].Amount)
	assert.Equal(t, production.LinkAllowOverProduction, links[0].Algorithm)

	instances := found.Root.Instances()
	require.Len(t, instances, 1)
	smelter := instances[0]
	assert.Equal(t, catalog.ID(7), smelter.Recipe)
	assert.Equal(t, catalog.ID(4), smelter.Entity)
	assert.Equal(t, catalog.ID(1), smelter.Fuel)
	assert.True(t, smelter.Enabled)
	assert.Equal(t, 2.0, smelter.FixedBuildings)
	require.NotNil(t, smelter.BuiltBuildings)
	assert.Equal(t, 3.0, *smelter.BuiltBuildings)

	nested := smelter.Subgroup()
	require.NotNil(t, nested)
	assert.Same(t, smelter, nested.Owner())
	require.Len(t, nested.Instances(), 1)
	assert.False(t, nested.Instances()[0].Enabled)
	link, ok := nested.Instances()[0].FindLink(catalog.ID(3))
	require.True(t, ok)
	assert.Same(t, links[0], link)
}

func TestPageRepository_SaveOverwritesExistingPage(t *testing.T) {
	// Arrange
	repo := newPageRepository(t)
	page := buildPage(t, "plates")
	require.NoError(t, repo.Save(context.Background(), page))

	page.Name = "iron plates"
	require.True(t, page.Root.RemoveLink(catalog.ID(3)))

	// Act
	err := repo.Save(context.Background(), page)

	// Assert
	require.NoError(t, err)
	found, err := repo.FindByName(context.Background(), "iron plates")
	require.NoError(t, err)
	assert.Equal(t, page.ID, found.ID)
	assert.Empty(t, found.Root.Links())

	pages, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestPageRepository_List(t *testing.T) {
	repo := newPageRepository(t)
	require.NoError(t, repo.Save(context.Background(), buildPage(t, "b-page")))
	require.NoError(t, repo.Save(context.Background(), buildPage(t, "a-page")))

	pages, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "a-page", pages[0].Name)
	assert.Equal(t, "b-page", pages[1].Name)
}

func TestPageRepository_NotFound(t *testing.T) {
	repo := newPageRepository(t)

	_, err := repo.FindByName(context.Background(), "missing")
	assert.ErrorIs(t, err, production.ErrPageNotFound)

	_, err = repo.FindByID(context.Background(), production.NewPageID())
	assert.ErrorIs(t, err, production.ErrPageNotFound)
}

func TestPageRepository_SaveStampsWithInjectedClock(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := shared.NewMockClock(start)
	repo := persistence.NewGormPageRepository(db, clock)
	page := buildPage(t, "plates")
	require.NoError(t, repo.Save(context.Background(), page))

	// Act
	clock.Advance(90 * time.Second)
	err := repo.Save(context.Background(), page)

	// Assert
	require.NoError(t, err)
	var model persistence.ProductionPageModel
	require.NoError(t, db.First(&model, "id = ?", page.ID.String()).Error)
	assert.WithinDuration(t, start, model.CreatedAt, time.Millisecond)
	assert.WithinDuration(t, start.Add(90*time.Second), model.UpdatedAt, time.Millisecond)
}
