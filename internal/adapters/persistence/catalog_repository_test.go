package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/persistence"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/test/helpers"
)

func buildCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	f := helpers.NewCatalogFixture()
	coal := f.Fuel("coal", 4)
	ore := f.Item("ore")
	plate := f.Item("plate")
	furnace := f.BurnerMachine("furnace", 1, 0.09, coal)
	f.OreField("ore-field", ore, 2)
	f.Recipe("smelt", 3.2, helpers.IDs(furnace), helpers.In(ore, 1), helpers.Out(plate, 1))
	lab := f.Machine("lab", 1)
	f.Technology("automation", 10, helpers.IDs(lab), helpers.In(plate, 1))
	f.Later(plate)
	return f.Build(t)
}

func TestCatalogRepository_SaveAndLoad(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCatalogRepository(db)
	original := buildCatalog(t)

	// Act
	err := repo.Save(context.Background(), original)
	require.NoError(t, err)
	loaded, err := repo.Load(context.Background())

	// Assert
	require.NoError(t, err)
	require.Equal(t, original.Size(), loaded.Size())
	for _, o := range original.Objects() {
		l := loaded.Object(o.Meta().ID)
		require.NotNil(t, l)
		assert.Equal(t, o.Kind(), l.Kind())
		assert.Equal(t, *o.Meta(), *l.Meta())
	}

	smelt, _ := loaded.Lookup("smelt")
	process := smelt.(*catalog.Process)
	assert.Equal(t, 3.2, process.Time)
	assert.Len(t, process.Ingredients, 1)

	furnace, _ := loaded.Lookup("furnace")
	require.NotNil(t, furnace.(*catalog.Entity).Energy)
	assert.Equal(t, catalog.EnergyBurner, furnace.(*catalog.Entity).Energy.Type)

	ore, _ := loaded.Lookup("ore")
	field, _ := loaded.Lookup("ore-field")
	assert.Equal(t, []catalog.ID{field.Meta().ID}, ore.(*catalog.Resource).Loot)
	assert.Equal(t, []catalog.ID{field.Meta().ID}, ore.(*catalog.Resource).MiscSources)

	tech, _ := loaded.Lookup("automation")
	assert.Equal(t, 10.0, tech.(*catalog.Technology).Count)
}

func TestCatalogRepository_SaveReplacesPreviousCatalog(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCatalogRepository(db)
	require.NoError(t, repo.Save(context.Background(), buildCatalog(t)))

	f := helpers.NewCatalogFixture()
	f.Item("only")
	replacement := f.Build(t)

	// Act
	err := repo.Save(context.Background(), replacement)

	// Assert
	require.NoError(t, err)
	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded.Objects(), 1)
	_, ok := loaded.Lookup("smelt")
	assert.False(t, ok)
}

func TestCatalogRepository_LoadEmpty(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCatalogRepository(db)

	_, err := repo.Load(context.Background())

	assert.ErrorIs(t, err, persistence.ErrCatalogEmpty)
}

func TestCatalogRepository_KeepsNamesSharedAcrossKinds(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCatalogRepository(db)
	f := helpers.NewCatalogFixture()
	plate := f.Item("plate")
	gear := f.Item("gear")
	assembler := f.Machine("assembler", 0.5)
	recipe := f.Recipe("gear", 0.5, helpers.IDs(assembler), helpers.In(plate, 2), helpers.Out(gear, 1))
	original := f.Build(t)

	// Act
	err := repo.Save(context.Background(), original)
	require.NoError(t, err)
	loaded, err := repo.Load(context.Background())

	// Assert
	require.NoError(t, err)
	item, ok := loaded.LookupKind(catalog.KindResource, "gear")
	require.True(t, ok)
	assert.Equal(t, gear, item.Meta().ID)
	process, ok := loaded.LookupKind(catalog.KindProcess, "gear")
	require.True(t, ok)
	assert.Equal(t, recipe, process.Meta().ID)
}
