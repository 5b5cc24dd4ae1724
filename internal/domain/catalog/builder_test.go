package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

func TestBuilder_ItemAndRecipeMayShareAName(t *testing.T) {
	// Arrange
	b := catalog.NewBuilder()
	plate := b.AddResource(&catalog.Resource{Header: catalog.Header{Name: "iron-plate"}})
	gear := b.AddResource(&catalog.Resource{Header: catalog.Header{Name: "gear"}})
	assembler := b.AddEntity(&catalog.Entity{Header: catalog.Header{Name: "assembler"}, CraftingSpeed: 0.5})
	recipe := b.AddProcess(&catalog.Process{
		Header:      catalog.Header{Name: "gear"},
		Time:        0.5,
		Crafters:    []catalog.ID{assembler},
		Ingredients: []catalog.Ingredient{{Resource: plate, Amount: 2}},
		Products:    []catalog.Product{{Resource: gear, Amount: 1}},
	})

	// Act
	c, err := b.Build()

	// Assert
	require.NoError(t, err)

	item, ok := c.LookupKind(catalog.KindResource, "gear")
	require.True(t, ok)
	assert.Equal(t, gear, item.Meta().ID)

	process, ok := c.LookupKind(catalog.KindProcess, "gear")
	require.True(t, ok)
	assert.Equal(t, recipe, process.Meta().ID)

	r, _ := c.Resource(gear)
	assert.Equal(t, []catalog.ID{recipe}, r.Production)
}

func TestBuilder_RejectsDuplicateNameWithinKind(t *testing.T) {
	// Arrange
	b := catalog.NewBuilder()
	b.AddResource(&catalog.Resource{Header: catalog.Header{Name: "gear"}})
	b.AddResource(&catalog.Resource{Header: catalog.Header{Name: "gear"}})

	// Act
	_, err := b.Build()

	// Assert
	var dup *catalog.ErrDuplicateObject
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, catalog.KindResource, dup.Kind)
	assert.Equal(t, "gear", dup.Name)
}

func TestCatalog_LookupPrefersResourcesOverProcesses(t *testing.T) {
	// Arrange
	b := catalog.NewBuilder()
	recipe := b.AddProcess(&catalog.Process{Header: catalog.Header{Name: "steam"}, Time: 1})
	fluid := b.AddResource(&catalog.Resource{Header: catalog.Header{Name: "steam"}, Type: catalog.ResourceFluid})
	c, err := b.Build()
	require.NoError(t, err)

	// Act
	found, ok := c.Lookup("steam")
	onlyProcess, okProcess := c.LookupAny("steam", catalog.KindProcess, catalog.KindTechnology)
	_, missingErr := c.MustLookupKind(catalog.KindEntity, "steam")

	// Assert
	require.True(t, ok)
	assert.Equal(t, fluid, found.Meta().ID)
	require.True(t, okProcess)
	assert.Equal(t, recipe, onlyProcess.Meta().ID)
	var unknown *catalog.ErrUnknownObject
	assert.ErrorAs(t, missingErr, &unknown)
}
