package catalogfile_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/catalogfile"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

func decodeFile(t *testing.T, path string) *catalog.Catalog {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	c, err := catalogfile.Decode(f)
	require.NoError(t, err)
	return c
}

func TestDecode_AssignsIDsInDocumentOrder(t *testing.T) {
	// Act
	c := decodeFile(t, "testdata/smelting.yaml")

	// Assert
	ore, err := c.MustLookup("iron-ore")
	require.NoError(t, err)
	assert.Equal(t, catalog.ID(1), ore.Meta().ID)

	field, err := c.MustLookup("iron-ore-field")
	require.NoError(t, err)
	assert.Equal(t, catalog.ID(6), field.Meta().ID)

	tech, err := c.MustLookup("steel-processing")
	require.NoError(t, err)
	assert.Equal(t, catalog.KindTechnology, tech.Kind())
	assert.Equal(t, catalog.ID(11), tech.Meta().ID)
}

func TestDecode_ResolvesReferencesAndDefaults(t *testing.T) {
	c := decodeFile(t, "testdata/smelting.yaml")

	o, _ := c.Lookup("iron-plate")
	plate := o.(*catalog.Resource)
	assert.True(t, plate.Accessible)
	assert.True(t, plate.AccessibleNow)
	assert.Len(t, plate.Production, 1)

	o, _ = c.Lookup("steam")
	steam := o.(*catalog.Resource)
	assert.True(t, steam.IsFluid())
	assert.False(t, steam.AccessibleNow)

	o, _ = c.Lookup("stone-furnace")
	furnace := o.(*catalog.Entity)
	require.NotNil(t, furnace.Energy)
	assert.Equal(t, catalog.EnergyBurner, furnace.Energy.Type)
	coal, _ := c.Lookup("coal")
	assert.Equal(t, []catalog.ID{coal.Meta().ID}, furnace.Energy.Fuels)

	o, _ = c.Lookup("iron-ore")
	ore := o.(*catalog.Resource)
	field, _ := c.Lookup("iron-ore-field")
	assert.Equal(t, []catalog.ID{field.Meta().ID}, ore.Loot)
}

func TestDecode_AcceptsJSON(t *testing.T) {
	doc := `{"resources": [{"name": "a"}, {"name": "b"}], "processes": [{"name": "a-to-b", "time": 1, "enabled": true, "ingredients": [{"resource": "a", "amount": 2}], "products": [{"resource": "b", "amount": 1}]}]}`

	c, err := catalogfile.Decode(strings.NewReader(doc))

	require.NoError(t, err)
	p, ok := c.Process(3)
	require.True(t, ok)
	assert.Equal(t, "a-to-b", p.Name)
	assert.Equal(t, 2.0, p.Ingredients[0].Amount)
}

func TestDecode_ReportsEveryUnknownName(t *testing.T) {
	// Arrange
	doc := `
resources:
  - name: a
    type: plasma
processes:
  - name: p
    time: 1
    ingredients:
      - resource: missing-one
        amount: 1
    crafters: [missing-two]
`

	// Act
	_, err := catalogfile.Decode(strings.NewReader(doc))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "plasma"`)
	assert.Contains(t, err.Error(), "missing-one")
	assert.Contains(t, err.Error(), "missing-two")
	var unknown *catalog.ErrUnknownObject
	assert.ErrorAs(t, err, &unknown)
}

func TestDecode_RejectsEmptyAndMalformedDocuments(t *testing.T) {
	_, err := catalogfile.Decode(strings.NewReader(""))
	assert.EqualError(t, err, "catalog document is empty")

	_, err = catalogfile.Decode(strings.NewReader("resources: {"))
	assert.ErrorContains(t, err, "failed to parse catalog document")
}

func TestDecode_RejectsDuplicateNames(t *testing.T) {
	_, err := catalogfile.Decode(strings.NewReader("resources:\n  - name: a\n  - name: a\n"))

	var dup *catalog.ErrDuplicateObject
	assert.ErrorAs(t, err, &dup)
}

func TestDecode_RecipeMayShareItsProductName(t *testing.T) {
	// Arrange
	doc := `
resources:
  - name: iron-plate
  - name: gear
entities:
  - name: assembler
    crafting_speed: 0.5
processes:
  - name: gear
    time: 0.5
    ingredients:
      - resource: iron-plate
        amount: 2
    products:
      - resource: gear
        amount: 1
    crafters: [assembler]
technologies:
  - name: automation
    time: 10
    unlock_recipes: [gear]
`

	// Act
	c, err := catalogfile.Decode(strings.NewReader(doc))

	// Assert
	require.NoError(t, err)
	item, ok := c.LookupKind(catalog.KindResource, "gear")
	require.True(t, ok)
	recipe, ok := c.LookupKind(catalog.KindProcess, "gear")
	require.True(t, ok)
	assert.NotEqual(t, item.Meta().ID, recipe.Meta().ID)

	p, _ := c.Process(recipe.Meta().ID)
	assert.Equal(t, item.Meta().ID, p.Products[0].Resource)
	tech, err := c.MustLookupKind(catalog.KindTechnology, "automation")
	require.NoError(t, err)
	assert.Equal(t, []catalog.ID{recipe.Meta().ID}, tech.(*catalog.Technology).UnlockRecipes)
}

func TestDecode_ReferenceMustNameTheExpectedKind(t *testing.T) {
	// Arrange: the crafter names a resource, not an entity
	doc := `
resources:
  - name: furnace
processes:
  - name: smelt
    time: 1
    crafters: [furnace]
`

	// Act
	_, err := catalogfile.Decode(strings.NewReader(doc))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no entity named "furnace"`)
}

func TestEncode_RoundTripKeepsIDsAndData(t *testing.T) {
	// Arrange
	original := decodeFile(t, "testdata/smelting.yaml")
	var buf bytes.Buffer

	// Act
	require.NoError(t, catalogfile.Encode(&buf, original))
	decoded, err := catalogfile.Decode(&buf)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, catalogfile.FromCatalog(original), catalogfile.FromCatalog(decoded))
	require.Equal(t, original.Size(), decoded.Size())
	for _, o := range original.Objects() {
		d := decoded.Object(o.Meta().ID)
		require.NotNil(t, d)
		assert.Equal(t, o.Meta().Name, d.Meta().Name)
		assert.Equal(t, o.Kind(), d.Kind())
	}
}

func TestEncode_OmitsDerivedLootSources(t *testing.T) {
	c := decodeFile(t, "testdata/smelting.yaml")

	doc := catalogfile.FromCatalog(c)

	assert.Empty(t, doc.Resources[0].MiscSources)
	assert.Equal(t, "burner", doc.Entities[1].Energy.Type)
	require.NotNil(t, doc.Resources[4].AccessibleNow)
	assert.False(t, *doc.Resources[4].AccessibleNow)
	assert.Nil(t, doc.Resources[4].Accessible)
}
