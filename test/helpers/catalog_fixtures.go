package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// CatalogFixture builds small catalogs for tests. Every object it creates is
// accessible now unless a modifier says otherwise.
type CatalogFixture struct {
	builder *catalog.Builder
	objects map[catalog.ID]catalog.Object
}

// NewCatalogFixture creates an empty fixture
func NewCatalogFixture() *CatalogFixture {
	return &CatalogFixture{
		builder: catalog.NewBuilder(),
		objects: make(map[catalog.ID]catalog.Object),
	}
}

func (f *CatalogFixture) add(o catalog.Object) catalog.ID {
	h := o.Meta()
	h.Accessible = true
	h.AccessibleNow = true
	id := f.builder.Add(o)
	f.objects[id] = o
	return id
}

// Item adds an item resource
func (f *CatalogFixture) Item(name string) catalog.ID {
	return f.add(&catalog.Resource{Header: catalog.Header{Name: name}, Type: catalog.ResourceItem})
}

// Fuel adds a burnable item with the given fuel value in MJ
func (f *CatalogFixture) Fuel(name string, fuelValue float64) catalog.ID {
	return f.add(&catalog.Resource{Header: catalog.Header{Name: name}, Type: catalog.ResourceItem, FuelValue: fuelValue})
}

// Fluid adds a fluid; a non-empty variantOf groups it with other temperatures of the same fluid
func (f *CatalogFixture) Fluid(name, variantOf string, temperature float64) catalog.ID {
	return f.add(&catalog.Resource{
		Header:      catalog.Header{Name: name},
		Type:        catalog.ResourceFluid,
		VariantOf:   variantOf,
		Temperature: temperature,
	})
}

// Electricity adds the electric power carrier
func (f *CatalogFixture) Electricity() catalog.ID {
	return f.add(&catalog.Resource{Header: catalog.Header{Name: "electricity"}, Type: catalog.ResourceSpecial, Power: true, FuelValue: 1})
}

// Machine adds a void-powered crafter of size 1
func (f *CatalogFixture) Machine(name string, speed float64, itemsToPlace ...catalog.ID) catalog.ID {
	return f.add(&catalog.Entity{
		Header:        catalog.Header{Name: name},
		CraftingSpeed: speed,
		ItemsToPlace:  itemsToPlace,
		Size:          1,
	})
}

// BurnerMachine adds a crafter burning one of the given fuels
func (f *CatalogFixture) BurnerMachine(name string, speed, power float64, fuels ...catalog.ID) catalog.ID {
	return f.add(&catalog.Entity{
		Header:        catalog.Header{Name: name},
		CraftingSpeed: speed,
		Power:         power,
		Energy:        &catalog.Energy{Type: catalog.EnergyBurner, Fuels: fuels, Effectivity: 1},
		Size:          2,
	})
}

// Character adds the manual crafter
func (f *CatalogFixture) Character() catalog.ID {
	return f.add(&catalog.Entity{Header: catalog.Header{Name: "character", Root: true}, CraftingSpeed: 1, Character: true, Size: 1})
}

// OreField adds a map-generated entity that yields the given resource when mined
func (f *CatalogFixture) OreField(name string, resource catalog.ID, density float64) catalog.ID {
	return f.add(&catalog.Entity{
		Header:        catalog.Header{Name: name},
		MapGenerated:  true,
		MapGenDensity: density,
		Loot:          []catalog.Product{{Resource: resource, Amount: 1}},
		Size:          1,
	})
}

// Recipe adds an enabled process
func (f *CatalogFixture) Recipe(name string, time float64, crafters []catalog.ID, ingredients []catalog.Ingredient, products []catalog.Product) catalog.ID {
	return f.add(&catalog.Process{
		Header:      catalog.Header{Name: name},
		Time:        time,
		Crafters:    crafters,
		Ingredients: ingredients,
		Products:    products,
		Enabled:     true,
	})
}

// Technology adds a research consuming ingredients count times in the given labs
func (f *CatalogFixture) Technology(name string, count float64, labs []catalog.ID, ingredients []catalog.Ingredient, prerequisites ...catalog.ID) catalog.ID {
	return f.add(&catalog.Technology{
		Process: catalog.Process{
			Header:      catalog.Header{Name: name},
			Time:        30,
			Crafters:    labs,
			Ingredients: ingredients,
			Enabled:     true,
		},
		Count:         count,
		Prerequisites: prerequisites,
	})
}

// Object returns a created object for further tweaking before Build
func (f *CatalogFixture) Object(id catalog.ID) catalog.Object {
	return f.objects[id]
}

// Later marks an object reachable only after further milestones
func (f *CatalogFixture) Later(ids ...catalog.ID) *CatalogFixture {
	for _, id := range ids {
		f.objects[id].Meta().AccessibleNow = false
	}
	return f
}

// Inaccessible marks objects unreachable
func (f *CatalogFixture) Inaccessible(ids ...catalog.ID) *CatalogFixture {
	for _, id := range ids {
		h := f.objects[id].Meta()
		h.Accessible = false
		h.AccessibleNow = false
	}
	return f
}

// Build builds the catalog and fails the test on error
func (f *CatalogFixture) Build(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := f.TryBuild()
	require.NoError(t, err)
	return c
}

// TryBuild builds the catalog for callers without a testing.TB
func (f *CatalogFixture) TryBuild() (*catalog.Catalog, error) {
	return f.builder.Build()
}

// In creates ingredients from id/amount pairs
func In(pairs ...interface{}) []catalog.Ingredient {
	var out []catalog.Ingredient
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, catalog.Ingredient{Resource: pairs[i].(catalog.ID), Amount: toFloat(pairs[i+1])})
	}
	return out
}

// Out creates products from id/amount pairs
func Out(pairs ...interface{}) []catalog.Product {
	var out []catalog.Product
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, catalog.Product{Resource: pairs[i].(catalog.ID), Amount: toFloat(pairs[i+1])})
	}
	return out
}

// IDs is shorthand for a list of ids
func IDs(ids ...catalog.ID) []catalog.ID {
	return ids
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		panic("amount must be int or float64")
	}
}
