package catalogfile

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// Encode writes the catalog as a YAML document. Ids survive a round trip when
// the catalog was built resources first, then entities, processes and technologies.
func Encode(w io.Writer, c *catalog.Catalog) error {
	doc := FromCatalog(c)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode catalog document: %w", err)
	}
	return enc.Close()
}

// FromCatalog converts a catalog into its name-based document.
// Derived lists (production, usages, loot) are not written.
func FromCatalog(c *catalog.Catalog) *Document {
	w := writer{catalog: c}
	doc := &Document{}

	for _, r := range c.Resources() {
		doc.Resources = append(doc.Resources, ResourceDoc{
			HeaderDoc:   w.header(r.Header),
			Type:        resourceTypeName(r.Type),
			FuelValue:   r.FuelValue,
			SpentFuel:   w.one(r.SpentFuel),
			Temperature: r.Temperature,
			VariantOf:   r.VariantOf,
			Power:       r.Power,
			MiscSources: w.many(withoutLoot(r)),
		})
	}

	for _, e := range c.Entities() {
		ed := EntityDoc{
			HeaderDoc:     w.header(e.Header),
			Loot:          w.products(e.Loot),
			MapGenerated:  e.MapGenerated,
			MapGenDensity: e.MapGenDensity,
			Power:         e.Power,
			CraftingSpeed: e.CraftingSpeed,
			Productivity:  e.Productivity,
			ItemsToPlace:  w.many(e.ItemsToPlace),
			Size:          e.Size,
			Character:     e.Character,
		}
		if e.Energy != nil {
			ed.Energy = &EnergyDoc{
				Type:        energyTypeName(e.Energy.Type),
				Fuels:       w.many(e.Energy.Fuels),
				Effectivity: e.Energy.Effectivity,
				Emissions:   e.Energy.Emissions,
			}
		}
		doc.Entities = append(doc.Entities, ed)
	}

	for _, p := range c.Processes() {
		doc.Processes = append(doc.Processes, w.process(p))
	}

	for _, t := range c.Technologies() {
		doc.Technologies = append(doc.Technologies, TechnologyDoc{
			ProcessDoc:    w.process(&t.Process),
			Count:         t.Count,
			Prerequisites: w.many(t.Prerequisites),
			UnlockRecipes: w.many(t.UnlockRecipes),
		})
	}

	return doc
}

// withoutLoot drops the entity sources Build derives from loot tables
func withoutLoot(r *catalog.Resource) []catalog.ID {
	var out []catalog.ID
	for _, src := range r.MiscSources {
		derived := false
		for _, loot := range r.Loot {
			if loot == src {
				derived = true
				break
			}
		}
		if !derived {
			out = append(out, src)
		}
	}
	return out
}

func resourceTypeName(t catalog.ResourceType) string {
	switch t {
	case catalog.ResourceFluid:
		return "fluid"
	case catalog.ResourceSpecial:
		return "special"
	default:
		return ""
	}
}

func energyTypeName(t catalog.EnergyType) string {
	for name, v := range energyTypes {
		if v == t && name != "" {
			return name
		}
	}
	return "void"
}

type writer struct {
	catalog *catalog.Catalog
}

func (w writer) header(h catalog.Header) HeaderDoc {
	doc := HeaderDoc{Name: h.Name, Root: h.Root}
	if !h.Accessible {
		doc.Accessible = &h.Accessible
	}
	if !h.AccessibleNow {
		doc.AccessibleNow = &h.AccessibleNow
	}
	return doc
}

func (w writer) one(id catalog.ID) string {
	if id == catalog.NoID {
		return ""
	}
	return w.catalog.Name(id)
}

func (w writer) many(ids []catalog.ID) []string {
	if len(ids) == 0 {
		return nil
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = w.one(id)
	}
	return names
}

func (w writer) products(products []catalog.Product) []AmountDoc {
	var out []AmountDoc
	for _, p := range products {
		out = append(out, AmountDoc{Resource: w.one(p.Resource), Amount: p.Amount, Probability: p.Probability})
	}
	return out
}

func (w writer) process(p *catalog.Process) ProcessDoc {
	pd := ProcessDoc{
		HeaderDoc:        w.header(p.Header),
		Time:             p.Time,
		Products:         w.products(p.Products),
		Crafters:         w.many(p.Crafters),
		TechnologyUnlock: w.many(p.TechnologyUnlock),
		SourceEntity:     w.one(p.SourceEntity),
		Enabled:          p.Enabled,
		Hidden:           p.Hidden,
	}
	for _, ingredient := range p.Ingredients {
		pd.Ingredients = append(pd.Ingredients, AmountDoc{Resource: w.one(ingredient.Resource), Amount: ingredient.Amount})
	}
	return pd
}
