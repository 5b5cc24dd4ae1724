// Package catalogfile reads and writes catalog dumps. Objects reference each
// other by name and each reference field names the kinds it may point to, so
// a recipe and its item may share a name. Ids are assigned in document order:
// resources, entities, processes, then technologies.
package catalogfile

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// Document is the on-disk catalog layout. JSON is accepted as well since it is valid YAML.
type Document struct {
	Resources    []ResourceDoc   `yaml:"resources,omitempty"`
	Entities     []EntityDoc     `yaml:"entities,omitempty"`
	Processes    []ProcessDoc    `yaml:"processes,omitempty"`
	Technologies []TechnologyDoc `yaml:"technologies,omitempty"`
}

// HeaderDoc carries accessibility; both flags default to true when omitted
type HeaderDoc struct {
	Name          string `yaml:"name"`
	Accessible    *bool  `yaml:"accessible,omitempty"`
	AccessibleNow *bool  `yaml:"accessible_now,omitempty"`
	Root          bool   `yaml:"root,omitempty"`
}

type ResourceDoc struct {
	HeaderDoc   `yaml:",inline"`
	Type        string   `yaml:"type,omitempty"`
	FuelValue   float64  `yaml:"fuel_value,omitempty"`
	SpentFuel   string   `yaml:"spent_fuel,omitempty"`
	Temperature float64  `yaml:"temperature,omitempty"`
	VariantOf   string   `yaml:"variant_of,omitempty"`
	Power       bool     `yaml:"power,omitempty"`
	MiscSources []string `yaml:"misc_sources,omitempty"`
}

type AmountDoc struct {
	Resource    string  `yaml:"resource"`
	Amount      float64 `yaml:"amount"`
	Probability float64 `yaml:"probability,omitempty"`
}

type EnergyDoc struct {
	Type        string   `yaml:"type"`
	Fuels       []string `yaml:"fuels,omitempty"`
	Effectivity float64  `yaml:"effectivity,omitempty"`
	Emissions   float64  `yaml:"emissions,omitempty"`
}

type EntityDoc struct {
	HeaderDoc     `yaml:",inline"`
	Loot          []AmountDoc `yaml:"loot,omitempty"`
	MapGenerated  bool        `yaml:"map_generated,omitempty"`
	MapGenDensity float64     `yaml:"map_gen_density,omitempty"`
	Power         float64     `yaml:"power,omitempty"`
	Energy        *EnergyDoc  `yaml:"energy,omitempty"`
	CraftingSpeed float64     `yaml:"crafting_speed,omitempty"`
	Productivity  float64     `yaml:"productivity,omitempty"`
	ItemsToPlace  []string    `yaml:"items_to_place,omitempty"`
	Size          int         `yaml:"size,omitempty"`
	Character     bool        `yaml:"character,omitempty"`
}

type ProcessDoc struct {
	HeaderDoc        `yaml:",inline"`
	Time             float64     `yaml:"time"`
	Ingredients      []AmountDoc `yaml:"ingredients,omitempty"`
	Products         []AmountDoc `yaml:"products,omitempty"`
	Crafters         []string    `yaml:"crafters,omitempty"`
	TechnologyUnlock []string    `yaml:"technology_unlock,omitempty"`
	SourceEntity     string      `yaml:"source_entity,omitempty"`
	Enabled          bool        `yaml:"enabled,omitempty"`
	Hidden           bool        `yaml:"hidden,omitempty"`
}

type TechnologyDoc struct {
	ProcessDoc    `yaml:",inline"`
	Count         float64  `yaml:"count"`
	Prerequisites []string `yaml:"prerequisites,omitempty"`
	UnlockRecipes []string `yaml:"unlock_recipes,omitempty"`
}

var resourceTypes = map[string]catalog.ResourceType{
	"":        catalog.ResourceItem,
	"item":    catalog.ResourceItem,
	"fluid":   catalog.ResourceFluid,
	"special": catalog.ResourceSpecial,
}

var energyTypes = map[string]catalog.EnergyType{
	"":         catalog.EnergyVoid,
	"void":     catalog.EnergyVoid,
	"electric": catalog.EnergyElectric,
	"burner":   catalog.EnergyBurner,
	"heat":     catalog.EnergyHeat,
	"fluid":    catalog.EnergyFluid,
}

// Decode reads a document and builds the catalog it describes
func Decode(r io.Reader) (*catalog.Catalog, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog document is empty")
		}
		return nil, fmt.Errorf("failed to parse catalog document: %w", err)
	}
	return doc.Build()
}

// Build resolves names and builds the catalog
func (d *Document) Build() (*catalog.Catalog, error) {
	ids := make(map[kindName]catalog.ID)
	next := catalog.ID(1)
	assign := func(kind catalog.Kind, name string) {
		key := kindName{kind: kind, name: name}
		if _, exists := ids[key]; !exists {
			ids[key] = next
		}
		next++
	}
	for _, r := range d.Resources {
		assign(catalog.KindResource, r.Name)
	}
	for _, e := range d.Entities {
		assign(catalog.KindEntity, e.Name)
	}
	for _, p := range d.Processes {
		assign(catalog.KindProcess, p.Name)
	}
	for _, t := range d.Technologies {
		assign(catalog.KindTechnology, t.Name)
	}

	res := &resolver{ids: ids}
	b := catalog.NewBuilder()

	for _, rd := range d.Resources {
		kind, ok := resourceTypes[rd.Type]
		if !ok {
			res.fail(fmt.Errorf("resource %s: unknown type %q", rd.Name, rd.Type))
		}
		b.AddResource(&catalog.Resource{
			Header:      rd.header(),
			Type:        kind,
			FuelValue:   rd.FuelValue,
			SpentFuel:   res.resource(rd.SpentFuel),
			Temperature: rd.Temperature,
			VariantOf:   rd.VariantOf,
			Power:       rd.Power,
			MiscSources: res.many(rd.MiscSources, catalog.KindResource, catalog.KindEntity),
		})
	}

	for _, ed := range d.Entities {
		entity := &catalog.Entity{
			Header:        ed.header(),
			Loot:          res.products(ed.Loot),
			MapGenerated:  ed.MapGenerated,
			MapGenDensity: ed.MapGenDensity,
			Power:         ed.Power,
			CraftingSpeed: ed.CraftingSpeed,
			Productivity:  ed.Productivity,
			ItemsToPlace:  res.many(ed.ItemsToPlace, catalog.KindResource),
			Size:          ed.Size,
			Character:     ed.Character,
		}
		if ed.Energy != nil {
			kind, ok := energyTypes[ed.Energy.Type]
			if !ok {
				res.fail(fmt.Errorf("entity %s: unknown energy type %q", ed.Name, ed.Energy.Type))
			}
			entity.Energy = &catalog.Energy{
				Type:        kind,
				Fuels:       res.many(ed.Energy.Fuels, catalog.KindResource),
				Effectivity: ed.Energy.Effectivity,
				Emissions:   ed.Energy.Emissions,
			}
		}
		b.AddEntity(entity)
	}

	for _, pd := range d.Processes {
		p := res.process(pd)
		b.AddProcess(&p)
	}

	for _, td := range d.Technologies {
		b.AddTechnology(&catalog.Technology{
			Process:       res.process(td.ProcessDoc),
			Count:         td.Count,
			Prerequisites: res.many(td.Prerequisites, catalog.KindTechnology),
			UnlockRecipes: res.many(td.UnlockRecipes, catalog.KindProcess),
		})
	}

	if err := errors.Join(res.errs...); err != nil {
		return nil, fmt.Errorf("invalid catalog document: %w", err)
	}
	return b.Build()
}

func (h HeaderDoc) header() catalog.Header {
	flag := func(v *bool) bool { return v == nil || *v }
	return catalog.Header{
		Name:          h.Name,
		Accessible:    flag(h.Accessible),
		AccessibleNow: flag(h.AccessibleNow),
		Root:          h.Root,
	}
}

// kindName mirrors the catalog's per-kind name scope
type kindName struct {
	kind catalog.Kind
	name string
}

type resolver struct {
	ids  map[kindName]catalog.ID
	errs []error
}

func (r *resolver) fail(err error) {
	r.errs = append(r.errs, err)
}

// one resolves name against the first of kinds that declares it
func (r *resolver) one(name string, kinds ...catalog.Kind) catalog.ID {
	if name == "" {
		return catalog.NoID
	}
	for _, kind := range kinds {
		if id, ok := r.ids[kindName{kind: kind, name: name}]; ok {
			return id
		}
	}
	r.fail(fmt.Errorf("no %s named %q: %w", joinKinds(kinds), name, &catalog.ErrUnknownObject{Name: name}))
	return catalog.NoID
}

func (r *resolver) resource(name string) catalog.ID {
	return r.one(name, catalog.KindResource)
}

func (r *resolver) many(names []string, kinds ...catalog.Kind) []catalog.ID {
	if len(names) == 0 {
		return nil
	}
	ids := make([]catalog.ID, 0, len(names))
	for _, name := range names {
		if id := r.one(name, kinds...); id != catalog.NoID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *resolver) products(docs []AmountDoc) []catalog.Product {
	var out []catalog.Product
	for _, d := range docs {
		out = append(out, catalog.Product{Resource: r.resource(d.Resource), Amount: d.Amount, Probability: d.Probability})
	}
	return out
}

func (r *resolver) process(pd ProcessDoc) catalog.Process {
	var ingredients []catalog.Ingredient
	for _, d := range pd.Ingredients {
		ingredients = append(ingredients, catalog.Ingredient{Resource: r.resource(d.Resource), Amount: d.Amount})
	}
	return catalog.Process{
		Header:           pd.header(),
		Ingredients:      ingredients,
		Products:         r.products(pd.Products),
		Crafters:         r.many(pd.Crafters, catalog.KindEntity),
		TechnologyUnlock: r.many(pd.TechnologyUnlock, catalog.KindTechnology),
		SourceEntity:     r.one(pd.SourceEntity, catalog.KindEntity),
		Time:             pd.Time,
		Enabled:          pd.Enabled,
		Hidden:           pd.Hidden,
	}
}

func joinKinds(kinds []catalog.Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = strings.ToLower(k.String())
	}
	return strings.Join(parts, " or ")
}
