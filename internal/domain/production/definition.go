package production

import (
	"errors"
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// PageDefinition is the name-based description of a page, used for import
// and export. Object references are catalog names.
type PageDefinition struct {
	Name    string            `yaml:"name" json:"name"`
	Network NetworkDefinition `yaml:"network" json:"network"`
}

// NetworkDefinition describes one scope: its links and its instances in order
type NetworkDefinition struct {
	Links     []LinkDefinition     `yaml:"links,omitempty" json:"links,omitempty"`
	Instances []InstanceDefinition `yaml:"instances,omitempty" json:"instances,omitempty"`
}

// LinkDefinition describes a link; Algorithm defaults to MATCH
type LinkDefinition struct {
	Resource  string  `yaml:"resource" json:"resource"`
	Amount    float64 `yaml:"amount" json:"amount"`
	Algorithm string  `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
}

// InstanceDefinition describes a process instance and its optional nested network
type InstanceDefinition struct {
	Recipe            string             `yaml:"recipe" json:"recipe"`
	Entity            string             `yaml:"entity,omitempty" json:"entity,omitempty"`
	Fuel              string             `yaml:"fuel,omitempty" json:"fuel,omitempty"`
	Disabled          bool               `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	FixedBuildings    float64            `yaml:"fixed_buildings,omitempty" json:"fixed_buildings,omitempty"`
	BuiltBuildings    *float64           `yaml:"built_buildings,omitempty" json:"built_buildings,omitempty"`
	ProductivityBonus float64            `yaml:"productivity_bonus,omitempty" json:"productivity_bonus,omitempty"`
	Subgroup          *NetworkDefinition `yaml:"subgroup,omitempty" json:"subgroup,omitempty"`
}

// Resolve turns a definition into a page, looking every name up in the catalog
func (d PageDefinition) Resolve(c *catalog.Catalog) (*Page, error) {
	page, err := NewPage(d.Name)
	if err != nil {
		return nil, err
	}
	r := &definitionResolver{catalog: c}
	r.network(page.Root, d.Network, d.Name)
	if err := errors.Join(r.errs...); err != nil {
		return nil, fmt.Errorf("invalid page %q: %w", d.Name, err)
	}
	return page, nil
}

type definitionResolver struct {
	catalog *catalog.Catalog
	errs    []error
}

func (r *definitionResolver) lookup(name, path string, kinds ...catalog.Kind) catalog.ID {
	if name == "" {
		return catalog.NoID
	}
	if o, ok := r.catalog.LookupAny(name, kinds...); ok {
		return o.Meta().ID
	}
	o, err := r.catalog.MustLookup(name)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", path, err))
		return catalog.NoID
	}
	r.errs = append(r.errs, fmt.Errorf("%s: %q is a %s", path, name, o.Kind()))
	return catalog.NoID
}

func (r *definitionResolver) network(n *FlowNetwork, d NetworkDefinition, path string) {
	for _, ld := range d.Links {
		resource := r.lookup(ld.Resource, path+"/links", catalog.KindResource)
		algorithm, err := ParseLinkAlgorithm(ld.Algorithm)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("%s/links/%s: %w", path, ld.Resource, err))
			continue
		}
		if resource == catalog.NoID {
			continue
		}
		if _, err := n.AddLink(resource, ld.Amount, algorithm); err != nil {
			r.errs = append(r.errs, fmt.Errorf("%s/links: %w", path, err))
		}
	}

	for idx, id := range d.Instances {
		instancePath := fmt.Sprintf("%s/instances[%d]", path, idx)
		recipe := r.lookup(id.Recipe, instancePath, catalog.KindProcess, catalog.KindTechnology)
		if id.Recipe == "" {
			r.errs = append(r.errs, fmt.Errorf("%s: recipe is required", instancePath))
		}
		instance := n.AddProcess(recipe)
		instance.Entity = r.lookup(id.Entity, instancePath+"/entity", catalog.KindEntity)
		instance.Fuel = r.lookup(id.Fuel, instancePath+"/fuel", catalog.KindResource)
		instance.Enabled = !id.Disabled
		instance.FixedBuildings = id.FixedBuildings
		instance.BuiltBuildings = id.BuiltBuildings
		instance.ProductivityBonus = id.ProductivityBonus
		if id.Subgroup != nil {
			r.network(instance.CreateSubgroup(), *id.Subgroup, instancePath)
		}
	}
}

// Describe converts a page back into its name-based definition
func Describe(c *catalog.Catalog, page *Page) PageDefinition {
	return PageDefinition{Name: page.Name, Network: describeNetwork(c, page.Root)}
}

func describeNetwork(c *catalog.Catalog, n *FlowNetwork) NetworkDefinition {
	name := func(id catalog.ID) string {
		if id == catalog.NoID {
			return ""
		}
		return c.Name(id)
	}

	var d NetworkDefinition
	for _, link := range n.links {
		d.Links = append(d.Links, LinkDefinition{
			Resource:  name(link.Resource),
			Amount:    link.Amount,
			Algorithm: link.Algorithm.String(),
		})
	}
	for _, instance := range n.instances {
		id := InstanceDefinition{
			Recipe:            name(instance.Recipe),
			Entity:            name(instance.Entity),
			Fuel:              name(instance.Fuel),
			Disabled:          !instance.Enabled,
			FixedBuildings:    instance.FixedBuildings,
			BuiltBuildings:    instance.BuiltBuildings,
			ProductivityBonus: instance.ProductivityBonus,
		}
		if instance.subgroup != nil {
			sub := describeNetwork(c, instance.subgroup)
			id.Subgroup = &sub
		}
		d.Instances = append(d.Instances, id)
	}
	return d
}
