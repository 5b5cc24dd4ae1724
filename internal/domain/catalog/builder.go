package catalog

import (
	"fmt"
	"sort"
)

// Builder assembles a Catalog. Objects receive consecutive ids in the order
// they are added.
type Builder struct {
	objects []Object
	names   map[nameKey]ID
	errs    []error
}

// nameKey scopes names per kind; a recipe may share its item's name
type nameKey struct {
	kind Kind
	name string
}

// NewBuilder creates an empty catalog builder
func NewBuilder() *Builder {
	return &Builder{
		objects: []Object{nil},
		names:   make(map[nameKey]ID),
	}
}

// NextID returns the id the next added object will receive
func (b *Builder) NextID() ID {
	return ID(len(b.objects))
}

func (b *Builder) add(o Object) ID {
	h := o.Meta()
	next := b.NextID()
	if h.ID != NoID && h.ID != next {
		b.errs = append(b.errs, fmt.Errorf("object %q has id %d, expected %d", h.Name, h.ID, next))
	}
	if h.Name == "" {
		b.errs = append(b.errs, fmt.Errorf("object %d has no name", next))
	}
	key := nameKey{kind: o.Kind(), name: h.Name}
	if _, dup := b.names[key]; dup {
		b.errs = append(b.errs, &ErrDuplicateObject{Kind: key.kind, Name: h.Name})
	}
	h.ID = next
	b.names[key] = next
	b.objects = append(b.objects, o)
	return next
}

// AddResource registers a resource and returns its id
func (b *Builder) AddResource(r *Resource) ID { return b.add(r) }

// AddProcess registers a process and returns its id
func (b *Builder) AddProcess(p *Process) ID { return b.add(p) }

// AddEntity registers an entity and returns its id
func (b *Builder) AddEntity(e *Entity) ID { return b.add(e) }

// AddTechnology registers a technology and returns its id
func (b *Builder) AddTechnology(t *Technology) ID { return b.add(t) }

// Add registers any catalog object
func (b *Builder) Add(o Object) ID { return b.add(o) }

// Build validates references and derives the reverse lookups
// (production, usages, loot and fluid variants).
func (b *Builder) Build() (*Catalog, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", b.errs[0])
	}

	c := &Catalog{
		objects: b.objects,
		byName:  b.names,
	}

	for _, o := range c.Objects() {
		switch v := o.(type) {
		case *Resource:
			v.Production, v.Usages, v.Loot = nil, nil, nil
			c.resources = append(c.resources, v)
		case *Process:
			c.processes = append(c.processes, v)
		case *Technology:
			c.technologies = append(c.technologies, v)
		case *Entity:
			c.entities = append(c.entities, v)
		}
	}

	if err := b.validate(c); err != nil {
		return nil, err
	}

	appendUnique := func(list []ID, id ID) []ID {
		for _, existing := range list {
			if existing == id {
				return list
			}
		}
		return append(list, id)
	}

	for _, o := range c.Objects() {
		p, ok := AsProcess(o)
		if !ok {
			continue
		}
		id := o.Meta().ID
		for _, ingredient := range p.Ingredients {
			r, _ := c.Resource(ingredient.Resource)
			r.Usages = appendUnique(r.Usages, id)
		}
		if o.Kind() != KindProcess {
			continue
		}
		for _, product := range p.Products {
			r, _ := c.Resource(product.Resource)
			r.Production = appendUnique(r.Production, id)
		}
	}

	for _, e := range c.entities {
		for _, loot := range e.Loot {
			r, _ := c.Resource(loot.Resource)
			r.Loot = appendUnique(r.Loot, e.ID)
			r.MiscSources = appendUnique(r.MiscSources, e.ID)
		}
	}

	variants := make(map[string][]*Resource)
	for _, r := range c.resources {
		if r.IsFluid() && r.VariantOf != "" {
			variants[r.VariantOf] = append(variants[r.VariantOf], r)
		}
	}
	names := make([]string, 0, len(variants))
	for name, group := range variants {
		if len(group) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		group := variants[name]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Temperature < group[j].Temperature })
		c.fluidVariants = append(c.fluidVariants, group)
	}

	return c, nil
}

func (b *Builder) validate(c *Catalog) error {
	expect := func(owner string, id ID, kinds ...Kind) error {
		if id == NoID {
			return fmt.Errorf("%s has an empty reference", owner)
		}
		o := c.Object(id)
		if o == nil {
			return &ErrUnknownObject{ID: id, Name: owner}
		}
		for _, k := range kinds {
			if o.Kind() == k {
				return nil
			}
		}
		return fmt.Errorf("%s references %s %q where %v expected", owner, o.Kind(), o.Meta().Name, kinds)
	}

	for _, o := range c.Objects() {
		name := o.Meta().Name
		var refs []error
		switch v := o.(type) {
		case *Resource:
			if v.SpentFuel != NoID {
				refs = append(refs, expect(name, v.SpentFuel, KindResource))
			}
			for _, src := range v.MiscSources {
				refs = append(refs, expect(name, src, KindResource, KindEntity))
			}
		case *Entity:
			for _, loot := range v.Loot {
				refs = append(refs, expect(name, loot.Resource, KindResource))
			}
			for _, item := range v.ItemsToPlace {
				refs = append(refs, expect(name, item, KindResource))
			}
			if v.Energy != nil {
				for _, fuel := range v.Energy.Fuels {
					refs = append(refs, expect(name, fuel, KindResource))
				}
			}
		case *Technology:
			refs = append(refs, validateProcess(&v.Process, expect)...)
			for _, pre := range v.Prerequisites {
				refs = append(refs, expect(name, pre, KindTechnology))
			}
			for _, unlock := range v.UnlockRecipes {
				refs = append(refs, expect(name, unlock, KindProcess))
			}
		case *Process:
			refs = append(refs, validateProcess(v, expect)...)
		}
		for _, err := range refs {
			if err != nil {
				return fmt.Errorf("invalid catalog: %w", err)
			}
		}
	}
	return nil
}

func validateProcess(p *Process, expect func(string, ID, ...Kind) error) []error {
	var errs []error
	for _, ingredient := range p.Ingredients {
		errs = append(errs, expect(p.Name, ingredient.Resource, KindResource))
	}
	for _, product := range p.Products {
		errs = append(errs, expect(p.Name, product.Resource, KindResource))
	}
	for _, crafter := range p.Crafters {
		errs = append(errs, expect(p.Name, crafter, KindEntity))
	}
	for _, unlock := range p.TechnologyUnlock {
		errs = append(errs, expect(p.Name, unlock, KindTechnology))
	}
	if p.SourceEntity != NoID {
		errs = append(errs, expect(p.Name, p.SourceEntity, KindEntity))
	}
	if p.Time < 0 {
		errs = append(errs, fmt.Errorf("%s has negative time %v", p.Name, p.Time))
	}
	return errs
}
