package catalog

import (
	"sort"
)

// Catalog is the read-only object database the analyses run over.
// Build one with Builder; a built catalog is never mutated.
type Catalog struct {
	objects       []Object
	resources     []*Resource
	processes     []*Process
	technologies  []*Technology
	entities      []*Entity
	byName        map[nameKey]ID
	fluidVariants [][]*Resource
}

// Size returns the length a slice indexed by ID must have
func (c *Catalog) Size() int {
	return len(c.objects)
}

// Object returns the object with the given id, or nil
func (c *Catalog) Object(id ID) Object {
	if id <= NoID || int(id) >= len(c.objects) {
		return nil
	}
	return c.objects[id]
}

// lookupOrder breaks ties when a name is used by several kinds
var lookupOrder = []Kind{KindResource, KindProcess, KindEntity, KindTechnology}

// LookupKind finds an object by kind and name
func (c *Catalog) LookupKind(kind Kind, name string) (Object, bool) {
	id, ok := c.byName[nameKey{kind: kind, name: name}]
	if !ok {
		return nil, false
	}
	return c.objects[id], true
}

// Lookup finds an object by name in any kind. Names are unique per kind only,
// so resources win over processes, then entities, then technologies.
func (c *Catalog) Lookup(name string) (Object, bool) {
	return c.LookupAny(name, lookupOrder...)
}

// LookupAny returns the first object named name among kinds, in order
func (c *Catalog) LookupAny(name string, kinds ...Kind) (Object, bool) {
	for _, kind := range kinds {
		if o, ok := c.LookupKind(kind, name); ok {
			return o, true
		}
	}
	return nil, false
}

// MustLookup finds an object by name or returns ErrUnknownObject
func (c *Catalog) MustLookup(name string) (Object, error) {
	o, ok := c.Lookup(name)
	if !ok {
		return nil, &ErrUnknownObject{Name: name}
	}
	return o, nil
}

// MustLookupKind finds an object by kind and name or returns ErrUnknownObject
func (c *Catalog) MustLookupKind(kind Kind, name string) (Object, error) {
	o, ok := c.LookupKind(kind, name)
	if !ok {
		return nil, &ErrUnknownObject{Name: name}
	}
	return o, nil
}

// Resource returns the resource with the given id
func (c *Catalog) Resource(id ID) (*Resource, bool) {
	r, ok := c.Object(id).(*Resource)
	return r, ok
}

// Process returns the process with the given id; technologies are not processes here
func (c *Catalog) Process(id ID) (*Process, bool) {
	p, ok := c.Object(id).(*Process)
	return p, ok
}

// Entity returns the entity with the given id
func (c *Catalog) Entity(id ID) (*Entity, bool) {
	e, ok := c.Object(id).(*Entity)
	return e, ok
}

// Technology returns the technology with the given id
func (c *Catalog) Technology(id ID) (*Technology, bool) {
	t, ok := c.Object(id).(*Technology)
	return t, ok
}

// Objects returns every object in id order
func (c *Catalog) Objects() []Object {
	return c.objects[1:]
}

func (c *Catalog) Resources() []*Resource      { return c.resources }
func (c *Catalog) Processes() []*Process       { return c.processes }
func (c *Catalog) Technologies() []*Technology { return c.technologies }
func (c *Catalog) Entities() []*Entity         { return c.entities }

// FluidVariants returns fluids sharing a base name, each group ordered by temperature
func (c *Catalog) FluidVariants() [][]*Resource {
	return c.fluidVariants
}

// IsAccessible reports global accessibility
func (c *Catalog) IsAccessible(id ID) bool {
	o := c.Object(id)
	return o != nil && o.Meta().Accessible
}

// IsAccessibleNow reports accessibility with the currently reached milestones
func (c *Catalog) IsAccessibleNow(id ID) bool {
	o := c.Object(id)
	return o != nil && o.Meta().AccessibleNow
}

// Name returns the object name or a placeholder for unknown ids
func (c *Catalog) Name(id ID) string {
	o := c.Object(id)
	if o == nil {
		return "<none>"
	}
	return o.Meta().Name
}

// Compare orders objects deterministically: by kind, then by name, then by id.
func (c *Catalog) Compare(a, b ID) int {
	oa, ob := c.Object(a), c.Object(b)
	switch {
	case oa == nil && ob == nil:
		return 0
	case oa == nil:
		return -1
	case ob == nil:
		return 1
	}
	if oa.Kind() != ob.Kind() {
		return int(oa.Kind()) - int(ob.Kind())
	}
	if na, nb := oa.Meta().Name, ob.Meta().Name; na != nb {
		if na < nb {
			return -1
		}
		return 1
	}
	return int(a) - int(b)
}

// SortIDs sorts ids with Compare
func (c *Catalog) SortIDs(ids []ID) {
	sort.SliceStable(ids, func(i, j int) bool { return c.Compare(ids[i], ids[j]) < 0 })
}
