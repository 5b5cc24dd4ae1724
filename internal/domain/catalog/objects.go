package catalog

// ResourceType distinguishes the physical form of a resource
type ResourceType int

const (
	ResourceItem ResourceType = iota
	ResourceFluid
	ResourceSpecial
)

func (t ResourceType) String() string {
	switch t {
	case ResourceItem:
		return "ITEM"
	case ResourceFluid:
		return "FLUID"
	default:
		return "SPECIAL"
	}
}

// Resource is anything that flows between processes: items, fluids and
// special carriers such as electricity.
type Resource struct {
	Header
	Type        ResourceType
	FuelValue   float64
	SpentFuel   ID
	Temperature float64
	// VariantOf groups fluids that differ only by temperature
	VariantOf string
	// Power marks special energy carriers that never count as burnable fuel
	Power bool
	// MiscSources lists objects (entities or other resources) the resource can be obtained from
	MiscSources []ID

	// filled in by Builder.Build
	Production []ID
	Usages     []ID
	Loot       []ID
}

func (r *Resource) Kind() Kind { return KindResource }

func (r *Resource) dependencies(emit func(DependencyFlags, []ID)) {
	sources := make([]ID, 0, len(r.Production)+len(r.Loot))
	sources = append(sources, r.Production...)
	sources = append(sources, r.Loot...)
	emit(DependencySource, sources)
}

// IsFluid reports whether the resource is a fluid
func (r *Resource) IsFluid() bool { return r.Type == ResourceFluid }

// IsItem reports whether the resource is an item
func (r *Resource) IsItem() bool { return r.Type == ResourceItem }

// Ingredient is a consumed resource amount per process execution
type Ingredient struct {
	Resource ID
	Amount   float64
}

// Product is a produced resource amount per process execution
type Product struct {
	Resource    ID
	Amount      float64
	Probability float64
}

// Average returns the expected amount per execution under the given productivity bonus
func (p Product) Average(productivity float64) float64 {
	probability := p.Probability
	if probability == 0 {
		probability = 1
	}
	return p.Amount * probability * (1 + productivity)
}

// Process is a recipe: ingredients turn into products over Time seconds on one of the crafters.
type Process struct {
	Header
	Ingredients      []Ingredient
	Products         []Product
	Crafters         []ID
	TechnologyUnlock []ID
	SourceEntity     ID
	Time             float64
	// Enabled processes are available without research
	Enabled bool
	Hidden  bool
}

func (p *Process) Kind() Kind { return KindProcess }

func (p *Process) dependencies(emit func(DependencyFlags, []ID)) {
	if len(p.Ingredients) > 0 {
		ingredients := make([]ID, len(p.Ingredients))
		for i, ingredient := range p.Ingredients {
			ingredients[i] = ingredient.Resource
		}
		emit(DependencyIngredient, ingredients)
	}
	emit(DependencyCraftingEntity, p.Crafters)
	if p.SourceEntity != NoID {
		emit(DependencySourceEntity, []ID{p.SourceEntity})
	}
	if !p.Enabled {
		emit(DependencyTechnologyUnlock, p.TechnologyUnlock)
	}
}

// AsProcess returns the process part of processes and technologies
func AsProcess(o Object) (*Process, bool) {
	switch v := o.(type) {
	case *Process:
		return v, true
	case *Technology:
		return &v.Process, true
	default:
		return nil, false
	}
}

// Technology is a research: a process consumed Count times that unlocks other processes.
type Technology struct {
	Process
	Count         float64
	Prerequisites []ID
	UnlockRecipes []ID
}

func (t *Technology) Kind() Kind { return KindTechnology }

func (t *Technology) dependencies(emit func(DependencyFlags, []ID)) {
	t.Process.dependencies(emit)
	if len(t.Prerequisites) > 0 {
		emit(DependencyTechnologyPrerequisites, t.Prerequisites)
	}
}

// EnergyType describes how an entity is powered
type EnergyType int

const (
	EnergyVoid EnergyType = iota
	EnergyElectric
	EnergyBurner
	EnergyHeat
	EnergyFluid
)

// Energy is an entity's energy source
type Energy struct {
	Type        EnergyType
	Fuels       []ID
	Effectivity float64
	Emissions   float64
}

// Entity is a placeable machine, a map feature, or the player character.
type Entity struct {
	Header
	Loot          []Product
	MapGenerated  bool
	MapGenDensity float64
	// Power is the energy draw in MW
	Power         float64
	Energy        *Energy
	CraftingSpeed float64
	Productivity  float64
	ItemsToPlace  []ID
	Size          int
	// Character marks the manual crafter
	Character bool
}

func (e *Entity) Kind() Kind { return KindEntity }

func (e *Entity) dependencies(emit func(DependencyFlags, []ID)) {
	if e.Energy != nil {
		emit(DependencyFuel, e.Energy.Fuels)
	}
	if e.MapGenerated {
		return
	}
	emit(DependencyItemToPlace, e.ItemsToPlace)
}

// Effectivity returns the energy effectivity, defaulting to 1
func (e *Entity) Effectivity() float64 {
	if e.Energy == nil || e.Energy.Effectivity <= 0 {
		return 1
	}
	return e.Energy.Effectivity
}

// EnergyType returns the energy kind, void when the entity has no energy source
func (e *Entity) EnergyType() EnergyType {
	if e.Energy == nil {
		return EnergyVoid
	}
	return e.Energy.Type
}
