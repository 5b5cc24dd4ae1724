package catalog

// DependencyFlags combines a group kind (low byte) with semantic bits
type DependencyFlags int

const (
	// RequireEverything makes a group an AND; without it any single member suffices
	RequireEverything DependencyFlags = 0x100
	// OneTimeInvestment groups are paid once and excluded from recurring analyses
	OneTimeInvestment DependencyFlags = 0x200

	DependencyIngredient              = 1 | RequireEverything
	DependencyCraftingEntity          = 2 | OneTimeInvestment
	DependencySourceEntity            = 3 | OneTimeInvestment
	DependencyTechnologyUnlock        = 4 | OneTimeInvestment
	DependencySource                  DependencyFlags = 5
	DependencyFuel                    DependencyFlags = 6
	DependencyItemToPlace             DependencyFlags = 7
	DependencyTechnologyPrerequisites = 8 | RequireEverything | OneTimeInvestment
)

// Has reports whether all bits of mask are set
func (f DependencyFlags) Has(mask DependencyFlags) bool {
	return f&mask == mask
}

func (f DependencyFlags) String() string {
	switch f {
	case DependencyIngredient:
		return "Ingredient"
	case DependencyCraftingEntity:
		return "CraftingEntity"
	case DependencySourceEntity:
		return "SourceEntity"
	case DependencyTechnologyUnlock:
		return "TechnologyUnlock"
	case DependencySource:
		return "Source"
	case DependencyFuel:
		return "Fuel"
	case DependencyItemToPlace:
		return "ItemToPlace"
	case DependencyTechnologyPrerequisites:
		return "TechnologyPrerequisites"
	default:
		return "Unknown"
	}
}

// DependencyList is one group of prerequisites for an object
type DependencyList struct {
	Flags    DependencyFlags
	Elements []ID
}

// RequiresAll reports AND semantics
func (d DependencyList) RequiresAll() bool {
	return d.Flags.Has(RequireEverything)
}

// IsOneTimeInvestment reports whether the group is excluded from recurring analyses
func (d DependencyList) IsOneTimeInvestment() bool {
	return d.Flags.Has(OneTimeInvestment)
}

// Dependencies returns the dependency groups of an object in emission order.
// Element slices are copies and safe to retain.
func Dependencies(o Object) []DependencyList {
	var groups []DependencyList
	o.dependencies(func(flags DependencyFlags, elements []ID) {
		packed := make([]ID, len(elements))
		copy(packed, elements)
		groups = append(groups, DependencyList{Flags: flags, Elements: packed})
	})
	return groups
}
