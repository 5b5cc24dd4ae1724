package production

import (
	"strings"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// WarningFlags are non-fatal problems found while solving an instance
type WarningFlags int

const (
	WarningEntityNotSpecified WarningFlags = 1 << iota
	WarningFuelNotSpecified
	// WarningDeadlockCandidate marks instances touching a loop that could not be balanced
	WarningDeadlockCandidate
	// WarningOverproductionRequired marks instances whose balance needs surplus output
	WarningOverproductionRequired
	WarningExceedsBuiltCount
)

var warningNames = []struct {
	flag WarningFlags
	name string
}{
	{WarningEntityNotSpecified, "ENTITY_NOT_SPECIFIED"},
	{WarningFuelNotSpecified, "FUEL_NOT_SPECIFIED"},
	{WarningDeadlockCandidate, "DEADLOCK_CANDIDATE"},
	{WarningOverproductionRequired, "OVERPRODUCTION_REQUIRED"},
	{WarningExceedsBuiltCount, "EXCEEDS_BUILT_COUNT"},
}

// Has reports whether every flag in mask is set
func (w WarningFlags) Has(mask WarningFlags) bool {
	return w&mask == mask
}

func (w WarningFlags) String() string {
	if w == 0 {
		return "NONE"
	}
	var names []string
	for _, n := range warningNames {
		if w.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Parameters are the per-instance figures derived from the chosen entity and fuel
type Parameters struct {
	// RecipeTime is the seconds one building needs for one execution
	RecipeTime   float64
	Productivity float64

	FuelUsagePerSecondPerBuilding float64
	FuelUsagePerSecondPerRecipe   float64

	Warnings WarningFlags
}

// CalculateParameters derives execution time, productivity and fuel usage.
// A missing entity falls back to the bare process time; a powered entity
// without a usable fuel burns nothing and is flagged.
func CalculateParameters(c *catalog.Catalog, process *catalog.Process, entityID, fuelID catalog.ID, productivityBonus float64) Parameters {
	params := Parameters{
		RecipeTime:   process.Time,
		Productivity: productivityBonus,
	}

	entity, ok := c.Entity(entityID)
	if !ok {
		params.Warnings |= WarningEntityNotSpecified
		return params
	}

	if entity.CraftingSpeed > 0 {
		params.RecipeTime = process.Time / entity.CraftingSpeed
	}
	params.Productivity += entity.Productivity

	if entity.EnergyType() == catalog.EnergyVoid {
		return params
	}

	fuel, ok := c.Resource(fuelID)
	switch {
	case !ok:
		params.Warnings |= WarningFuelNotSpecified
		return params
	case fuel.Power:
		params.FuelUsagePerSecondPerBuilding = entity.Power / entity.Effectivity()
	case fuel.FuelValue > 0:
		params.FuelUsagePerSecondPerBuilding = entity.Power / entity.Effectivity() / fuel.FuelValue
	default:
		params.Warnings |= WarningFuelNotSpecified
		return params
	}
	params.FuelUsagePerSecondPerRecipe = params.FuelUsagePerSecondPerBuilding * params.RecipeTime
	return params
}
