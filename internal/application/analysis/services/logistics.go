package services

import (
	"math"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// Cost model weights. Costs are relative: one unit is roughly what a small
// machine spends per second moving one item in and out.
const (
	costPerSecond               = 0.1
	costPerMj                   = 0.1
	costPerIngredientPerSize    = 0.1
	costPerProductPerSize       = 0.2
	costPerItem                 = 0.02
	costPerFluid                = 0.0005
	costPerPollution            = 0.01
	costLimitWhenGeneratesOnMap = 1e4

	miningPenalty                  = 1.0
	miningMaxDensityForPenalty     = 2000.0
	miningMaxExtraPenaltyForRarity = 10.0

	// crafter loop starting points, larger than any real crafter
	initialMinEmissions = 100.0
	initialMinSize      = 15
	initialMinPower     = 1000.0
)

// processLogistics is the fixed per-execution cost of running a process and
// the single fuel every crafter agrees on, if any.
type processLogistics struct {
	Cost       float64
	Fuel       catalog.ID
	FuelAmount float64
}

// computeLogistics derives the logistics cost of one execution of p.
//
// Crafters are scanned for the smallest size, power draw and emissions. A
// heat-powered crafter stops the scan. The fuel is kept only while every
// crafter burns the same single fuel; electricity and other power carriers
// are never charged as fuel.
func computeLogistics(c *catalog.Catalog, p *catalog.Process, include func(catalog.ID) bool) processLogistics {
	var (
		fuel        = catalog.NoID
		fuelAmount  = 0.0
		minEmission = initialMinEmissions
		minSize     = initialMinSize
		minPower    = initialMinPower
	)

crafters:
	for _, crafterID := range p.Crafters {
		crafter, ok := c.Entity(crafterID)
		if !ok {
			continue
		}
		var emissions float64
		if crafter.Energy != nil {
			emissions = crafter.Energy.Emissions
		}
		minEmission = math.Min(minEmission, emissions)
		if crafter.EnergyType() == catalog.EnergyHeat {
			break
		}

		if crafter.Size < minSize {
			minSize = crafter.Size
		}

		power := 0.0
		if crafter.EnergyType() != catalog.EnergyVoid {
			power = p.Time * crafter.Power / (crafter.CraftingSpeed * crafter.Effectivity())
		}
		if power < minPower {
			minPower = power
		}

		if crafter.Energy != nil {
			for _, fuelID := range crafter.Energy.Fuels {
				if !include(fuelID) {
					continue
				}
				resource, _ := c.Resource(fuelID)
				if resource == nil || resource.FuelValue <= 0 {
					fuel = catalog.NoID
					break
				}
				amount := power / resource.FuelValue
				switch {
				case fuel == catalog.NoID:
					fuel, fuelAmount = fuelID, amount
				case fuel == fuelID:
					fuelAmount = math.Min(fuelAmount, amount)
				default:
					fuel = catalog.NoID
				}
				if fuel == catalog.NoID {
					break
				}
			}
		}
		if fuel == catalog.NoID {
			break crafters
		}
	}

	if minPower < 0 {
		minPower = 0
	}

	size := (len(p.Ingredients) + len(p.Products)) / 2
	if minSize > size {
		size = minSize
	}
	sizeUsage := costPerSecond * p.Time * float64(size)
	cost := sizeUsage*(1+costPerIngredientPerSize*float64(len(p.Ingredients))+costPerProductPerSize*float64(len(p.Products))) +
		costPerMj*minPower

	if resource, ok := c.Resource(fuel); ok && resource.Power {
		fuel = catalog.NoID
	}

	for _, product := range p.Products {
		cost += amountCost(c, product.Resource, product.Amount)
	}
	for _, ingredient := range p.Ingredients {
		cost += amountCost(c, ingredient.Resource, ingredient.Amount)
	}

	if source, ok := c.Entity(p.SourceEntity); ok && source.MapGenerated {
		totalMining := 0.0
		for _, product := range p.Products {
			totalMining += product.Amount
		}
		penalty := miningPenalty
		density := source.MapGenDensity / totalMining
		if density < miningMaxDensityForPenalty {
			penalty += math.Min(math.Log(miningMaxDensityForPenalty/density), miningMaxExtraPenaltyForRarity)
		}
		cost *= penalty
	}

	if minEmission >= 0 {
		cost += minEmission * costPerPollution * p.Time
	}

	logistics := processLogistics{Cost: cost}
	if fuel != catalog.NoID {
		logistics.Fuel = fuel
		logistics.FuelAmount = fuelAmount
	}
	return logistics
}

func amountCost(c *catalog.Catalog, id catalog.ID, amount float64) float64 {
	resource, ok := c.Resource(id)
	switch {
	case !ok:
		return 0
	case resource.IsItem():
		return amount * costPerItem
	case resource.IsFluid():
		return amount * costPerFluid
	default:
		return 0
	}
}
