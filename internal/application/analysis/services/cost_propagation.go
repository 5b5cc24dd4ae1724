package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/metrics"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
)

// CostAnalysisFailedMessage is reported when the cost model cannot be solved
const CostAnalysisFailedMessage = "Cost analysis was unable to process this catalog"

// CostAnalysis is the outcome of one cost propagation run. All per-object
// values are indexed by catalog id.
type CostAnalysis struct {
	OnlyCurrentMilestones bool
	Status                optimization.Status
	ObjectiveValue        float64
	// Warning is set when the model could not be solved
	Warning string

	cost              []float64
	recipeCost        []float64
	recipeProductCost []float64
	flow              []float64
	waste             []float64
	importantItems    []catalog.ID
}

func (a *CostAnalysis) at(values []float64, id catalog.ID) float64 {
	if id <= catalog.NoID || int(id) >= len(values) {
		return 0
	}
	return values[id]
}

// Cost returns the relative cost of an object; +Inf when it cannot be automated
func (a *CostAnalysis) Cost(id catalog.ID) float64 {
	if id <= catalog.NoID || int(id) >= len(a.cost) {
		return math.Inf(1)
	}
	return a.cost[id]
}

// RecipeCost returns the logistics cost of one execution of a process
func (a *CostAnalysis) RecipeCost(id catalog.ID) float64 { return a.at(a.recipeCost, id) }

// RecipeProductCost returns the summed cost of what one execution produces
func (a *CostAnalysis) RecipeProductCost(id catalog.ID) float64 {
	return a.at(a.recipeProductCost, id)
}

// Flow returns how much of an object the hypothetical late-game base needs
func (a *CostAnalysis) Flow(id catalog.ID) float64 { return a.at(a.flow, id) }

// Waste returns the share of a process cost that its products do not recover
func (a *CostAnalysis) Waste(id catalog.ID) float64 { return a.at(a.waste, id) }

// ImportantItems returns resources with several usages, most significant first
func (a *CostAnalysis) ImportantItems() []catalog.ID {
	return a.importantItems
}

// Succeeded reports whether costs come from a solved model
func (a *CostAnalysis) Succeeded() bool {
	return a.Status.Succeeded()
}

// CostAnalyzer builds and solves the global cost model
type CostAnalyzer struct {
	solvers               optimization.SolverFactory
	attempts              int
	onlyCurrentMilestones bool
}

// NewCostAnalyzer creates a cost analyzer. With onlyCurrentMilestones the
// model is restricted to what is automatable with the milestones reached now.
func NewCostAnalyzer(solvers optimization.SolverFactory, attempts int, onlyCurrentMilestones bool) *CostAnalyzer {
	return &CostAnalyzer{
		solvers:               solvers,
		attempts:              attempts,
		onlyCurrentMilestones: onlyCurrentMilestones,
	}
}

func (a *CostAnalyzer) modelName() string {
	if a.onlyCurrentMilestones {
		return "cost-milestones"
	}
	return "cost"
}

func (a *CostAnalyzer) includeFunc(c *catalog.Catalog, reach *Reachability) func(catalog.ID) bool {
	if a.onlyCurrentMilestones {
		return func(id catalog.ID) bool {
			return reach.IsAutomatableNow(id) && c.IsAccessibleNow(id)
		}
	}
	return reach.IsAutomatable
}

// Analyze assigns a cost to every object.
//
// Each included resource gets a cost variable, each included process a
// constraint: what it produces may not be worth more than what it consumes
// plus its logistics cost. Maximizing the costs, weighted by research usage,
// pushes every cost up to its cheapest production route. The dual of a process
// constraint tells how much the process is used.
//
// A model that cannot be solved is not an error: costs of solved objects are
// unavailable, Warning is set and excluded objects still get +Inf. An error
// is returned only when ctx is done.
func (a *CostAnalyzer) Analyze(ctx context.Context, c *catalog.Catalog, reach *Reachability) (*CostAnalysis, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx)
	include := a.includeFunc(c, reach)
	size := c.Size()

	solver := a.solvers.NewSolver(a.modelName())
	solver.SetMaximization(true)

	variables := make([]optimization.Variable, size)
	hasVariable := make([]bool, size)
	for _, r := range c.Resources() {
		if !include(r.ID) {
			continue
		}
		mapGenerated := 0.0
		for _, src := range r.MiscSources {
			entity, ok := c.Entity(src)
			if !ok || !entity.MapGenerated {
				continue
			}
			for _, loot := range entity.Loot {
				if loot.Resource == r.ID {
					mapGenerated += loot.Amount
				}
			}
		}
		upper := optimization.Infinity
		if mapGenerated > 0 {
			upper = costLimitWhenGeneratesOnMap / mapGenerated
		}
		v := solver.MakeVariable(0, upper, r.Name)
		// a small weight on every variable so resources outside research still get a cost
		solver.SetObjectiveCoefficient(v, 1e-3)
		variables[r.ID] = v
		hasVariable[r.ID] = true
	}

	for resource, usage := range a.researchUsage(c, reach) {
		if hasVariable[resource] {
			solver.SetObjectiveCoefficient(variables[resource], usage/1000)
		}
	}

	cost := make([]float64, size)
	recipeCost := make([]float64, size)
	constraints := make([]optimization.Constraint, size)
	hasConstraint := make([]bool, size)

	for _, p := range c.Processes() {
		if !include(p.ID) {
			continue
		}
		logistics := computeLogistics(c, p, include)
		constraint := solver.MakeConstraint(math.Inf(-1), logistics.Cost, p.Name)
		for _, product := range p.Products {
			if hasVariable[product.Resource] {
				common.AddCoefficient(solver, constraint, variables[product.Resource], product.Amount)
			}
		}
		if logistics.Fuel != catalog.NoID && hasVariable[logistics.Fuel] {
			common.AddCoefficient(solver, constraint, variables[logistics.Fuel], -logistics.FuelAmount)
		}
		for _, ingredient := range p.Ingredients {
			if hasVariable[ingredient.Resource] {
				common.AddCoefficient(solver, constraint, variables[ingredient.Resource], -ingredient.Amount)
			}
		}
		constraints[p.ID] = constraint
		hasConstraint[p.ID] = true
		cost[p.ID] = logistics.Cost
		recipeCost[p.ID] = logistics.Cost
	}

	// an item is never worth more than a resource it can be obtained from
	for _, r := range c.Resources() {
		if !r.IsItem() || !hasVariable[r.ID] {
			continue
		}
		for _, src := range r.MiscSources {
			if _, ok := c.Resource(src); !ok || !hasVariable[src] {
				continue
			}
			constraint := solver.MakeConstraint(math.Inf(-1), 0, "source-"+r.Name)
			solver.SetCoefficient(constraint, variables[src], -1)
			solver.SetCoefficient(constraint, variables[r.ID], 1)
		}
	}

	// colder fluid variants are never worth more than hotter ones
	for _, variants := range c.FluidVariants() {
		prev := variants[0]
		for _, cur := range variants[1:] {
			if hasVariable[prev.ID] && hasVariable[cur.ID] {
				constraint := solver.MakeConstraint(math.Inf(-1), 0, fmt.Sprintf("fluid-%s-%g", prev.VariantOf, prev.Temperature))
				solver.SetCoefficient(constraint, variables[prev.ID], 1)
				solver.SetCoefficient(constraint, variables[cur.ID], -1)
			}
			prev = cur
		}
	}

	result := common.SolveWithDifferentSeeds(ctx, a.modelName(), solver, a.attempts)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cost analysis interrupted: %w", err)
	}

	analysis := &CostAnalysis{
		OnlyCurrentMilestones: a.onlyCurrentMilestones,
		Status:                result.Status,
		recipeCost:            recipeCost,
		recipeProductCost:     make([]float64, size),
		flow:                  make([]float64, size),
		waste:                 make([]float64, size),
	}

	if result.Status.Succeeded() {
		analysis.ObjectiveValue = solver.ObjectiveValue()
		for id := 1; id < size; id++ {
			if hasVariable[id] {
				cost[id] = solver.Value(variables[id])
			}
		}
		for _, p := range c.Processes() {
			if !hasConstraint[p.ID] {
				continue
			}
			processFlow := solver.DualValue(constraints[p.ID])
			if processFlow <= 0 {
				continue
			}
			analysis.flow[p.ID] = processFlow
			for _, product := range p.Products {
				analysis.flow[product.Resource] += processFlow * product.Amount
			}
		}
	}

	for _, o := range c.Objects() {
		id := o.Meta().ID
		if !include(id) {
			cost[id] = math.Inf(1)
			continue
		}
		if p, ok := catalog.AsProcess(o); ok {
			for _, ingredient := range p.Ingredients {
				cost[id] += cost[ingredient.Resource] * ingredient.Amount
			}
			for _, product := range p.Products {
				analysis.recipeProductCost[id] += product.Amount * cost[product.Resource]
			}
			continue
		}
		if e, ok := o.(*catalog.Entity); ok {
			minimal := math.Inf(1)
			for _, item := range e.ItemsToPlace {
				if cost[item] < minimal {
					minimal = cost[item]
				}
			}
			cost[id] = minimal
		}
	}
	analysis.cost = cost

	if result.Status.Succeeded() {
		for _, p := range c.Processes() {
			if !hasConstraint[p.ID] {
				continue
			}
			productCost := 0.0
			for _, product := range p.Products {
				productCost += product.Amount * cost[product.Resource]
			}
			if cost[p.ID] != 0 {
				analysis.waste[p.ID] = 1 - productCost/cost[p.ID]
			}
		}
	} else {
		analysis.Warning = CostAnalysisFailedMessage
		logger.Log(common.LevelWarning, CostAnalysisFailedMessage, map[string]interface{}{
			"model":  a.modelName(),
			"status": result.Status.String(),
		})
	}

	analysis.importantItems = a.rankImportantItems(c, analysis, include)

	metrics.RecordAnalysis(a.modelName(), time.Since(start).Seconds())
	logger.Log(common.LevelInfo, "Cost analysis completed", map[string]interface{}{
		"model":       a.modelName(),
		"status":      result.Status.String(),
		"attempts":    result.Attempts,
		"duration_ms": time.Since(start).Milliseconds(),
		"objective":   analysis.ObjectiveValue,
	})

	return analysis, nil
}

// researchUsage sums ingredient amount times research count over accessible technologies.
// The milestone variant counts only packs accessible now; packs of later milestones
// get no LP variable in that variant anyway.
func (a *CostAnalyzer) researchUsage(c *catalog.Catalog, reach *Reachability) map[catalog.ID]float64 {
	usage := make(map[catalog.ID]float64)
	for _, t := range c.Technologies() {
		if !t.Accessible {
			continue
		}
		for _, ingredient := range t.Ingredients {
			if !reach.IsAutomatable(ingredient.Resource) {
				continue
			}
			if a.onlyCurrentMilestones && !c.IsAccessibleNow(ingredient.Resource) {
				continue
			}
			usage[ingredient.Resource] += ingredient.Amount * t.Count
		}
	}
	return usage
}

// rankImportantItems orders resources used by more than one process by
// flow × cost × number of included lossless usages, ties by id.
func (a *CostAnalyzer) rankImportantItems(c *catalog.Catalog, analysis *CostAnalysis, include func(catalog.ID) bool) []catalog.ID {
	type ranked struct {
		id    catalog.ID
		score float64
	}
	var items []ranked
	for _, r := range c.Resources() {
		if len(r.Usages) <= 1 {
			continue
		}
		lossless := 0
		for _, usage := range r.Usages {
			if include(usage) && analysis.Waste(usage) == 0 {
				lossless++
			}
		}
		score := analysis.Flow(r.ID) * analysis.Cost(r.ID) * float64(lossless)
		if math.IsNaN(score) {
			score = 0
		}
		items = append(items, ranked{id: r.ID, score: score})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	ids := make([]catalog.ID, len(items))
	for i, item := range items {
		ids[i] = item.id
	}
	return ids
}
