package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/metrics"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
	"github.com/have-fun-was-taken/yafc-ce/pkg/graph"
)

// BuiltCountExceededMessage is reported when a solved model needs more buildings than are placed
const BuiltCountExceededMessage = "This model requires more buildings than are currently built"

const flowModelName = "flow"

// CostSource supplies the objective weights: the cost of running a process
// once and the cost of a resource, used to weigh diagnosis slack.
type CostSource interface {
	RecipeCost(id catalog.ID) float64
	Cost(id catalog.ID) float64
}

type zeroCosts struct{}

func (zeroCosts) RecipeCost(catalog.ID) float64 { return 0 }
func (zeroCosts) Cost(catalog.ID) float64       { return 0 }

// SolveOutcome summarises one flow solve
type SolveOutcome struct {
	Status         optimization.Status
	Attempts       int
	ObjectiveValue float64
	// Diagnosed is set when the first model was infeasible and the slack model ran
	Diagnosed   bool
	Instances   int
	Links       int
	PrunedLinks int
	// Message carries a non-fatal problem with the committed result
	Message  string
	Duration time.Duration
}

// FlowSolver computes the rate of every enabled process instance in a network tree
type FlowSolver struct {
	catalog   *catalog.Catalog
	costs     CostSource
	solvers   optimization.SolverFactory
	attempts  int
	suspender Suspender
}

// NewFlowSolver creates a solver. A nil cost source weighs every process
// equally; a nil suspender solves inline.
func NewFlowSolver(c *catalog.Catalog, costs CostSource, solvers optimization.SolverFactory, attempts int, suspender Suspender) *FlowSolver {
	if costs == nil {
		costs = zeroCosts{}
	}
	if suspender == nil {
		suspender = InlineSuspender{}
	}
	return &FlowSolver{
		catalog:   c,
		costs:     costs,
		solvers:   solvers,
		attempts:  attempts,
		suspender: suspender,
	}
}

type linkFlags uint8

const (
	hasProduction linkFlags = 1 << iota
	hasConsumption
)

// flowModel is the LP built from one flattened network. Links and instances
// are addressed by their position in the flattened lists.
type flowModel struct {
	solver optimization.LinearSolver

	instances     []*production.ProcessInstance
	instanceIndex map[*production.ProcessInstance]int
	variables     []optimization.Variable
	parameters    []production.Parameters

	links       []*production.FlowLink
	linkIndex   map[*production.FlowLink]int
	constraints []optimization.Constraint
	flags       []linkFlags
	pruned      []bool

	// sources are the links an instance draws from, targets the links it feeds
	sources [][]int
	targets [][]int
}

// Solve builds the LP for the network, solves it and commits rates, link
// states and per-scope flow. When the model is infeasible a slack model looks
// for the loops and splits responsible; its result is committed with
// warnings. Only when that also fails is a *production.SolveError returned,
// and the network then keeps its previous results.
func (f *FlowSolver) Solve(ctx context.Context, network *production.FlowNetwork) (*SolveOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("flow solve not started: %w", err)
	}
	start := time.Now()
	logger := common.LoggerFromContext(ctx)

	m, err := f.build(network)
	if err != nil {
		return nil, err
	}
	outcome := &SolveOutcome{
		Status:    optimization.StatusOptimal,
		Instances: len(m.instances),
		Links:     len(m.links),
	}
	for _, p := range m.pruned {
		if p {
			outcome.PrunedLinks++
		}
	}

	notMatchedFlow := make([]float64, len(m.links))
	recursive := make([]bool, len(m.links))

	if len(m.instances) > 0 {
		result := f.suspender.Suspend(ctx, func() common.SolveResult {
			return common.SolveWithDifferentSeeds(ctx, flowModelName, m.solver, f.attempts)
		})
		outcome.Status = result.Status
		outcome.Attempts = result.Attempts

		if !result.Status.Succeeded() {
			logger.Log(common.LevelWarning, "Flow model has no solution, looking for deadlocks and splits", map[string]interface{}{
				"status":    result.Status.String(),
				"instances": len(m.instances),
				"links":     len(m.links),
			})
			outcome.Diagnosed = true

			status, attempts := f.diagnose(ctx, m, notMatchedFlow, recursive)
			outcome.Status = status
			outcome.Attempts += attempts
			if !status.Succeeded() {
				metrics.RecordDiagnosis("failed")
				outcome.Duration = time.Since(start)
				solveErr := production.NewSolveError(status)
				logger.Log(common.LevelError, solveErr.Error(), map[string]interface{}{
					"status": status.String(),
				})
				return outcome, solveErr
			}
			metrics.RecordDiagnosis("resolved")
		}
		outcome.ObjectiveValue = m.solver.ObjectiveValue()
	}

	solution := m.solution(notMatchedFlow, recursive, len(m.instances) > 0)
	exceeded, err := network.Commit(f.catalog, solution)
	if err != nil {
		return outcome, fmt.Errorf("failed to commit flow solution: %w", err)
	}
	if exceeded {
		outcome.Message = BuiltCountExceededMessage
	}
	outcome.Duration = time.Since(start)

	metrics.RecordAnalysis(flowModelName, outcome.Duration.Seconds())
	logger.Log(common.LevelInfo, "Flow network solved", map[string]interface{}{
		"status":       outcome.Status.String(),
		"attempts":     outcome.Attempts,
		"diagnosed":    outcome.Diagnosed,
		"instances":    outcome.Instances,
		"links":        outcome.Links,
		"pruned_links": outcome.PrunedLinks,
		"objective":    outcome.ObjectiveValue,
		"duration_ms":  outcome.Duration.Milliseconds(),
	})
	return outcome, nil
}

func (f *FlowSolver) build(network *production.FlowNetwork) (*flowModel, error) {
	instances, links := network.Flatten()
	m := &flowModel{
		solver:        f.solvers.NewSolver(flowModelName),
		instances:     instances,
		instanceIndex: make(map[*production.ProcessInstance]int, len(instances)),
		variables:     make([]optimization.Variable, len(instances)),
		parameters:    make([]production.Parameters, len(instances)),
		links:         links,
		linkIndex:     make(map[*production.FlowLink]int, len(links)),
		constraints:   make([]optimization.Constraint, len(links)),
		flags:         make([]linkFlags, len(links)),
		pruned:        make([]bool, len(links)),
		sources:       make([][]int, len(instances)),
		targets:       make([][]int, len(instances)),
	}
	m.solver.SetMaximization(false)

	processes := make([]*catalog.Process, len(instances))
	for i, instance := range instances {
		process, ok := catalog.AsProcess(f.catalog.Object(instance.Recipe))
		if !ok {
			return nil, fmt.Errorf("process instance %d: %w", i, &catalog.ErrUnknownObject{ID: instance.Recipe, Name: "process instance"})
		}
		processes[i] = process
		params := production.CalculateParameters(f.catalog, process, instance.Entity, instance.Fuel, instance.ProductivityBonus)
		m.parameters[i] = params
		m.instanceIndex[instance] = i

		v := m.solver.MakeVariable(0, optimization.Infinity, process.Name)
		if instance.IsPinned() && params.RecipeTime > 0 {
			fixed := instance.FixedBuildings / params.RecipeTime
			m.solver.SetVariableBounds(v, fixed, fixed)
		}
		m.variables[i] = v
	}

	for i, link := range links {
		lo, hi := link.Algorithm.Bounds(link.Amount)
		m.constraints[i] = m.solver.MakeConstraint(lo, hi, f.catalog.Name(link.Resource)+"_link")
		m.linkIndex[link] = i
		switch {
		case link.Amount > 0:
			m.flags[i] = hasConsumption
		case link.Amount < 0:
			m.flags[i] = hasProduction
		}
	}

	for i, instance := range instances {
		process := processes[i]
		params := m.parameters[i]
		for _, product := range process.Products {
			if product.Amount <= 0 {
				continue
			}
			if idx, ok := m.resolve(instance, product.Resource); ok {
				m.attach(i, idx, product.Average(params.Productivity), hasProduction)
				m.targets[i] = append(m.targets[i], idx)
			}
		}
		for _, ingredient := range process.Ingredients {
			if idx, ok := m.resolve(instance, ingredient.Resource); ok {
				m.attach(i, idx, -ingredient.Amount, hasConsumption)
				m.sources[i] = append(m.sources[i], idx)
			}
		}

		fuel, ok := f.catalog.Resource(instance.Fuel)
		if !ok || params.FuelUsagePerSecondPerRecipe == 0 {
			continue
		}
		fuelAmount := params.FuelUsagePerSecondPerRecipe
		if idx, ok := m.resolve(instance, fuel.ID); ok {
			m.attach(i, idx, -fuelAmount, hasConsumption)
			m.sources[i] = append(m.sources[i], idx)
		}
		if idx, ok := m.resolve(instance, fuel.SpentFuel); ok {
			m.attach(i, idx, fuelAmount, hasProduction)
			m.targets[i] = append(m.targets[i], idx)
		}
	}

	// a link nobody produces or nobody consumes constrains nothing
	for i := range links {
		if m.flags[i]&(hasProduction|hasConsumption) != hasProduction|hasConsumption {
			m.pruned[i] = true
			m.solver.SetConstraintBounds(m.constraints[i], math.Inf(-1), math.Inf(1))
		}
	}

	for i, instance := range instances {
		m.solver.SetObjectiveCoefficient(m.variables[i], f.costs.RecipeCost(instance.Recipe))
	}
	return m, nil
}

func (m *flowModel) resolve(instance *production.ProcessInstance, resource catalog.ID) (int, bool) {
	link, ok := instance.FindLink(resource)
	if !ok {
		return 0, false
	}
	idx, ok := m.linkIndex[link]
	return idx, ok
}

func (m *flowModel) attach(instance, link int, amount float64, flag linkFlags) {
	m.flags[link] |= flag
	common.AddCoefficient(m.solver, m.constraints[link], m.variables[instance], amount)
}

// infeasibilityCandidates returns the links that may close a deadlock loop
// and the links where output is split between several consumers or producers
func (m *flowModel) infeasibilityCandidates() (loops, splits []int) {
	g := graph.New[int]()
	isSplit := make([]bool, len(m.links))
	producers := make([]int, len(m.links))

	for i := range m.instances {
		for _, src := range m.sources[i] {
			for _, tgt := range m.targets[i] {
				g.Connect(src, tgt)
			}
		}
		seen := make(map[int]bool, len(m.targets[i]))
		for _, tgt := range m.targets[i] {
			if len(m.targets[i]) > 1 {
				isSplit[tgt] = true
			}
			if !seen[tgt] {
				seen[tgt] = true
				producers[tgt]++
			}
		}
	}

	isLoop := make([]bool, len(m.links))
	for _, component := range graph.MergeStrongConnectedComponents(g).Nodes() {
		if !component.IsCycle() {
			continue
		}
		list := component.List
		isLoop[list[len(list)-1]] = true
		for i := 0; i < len(list)-1; i++ {
			for j := i + 2; j < len(list); j++ {
				if g.HasConnection(list[i], list[j]) {
					isLoop[list[i]] = true
					break
				}
			}
		}
	}

	for idx := range m.links {
		if m.pruned[idx] {
			continue
		}
		if isLoop[idx] {
			loops = append(loops, idx)
		}
		if isSplit[idx] || producers[idx] > 1 {
			splits = append(splits, idx)
		}
	}
	return loops, splits
}

func (f *FlowSolver) slackPenalty(resource catalog.ID) float64 {
	cost := math.Abs(f.costs.Cost(resource))
	if cost == 0 || math.IsInf(cost, 0) || math.IsNaN(cost) {
		return 1
	}
	return cost
}

// diagnose replaces the objective with slack penalties and solves again. On
// success it fills the not-matched flow of every slackened link and records
// the deadlock and overproduction warnings.
func (f *FlowSolver) diagnose(ctx context.Context, m *flowModel, notMatchedFlow []float64, recursive []bool) (optimization.Status, int) {
	m.solver.ClearObjective()
	loops, splits := m.infeasibilityCandidates()

	negative := make(map[int]optimization.Variable, len(loops))
	for _, idx := range loops {
		link := m.links[idx]
		v := m.solver.MakeVariable(0, optimization.Infinity, "negative-slack."+f.catalog.Name(link.Resource))
		m.solver.SetCoefficient(m.constraints[idx], v, 1)
		m.solver.SetObjectiveCoefficient(v, f.slackPenalty(link.Resource))
		negative[idx] = v
	}
	positive := make(map[int]optimization.Variable, len(splits))
	for _, idx := range splits {
		link := m.links[idx]
		v := m.solver.MakeVariable(0, optimization.Infinity, "positive-slack."+f.catalog.Name(link.Resource))
		m.solver.SetCoefficient(m.constraints[idx], v, -1)
		m.solver.SetObjectiveCoefficient(v, f.slackPenalty(link.Resource))
		positive[idx] = v
	}

	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Diagnosis candidates selected", map[string]interface{}{
		"loop_candidates":  len(loops),
		"split_candidates": len(splits),
	})

	result := f.suspender.Suspend(ctx, func() common.SolveResult {
		return common.SolveWithDifferentSeeds(ctx, flowModelName+"-diagnosis", m.solver, f.attempts)
	})
	if !result.Status.Succeeded() {
		return result.Status, result.Attempts
	}

	for idx := range m.links {
		if v, ok := positive[idx]; ok && m.solver.VariableBasisStatus(v) != optimization.BasisAtLowerBound {
			notMatchedFlow[idx] += m.solver.Value(v)
		}
		if v, ok := negative[idx]; ok && m.solver.VariableBasisStatus(v) != optimization.BasisAtLowerBound {
			notMatchedFlow[idx] -= m.solver.Value(v)
		}
		recursive[idx] = notMatchedFlow[idx] != 0
	}

	warn := func(i int, flow float64) {
		if flow > 0 {
			m.parameters[i].Warnings |= production.WarningOverproductionRequired
		} else {
			m.parameters[i].Warnings |= production.WarningDeadlockCandidate
		}
	}

	for idx, link := range m.links {
		if !recursive[idx] {
			continue
		}
		for owner := owningInstance(link.Owner()); owner != nil; owner = owningInstance(owner.Owner()) {
			if i, ok := m.instanceIndex[owner]; ok {
				warn(i, notMatchedFlow[idx])
			}
		}
	}
	for i := range m.instances {
		for _, group := range [][]int{m.sources[i], m.targets[i]} {
			for _, idx := range group {
				if recursive[idx] {
					warn(i, notMatchedFlow[idx])
				}
			}
		}
	}
	return result.Status, result.Attempts
}

func owningInstance(n *production.FlowNetwork) *production.ProcessInstance {
	if n == nil {
		return nil
	}
	return n.Owner()
}

// solution reads the solved LP into outcomes the network can commit
func (m *flowModel) solution(notMatchedFlow []float64, recursive []bool, solved bool) *production.Solution {
	s := production.NewSolution()
	for idx, link := range m.links {
		outcome := production.LinkOutcome{
			Pruned:         m.pruned[idx],
			Recursive:      recursive[idx],
			NotMatchedFlow: notMatchedFlow[idx],
		}
		if solved {
			outcome.DualValue = m.solver.DualValue(m.constraints[idx])
			basis := m.solver.ConstraintBasisStatus(m.constraints[idx])
			if (basis == optimization.BasisBasic || basis == optimization.BasisFree) &&
				(notMatchedFlow[idx] != 0 || link.Algorithm != production.LinkMatch) {
				outcome.NotMatched = true
			}
		}
		s.Links[link] = outcome
	}
	for i, instance := range m.instances {
		rate := 0.0
		if solved {
			rate = math.Max(0, m.solver.Value(m.variables[i]))
		}
		s.Instances[instance] = production.InstanceOutcome{Rate: rate, Parameters: m.parameters[i]}
	}
	return s
}
