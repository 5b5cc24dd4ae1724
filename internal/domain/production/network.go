package production

import (
	"errors"
	"math"
	"sort"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// fluidFlowDivisor scales fluid amounts so they compare with item amounts
const fluidFlowDivisor = 50

// flowImbalanceTolerance is the largest leak a nested unmatched link may have
const flowImbalanceTolerance = 1e-8

// FlowEntry is the net rate of one resource leaving (positive) or entering a network
type FlowEntry struct {
	Resource catalog.ID
	Amount   float64
	// Link is the link resolving the resource from this network, or nil
	Link *FlowLink
}

// FlowNetwork is one scope of the production hierarchy: ordered process
// instances and at most one link per resource.
type FlowNetwork struct {
	owner     *ProcessInstance
	instances []*ProcessInstance
	links     []*FlowLink
	linkIndex map[catalog.ID]*FlowLink
	flow      []FlowEntry
}

// NewFlowNetwork creates an empty top-level network
func NewFlowNetwork() *FlowNetwork {
	return &FlowNetwork{linkIndex: make(map[catalog.ID]*FlowLink)}
}

// Owner returns the instance owning a nested network; nil for the top level
func (n *FlowNetwork) Owner() *ProcessInstance { return n.owner }

// Instances returns the instances in order
func (n *FlowNetwork) Instances() []*ProcessInstance {
	out := make([]*ProcessInstance, len(n.instances))
	copy(out, n.instances)
	return out
}

// Links returns the links in creation order
func (n *FlowNetwork) Links() []*FlowLink {
	out := make([]*FlowLink, len(n.links))
	copy(out, n.links)
	return out
}

// Flow returns the net flow computed by the last solve, sorted ascending
func (n *FlowNetwork) Flow() []FlowEntry {
	return n.flow
}

// AddInstance appends an instance and takes ownership of it
func (n *FlowNetwork) AddInstance(instance *ProcessInstance) *ProcessInstance {
	instance.owner = n
	n.instances = append(n.instances, instance)
	return instance
}

// AddProcess appends a new enabled instance of a process
func (n *FlowNetwork) AddProcess(recipe catalog.ID) *ProcessInstance {
	return n.AddInstance(NewProcessInstance(recipe))
}

// AddLink creates the link for a resource. Each resource has at most one link per network.
func (n *FlowNetwork) AddLink(resource catalog.ID, amount float64, algorithm LinkAlgorithm) (*FlowLink, error) {
	if _, exists := n.linkIndex[resource]; exists {
		return nil, &ErrDuplicateLink{Resource: resource}
	}
	link := &FlowLink{Resource: resource, Amount: amount, Algorithm: algorithm, owner: n}
	n.links = append(n.links, link)
	n.linkIndex[resource] = link
	return link, nil
}

// RemoveLink deletes the link for a resource
func (n *FlowNetwork) RemoveLink(resource catalog.ID) bool {
	link, ok := n.linkIndex[resource]
	if !ok {
		return false
	}
	delete(n.linkIndex, resource)
	for idx, l := range n.links {
		if l == link {
			n.links = append(n.links[:idx], n.links[idx+1:]...)
			break
		}
	}
	link.owner = nil
	return true
}

// Link returns the link this network owns for a resource
func (n *FlowNetwork) Link(resource catalog.ID) (*FlowLink, bool) {
	link, ok := n.linkIndex[resource]
	return link, ok
}

// FindLink looks for a link from this network outward; inner links shadow outer ones
func (n *FlowNetwork) FindLink(resource catalog.ID) (*FlowLink, bool) {
	if resource == catalog.NoID {
		return nil, false
	}
	for scope := n; scope != nil; {
		if link, ok := scope.linkIndex[resource]; ok {
			return link, true
		}
		if scope.owner == nil {
			break
		}
		scope = scope.owner.owner
	}
	return nil, false
}

// Flatten lists every instance whose whole ownership chain is enabled and
// every link reachable through enabled instances, in depth-first order.
func (n *FlowNetwork) Flatten() (instances []*ProcessInstance, links []*FlowLink) {
	var walk func(scope *FlowNetwork)
	walk = func(scope *FlowNetwork) {
		links = append(links, scope.links...)
		for _, instance := range scope.instances {
			if !instance.Enabled {
				continue
			}
			instances = append(instances, instance)
			if instance.subgroup != nil {
				walk(instance.subgroup)
			}
		}
	}
	walk(n)
	return instances, links
}

// Solution is a complete solve result ready to be committed to a network
type Solution struct {
	Instances map[*ProcessInstance]InstanceOutcome
	Links     map[*FlowLink]LinkOutcome
}

// NewSolution creates an empty solution
func NewSolution() *Solution {
	return &Solution{
		Instances: make(map[*ProcessInstance]InstanceOutcome),
		Links:     make(map[*FlowLink]LinkOutcome),
	}
}

// Commit writes a solution into the network, clears disabled subtrees,
// flags instances exceeding their built count and recomputes the per-scope
// flow. It reports whether any built count was exceeded.
func (n *FlowNetwork) Commit(c *catalog.Catalog, s *Solution) (bool, error) {
	var errs []error
	var walk func(scope *FlowNetwork)
	walk = func(scope *FlowNetwork) {
		for _, link := range scope.links {
			if outcome, ok := s.Links[link]; ok {
				errs = append(errs, link.Apply(outcome))
			}
		}
		for _, instance := range scope.instances {
			if !instance.Enabled {
				instance.clearDisabled()
				continue
			}
			instance.apply(s.Instances[instance])
			if instance.subgroup != nil {
				walk(instance.subgroup)
			}
		}
	}
	walk(n)

	exceeded := n.checkBuiltCountExceeded()
	n.calculateFlow(c, nil)
	return exceeded, errors.Join(errs...)
}

func (n *FlowNetwork) checkBuiltCountExceeded() bool {
	exceeded := false
	for _, instance := range n.instances {
		if instance.BuiltBuildings != nil && instance.BuildingCount() > *instance.BuiltBuildings {
			instance.parameters.Warnings |= WarningExceedsBuiltCount
			exceeded = true
		} else if instance.subgroup != nil && instance.subgroup.checkBuiltCountExceeded() {
			instance.parameters.Warnings |= WarningExceedsBuiltCount
			exceeded = true
		}
	}
	return exceeded
}

type flowSum struct {
	prod float64
	cons float64
}

type flowAccumulator struct {
	order []catalog.ID
	sums  map[catalog.ID]*flowSum
}

func newFlowAccumulator() *flowAccumulator {
	return &flowAccumulator{sums: make(map[catalog.ID]*flowSum)}
}

func (a *flowAccumulator) get(resource catalog.ID) *flowSum {
	sum, ok := a.sums[resource]
	if !ok {
		sum = &flowSum{}
		a.sums[resource] = sum
		a.order = append(a.order, resource)
	}
	return sum
}

func (a *flowAccumulator) remove(resource catalog.ID) flowSum {
	sum, ok := a.sums[resource]
	if !ok {
		return flowSum{}
	}
	delete(a.sums, resource)
	return *sum
}

func (a *flowAccumulator) addInstance(c *catalog.Catalog, instance *ProcessInstance) {
	process, ok := catalog.AsProcess(c.Object(instance.Recipe))
	if !ok {
		return
	}
	rate := instance.rate
	for _, product := range process.Products {
		a.get(product.Resource).prod += rate * product.Average(instance.parameters.Productivity)
	}
	for _, ingredient := range process.Ingredients {
		a.get(ingredient.Resource).cons += rate * ingredient.Amount
	}
	if instance.Fuel == catalog.NoID || instance.parameters.FuelUsagePerSecondPerRecipe == 0 {
		return
	}
	fuelUsage := instance.parameters.FuelUsagePerSecondPerRecipe * rate
	a.get(instance.Fuel).cons += fuelUsage
	if fuel, ok := c.Resource(instance.Fuel); ok && fuel.SpentFuel != catalog.NoID {
		a.get(fuel.SpentFuel).prod += fuelUsage
	}
}

// calculateFlow aggregates production and consumption bottom-up. A matched
// link claims its resource; an unmatched one lets it leak to the parent and
// marks the parent's link when the leak is not balanced.
func (n *FlowNetwork) calculateFlow(c *catalog.Catalog, include *ProcessInstance) {
	acc := newFlowAccumulator()
	if include != nil {
		acc.addInstance(c, include)
	}

	for _, instance := range n.instances {
		if !instance.Enabled {
			continue
		}
		if instance.subgroup == nil {
			acc.addInstance(c, instance)
			continue
		}
		instance.subgroup.calculateFlow(c, instance)
		for _, entry := range instance.subgroup.flow {
			sum := acc.get(entry.Resource)
			if entry.Amount > 0 {
				sum.prod += entry.Amount
			} else {
				sum.cons -= entry.Amount
			}
		}
	}

	for _, link := range n.links {
		var sum flowSum
		if !link.IsNotMatched() {
			sum = acc.remove(link.Resource)
		} else {
			if s, ok := acc.sums[link.Resource]; ok {
				sum = *s
			}
			if math.Abs(sum.prod-sum.cons) > flowImbalanceTolerance && n.owner != nil && n.owner.owner != nil {
				if parent, ok := n.owner.owner.FindLink(link.Resource); ok {
					parent.markChildNotMatched()
				}
			}
		}
		link.linkFlow = sum.prod
	}

	flow := make([]FlowEntry, 0, len(acc.sums))
	for _, resource := range acc.order {
		sum, ok := acc.sums[resource]
		if !ok {
			continue
		}
		link, _ := n.FindLink(resource)
		flow = append(flow, FlowEntry{Resource: resource, Amount: sum.prod - sum.cons, Link: link})
	}

	normalized := func(e FlowEntry) float64 {
		if r, ok := c.Resource(e.Resource); ok && r.IsFluid() {
			return e.Amount / fluidFlowDivisor
		}
		return e.Amount
	}
	sort.SliceStable(flow, func(i, j int) bool {
		return normalized(flow[i]) < normalized(flow[j])
	})
	n.flow = flow
}
