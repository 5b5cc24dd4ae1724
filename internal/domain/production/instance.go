package production

import (
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// ProcessInstance is one configured occurrence of a process inside a network.
// An instance may own a nested network; its own process then links through
// that nested network first.
type ProcessInstance struct {
	Recipe catalog.ID
	Entity catalog.ID
	Fuel   catalog.ID
	// Enabled instances take part in the solve; disabled ones and their subtree contribute nothing
	Enabled bool
	// FixedBuildings pins the building count when positive
	FixedBuildings float64
	// BuiltBuildings is the number of buildings already placed; nil when not tracked
	BuiltBuildings    *float64
	ProductivityBonus float64

	owner    *FlowNetwork
	subgroup *FlowNetwork

	rate             float64
	hierarchyEnabled bool
	parameters       Parameters
}

// NewProcessInstance creates an enabled instance of a process
func NewProcessInstance(recipe catalog.ID) *ProcessInstance {
	return &ProcessInstance{Recipe: recipe, Enabled: true}
}

// Owner returns the network containing the instance
func (i *ProcessInstance) Owner() *FlowNetwork { return i.owner }

// Subgroup returns the nested network, or nil
func (i *ProcessInstance) Subgroup() *FlowNetwork { return i.subgroup }

// CreateSubgroup returns the nested network, creating it on first use
func (i *ProcessInstance) CreateSubgroup() *FlowNetwork {
	if i.subgroup == nil {
		i.subgroup = NewFlowNetwork()
		i.subgroup.owner = i
	}
	return i.subgroup
}

// Rate returns the solved executions per second
func (i *ProcessInstance) Rate() float64 { return i.rate }

// BuildingCount returns how many buildings the solved rate needs
func (i *ProcessInstance) BuildingCount() float64 {
	return i.rate * i.parameters.RecipeTime
}

// Parameters returns the figures computed by the last solve
func (i *ProcessInstance) Parameters() Parameters { return i.parameters }

// Warnings returns the warning flags of the last solve
func (i *ProcessInstance) Warnings() WarningFlags { return i.parameters.Warnings }

// HierarchyEnabled reports whether the instance and all its owners were enabled in the last solve
func (i *ProcessInstance) HierarchyEnabled() bool { return i.hierarchyEnabled }

// IsPinned reports whether the building count is fixed
func (i *ProcessInstance) IsPinned() bool { return i.FixedBuildings > 0 }

func (i *ProcessInstance) linkRoot() *FlowNetwork {
	if i.subgroup != nil {
		return i.subgroup
	}
	return i.owner
}

// FindLink resolves the link an instance uses for a resource, innermost first
func (i *ProcessInstance) FindLink(resource catalog.ID) (*FlowLink, bool) {
	root := i.linkRoot()
	if root == nil {
		return nil, false
	}
	return root.FindLink(resource)
}

// InstanceOutcome is what one solve decided for an instance
type InstanceOutcome struct {
	Rate       float64
	Parameters Parameters
}

func (i *ProcessInstance) apply(o InstanceOutcome) {
	i.rate = o.Rate
	i.parameters = o.Parameters
	i.hierarchyEnabled = true
}

// clearDisabled zeroes a disabled instance and everything nested below it
func (i *ProcessInstance) clearDisabled() {
	i.rate = 0
	i.parameters = Parameters{}
	i.hierarchyEnabled = false
	if i.subgroup == nil {
		return
	}
	i.subgroup.flow = nil
	for _, link := range i.subgroup.links {
		link.reset()
	}
	for _, nested := range i.subgroup.instances {
		nested.clearDisabled()
	}
}
