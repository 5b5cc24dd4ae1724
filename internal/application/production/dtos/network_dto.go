package dtos

import (
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

// InstanceDTO is a solved process instance. Path locates it in the tree:
// "1" is the second root instance, "1/0" the first instance nested under it.
type InstanceDTO struct {
	Path          string
	Depth         int
	Recipe        string
	Entity        string
	Fuel          string
	Enabled       bool
	Rate          float64 // executions per second
	BuildingCount float64
	FuelPerSecond float64
	Warnings      string // empty when the last solve raised none
}

// LinkDTO is a solved link; Scope is the path of the owning instance, "" for the root
type LinkDTO struct {
	Scope           string
	Resource        string
	Amount          float64
	Algorithm       string
	State           string
	ChildNotMatched bool
	DualValue       float64
	NotMatchedFlow  float64
	LinkFlow        float64
}

// FlowDTO is one entry of the root network's net flow
type FlowDTO struct {
	Resource string
	Amount   float64
	Linked   bool
}

// NetworkDTO is the flattened view of a solved tree
type NetworkDTO struct {
	Instances []InstanceDTO
	Links     []LinkDTO
	Flow      []FlowDTO
}

// NetworkToDTO walks the tree depth first, instances before their nested networks
func NetworkToDTO(c *catalog.Catalog, root *production.FlowNetwork) NetworkDTO {
	var dto NetworkDTO
	appendNetwork(c, &dto, root, "", 0)
	for _, entry := range root.Flow() {
		dto.Flow = append(dto.Flow, FlowDTO{
			Resource: c.Name(entry.Resource),
			Amount:   entry.Amount,
			Linked:   entry.Link != nil,
		})
	}
	return dto
}

func appendNetwork(c *catalog.Catalog, dto *NetworkDTO, n *production.FlowNetwork, scope string, depth int) {
	name := func(id catalog.ID) string {
		if id == catalog.NoID {
			return ""
		}
		return c.Name(id)
	}

	for _, link := range n.Links() {
		dto.Links = append(dto.Links, LinkDTO{
			Scope:           scope,
			Resource:        name(link.Resource),
			Amount:          link.Amount,
			Algorithm:       link.Algorithm.String(),
			State:           link.State().String(),
			ChildNotMatched: link.ChildNotMatched(),
			DualValue:       link.DualValue(),
			NotMatchedFlow:  link.NotMatchedFlow(),
			LinkFlow:        link.LinkFlow(),
		})
	}

	for i, instance := range n.Instances() {
		path := fmt.Sprintf("%d", i)
		if scope != "" {
			path = scope + "/" + path
		}
		warnings := ""
		if flags := instance.Warnings(); flags != 0 {
			warnings = flags.String()
		}
		dto.Instances = append(dto.Instances, InstanceDTO{
			Path:          path,
			Depth:         depth,
			Recipe:        name(instance.Recipe),
			Entity:        name(instance.Entity),
			Fuel:          name(instance.Fuel),
			Enabled:       instance.Enabled,
			Rate:          instance.Rate(),
			BuildingCount: instance.BuildingCount(),
			FuelPerSecond: instance.Rate() * instance.Parameters().FuelUsagePerSecondPerRecipe,
			Warnings:      warnings,
		})
		if sub := instance.Subgroup(); sub != nil {
			appendNetwork(c, dto, sub, path, depth+1)
		}
	}
}
