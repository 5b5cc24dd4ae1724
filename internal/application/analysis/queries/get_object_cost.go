package queries

import (
	"context"
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// GetObjectCostQuery looks up the analysis results of one catalog object
type GetObjectCostQuery struct {
	Name string
	Kind string
}

// ObjectCostDTO holds the figures of one object. Cost is +Inf for objects
// that cannot be automated; process figures are zero for other kinds.
type ObjectCostDTO struct {
	ID         int
	Name       string
	Kind       string
	Automation string
	Cost       float64
	// CostNow is the milestone-restricted cost; nil when that variant was not computed
	CostNow           *float64
	RecipeCost        float64
	RecipeProductCost float64
	Flow              float64
	Waste             float64
}

// GetObjectCostHandler handles the GetObjectCost query
type GetObjectCostHandler struct {
	sessions *services.SessionCache
}

// NewGetObjectCostHandler creates a new GetObjectCostHandler
func NewGetObjectCostHandler(sessions *services.SessionCache) *GetObjectCostHandler {
	return &GetObjectCostHandler{sessions: sessions}
}

// Handle executes the GetObjectCost query
func (h *GetObjectCostHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetObjectCostQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetObjectCostQuery")
	}

	session, err := h.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	o, err := lookupObject(session.Catalog, query.Kind, query.Name)
	if err != nil {
		return nil, err
	}

	id := o.Meta().ID
	dto := &ObjectCostDTO{
		ID:         int(id),
		Name:       o.Meta().Name,
		Kind:       o.Kind().String(),
		Automation: session.Reachability.Status(id).String(),
		Cost:       session.Cost.Cost(id),
		Flow:       session.Cost.Flow(id),
	}
	if session.CostMilestones != nil {
		now := session.CostMilestones.Cost(id)
		dto.CostNow = &now
	}
	if _, isProcess := catalog.AsProcess(o); isProcess {
		dto.RecipeCost = session.Cost.RecipeCost(id)
		dto.RecipeProductCost = session.Cost.RecipeProductCost(id)
		dto.Waste = session.Cost.Waste(id)
	}
	return dto, nil
}
