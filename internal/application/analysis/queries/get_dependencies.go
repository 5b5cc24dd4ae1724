package queries

import (
	"context"
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
)

// GetDependenciesQuery asks what an object needs and what needs it
type GetDependenciesQuery struct {
	Name string
	// Kind optionally picks between objects of different kinds sharing Name
	Kind string
}

// DependencyGroupDTO is one prerequisite group. RequiresAll groups are AND,
// the others are satisfied by any member.
type DependencyGroupDTO struct {
	Kind              string
	RequiresAll       bool
	OneTimeInvestment bool
	Elements          []string
}

// GetDependenciesResponse lists forward groups and the reverse dependents
type GetDependenciesResponse struct {
	Name       string
	Groups     []DependencyGroupDTO
	Dependents []string
}

// GetDependenciesHandler handles the GetDependencies query
type GetDependenciesHandler struct {
	sessions *services.SessionCache
}

// NewGetDependenciesHandler creates a new GetDependenciesHandler
func NewGetDependenciesHandler(sessions *services.SessionCache) *GetDependenciesHandler {
	return &GetDependenciesHandler{sessions: sessions}
}

// Handle executes the GetDependencies query
func (h *GetDependenciesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetDependenciesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetDependenciesQuery")
	}

	session, err := h.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	c := session.Catalog
	o, err := lookupObject(c, query.Kind, query.Name)
	if err != nil {
		return nil, err
	}
	id := o.Meta().ID

	response := &GetDependenciesResponse{Name: o.Meta().Name}
	for _, group := range session.Dependencies.Dependencies(id) {
		dto := DependencyGroupDTO{
			Kind:              group.Flags.String(),
			RequiresAll:       group.RequiresAll(),
			OneTimeInvestment: group.IsOneTimeInvestment(),
		}
		for _, element := range group.Elements {
			dto.Elements = append(dto.Elements, c.Name(element))
		}
		response.Groups = append(response.Groups, dto)
	}
	for _, dependent := range session.Dependencies.ReverseDependencies(id) {
		response.Dependents = append(response.Dependents, c.Name(dependent))
	}
	return response, nil
}
