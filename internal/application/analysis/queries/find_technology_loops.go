package queries

import (
	"context"
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
)

// FindTechnologyLoopsQuery lists the prerequisite cycles of the current catalog
type FindTechnologyLoopsQuery struct{}

// FindTechnologyLoopsResponse holds one name list per loop
type FindTechnologyLoopsResponse struct {
	Loops [][]string
}

// FindTechnologyLoopsHandler handles the FindTechnologyLoops query
type FindTechnologyLoopsHandler struct {
	sessions *services.SessionCache
}

// NewFindTechnologyLoopsHandler creates a new FindTechnologyLoopsHandler
func NewFindTechnologyLoopsHandler(sessions *services.SessionCache) *FindTechnologyLoopsHandler {
	return &FindTechnologyLoopsHandler{sessions: sessions}
}

// Handle executes the FindTechnologyLoops query
func (h *FindTechnologyLoopsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*FindTechnologyLoopsQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *FindTechnologyLoopsQuery")
	}

	session, err := h.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}

	response := &FindTechnologyLoopsResponse{}
	for _, loop := range session.Loops {
		names := make([]string, len(loop.Technologies))
		for i, id := range loop.Technologies {
			names[i] = session.Catalog.Name(id)
		}
		response.Loops = append(response.Loops, names)
	}
	return response, nil
}
