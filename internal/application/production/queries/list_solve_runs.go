package queries

import (
	"context"
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/dtos"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

// ListSolveRunsQuery returns the recent runs of a page, newest first
type ListSolveRunsQuery struct {
	PageName string
	Limit    int
}

// ListSolveRunsResponse holds the runs
type ListSolveRunsResponse struct {
	PageName string
	Runs     []dtos.SolveRunDTO
}

// ListSolveRunsHandler handles the ListSolveRuns query
type ListSolveRunsHandler struct {
	pages production.PageRepository
	runs  production.SolveRunRepository
}

// NewListSolveRunsHandler creates a new ListSolveRunsHandler
func NewListSolveRunsHandler(pages production.PageRepository, runs production.SolveRunRepository) *ListSolveRunsHandler {
	return &ListSolveRunsHandler{pages: pages, runs: runs}
}

// Handle executes the ListSolveRuns query
func (h *ListSolveRunsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListSolveRunsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListSolveRunsQuery")
	}

	page, err := h.pages.FindByName(ctx, query.PageName)
	if err != nil {
		return nil, err
	}
	runs, err := h.runs.FindByPage(ctx, page.ID, query.Limit)
	if err != nil {
		return nil, err
	}

	response := &ListSolveRunsResponse{PageName: page.Name}
	for _, run := range runs {
		response.Runs = append(response.Runs, dtos.SolveRunToDTO(run))
	}
	return response, nil
}
