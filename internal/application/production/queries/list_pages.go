package queries

import (
	"context"
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

// ListPagesQuery lists every stored page
type ListPagesQuery struct{}

// PageSummaryDTO describes a page without its network
type PageSummaryDTO struct {
	ID        string
	Name      string
	Instances int
	Links     int
}

// ListPagesResponse holds the pages ordered by name
type ListPagesResponse struct {
	Pages []PageSummaryDTO
}

// ListPagesHandler handles the ListPages query
type ListPagesHandler struct {
	pages production.PageRepository
}

// NewListPagesHandler creates a new ListPagesHandler
func NewListPagesHandler(pages production.PageRepository) *ListPagesHandler {
	return &ListPagesHandler{pages: pages}
}

// Handle executes the ListPages query
func (h *ListPagesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*ListPagesQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPagesQuery")
	}

	pages, err := h.pages.List(ctx)
	if err != nil {
		return nil, err
	}

	response := &ListPagesResponse{Pages: make([]PageSummaryDTO, 0, len(pages))}
	for _, page := range pages {
		instances, links := page.Stats()
		response.Pages = append(response.Pages, PageSummaryDTO{
			ID:        page.ID.String(),
			Name:      page.Name,
			Instances: instances,
			Links:     links,
		})
	}
	return response, nil
}
