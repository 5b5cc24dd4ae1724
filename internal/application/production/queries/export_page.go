package queries

import (
	"context"
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

// ExportPageQuery returns a stored page as a name-based definition
type ExportPageQuery struct {
	PageName string
}

// ExportPageHandler handles the ExportPage query
type ExportPageHandler struct {
	pages    production.PageRepository
	sessions *services.SessionCache
}

// NewExportPageHandler creates a new ExportPageHandler
func NewExportPageHandler(pages production.PageRepository, sessions *services.SessionCache) *ExportPageHandler {
	return &ExportPageHandler{pages: pages, sessions: sessions}
}

// Handle executes the ExportPage query; the response is a *production.PageDefinition
func (h *ExportPageHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ExportPageQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ExportPageQuery")
	}

	session, err := h.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	page, err := h.pages.FindByName(ctx, query.PageName)
	if err != nil {
		return nil, err
	}

	definition := production.Describe(session.Catalog, page)
	return &definition, nil
}
