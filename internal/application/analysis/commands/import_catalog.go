package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
)

// CatalogDecoder turns a catalog document into a built catalog
type CatalogDecoder func(r io.Reader) (*catalog.Catalog, error)

// ImportCatalogCommand replaces the stored catalog with a decoded document
type ImportCatalogCommand struct {
	Document io.Reader
	Source   string // for logging only
}

// ImportCatalogResponse counts what was imported
type ImportCatalogResponse struct {
	Resources    int
	Entities     int
	Processes    int
	Technologies int
}

// ImportCatalogHandler handles the ImportCatalog command
type ImportCatalogHandler struct {
	decode   CatalogDecoder
	repo     catalog.Repository
	sessions *services.SessionCache
}

// NewImportCatalogHandler creates a new ImportCatalogHandler
func NewImportCatalogHandler(decode CatalogDecoder, repo catalog.Repository, sessions *services.SessionCache) *ImportCatalogHandler {
	return &ImportCatalogHandler{decode: decode, repo: repo, sessions: sessions}
}

// Handle executes the ImportCatalog command
func (h *ImportCatalogHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ImportCatalogCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ImportCatalogCommand")
	}
	if cmd.Document == nil {
		return nil, fmt.Errorf("catalog document is required")
	}

	c, err := h.decode(cmd.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := h.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}
	h.sessions.Invalidate()

	response := &ImportCatalogResponse{
		Resources:    len(c.Resources()),
		Entities:     len(c.Entities()),
		Processes:    len(c.Processes()),
		Technologies: len(c.Technologies()),
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Catalog imported", map[string]interface{}{
		"source":       cmd.Source,
		"resources":    response.Resources,
		"entities":     response.Entities,
		"processes":    response.Processes,
		"technologies": response.Technologies,
	})
	return response, nil
}
