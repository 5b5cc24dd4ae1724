package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/common"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

// ImportPageCommand stores a page described by catalog names
type ImportPageCommand struct {
	Definition production.PageDefinition
	// Replace overwrites a page with the same name, keeping its id
	Replace bool
}

// ImportPageResponse identifies the stored page
type ImportPageResponse struct {
	PageID    string
	Name      string
	Instances int
	Links     int
	Replaced  bool
}

// ImportPageHandler handles the ImportPage command
type ImportPageHandler struct {
	pages    production.PageRepository
	sessions *services.SessionCache
}

// NewImportPageHandler creates a new ImportPageHandler
func NewImportPageHandler(pages production.PageRepository, sessions *services.SessionCache) *ImportPageHandler {
	return &ImportPageHandler{pages: pages, sessions: sessions}
}

// Handle executes the ImportPage command
func (h *ImportPageHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ImportPageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ImportPageCommand")
	}

	session, err := h.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	page, err := cmd.Definition.Resolve(session.Catalog)
	if err != nil {
		return nil, err
	}

	replaced := false
	existing, err := h.pages.FindByName(ctx, page.Name)
	switch {
	case err == nil:
		if !cmd.Replace {
			return nil, fmt.Errorf("page %q already exists", page.Name)
		}
		page.ID = existing.ID
		replaced = true
	case !errors.Is(err, production.ErrPageNotFound):
		return nil, err
	}

	if err := h.pages.Save(ctx, page); err != nil {
		return nil, err
	}

	instances, links := page.Stats()
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Page imported", map[string]interface{}{
		"page":      page.Name,
		"instances": instances,
		"links":     links,
		"replaced":  replaced,
	})
	return &ImportPageResponse{
		PageID:    page.ID.String(),
		Name:      page.Name,
		Instances: instances,
		Links:     links,
		Replaced:  replaced,
	}, nil
}
