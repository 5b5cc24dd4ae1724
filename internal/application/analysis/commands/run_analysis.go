package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/mediator"
)

// RunAnalysisCommand builds (or rebuilds with Refresh) the analysis session
type RunAnalysisCommand struct {
	Refresh bool
}

// RunAnalysisResponse summarises the session
type RunAnalysisResponse struct {
	Objects          int
	AutomatableNow   int
	AutomatableLater int
	NotAutomatable   int
	CostStatus       string
	MilestoneStatus  string // empty when the milestone variant was not requested
	ImportantItems   []string
	Loops            int
	Warnings         []string
	Duration         time.Duration
}

// RunAnalysisHandler handles the RunAnalysis command
type RunAnalysisHandler struct {
	sessions *services.SessionCache
}

// NewRunAnalysisHandler creates a new RunAnalysisHandler
func NewRunAnalysisHandler(sessions *services.SessionCache) *RunAnalysisHandler {
	return &RunAnalysisHandler{sessions: sessions}
}

// Handle executes the RunAnalysis command
func (h *RunAnalysisHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RunAnalysisCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunAnalysisCommand")
	}

	if cmd.Refresh {
		h.sessions.Invalidate()
	}
	session, err := h.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}

	c := session.Catalog
	response := &RunAnalysisResponse{
		Objects:          len(c.Objects()),
		AutomatableNow:   session.Reachability.Count(services.AutomatableNow),
		AutomatableLater: session.Reachability.Count(services.AutomatableLater),
		NotAutomatable:   session.Reachability.Count(services.NotAutomatable),
		CostStatus:       session.Cost.Status.String(),
		Loops:            len(session.Loops),
		Warnings:         session.Warnings(),
		Duration:         session.Duration,
	}
	if session.CostMilestones != nil {
		response.MilestoneStatus = session.CostMilestones.Status.String()
	}
	for _, id := range session.Cost.ImportantItems() {
		response.ImportantItems = append(response.ImportantItems, c.Name(id))
	}
	return response, nil
}
