package dtos

import (
	"time"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

// SolveRunDTO is the stored record of one solve
type SolveRunDTO struct {
	ID             string
	Status         string
	CreatedAt      time.Time
	Duration       time.Duration
	Instances      int
	Links          int
	Diagnosed      bool
	ObjectiveValue float64
	Message        string
}

// SolveRunToDTO converts a domain run
func SolveRunToDTO(run *production.SolveRun) SolveRunDTO {
	return SolveRunDTO{
		ID:             run.ID(),
		Status:         string(run.Status()),
		CreatedAt:      run.CreatedAt(),
		Duration:       run.Duration(),
		Instances:      run.Instances(),
		Links:          run.Links(),
		Diagnosed:      run.Diagnosed(),
		ObjectiveValue: run.ObjectiveValue(),
		Message:        run.Message(),
	}
}
