package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/shared"
)

const defaultSolveRunLimit = 20

// GormSolveRunRepository keeps the solve history of production pages
type GormSolveRunRepository struct {
	db *gorm.DB
}

// NewGormSolveRunRepository creates a new GORM solve run repository
func NewGormSolveRunRepository(db *gorm.DB) *GormSolveRunRepository {
	return &GormSolveRunRepository{db: db}
}

// Add persists a new run
func (r *GormSolveRunRepository) Add(ctx context.Context, run *production.SolveRun) error {
	model := solveRunToModel(run)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to add solve run: %w", err)
	}
	return nil
}

// Update writes the current state of a run
func (r *GormSolveRunRepository) Update(ctx context.Context, run *production.SolveRun) error {
	model := solveRunToModel(run)
	result := r.db.WithContext(ctx).Model(&SolveRunModel{}).Where("id = ?", model.ID).Updates(map[string]interface{}{
		"status":          model.Status,
		"updated_at":      model.UpdatedAt,
		"started_at":      model.StartedAt,
		"stopped_at":      model.StoppedAt,
		"instances":       model.Instances,
		"links":           model.Links,
		"diagnosed":       model.Diagnosed,
		"objective_value": model.ObjectiveValue,
		"message":         model.Message,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update solve run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("solve run not found: %s", run.ID())
	}
	return nil
}

// FindByPage returns the most recent runs of a page, newest first
func (r *GormSolveRunRepository) FindByPage(ctx context.Context, pageID production.PageID, limit int) ([]*production.SolveRun, error) {
	if limit <= 0 {
		limit = defaultSolveRunLimit
	}

	var models []SolveRunModel
	err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID.String()).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find solve runs: %w", err)
	}

	runs := make([]*production.SolveRun, 0, len(models))
	for i := range models {
		run, err := modelToSolveRun(&models[i])
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func solveRunToModel(run *production.SolveRun) *SolveRunModel {
	return &SolveRunModel{
		ID:             run.ID(),
		PageID:         run.PageID().String(),
		Status:         string(run.Status()),
		CreatedAt:      run.CreatedAt(),
		UpdatedAt:      run.UpdatedAt(),
		StartedAt:      run.StartedAt(),
		StoppedAt:      run.StoppedAt(),
		Instances:      run.Instances(),
		Links:          run.Links(),
		Diagnosed:      run.Diagnosed(),
		ObjectiveValue: run.ObjectiveValue(),
		Message:        run.Message(),
	}
}

func modelToSolveRun(model *SolveRunModel) (*production.SolveRun, error) {
	pageID, err := production.ParsePageID(model.PageID)
	if err != nil {
		return nil, fmt.Errorf("invalid page id in solve run %s: %w", model.ID, err)
	}
	status, err := shared.ParseLifecycleStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("solve run %s: %w", model.ID, err)
	}
	return production.RestoreSolveRun(
		model.ID,
		pageID,
		status,
		model.CreatedAt,
		model.StartedAt,
		model.StoppedAt,
		model.Instances,
		model.Links,
		model.Diagnosed,
		model.ObjectiveValue,
		model.Message,
	), nil
}
