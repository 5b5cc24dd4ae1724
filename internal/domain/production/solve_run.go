package production

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/shared"
)

// SolveRun records one attempt to solve a page: when it ran, whether the
// diagnosis pass was needed and how it ended.
type SolveRun struct {
	id     string
	pageID PageID

	lifecycle *shared.LifecycleStateMachine

	instances      int
	links          int
	diagnosed      bool
	objectiveValue float64
	message        string
}

// NewSolveRun creates a pending run for a page
func NewSolveRun(pageID PageID, clock shared.Clock) *SolveRun {
	return &SolveRun{
		id:        uuid.New().String(),
		pageID:    pageID,
		lifecycle: shared.NewLifecycleStateMachine(clock),
	}
}

// RestoreSolveRun rebuilds a run loaded from storage
func RestoreSolveRun(
	id string,
	pageID PageID,
	status shared.LifecycleStatus,
	createdAt time.Time,
	startedAt, stoppedAt *time.Time,
	instances, links int,
	diagnosed bool,
	objectiveValue float64,
	message string,
) *SolveRun {
	lifecycle := shared.NewLifecycleStateMachine(nil)
	var lastErr error
	if status == shared.LifecycleStatusFailed && message != "" {
		lastErr = errors.New(message)
	}
	updatedAt := createdAt
	if stoppedAt != nil {
		updatedAt = *stoppedAt
	}
	lifecycle.RecoverFromPersistence(status, createdAt, updatedAt, startedAt, stoppedAt, lastErr)
	return &SolveRun{
		id:             id,
		pageID:         pageID,
		lifecycle:      lifecycle,
		instances:      instances,
		links:          links,
		diagnosed:      diagnosed,
		objectiveValue: objectiveValue,
		message:        message,
	}
}

func (r *SolveRun) ID() string                     { return r.id }
func (r *SolveRun) PageID() PageID                 { return r.pageID }
func (r *SolveRun) Status() shared.LifecycleStatus { return r.lifecycle.Status() }
func (r *SolveRun) CreatedAt() time.Time           { return r.lifecycle.CreatedAt() }
func (r *SolveRun) UpdatedAt() time.Time           { return r.lifecycle.UpdatedAt() }
func (r *SolveRun) StartedAt() *time.Time          { return r.lifecycle.StartedAt() }
func (r *SolveRun) StoppedAt() *time.Time          { return r.lifecycle.StoppedAt() }
func (r *SolveRun) Duration() time.Duration        { return r.lifecycle.RuntimeDuration() }
func (r *SolveRun) Instances() int                 { return r.instances }
func (r *SolveRun) Links() int                     { return r.links }
func (r *SolveRun) Diagnosed() bool                { return r.diagnosed }
func (r *SolveRun) ObjectiveValue() float64        { return r.objectiveValue }
func (r *SolveRun) Message() string                { return r.message }

// Start marks the run as running with the size of the flattened model
func (r *SolveRun) Start(instances, links int) error {
	if err := r.lifecycle.Start(); err != nil {
		return fmt.Errorf("solve run %s: %w", r.id, err)
	}
	r.instances = instances
	r.links = links
	return nil
}

// Complete records a successful solve; message carries any non-fatal warning
func (r *SolveRun) Complete(objectiveValue float64, diagnosed bool, message string) error {
	if err := r.lifecycle.Complete(); err != nil {
		return fmt.Errorf("solve run %s: %w", r.id, err)
	}
	r.objectiveValue = objectiveValue
	r.diagnosed = diagnosed
	r.message = message
	return nil
}

// Fail records a solve that produced no usable result
func (r *SolveRun) Fail(cause error) error {
	if err := r.lifecycle.Fail(cause); err != nil {
		return fmt.Errorf("solve run %s: %w", r.id, err)
	}
	r.diagnosed = true
	if cause != nil {
		r.message = cause.Error()
	}
	return nil
}
