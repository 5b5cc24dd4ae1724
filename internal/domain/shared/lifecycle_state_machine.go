package shared

import (
	"time"
)

// LifecycleStatus is the stage of a tracked unit of work
type LifecycleStatus string

const (
	LifecycleStatusPending   LifecycleStatus = "PENDING"
	LifecycleStatusRunning   LifecycleStatus = "RUNNING"
	LifecycleStatusCompleted LifecycleStatus = "COMPLETED"
	LifecycleStatusFailed    LifecycleStatus = "FAILED"
)

// ParseLifecycleStatus validates a stored status name
func ParseLifecycleStatus(s string) (LifecycleStatus, error) {
	switch status := LifecycleStatus(s); status {
	case LifecycleStatusPending, LifecycleStatusRunning, LifecycleStatusCompleted, LifecycleStatusFailed:
		return status, nil
	default:
		return "", NewValidationError("status", "unknown lifecycle status "+s)
	}
}

var lifecycleTransitions = map[LifecycleStatus][]LifecycleStatus{
	LifecycleStatusPending: {LifecycleStatusRunning, LifecycleStatusFailed},
	LifecycleStatusRunning: {LifecycleStatusCompleted, LifecycleStatusFailed},
}

// LifecycleStateMachine tracks PENDING → RUNNING → COMPLETED/FAILED with
// timestamps taken from an injected clock. Terminal states never change.
type LifecycleStateMachine struct {
	status    LifecycleStatus
	createdAt time.Time
	updatedAt time.Time
	startedAt *time.Time
	stoppedAt *time.Time
	lastError error
	clock     Clock
}

// NewLifecycleStateMachine starts in PENDING; a nil clock uses the system time
func NewLifecycleStateMachine(clock Clock) *LifecycleStateMachine {
	if clock == nil {
		clock = NewRealClock()
	}

	now := clock.Now()
	return &LifecycleStateMachine{
		status:    LifecycleStatusPending,
		createdAt: now,
		updatedAt: now,
		clock:     clock,
	}
}

func (sm *LifecycleStateMachine) Status() LifecycleStatus { return sm.status }
func (sm *LifecycleStateMachine) CreatedAt() time.Time    { return sm.createdAt }
func (sm *LifecycleStateMachine) UpdatedAt() time.Time    { return sm.updatedAt }
func (sm *LifecycleStateMachine) StartedAt() *time.Time   { return sm.startedAt }
func (sm *LifecycleStateMachine) StoppedAt() *time.Time   { return sm.stoppedAt }
func (sm *LifecycleStateMachine) LastError() error        { return sm.lastError }

func (sm *LifecycleStateMachine) move(to LifecycleStatus) (time.Time, error) {
	for _, allowed := range lifecycleTransitions[sm.status] {
		if allowed == to {
			now := sm.clock.Now()
			sm.status = to
			sm.updatedAt = now
			return now, nil
		}
	}
	return time.Time{}, NewInvalidTransitionError("lifecycle", string(sm.status), string(to))
}

// Start moves PENDING to RUNNING
func (sm *LifecycleStateMachine) Start() error {
	now, err := sm.move(LifecycleStatusRunning)
	if err != nil {
		return err
	}
	sm.startedAt = &now
	return nil
}

// Complete moves RUNNING to COMPLETED
func (sm *LifecycleStateMachine) Complete() error {
	now, err := sm.move(LifecycleStatusCompleted)
	if err != nil {
		return err
	}
	sm.stoppedAt = &now
	return nil
}

// Fail ends a pending or running unit of work with an error
func (sm *LifecycleStateMachine) Fail(err error) error {
	now, moveErr := sm.move(LifecycleStatusFailed)
	if moveErr != nil {
		return moveErr
	}
	sm.lastError = err
	sm.stoppedAt = &now
	return nil
}

// IsFinished reports a terminal state
func (sm *LifecycleStateMachine) IsFinished() bool {
	return sm.status == LifecycleStatusCompleted || sm.status == LifecycleStatusFailed
}

// RuntimeDuration is the time spent running so far, or in total once finished
func (sm *LifecycleStateMachine) RuntimeDuration() time.Duration {
	if sm.startedAt == nil {
		return 0
	}
	end := sm.clock.Now()
	if sm.stoppedAt != nil {
		end = *sm.stoppedAt
	}
	return end.Sub(*sm.startedAt)
}

// RecoverFromPersistence restores state loaded from storage
func (sm *LifecycleStateMachine) RecoverFromPersistence(
	status LifecycleStatus,
	createdAt, updatedAt time.Time,
	startedAt, stoppedAt *time.Time,
	lastError error,
) {
	sm.status = status
	sm.createdAt = createdAt
	sm.updatedAt = updatedAt
	sm.startedAt = startedAt
	sm.stoppedAt = stoppedAt
	sm.lastError = lastError
}
