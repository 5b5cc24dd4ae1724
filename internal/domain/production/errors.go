package production

import (
	"errors"
	"fmt"
	"math"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
)

var (
	negativeInfinity = math.Inf(-1)
	positiveInfinity = math.Inf(1)
)

// ErrInvalidLinkTransition is wrapped by every rejected link state change
var ErrInvalidLinkTransition = errors.New("invalid flow link transition")

// ErrPageNotFound is returned when a production page does not exist
var ErrPageNotFound = errors.New("production page not found")

// ErrDuplicateLink reports a second link for the same resource in one network
type ErrDuplicateLink struct {
	Resource catalog.ID
}

func (e *ErrDuplicateLink) Error() string {
	return fmt.Sprintf("network already has a link for resource %d", e.Resource)
}

// SolveErrorKind classifies why a flow network could not be solved
type SolveErrorKind int

const (
	// SolveErrorInfeasible means even the relaxed diagnosis model had no solution
	SolveErrorInfeasible SolveErrorKind = iota
	// SolveErrorAbnormal means the solver hit numerical trouble on every attempt
	SolveErrorAbnormal
	// SolveErrorUnclassified covers any other solver status
	SolveErrorUnclassified
)

func (k SolveErrorKind) String() string {
	switch k {
	case SolveErrorInfeasible:
		return "INFEASIBLE"
	case SolveErrorAbnormal:
		return "ABNORMAL"
	default:
		return "UNCLASSIFIED"
	}
}

// SolveError is returned when neither the model nor its diagnosis could be solved.
// The network keeps the results of the previous successful solve.
type SolveError struct {
	Kind   SolveErrorKind
	Status optimization.Status
}

// NewSolveError classifies a failed diagnosis status
func NewSolveError(status optimization.Status) *SolveError {
	kind := SolveErrorUnclassified
	switch status {
	case optimization.StatusInfeasible:
		kind = SolveErrorInfeasible
	case optimization.StatusAbnormal:
		kind = SolveErrorAbnormal
	}
	return &SolveError{Kind: kind, Status: status}
}

func (e *SolveError) Error() string {
	switch e.Kind {
	case SolveErrorInfeasible:
		return "Tried to solve this model and failed. Then tried to find a deadlock loop, but failed again"
	case SolveErrorAbnormal:
		return "This model has numerical errors (probably too small or too large numbers) and cannot be solved"
	default:
		return "Unaccounted error: MODEL_" + e.Status.String()
	}
}
