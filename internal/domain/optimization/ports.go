package optimization

import (
	"context"
	"math"
)

// Variable is a handle to a solver column
type Variable int

// Constraint is a handle to a solver row
type Constraint int

// Status is the outcome of a Solve call
type Status int

const (
	StatusNotSolved Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
	StatusAbnormal
	StatusModelInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusUnbounded:
		return "UNBOUNDED"
	case StatusAbnormal:
		return "ABNORMAL"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	default:
		return "NOT_SOLVED"
	}
}

// Succeeded reports whether a solution is available
func (s Status) Succeeded() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// BasisStatus describes where a variable or constraint activity sits relative to its bounds
type BasisStatus int

const (
	BasisFree BasisStatus = iota
	BasisAtLowerBound
	BasisAtUpperBound
	BasisFixedValue
	BasisBasic
)

func (b BasisStatus) String() string {
	switch b {
	case BasisAtLowerBound:
		return "AT_LOWER_BOUND"
	case BasisAtUpperBound:
		return "AT_UPPER_BOUND"
	case BasisFixedValue:
		return "FIXED_VALUE"
	case BasisBasic:
		return "BASIC"
	default:
		return "FREE"
	}
}

// Infinity is the bound used for unconstrained sides
var Infinity = math.Inf(1)

// LinearSolver is a single linear program. Coefficients accumulate only
// through explicit reads; SetCoefficient overwrites.
type LinearSolver interface {
	MakeVariable(lo, hi float64, name string) Variable
	MakeConstraint(lo, hi float64, name string) Constraint

	SetVariableBounds(v Variable, lo, hi float64)
	SetConstraintBounds(c Constraint, lo, hi float64)
	SetCoefficient(c Constraint, v Variable, value float64)
	Coefficient(c Constraint, v Variable) float64

	SetMaximization(maximize bool)
	SetObjectiveCoefficient(v Variable, value float64)
	ObjectiveCoefficient(v Variable) float64
	ClearObjective()

	SetSeed(seed int64)
	Solve(ctx context.Context) Status

	ObjectiveValue() float64
	Value(v Variable) float64
	DualValue(c Constraint) float64
	Activity(c Constraint) float64
	VariableBasisStatus(v Variable) BasisStatus
	ConstraintBasisStatus(c Constraint) BasisStatus
}

// SolverFactory creates fresh solver instances
type SolverFactory interface {
	NewSolver(name string) LinearSolver
}
