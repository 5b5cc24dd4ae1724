package helpers

import (
	"context"
	"sync"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
)

// MockLinearSolver is a LinearSolver that returns scripted statuses.
// It stores the model it is given but never optimizes it.
type MockLinearSolver struct {
	mu sync.Mutex

	// Statuses are returned by successive Solve calls; the last one repeats
	Statuses []optimization.Status

	SolveCalls int
	Seeds      []int64

	variables   int
	constraints int
	coefs       map[[2]int]float64
	objective   map[int]float64
	maximize    bool
}

// NewMockLinearSolver creates a solver answering with the given statuses
func NewMockLinearSolver(statuses ...optimization.Status) *MockLinearSolver {
	if len(statuses) == 0 {
		statuses = []optimization.Status{optimization.StatusOptimal}
	}
	return &MockLinearSolver{
		Statuses:  statuses,
		coefs:     make(map[[2]int]float64),
		objective: make(map[int]float64),
	}
}

func (m *MockLinearSolver) MakeVariable(lo, hi float64, name string) optimization.Variable {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variables++
	return optimization.Variable(m.variables - 1)
}

func (m *MockLinearSolver) MakeConstraint(lo, hi float64, name string) optimization.Constraint {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints++
	return optimization.Constraint(m.constraints - 1)
}

func (m *MockLinearSolver) SetVariableBounds(v optimization.Variable, lo, hi float64)     {}
func (m *MockLinearSolver) SetConstraintBounds(c optimization.Constraint, lo, hi float64) {}

func (m *MockLinearSolver) SetCoefficient(c optimization.Constraint, v optimization.Variable, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coefs[[2]int{int(c), int(v)}] = value
}

func (m *MockLinearSolver) Coefficient(c optimization.Constraint, v optimization.Variable) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coefs[[2]int{int(c), int(v)}]
}

func (m *MockLinearSolver) SetMaximization(maximize bool) { m.maximize = maximize }

func (m *MockLinearSolver) SetObjectiveCoefficient(v optimization.Variable, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objective[int(v)] = value
}

func (m *MockLinearSolver) ObjectiveCoefficient(v optimization.Variable) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objective[int(v)]
}

func (m *MockLinearSolver) ClearObjective() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objective = make(map[int]float64)
}

func (m *MockLinearSolver) SetSeed(seed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Seeds = append(m.Seeds, seed)
}

func (m *MockLinearSolver) Solve(ctx context.Context) optimization.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.SolveCalls
	if i >= len(m.Statuses) {
		i = len(m.Statuses) - 1
	}
	m.SolveCalls++
	return m.Statuses[i]
}

func (m *MockLinearSolver) ObjectiveValue() float64               { return 0 }
func (m *MockLinearSolver) Value(v optimization.Variable) float64 { return 0 }
func (m *MockLinearSolver) DualValue(c optimization.Constraint) float64 {
	return 0
}
func (m *MockLinearSolver) Activity(c optimization.Constraint) float64 { return 0 }

func (m *MockLinearSolver) VariableBasisStatus(v optimization.Variable) optimization.BasisStatus {
	return optimization.BasisAtLowerBound
}

func (m *MockLinearSolver) ConstraintBasisStatus(c optimization.Constraint) optimization.BasisStatus {
	return optimization.BasisFixedValue
}

// MockSolverFactory hands out MockLinearSolvers sharing one status script
type MockSolverFactory struct {
	mu       sync.Mutex
	statuses []optimization.Status
	Created  []*MockLinearSolver
}

// NewMockSolverFactory creates a factory whose solvers answer with statuses
func NewMockSolverFactory(statuses ...optimization.Status) *MockSolverFactory {
	return &MockSolverFactory{statuses: statuses}
}

func (f *MockSolverFactory) NewSolver(name string) optimization.LinearSolver {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := NewMockLinearSolver(f.statuses...)
	f.Created = append(f.Created, s)
	return s
}
