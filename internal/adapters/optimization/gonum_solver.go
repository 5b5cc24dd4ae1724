package optimization

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	domain "github.com/have-fun-was-taken/yafc-ce/internal/domain/optimization"
)

const (
	// DefaultTolerance is the pivot tolerance handed to the simplex method
	DefaultTolerance = 1e-10
	// boundTolerance decides when an activity sits on a bound
	boundTolerance = 1e-7
)

type column struct {
	name      string
	lo, hi    float64
	objective float64
}

type row struct {
	name   string
	lo, hi float64
	coefs  map[int]float64
	order  []int
}

type statusError struct {
	status domain.Status
	reason string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %s", e.status, e.reason)
}

func infeasibleModel(format string, args ...interface{}) *statusError {
	return &statusError{status: domain.StatusInfeasible, reason: fmt.Sprintf(format, args...)}
}

func invalidModel(format string, args ...interface{}) *statusError {
	return &statusError{status: domain.StatusModelInvalid, reason: fmt.Sprintf(format, args...)}
}

// GonumSolver implements the linear solver port on top of gonum's simplex.
// Bounded variables and two-sided constraints are rewritten into standard
// form; dual values come from solving the dual program.
type GonumSolver struct {
	name      string
	tolerance float64
	maximize  bool
	seed      int64

	columns []column
	rows    []row

	status    domain.Status
	lastError error
	values    []float64
	duals     []float64
	activity  []float64
	objective float64
}

// NewGonumSolver creates an empty model
func NewGonumSolver(name string, tolerance float64) *GonumSolver {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &GonumSolver{name: name, tolerance: tolerance}
}

// GonumSolverFactory hands out GonumSolver instances
type GonumSolverFactory struct {
	tolerance float64
}

// NewGonumSolverFactory creates a factory with the given simplex tolerance
func NewGonumSolverFactory(tolerance float64) *GonumSolverFactory {
	return &GonumSolverFactory{tolerance: tolerance}
}

// NewSolver implements optimization.SolverFactory
func (f *GonumSolverFactory) NewSolver(name string) domain.LinearSolver {
	return NewGonumSolver(name, f.tolerance)
}

func (s *GonumSolver) MakeVariable(lo, hi float64, name string) domain.Variable {
	s.columns = append(s.columns, column{name: name, lo: lo, hi: hi})
	return domain.Variable(len(s.columns) - 1)
}

func (s *GonumSolver) MakeConstraint(lo, hi float64, name string) domain.Constraint {
	s.rows = append(s.rows, row{name: name, lo: lo, hi: hi, coefs: make(map[int]float64)})
	return domain.Constraint(len(s.rows) - 1)
}

func (s *GonumSolver) SetVariableBounds(v domain.Variable, lo, hi float64) {
	s.columns[v].lo, s.columns[v].hi = lo, hi
}

func (s *GonumSolver) SetConstraintBounds(c domain.Constraint, lo, hi float64) {
	s.rows[c].lo, s.rows[c].hi = lo, hi
}

func (s *GonumSolver) SetCoefficient(c domain.Constraint, v domain.Variable, value float64) {
	r := &s.rows[c]
	if _, ok := r.coefs[int(v)]; !ok {
		r.order = append(r.order, int(v))
	}
	r.coefs[int(v)] = value
}

func (s *GonumSolver) Coefficient(c domain.Constraint, v domain.Variable) float64 {
	return s.rows[c].coefs[int(v)]
}

func (s *GonumSolver) SetMaximization(maximize bool) {
	s.maximize = maximize
}

func (s *GonumSolver) SetObjectiveCoefficient(v domain.Variable, value float64) {
	s.columns[v].objective = value
}

func (s *GonumSolver) ObjectiveCoefficient(v domain.Variable) float64 {
	return s.columns[v].objective
}

func (s *GonumSolver) ClearObjective() {
	for i := range s.columns {
		s.columns[i].objective = 0
	}
}

func (s *GonumSolver) SetSeed(seed int64) {
	s.seed = seed
}

// LastError returns the reason behind the last non-optimal status
func (s *GonumSolver) LastError() error {
	return s.lastError
}

// Solve runs the simplex method. Panics raised by the numeric code are
// reported as an abnormal status.
func (s *GonumSolver) Solve(ctx context.Context) (status domain.Status) {
	s.values, s.duals, s.activity, s.objective, s.lastError = nil, nil, nil, 0, nil
	if err := ctx.Err(); err != nil {
		s.lastError = err
		s.status = domain.StatusNotSolved
		return s.status
	}

	defer func() {
		if r := recover(); r != nil {
			s.lastError = fmt.Errorf("simplex panicked: %v", r)
			s.values, s.duals, s.activity = nil, nil, nil
			s.status = domain.StatusAbnormal
			status = s.status
		}
	}()

	s.status = s.solve()
	return s.status
}

func (s *GonumSolver) solve() domain.Status {
	form, serr := buildStandardForm(s)
	if serr != nil {
		s.lastError = serr
		return serr.status
	}

	cp := form.compact()
	z := make([]float64, form.nCols)

	// columns outside every row sit at zero unless that lowers the objective forever
	for col := 0; col < form.nCols; col++ {
		if cp.compact[col] < 0 && form.c[col] < 0 {
			s.lastError = errors.New("objective decreases along an unconstrained direction")
			return domain.StatusUnbounded
		}
	}

	rowDuals := make([]float64, len(form.a))
	if len(form.a) > 0 {
		perm := newPermutation(s.seed, len(cp.keep), len(form.a))
		c, a, b := form.dense(cp, perm)

		_, x, err := lp.Simplex(c, a, b, s.tolerance, nil)
		if err != nil {
			s.lastError = err
			return classify(err)
		}
		for pos, col := range perm.cols {
			z[cp.keep[col]] = x[pos]
		}

		if y, err := dualValues(c, a, b, s.tolerance); err == nil {
			for ri, r := range perm.rows {
				rowDuals[r] = y[ri]
			}
		} else {
			s.lastError = fmt.Errorf("dual values unavailable: %w", err)
		}
	}

	s.values = make([]float64, len(s.columns))
	for j, vm := range form.vars {
		v := vm.offset
		for _, t := range vm.terms {
			v += t.sign * z[t.col]
		}
		s.values[j] = clampToBounds(v, s.columns[j].lo, s.columns[j].hi)
	}

	s.duals = make([]float64, len(s.rows))
	sense := 1.0
	if s.maximize {
		sense = -1.0
	}
	for r, origin := range form.origins {
		if origin.side != 0 {
			s.duals[origin.constraint] += sense * rowDuals[r]
		}
	}

	s.activity = make([]float64, len(s.rows))
	for k, con := range s.rows {
		sum := 0.0
		for _, j := range con.order {
			sum += con.coefs[j] * s.values[j]
		}
		s.activity[k] = sum
	}

	s.objective = 0
	for j, col := range s.columns {
		s.objective += col.objective * s.values[j]
	}
	return domain.StatusOptimal
}

// dualValues solves max bᵀy s.t. Aᵀy ≤ c with y split into non-negative parts
func dualValues(c []float64, a *mat.Dense, b []float64, tol float64) ([]float64, error) {
	m, n := a.Dims()
	cols := 2*m + n
	dualC := make([]float64, cols)
	dualA := mat.NewDense(n, cols, nil)
	for i := 0; i < m; i++ {
		dualC[i] = -b[i]
		dualC[m+i] = b[i]
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			if v != 0 {
				dualA.Set(j, i, v)
				dualA.Set(j, m+i, -v)
			}
		}
	}
	for j := 0; j < n; j++ {
		dualA.Set(j, 2*m+j, 1)
	}

	_, x, err := lp.Simplex(dualC, dualA, c, tol, nil)
	if err != nil {
		return nil, err
	}
	y := make([]float64, m)
	for i := 0; i < m; i++ {
		y[i] = x[i] - x[m+i]
	}
	return y, nil
}

func classify(err error) domain.Status {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return domain.StatusInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return domain.StatusUnbounded
	default:
		// ErrSingular, ErrBland, ErrLinSolve and friends
		return domain.StatusAbnormal
	}
}

func clampToBounds(v, lo, hi float64) float64 {
	if v < lo && lo-v <= boundTolerance*math.Max(1, math.Abs(lo)) {
		return lo
	}
	if v > hi && v-hi <= boundTolerance*math.Max(1, math.Abs(hi)) {
		return hi
	}
	return v
}

func (s *GonumSolver) ObjectiveValue() float64 {
	return s.objective
}

func (s *GonumSolver) Value(v domain.Variable) float64 {
	if s.values == nil {
		return 0
	}
	return s.values[v]
}

func (s *GonumSolver) DualValue(c domain.Constraint) float64 {
	if s.duals == nil {
		return 0
	}
	return s.duals[c]
}

func (s *GonumSolver) Activity(c domain.Constraint) float64 {
	if s.activity == nil {
		return 0
	}
	return s.activity[c]
}

func (s *GonumSolver) VariableBasisStatus(v domain.Variable) domain.BasisStatus {
	col := s.columns[v]
	return basisStatus(s.Value(v), col.lo, col.hi)
}

func (s *GonumSolver) ConstraintBasisStatus(c domain.Constraint) domain.BasisStatus {
	con := s.rows[c]
	return basisStatus(s.Activity(c), con.lo, con.hi)
}

func basisStatus(value, lo, hi float64) domain.BasisStatus {
	loInf, hiInf := math.IsInf(lo, -1), math.IsInf(hi, 1)
	near := func(bound float64) bool {
		return math.Abs(value-bound) <= boundTolerance*math.Max(1, math.Abs(bound))
	}
	switch {
	case loInf && hiInf:
		return domain.BasisFree
	case !loInf && !hiInf && lo == hi && near(lo):
		return domain.BasisFixedValue
	case !loInf && near(lo):
		return domain.BasisAtLowerBound
	case !hiInf && near(hi):
		return domain.BasisAtUpperBound
	default:
		return domain.BasisBasic
	}
}
