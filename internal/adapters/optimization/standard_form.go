package optimization

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// term maps a model variable onto a standard-form column: x += sign * z[col]
type term struct {
	col  int
	sign float64
}

// variableMap expresses a model variable as offset + Σ sign·z
type variableMap struct {
	offset float64
	terms  []term
}

// rowOrigin records which model constraint side produced a standard-form row.
// side is +1 for an upper bound row, -1 for a lower bound row and 0 for a
// variable bound row.
type rowOrigin struct {
	constraint int
	side       int
}

// standardForm is min cᵀz subject to Az = b, z ≥ 0, built from the bounded
// model. Every row owns a slack column, so A has full row rank.
type standardForm struct {
	c        []float64
	a        [][]float64
	b        []float64
	origins  []rowOrigin
	vars     []variableMap
	constObj float64
	nCols    int
}

func (f *standardForm) newColumn(cost float64) int {
	f.c = append(f.c, cost)
	for i := range f.a {
		f.a[i] = append(f.a[i], 0)
	}
	f.nCols++
	return f.nCols - 1
}

func (f *standardForm) newRow(origin rowOrigin, rhs float64) int {
	f.a = append(f.a, make([]float64, f.nCols))
	f.b = append(f.b, rhs)
	f.origins = append(f.origins, origin)
	return len(f.a) - 1
}

// buildStandardForm converts the solver model. A non-nil status short-cuts
// solving (the model is trivially infeasible or invalid).
func buildStandardForm(s *GonumSolver) (*standardForm, *statusError) {
	f := &standardForm{vars: make([]variableMap, len(s.columns))}
	sense := 1.0
	if s.maximize {
		sense = -1.0
	}

	for j, col := range s.columns {
		if math.IsNaN(col.lo) || math.IsNaN(col.hi) || math.IsNaN(col.objective) {
			return nil, invalidModel("variable %s has NaN data", col.name)
		}
		if col.lo > col.hi || math.IsInf(col.lo, 1) || math.IsInf(col.hi, -1) {
			return nil, infeasibleModel("variable %s has empty bounds [%v, %v]", col.name, col.lo, col.hi)
		}
		cost := sense * col.objective
		loInf, hiInf := math.IsInf(col.lo, -1), math.IsInf(col.hi, 1)

		switch {
		case !loInf && !hiInf && col.lo == col.hi:
			f.vars[j] = variableMap{offset: col.lo}
		case !loInf:
			z := f.newColumn(cost)
			f.vars[j] = variableMap{offset: col.lo, terms: []term{{col: z, sign: 1}}}
			if !hiInf {
				r := f.newRow(rowOrigin{constraint: -1}, col.hi-col.lo)
				slack := f.newColumn(0)
				f.a[r][z] = 1
				f.a[r][slack] = 1
			}
		case !hiInf:
			z := f.newColumn(-cost)
			f.vars[j] = variableMap{offset: col.hi, terms: []term{{col: z, sign: -1}}}
		default:
			zp := f.newColumn(cost)
			zn := f.newColumn(-cost)
			f.vars[j] = variableMap{terms: []term{{col: zp, sign: 1}, {col: zn, sign: -1}}}
		}
		f.constObj += cost * f.vars[j].offset
	}

	for k, con := range s.rows {
		if math.IsNaN(con.lo) || math.IsNaN(con.hi) {
			return nil, invalidModel("constraint %s has NaN bounds", con.name)
		}
		if con.lo > con.hi || math.IsInf(con.lo, 1) || math.IsInf(con.hi, -1) {
			return nil, infeasibleModel("constraint %s has empty bounds [%v, %v]", con.name, con.lo, con.hi)
		}
		loInf, hiInf := math.IsInf(con.lo, -1), math.IsInf(con.hi, 1)
		if loInf && hiInf {
			continue
		}

		folded := make(map[int]float64)
		constant := 0.0
		for _, j := range con.order {
			coef := con.coefs[j]
			if math.IsNaN(coef) || math.IsInf(coef, 0) {
				return nil, invalidModel("constraint %s has a non-finite coefficient", con.name)
			}
			constant += coef * f.vars[j].offset
			for _, t := range f.vars[j].terms {
				folded[t.col] += coef * t.sign
			}
		}

		if !loInf {
			r := f.newRow(rowOrigin{constraint: k, side: -1}, con.lo-constant)
			slack := f.newColumn(0)
			for col, v := range folded {
				f.a[r][col] = v
			}
			f.a[r][slack] = -1
		}
		if !hiInf {
			r := f.newRow(rowOrigin{constraint: k, side: 1}, con.hi-constant)
			slack := f.newColumn(0)
			for col, v := range folded {
				f.a[r][col] = v
			}
			f.a[r][slack] = 1
		}
	}

	return f, nil
}

// compaction removes structural columns that appear in no row
type compaction struct {
	keep    []int // compact index -> full column
	compact []int // full column -> compact index or -1
}

func (f *standardForm) compact() compaction {
	cp := compaction{compact: make([]int, f.nCols)}
	for col := 0; col < f.nCols; col++ {
		used := false
		for r := range f.a {
			if f.a[r][col] != 0 {
				used = true
				break
			}
		}
		if used {
			cp.compact[col] = len(cp.keep)
			cp.keep = append(cp.keep, col)
		} else {
			cp.compact[col] = -1
		}
	}
	return cp
}

// permutation shuffles column and row order for a non-zero seed
type permutation struct {
	cols []int // position -> compact column
	rows []int // position -> row
}

func newPermutation(seed int64, nCols, nRows int) permutation {
	p := permutation{cols: make([]int, nCols), rows: make([]int, nRows)}
	if seed == 0 {
		for i := range p.cols {
			p.cols[i] = i
		}
		for i := range p.rows {
			p.rows[i] = i
		}
		return p
	}
	rng := rand.New(rand.NewSource(seed))
	p.cols = rng.Perm(nCols)
	p.rows = rng.Perm(nRows)
	return p
}

// dense materialises the compacted, permuted problem for gonum
func (f *standardForm) dense(cp compaction, p permutation) ([]float64, *mat.Dense, []float64) {
	m, n := len(p.rows), len(p.cols)
	c := make([]float64, n)
	b := make([]float64, m)
	a := mat.NewDense(m, n, nil)
	for pos, col := range p.cols {
		c[pos] = f.c[cp.keep[col]]
	}
	for ri, r := range p.rows {
		b[ri] = f.b[r]
		for pos, col := range p.cols {
			if v := f.a[r][cp.keep[col]]; v != 0 {
				a.Set(ri, pos, v)
			}
		}
	}
	return c, a, b
}
