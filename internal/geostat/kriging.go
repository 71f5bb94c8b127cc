package geostat

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/zerotwo/dwd-krige/internal/grid"
)

// DriftFunc is an external drift term evaluated at a location.
type DriftFunc func(lat, lon float64) float64

// FieldEstimate is the kriging output over a grid. Slices are row-major with
// latitude as the slow index and are read-only after creation.
type FieldEstimate struct {
	Grid      *grid.Grid
	Values    []float64
	Variances []float64
	Mean      []float64 // estimated drift field
}

// Universal is a universal-kriging model: a constant mean plus the supplied
// drift terms, with spatially correlated residuals described by a spherical
// variogram over great-circle distance.
type Universal struct {
	model  Spherical
	lats   []float64
	lons   []float64
	vals   []float64
	drifts []DriftFunc

	lu   mat.LU        // factorization of the augmented kriging matrix
	beta *mat.VecDense // generalized least-squares drift coefficients
}

// NewUniversal conditions a universal-kriging model on the observations and
// solves for the drift coefficients. The observation count must exceed the
// number of drift terms (including the implicit constant).
func NewUniversal(model Spherical, lats, lons, vals []float64, drifts ...DriftFunc) (*Universal, error) {
	n := len(vals)
	if len(lats) != n || len(lons) != n {
		return nil, fmt.Errorf("kriging: coordinate/value length mismatch")
	}
	p := 1 + len(drifts)
	if n <= p {
		return nil, fmt.Errorf("kriging: need more than %d observations for %d drift terms, got %d", p, p, n)
	}

	u := &Universal{model: model, lats: lats, lons: lons, vals: vals, drifts: drifts}

	// Augmented system [C F; F^T 0] with C the residual covariance and F
	// the drift matrix (constant column first).
	dim := n + p
	a := mat.NewDense(dim, dim, nil)
	for i := 0; i < n; i++ {
		a.Set(i, i, model.Cov(0))
		for j := i + 1; j < n; j++ {
			c := model.Cov(GreatCircle(lats[i], lons[i], lats[j], lons[j]))
			a.Set(i, j, c)
			a.Set(j, i, c)
		}
		f := u.driftRow(lats[i], lons[i])
		for k, v := range f {
			a.Set(i, n+k, v)
			a.Set(n+k, i, v)
		}
	}

	u.lu.Factorize(a)

	// Dual solve with rhs [z; 0]: the lower block of the solution is the
	// GLS estimate of the drift coefficients.
	rhs := mat.NewVecDense(dim, nil)
	for i, v := range vals {
		rhs.SetVec(i, v)
	}
	sol := mat.NewVecDense(dim, nil)
	if err := u.lu.SolveVecTo(sol, false, rhs); err != nil {
		return nil, fmt.Errorf("kriging: singular system (duplicate station locations?): %w", err)
	}
	u.beta = mat.NewVecDense(p, nil)
	for k := 0; k < p; k++ {
		u.beta.SetVec(k, sol.AtVec(n+k))
	}

	return u, nil
}

// driftRow evaluates the drift basis (constant first) at a location.
func (u *Universal) driftRow(lat, lon float64) []float64 {
	f := make([]float64, 1+len(u.drifts))
	f[0] = 1
	for k, d := range u.drifts {
		f[k+1] = d(lat, lon)
	}
	return f
}

// Evaluate solves the kriging system for every grid point and returns the
// estimate, the estimation variance and the drift mean field.
func (u *Universal) Evaluate(g *grid.Grid) (*FieldEstimate, error) {
	n := len(u.vals)
	p := 1 + len(u.drifts)
	m := g.Len()
	if m == 0 {
		return nil, fmt.Errorf("kriging: empty evaluation grid")
	}

	// One augmented right-hand side per grid point, solved in a single
	// factorized batch.
	b := mat.NewDense(n+p, m, nil)
	for idx := 0; idx < m; idx++ {
		lat, lon := g.At(idx)
		for i := 0; i < n; i++ {
			b.Set(i, idx, u.model.Cov(GreatCircle(u.lats[i], u.lons[i], lat, lon)))
		}
		for k, v := range u.driftRow(lat, lon) {
			b.Set(n+k, idx, v)
		}
	}

	x := mat.NewDense(n+p, m, nil)
	if err := u.lu.SolveTo(x, false, b); err != nil {
		return nil, fmt.Errorf("kriging: solve failed: %w", err)
	}

	est := &FieldEstimate{
		Grid:      g,
		Values:    make([]float64, m),
		Variances: make([]float64, m),
		Mean:      make([]float64, m),
	}
	c0 := u.model.Cov(0)
	for idx := 0; idx < m; idx++ {
		var value, xb float64
		for i := 0; i < n; i++ {
			value += x.At(i, idx) * u.vals[i]
		}
		for i := 0; i < n+p; i++ {
			xb += x.At(i, idx) * b.At(i, idx)
		}
		est.Values[idx] = value
		variance := c0 - xb
		if variance < 0 {
			variance = 0 // numeric round-off near conditioning points
		}
		est.Variances[idx] = variance

		lat, lon := g.At(idx)
		var mean float64
		for k, v := range u.driftRow(lat, lon) {
			mean += u.beta.AtVec(k) * v
		}
		est.Mean[idx] = mean
	}
	return est, nil
}
