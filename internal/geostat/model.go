package geostat

import (
	"fmt"
	"math"
)

// Spherical is a spherical variogram model over great-circle distance.
// Distances are in kilometres, the nugget is kept at zero when fitting.
type Spherical struct {
	Range  float64
	Sill   float64
	Nugget float64
}

// Gamma returns the model semivariance at distance h.
func (m Spherical) Gamma(h float64) float64 {
	return m.Nugget + m.Sill*sphUnit(h, m.Range)
}

// Cov returns the covariance at distance h. Cov(0) equals Sill + Nugget.
func (m Spherical) Cov(h float64) float64 {
	if h == 0 {
		return m.Sill + m.Nugget
	}
	return m.Sill * (1 - sphUnit(h, m.Range))
}

func (m Spherical) String() string {
	return fmt.Sprintf("Spherical(range=%.1f km, sill=%.3f, nugget=%.3f)", m.Range, m.Sill, m.Nugget)
}

// sphUnit is the unit-sill spherical variogram.
func sphUnit(h, r float64) float64 {
	if h <= 0 {
		return 0
	}
	if h >= r {
		return 1
	}
	x := h / r
	return 1.5*x - 0.5*x*x*x
}

// FitSpherical fits range and sill of a zero-nugget spherical model to an
// empirical variogram. The sill has a closed-form weighted least-squares
// solution for a fixed range, so only the range is searched, by golden
// section over [half the first bin center, twice the last bin center].
func FitSpherical(ev EmpiricalVariogram) (Spherical, error) {
	if len(ev.Centers) < 2 {
		return Spherical{}, fmt.Errorf("variogram fit: need at least 2 bins, got %d", len(ev.Centers))
	}

	lo := 0.5 * ev.Centers[0]
	hi := 2.0 * ev.Centers[len(ev.Centers)-1]

	const phi = 0.6180339887498949 // 1/golden ratio
	a, b := lo, hi
	x1 := b - phi*(b-a)
	x2 := a + phi*(b-a)
	f1 := sseForRange(ev, x1)
	f2 := sseForRange(ev, x2)
	for i := 0; i < 80; i++ {
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - phi*(b-a)
			f1 = sseForRange(ev, x1)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + phi*(b-a)
			f2 = sseForRange(ev, x2)
		}
	}

	r := 0.5 * (a + b)
	sill := sillForRange(ev, r)
	if sill <= 0 || math.IsNaN(sill) {
		return Spherical{}, fmt.Errorf("variogram fit: no positive sill for range %.1f km", r)
	}
	return Spherical{Range: r, Sill: sill}, nil
}

// sillForRange solves min_sill sum w (gamma - sill*s)^2 for a fixed range.
func sillForRange(ev EmpiricalVariogram, r float64) float64 {
	var num, den float64
	for i, h := range ev.Centers {
		s := sphUnit(h, r)
		w := float64(ev.Counts[i])
		num += w * ev.Gammas[i] * s
		den += w * s * s
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func sseForRange(ev EmpiricalVariogram, r float64) float64 {
	sill := sillForRange(ev, r)
	if sill <= 0 || math.IsNaN(sill) {
		return math.Inf(1)
	}
	var sse float64
	for i, h := range ev.Centers {
		d := ev.Gammas[i] - sill*sphUnit(h, r)
		sse += float64(ev.Counts[i]) * d * d
	}
	return sse
}
