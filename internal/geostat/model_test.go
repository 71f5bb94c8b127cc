package geostat

import (
	"math"
	"testing"
)

func TestSphericalGamma(t *testing.T) {
	m := Spherical{Range: 100, Sill: 2}

	if got := m.Gamma(0); got != 0 {
		t.Errorf("Gamma(0) = %g, want 0", got)
	}
	if got := m.Gamma(150); got != 2 {
		t.Errorf("Gamma(150) = %g, want sill 2", got)
	}
	// at half range: sill * (1.5*0.5 - 0.5*0.125) = sill * 0.6875
	if got, want := m.Gamma(50), 2*0.6875; math.Abs(got-want) > 1e-12 {
		t.Errorf("Gamma(50) = %g, want %g", got, want)
	}
}

func TestSphericalCov(t *testing.T) {
	m := Spherical{Range: 100, Sill: 2}

	if got := m.Cov(0); got != 2 {
		t.Errorf("Cov(0) = %g, want 2", got)
	}
	if got := m.Cov(200); got != 0 {
		t.Errorf("Cov(200) = %g, want 0", got)
	}
	for _, h := range []float64{10, 50, 90} {
		if got, want := m.Cov(h), m.Sill-m.Gamma(h); math.Abs(got-want) > 1e-12 {
			t.Errorf("Cov(%g) = %g, want sill-gamma = %g", h, got, want)
		}
	}
}

func TestFitSphericalRecoversModel(t *testing.T) {
	truth := Spherical{Range: 600, Sill: 3.5}

	ev := EmpiricalVariogram{}
	for h := 50.0; h <= 900; h += 50 {
		ev.Centers = append(ev.Centers, h)
		ev.Gammas = append(ev.Gammas, truth.Gamma(h))
		ev.Counts = append(ev.Counts, 100)
	}

	got, err := FitSpherical(ev)
	if err != nil {
		t.Fatalf("FitSpherical failed: %v", err)
	}
	if math.Abs(got.Range-truth.Range) > 1 {
		t.Errorf("range = %g km, want %g km", got.Range, truth.Range)
	}
	if math.Abs(got.Sill-truth.Sill) > 0.01 {
		t.Errorf("sill = %g, want %g", got.Sill, truth.Sill)
	}
	if got.Nugget != 0 {
		t.Errorf("nugget = %g, want 0", got.Nugget)
	}
}

func TestFitSphericalNeedsBins(t *testing.T) {
	ev := EmpiricalVariogram{Centers: []float64{100}, Gammas: []float64{1}, Counts: []int{5}}
	if _, err := FitSpherical(ev); err == nil {
		t.Fatal("expected error for single-bin variogram, got nil")
	}
}
