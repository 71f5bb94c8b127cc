package grid

import (
	"math"
	"testing"
)

func TestNewCoversExtent(t *testing.T) {
	ext := Extent{LatMin: 47, LatMax: 56.1, LonMin: 5, LonMax: 16.1}
	g, err := New(ext, 0.1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := g.Len(); got != len(g.Lats)*len(g.Lons) {
		t.Fatalf("Len() = %d, want %d", got, len(g.Lats)*len(g.Lons))
	}
	if len(g.Lats) != 91 {
		t.Errorf("expected 91 latitude points, got %d", len(g.Lats))
	}
	if len(g.Lons) != 111 {
		t.Errorf("expected 111 longitude points, got %d", len(g.Lons))
	}

	for idx := 0; idx < g.Len(); idx++ {
		lat, lon := g.At(idx)
		if !ext.Contains(lat, lon) {
			t.Fatalf("point %d (%.3f, %.3f) outside extent", idx, lat, lon)
		}
	}
}

func TestNewSquareResolution(t *testing.T) {
	g, err := New(Extent{LatMin: 0, LatMax: 1, LonMin: 0, LonMax: 1}, 0.1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.Len() != 10*10 {
		t.Fatalf("expected resolution^2 = 100 points, got %d", g.Len())
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		ext  Extent
		step float64
	}{
		{"zero step", Extent{LatMin: 0, LatMax: 1, LonMin: 0, LonMax: 1}, 0},
		{"negative step", Extent{LatMin: 0, LatMax: 1, LonMin: 0, LonMax: 1}, -0.5},
		{"inverted lat", Extent{LatMin: 2, LatMax: 1, LonMin: 0, LonMax: 1}, 0.1},
		{"inverted lon", Extent{LatMin: 0, LatMax: 1, LonMin: 3, LonMax: 1}, 0.1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.ext, tc.step); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestIndexAtRoundTrip(t *testing.T) {
	g, err := New(Extent{LatMin: 10, LatMax: 12, LonMin: 20, LonMax: 23}, 0.5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := range g.Lats {
		for j := range g.Lons {
			lat, lon := g.At(g.Index(i, j))
			if lat != g.Lats[i] || lon != g.Lons[j] {
				t.Fatalf("At(Index(%d,%d)) = (%g,%g), want (%g,%g)", i, j, lat, lon, g.Lats[i], g.Lons[j])
			}
		}
	}
}

func TestNearestLon(t *testing.T) {
	g, err := New(Extent{LatMin: 0, LatMax: 1, LonMin: 5, LonMax: 16}, 0.1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	col := g.NearestLon(10.0)
	if math.Abs(g.Lons[col]-10.0) > 0.05 {
		t.Fatalf("NearestLon(10) = index %d (%.3f), want ~10", col, g.Lons[col])
	}
}
