package grid

import (
	"fmt"
	"math"
)

// Extent is a geographic bounding box in degrees.
type Extent struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// Contains reports whether a coordinate lies inside the extent.
func (e Extent) Contains(lat, lon float64) bool {
	return lat >= e.LatMin && lat <= e.LatMax && lon >= e.LonMin && lon <= e.LonMax
}

// Grid is a regular lat/lon evaluation lattice. Fields hold the axis
// coordinates; evaluation results over the grid are stored row-major with
// latitude as the slow index.
type Grid struct {
	Lats []float64
	Lons []float64
}

// New builds a lattice covering the extent with the given step. Axis points
// start at the extent minimum and stop short of the maximum, so every point
// lies inside the extent.
func New(ext Extent, step float64) (*Grid, error) {
	if step <= 0 {
		return nil, fmt.Errorf("grid step must be positive, got %g", step)
	}
	if ext.LatMax <= ext.LatMin || ext.LonMax <= ext.LonMin {
		return nil, fmt.Errorf("degenerate extent %+v", ext)
	}
	return &Grid{
		Lats: axis(ext.LatMin, ext.LatMax, step),
		Lons: axis(ext.LonMin, ext.LonMax, step),
	}, nil
}

// axis returns points start, start+step, ... strictly below stop.
func axis(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop - start) / step))
	// guard against step dividing the span exactly up to float error
	if start+float64(n-1)*step >= stop {
		n--
	}
	pts := make([]float64, n)
	for i := range pts {
		pts[i] = start + float64(i)*step
	}
	return pts
}

// Len returns the number of evaluation points.
func (g *Grid) Len() int {
	return len(g.Lats) * len(g.Lons)
}

// At returns the coordinate of the flattened point index.
func (g *Grid) At(idx int) (lat, lon float64) {
	nLon := len(g.Lons)
	return g.Lats[idx/nLon], g.Lons[idx%nLon]
}

// Index returns the flattened index for axis positions (iLat, iLon).
func (g *Grid) Index(iLat, iLon int) int {
	return iLat*len(g.Lons) + iLon
}

// NearestLon returns the index of the longitude axis point closest to lon.
func (g *Grid) NearestLon(lon float64) int {
	best := 0
	for i, v := range g.Lons {
		if math.Abs(v-lon) < math.Abs(g.Lons[best]-lon) {
			best = i
		}
	}
	return best
}
