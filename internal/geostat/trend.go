package geostat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/zerotwo/dwd-krige/internal/grid"
)

// TrendModel is a linear temperature trend over latitude, the north-south
// drift of the workflow. It doubles as the regression baseline and as the
// external drift supplied to universal kriging.
type TrendModel struct {
	Intercept float64
	Slope     float64
}

// FitTrend fits the trend by ordinary least squares over all observations.
func FitTrend(lats, temps []float64) (TrendModel, error) {
	if len(lats) != len(temps) {
		return TrendModel{}, fmt.Errorf("trend fit: %d latitudes vs %d temperatures", len(lats), len(temps))
	}
	if len(lats) < 2 {
		return TrendModel{}, fmt.Errorf("trend fit: need at least 2 observations, got %d", len(lats))
	}

	alpha, beta := stat.LinearRegression(lats, temps, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return TrendModel{}, fmt.Errorf("trend fit: degenerate observation set (all latitudes equal?)")
	}
	return TrendModel{Intercept: alpha, Slope: beta}, nil
}

// Eval returns the trend value at a latitude.
func (m TrendModel) Eval(lat float64) float64 {
	return m.Intercept + m.Slope*lat
}

// EvalGrid evaluates the trend over every grid point, row-major with latitude
// as the slow index.
func (m TrendModel) EvalGrid(g *grid.Grid) []float64 {
	out := make([]float64, g.Len())
	for i, lat := range g.Lats {
		v := m.Eval(lat)
		for j := range g.Lons {
			out[g.Index(i, j)] = v
		}
	}
	return out
}
