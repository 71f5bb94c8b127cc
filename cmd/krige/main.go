// Command krige is the interpolation and comparison step: it reads the
// artifacts of the download step, fits a north-south regression trend and a
// universal-kriging model with the same trend as external drift, evaluates
// both over the configured grid and renders the comparison figures. Nothing
// is written to the results directory until every evaluation has succeeded.
package main

import (
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/zerotwo/dwd-krige/internal/config"
	"github.com/zerotwo/dwd-krige/internal/dataset"
	"github.com/zerotwo/dwd-krige/internal/geostat"
	"github.com/zerotwo/dwd-krige/internal/grid"
	"github.com/zerotwo/dwd-krige/internal/render"
)

// crossSectionLon is the longitude of the rendered north-south profile.
const crossSectionLon = 10.0

func main() {
	if err := run(); err != nil {
		log.Fatalf("krige failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	obs, err := dataset.ReadObservations(filepath.Join(cfg.DataDir, dataset.ObservationsFile))
	if err != nil {
		return err
	}
	border, err := dataset.ReadBorder(filepath.Join(cfg.DataDir, dataset.BorderFile))
	if err != nil {
		return err
	}
	log.Printf("loaded %d observations, %d border vertices", len(obs), len(border))

	lats := make([]float64, len(obs))
	lons := make([]float64, len(obs))
	temps := make([]float64, len(obs))
	for i, o := range obs {
		lats[i], lons[i], temps[i] = o.Lat, o.Lon, o.Temp
	}

	maxDistKM := cfg.MaxVarioDistDeg * math.Pi / 180 * geostat.EarthRadius
	vario, err := geostat.EstimateVariogram(lats, lons, temps, maxDistKM, 0)
	if err != nil {
		return err
	}
	model, err := geostat.FitSpherical(vario)
	if err != nil {
		return err
	}
	log.Printf("fitted %s over %d bins", model, len(vario.Centers))

	trend, err := geostat.FitTrend(lats, temps)
	if err != nil {
		return err
	}
	log.Printf("north-south trend: %.2f °C %+.3f °C/°lat", trend.Intercept, trend.Slope)

	northSouthDrift := func(lat, lon float64) float64 { return lat }
	uk, err := geostat.NewUniversal(model, lats, lons, temps, northSouthDrift)
	if err != nil {
		return err
	}

	g, err := grid.New(cfg.Extent(), cfg.GridStep)
	if err != nil {
		return err
	}
	field, err := uk.Evaluate(g)
	if err != nil {
		return err
	}
	trendVals := trend.EvalGrid(g)
	log.Printf("evaluated %d grid points (%d x %d)", g.Len(), len(g.Lats), len(g.Lons))

	// All model evaluations are done; only now touch the results directory.
	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return err
	}
	if err := render.Comparison(obs, g, field, trendVals, border, filepath.Join(cfg.ResultsDir, "kriging.png")); err != nil {
		return err
	}
	if err := render.Variogram(vario, model, filepath.Join(cfg.ResultsDir, "variogram.png")); err != nil {
		return err
	}
	if err := render.CrossSection(obs, g, field, trend, crossSectionLon, filepath.Join(cfg.ResultsDir, "trend.png")); err != nil {
		return err
	}

	product := dataset.GridProduct{
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Timestamp:   cfg.Timestamp,
		Lats:        g.Lats,
		Lons:        g.Lons,
		Kriging:     field.Values,
		Variance:    field.Variances,
		Trend:       trendVals,
	}
	productPath := filepath.Join(cfg.ResultsDir, dataset.GridProductFile)
	if err := dataset.WriteGridProduct(productPath, product); err != nil {
		return err
	}

	log.Printf("results written to %s", cfg.ResultsDir)
	return nil
}
