// Command download is the data acquisition step: it fetches DWD hourly air
// temperature observations and the border polyline for the configured region
// and hour, and persists both artifacts to the data directory for the krige
// step. With DATABASE_URL set it additionally archives the run to Postgres.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/zerotwo/dwd-krige/internal/borders"
	"github.com/zerotwo/dwd-krige/internal/config"
	"github.com/zerotwo/dwd-krige/internal/dataset"
	"github.com/zerotwo/dwd-krige/internal/db"
	"github.com/zerotwo/dwd-krige/internal/dwd"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("download failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	client := &http.Client{Timeout: cfg.RequestTimeout}
	dwdClient := dwd.NewClient(cfg.DWDBaseURL, client)

	stations, err := dwdClient.FetchStations(ctx)
	if err != nil {
		return err
	}
	candidates := dwd.FilterStations(stations, cfg.Extent(), cfg.Timestamp)
	log.Printf("station inventory: %d total, %d candidates for %s",
		len(stations), len(candidates), cfg.Timestamp.Format(time.RFC3339))

	obs := make([]dataset.Observation, 0, len(candidates))
	kept := make([]dwd.Station, 0, len(candidates))
	skipped := 0
	for _, st := range candidates {
		temp, ok, err := dwdClient.FetchTemperature(ctx, st.ID, cfg.Timestamp)
		if err != nil {
			return err
		}
		if !ok {
			skipped++
			continue
		}
		obs = append(obs, dataset.Observation{ID: st.ID, Lat: st.Lat, Lon: st.Lon, Temp: temp})
		kept = append(kept, st)
	}
	log.Printf("collected %d observations (%d stations without a value for the hour)", len(obs), skipped)
	if len(obs) == 0 {
		return fmt.Errorf("no observations for %s in the configured extent", cfg.Timestamp.Format(time.RFC3339))
	}

	border, err := borders.Fetch(ctx, client, cfg.BorderURL, cfg.BorderAdmin)
	if err != nil {
		return err
	}
	log.Printf("border polyline: %d vertices", len(border))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	obsPath := filepath.Join(cfg.DataDir, dataset.ObservationsFile)
	if err := dataset.WriteObservations(obsPath, obs); err != nil {
		return err
	}
	borderPath := filepath.Join(cfg.DataDir, dataset.BorderFile)
	if err := dataset.WriteBorder(borderPath, border); err != nil {
		return err
	}
	log.Printf("wrote %s and %s", obsPath, borderPath)

	if cfg.DatabaseURL == "" {
		return nil
	}
	return archive(ctx, cfg, kept, obs)
}

func archive(ctx context.Context, cfg config.Config, stations []dwd.Station, obs []dataset.Observation) error {
	if cfg.DryRun {
		log.Printf("dry-run: skipping archive of %d stations / %d observations", len(stations), len(obs))
		return nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.UpsertStations(ctx, pool, stations); err != nil {
		return err
	}
	if err := db.InsertObservations(ctx, pool, obs, cfg.Timestamp); err != nil {
		return err
	}
	log.Printf("archived %d observations for %s", len(obs), cfg.Timestamp.Format(time.RFC3339))
	return nil
}
