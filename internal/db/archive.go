// Package db archives downloaded observations to Postgres when a database
// URL is configured. The filesystem artifacts remain the source of truth for
// the krige step; the archive only accumulates run history.
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zerotwo/dwd-krige/internal/dataset"
	"github.com/zerotwo/dwd-krige/internal/dwd"
)

// Connect opens a pgx pool for the archive.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, databaseURL)
}

// UpsertStations inserts/updates station metadata records.
func UpsertStations(ctx context.Context, pool *pgxpool.Pool, stations []dwd.Station) error {
	if len(stations) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO dwdkrige.stations (id, name, state, lat, lon, elevation_m, active_from, active_to, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    state = EXCLUDED.state,
    lat = EXCLUDED.lat,
    lon = EXCLUDED.lon,
    elevation_m = EXCLUDED.elevation_m,
    active_from = EXCLUDED.active_from,
    active_to = EXCLUDED.active_to,
    updated_at = NOW()`

	for _, st := range stations {
		batch.Queue(query, st.ID, st.Name, st.State, st.Lat, st.Lon, st.Elevation, st.From, st.To)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range stations {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// InsertObservations writes the observation snapshot for one target hour.
func InsertObservations(ctx context.Context, pool *pgxpool.Pool, obs []dataset.Observation, ts time.Time) error {
	if len(obs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO dwdkrige.observations (station_id, ts, temp_c, ingested_at, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW(),NOW())
ON CONFLICT (station_id, ts) DO UPDATE
SET temp_c = EXCLUDED.temp_c,
    updated_at = NOW()`

	for _, o := range obs {
		batch.Queue(query, o.ID, ts, o.Temp)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range obs {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}

	return nil
}
