package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OBS_TIMESTAMP", "DATA_DIR", "RESULTS_DIR", "DWD_BASE_URL", "BORDER_URL",
		"BORDER_ADMIN", "GRID_LAT_MIN", "GRID_LAT_MAX", "GRID_LON_MIN", "GRID_LON_MAX",
		"GRID_STEP", "VARIO_MAX_DIST_DEG", "REQUEST_TIMEOUT", "DATABASE_URL", "DRY_RUN",
		"PORT", "API_PORT", "API_BEARER_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDir != "data" || cfg.ResultsDir != "results" {
		t.Errorf("dirs = %q / %q, want data / results", cfg.DataDir, cfg.ResultsDir)
	}
	want := time.Date(2020, 6, 9, 12, 0, 0, 0, time.UTC)
	if !cfg.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", cfg.Timestamp, want)
	}
	if cfg.LatMin != 47.0 || cfg.LatMax != 56.1 || cfg.LonMin != 5.0 || cfg.LonMax != 16.1 {
		t.Errorf("extent = %+v, want the Germany defaults", cfg.Extent())
	}
	if cfg.GridStep != 0.1 {
		t.Errorf("grid step = %g, want 0.1", cfg.GridStep)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.ListenAddr() != ":8080" {
		t.Errorf("listen addr = %q, want :8080", cfg.ListenAddr())
	}
	if cfg.DatabaseURL != "" || cfg.DryRun {
		t.Errorf("archive settings should default to off")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OBS_TIMESTAMP", "2021-01-02T15:30:00Z")
	t.Setenv("DATA_DIR", "/tmp/obs")
	t.Setenv("GRID_STEP", "0.25")
	t.Setenv("PORT", "9000")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("DATABASE_URL", "postgres://example/run")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// timestamps are truncated to the hour the products are keyed by
	want := time.Date(2021, 1, 2, 15, 0, 0, 0, time.UTC)
	if !cfg.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", cfg.Timestamp, want)
	}
	if cfg.DataDir != "/tmp/obs" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if cfg.GridStep != 0.25 {
		t.Errorf("grid step = %g, want 0.25", cfg.GridStep)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Port)
	}
	if !cfg.DryRun {
		t.Error("expected dry-run to be enabled")
	}
	if cfg.DatabaseURL != "postgres://example/run" {
		t.Errorf("database url = %q", cfg.DatabaseURL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"OBS_TIMESTAMP", "last tuesday"},
		{"GRID_STEP", "-1"},
		{"GRID_STEP", "abc"},
		{"GRID_LAT_MIN", "60"}, // above the default LatMax
		{"VARIO_MAX_DIST_DEG", "0"},
		{"REQUEST_TIMEOUT", "soon"},
		{"PORT", "not-a-port"},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
