package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zerotwo/dwd-krige/internal/grid"
)

const (
	defaultDWDBaseURL = "https://opendata.dwd.de/climate_environment/CDC/observations_germany/climate/hourly/air_temperature/recent"
	defaultBorderURL  = "https://raw.githubusercontent.com/johan/world.geo.json/master/countries/DEU.geo.json"
	defaultTimestamp  = "2020-06-09T12:00:00Z"

	defaultRequestTimeout = 60 * time.Second
)

// Config holds runtime configuration for the download, krige and api commands.
// All values have embedded defaults covering the Germany example; environment
// variables (optionally from .env) override them.
type Config struct {
	DataDir    string
	ResultsDir string

	DWDBaseURL  string
	BorderURL   string
	BorderAdmin string
	Timestamp   time.Time

	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64

	GridStep        float64
	MaxVarioDistDeg float64

	RequestTimeout time.Duration

	// Optional Postgres archive of downloaded observations.
	DatabaseURL string
	DryRun      bool

	// Results API.
	Port        int
	BearerToken string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		DataDir:         "data",
		ResultsDir:      "results",
		DWDBaseURL:      defaultDWDBaseURL,
		BorderURL:       defaultBorderURL,
		BorderAdmin:     "Germany",
		LatMin:          47.0,
		LatMax:          56.1,
		LonMin:          5.0,
		LonMax:          16.1,
		GridStep:        0.1,
		MaxVarioDistDeg: 8.0,
		RequestTimeout:  defaultRequestTimeout,
		Port:            8080,
	}

	ts := defaultTimestamp
	if v := strings.TrimSpace(os.Getenv("OBS_TIMESTAMP")); v != "" {
		ts = v
	}
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return cfg, fmt.Errorf("invalid OBS_TIMESTAMP: %w", err)
	}
	cfg.Timestamp = parsed.UTC().Truncate(time.Hour)

	if v := strings.TrimSpace(os.Getenv("DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("RESULTS_DIR")); v != "" {
		cfg.ResultsDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DWD_BASE_URL")); v != "" {
		cfg.DWDBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("BORDER_URL")); v != "" {
		cfg.BorderURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BORDER_ADMIN")); v != "" {
		cfg.BorderAdmin = v
	}

	for _, f := range []struct {
		env string
		dst *float64
	}{
		{"GRID_LAT_MIN", &cfg.LatMin},
		{"GRID_LAT_MAX", &cfg.LatMax},
		{"GRID_LON_MIN", &cfg.LonMin},
		{"GRID_LON_MAX", &cfg.LonMax},
		{"GRID_STEP", &cfg.GridStep},
		{"VARIO_MAX_DIST_DEG", &cfg.MaxVarioDistDeg},
	} {
		if v := strings.TrimSpace(os.Getenv(f.env)); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cfg, fmt.Errorf("invalid %s: %w", f.env, err)
			}
			*f.dst = parsed
		}
	}

	if cfg.LatMax <= cfg.LatMin || cfg.LonMax <= cfg.LonMin {
		return cfg, fmt.Errorf("degenerate extent: lat [%g, %g] lon [%g, %g]",
			cfg.LatMin, cfg.LatMax, cfg.LonMin, cfg.LonMax)
	}
	if cfg.GridStep <= 0 {
		return cfg, fmt.Errorf("GRID_STEP must be positive, got %g", cfg.GridStep)
	}
	if cfg.MaxVarioDistDeg <= 0 {
		return cfg, fmt.Errorf("VARIO_MAX_DIST_DEG must be positive, got %g", cfg.MaxVarioDistDeg)
	}

	if v := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	if portStr := strings.TrimSpace(os.Getenv("PORT")); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
		cfg.Port = port
	} else if portStr := strings.TrimSpace(os.Getenv("API_PORT")); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
		cfg.Port = port
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	return cfg, nil
}

// Extent returns the configured bounding box.
func (c Config) Extent() grid.Extent {
	return grid.Extent{LatMin: c.LatMin, LatMax: c.LatMax, LonMin: c.LonMin, LonMax: c.LonMax}
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
