package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zerotwo/dwd-krige/internal/config"
	"github.com/zerotwo/dwd-krige/internal/dataset"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		DataDir:    t.TempDir(),
		ResultsDir: t.TempDir(),
		Port:       8080,
	}
}

func seedArtifacts(t *testing.T, cfg config.Config) {
	t.Helper()

	obs := []dataset.Observation{
		{ID: "00044", Lat: 52.9336, Lon: 8.2370, Temp: 18.1},
		{ID: "00096", Lat: 50.5347, Lon: 12.7267, Temp: 15.4},
	}
	if err := dataset.WriteObservations(filepath.Join(cfg.DataDir, dataset.ObservationsFile), obs); err != nil {
		t.Fatalf("seed observations: %v", err)
	}

	product := dataset.GridProduct{
		GeneratedAt: time.Now().UTC(),
		Timestamp:   time.Date(2020, 6, 9, 12, 0, 0, 0, time.UTC),
		Lats:        []float64{47, 47.1},
		Lons:        []float64{5, 5.1},
		Kriging:     []float64{1, 2, 3, 4},
		Variance:    []float64{0, 0, 0, 0},
		Trend:       []float64{1, 1, 2, 2},
	}
	if err := dataset.WriteGridProduct(filepath.Join(cfg.ResultsDir, dataset.GridProductFile), product); err != nil {
		t.Fatalf("seed grid product: %v", err)
	}

	if err := os.WriteFile(filepath.Join(cfg.ResultsDir, "kriging.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("seed figure: %v", err)
	}
}

func doRequest(srv *Server, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := New(testConfig(t))
	rec := doRequest(srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestObservations(t *testing.T) {
	cfg := testConfig(t)
	seedArtifacts(t, cfg)
	srv := New(cfg)

	rec := doRequest(srv, http.MethodGet, "/observations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var payload struct {
		Count        int                   `json:"count"`
		Observations []dataset.Observation `json:"observations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 2 || len(payload.Observations) != 2 {
		t.Fatalf("count = %d / %d observations, want 2", payload.Count, len(payload.Observations))
	}
	if payload.Observations[0].ID != "00044" {
		t.Errorf("first observation = %+v", payload.Observations[0])
	}
}

func TestObservationsBeforeDownload(t *testing.T) {
	srv := New(testConfig(t))
	rec := doRequest(srv, http.MethodGet, "/observations", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before the download step ran", rec.Code)
	}
}

func TestGridLatest(t *testing.T) {
	cfg := testConfig(t)
	seedArtifacts(t, cfg)
	srv := New(cfg)

	rec := doRequest(srv, http.MethodGet, "/grid/latest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var payload struct {
		Data dataset.GridProduct `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Kriging) != 4 {
		t.Fatalf("kriging values = %v, want 4 entries", payload.Data.Kriging)
	}
}

func TestFigures(t *testing.T) {
	cfg := testConfig(t)
	seedArtifacts(t, cfg)
	srv := New(cfg)

	rec := doRequest(srv, http.MethodGet, "/figures/kriging.png", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/figures/trend.png", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for a figure not rendered yet", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/figures/secret.txt", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for a non-whitelisted name", rec.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.BearerToken = "sekrit"
	seedArtifacts(t, cfg)
	srv := New(cfg)

	rec := doRequest(srv, http.MethodGet, "/observations", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without token", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/observations", map[string]string{"Authorization": "Bearer wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 with wrong token", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/observations", map[string]string{"Authorization": "Bearer sekrit"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with valid token", rec.Code)
	}
}
