package dwd

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	inventoryFile   = "TU_Stundenwerte_Beschreibung_Stationen.txt"
	productFilePref = "produkt_tu_stunde"
)

// Client provides access to the DWD CDC hourly air-temperature open data
// (recent period). Station inventory and per-station zipped products live in
// one directory under the base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client rooted at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// FetchStations downloads and parses the station inventory.
func (c *Client) FetchStations(ctx context.Context) ([]Station, error) {
	body, err := c.get(ctx, c.baseURL+"/"+inventoryFile)
	if err != nil {
		return nil, fmt.Errorf("fetch station inventory: %w", err)
	}
	defer body.Close()

	stations, err := ParseStationInventory(body)
	if err != nil {
		return nil, fmt.Errorf("parse station inventory: %w", err)
	}
	return stations, nil
}

// FetchTemperature downloads the zipped hourly product for a station and
// extracts the 2 m air temperature at hour ts. ok=false means the station has
// no usable value for that hour (absent row, missing-value sentinel, or no
// recent product published at all).
func (c *Client) FetchTemperature(ctx context.Context, stationID string, ts time.Time) (float64, bool, error) {
	url := fmt.Sprintf("%s/stundenwerte_TU_%s_akt.zip", c.baseURL, stationID)

	body, err := c.get(ctx, url)
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("fetch product for station %s: %w", stationID, err)
	}
	defer body.Close()

	// archive/zip needs random access, so buffer the archive in memory;
	// recent products are a few hundred kilobytes.
	raw, err := io.ReadAll(body)
	if err != nil {
		return 0, false, fmt.Errorf("read product for station %s: %w", stationID, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return 0, false, fmt.Errorf("open product archive for station %s: %w", stationID, err)
	}

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, productFilePref) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return 0, false, fmt.Errorf("open %s for station %s: %w", f.Name, stationID, err)
		}
		value, ok, err := ParseHourlyTemperature(rc, ts)
		rc.Close()
		if err != nil {
			return 0, false, fmt.Errorf("parse product for station %s: %w", stationID, err)
		}
		return value, ok, nil
	}
	return 0, false, fmt.Errorf("product archive for station %s has no %s file", stationID, productFilePref)
}

type statusError struct {
	code   int
	status string
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %s for %s", e.status, e.url)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &statusError{code: resp.StatusCode, status: resp.Status, url: url}
	}
	return resp.Body, nil
}
