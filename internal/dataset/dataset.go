// Package dataset persists the artifacts exchanged between the download and
// krige steps: the observation table, the border polyline and the numeric
// grid product. All writes are atomic (temp file + rename) so a failed run
// never leaves a partial artifact behind.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// ObservationsFile is the observation table name under the data dir.
	ObservationsFile = "temp_obs.txt"
	// BorderFile is the border polyline name under the data dir.
	BorderFile = "de_borders.txt"
	// GridProductFile is the numeric grid artifact name under the results dir.
	GridProductFile = "kriging_grid.json"

	observationsHeader = "# id, lat, lon, temp"
)

// Observation is one station-located temperature value.
type Observation struct {
	ID   string  `json:"id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Temp float64 `json:"temp"`
}

// WriteObservations persists the observation table. Output is deterministic
// for identical input.
func WriteObservations(path string, obs []Observation) error {
	if len(obs) == 0 {
		return fmt.Errorf("refusing to write empty observation table")
	}
	return writeAtomic(path, func(w io.Writer) error {
		if _, err := fmt.Fprintln(w, observationsHeader); err != nil {
			return err
		}
		for _, o := range obs {
			if _, err := fmt.Fprintf(w, "%s %.4f %.4f %.2f\n", o.ID, o.Lat, o.Lon, o.Temp); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadObservations loads the observation table written by WriteObservations.
func ReadObservations(path string) ([]Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var obs []Observation
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s line %d: expected 4 columns, got %d", path, line, len(fields))
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad latitude: %w", path, line, err)
		}
		lon, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad longitude: %w", path, line, err)
		}
		temp, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad temperature: %w", path, line, err)
		}
		obs = append(obs, Observation{ID: fields[0], Lat: lat, Lon: lon, Temp: temp})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%s contains no observations", path)
	}
	return obs, nil
}

// WriteBorder persists the border polyline as one "lon lat" pair per line.
func WriteBorder(path string, ring [][2]float64) error {
	if len(ring) == 0 {
		return fmt.Errorf("refusing to write empty border polyline")
	}
	return writeAtomic(path, func(w io.Writer) error {
		for _, pt := range ring {
			if _, err := fmt.Fprintf(w, "%.6f %.6f\n", pt[0], pt[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadBorder loads the border polyline written by WriteBorder.
func ReadBorder(path string) ([][2]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ring [][2]float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s line %d: expected 2 columns, got %d", path, line, len(fields))
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad longitude: %w", path, line, err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad latitude: %w", path, line, err)
		}
		ring = append(ring, [2]float64{lon, lat})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(ring) == 0 {
		return nil, fmt.Errorf("%s contains no vertices", path)
	}
	return ring, nil
}

// GridProduct is the numeric output of one krige run, the artifact served by
// the results API. Value slices are row-major with latitude as the slow index.
type GridProduct struct {
	GeneratedAt time.Time `json:"generated_at"`
	Timestamp   time.Time `json:"timestamp"`
	Lats        []float64 `json:"lats"`
	Lons        []float64 `json:"lons"`
	Kriging     []float64 `json:"kriging"`
	Variance    []float64 `json:"variance"`
	Trend       []float64 `json:"trend"`
}

// WriteGridProduct persists the grid product as JSON.
func WriteGridProduct(path string, p GridProduct) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		return enc.Encode(p)
	})
}

// ReadGridProduct loads a grid product written by WriteGridProduct.
func ReadGridProduct(path string) (GridProduct, error) {
	var p GridProduct
	f, err := os.Open(path)
	if err != nil {
		return p, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return p, fmt.Errorf("decode %s: %w", path, err)
	}
	return p, nil
}

// writeAtomic writes via a temp file in the target directory and renames it
// into place.
func writeAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := fill(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
