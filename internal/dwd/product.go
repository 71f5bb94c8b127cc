package dwd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	productHourLayout = "2006010215"

	// sentinelMissing marks missing values in CDC products.
	sentinelMissing = -999.0
)

// ParseHourlyTemperature scans a produkt_tu_stunde_* file for the 2 m air
// temperature (TT_TU column) at hour ts. It returns ok=false when the hour is
// absent or carries the missing-value sentinel.
//
// Rows look like:
//
//	STATIONS_ID;MESS_DATUM;QN_9;TT_TU;RF_TU;eor
//	        44;2020060912;    3;  18.1;  53.0;eor
func ParseHourlyTemperature(r io.Reader, ts time.Time) (float64, bool, error) {
	want := ts.UTC().Format(productHourLayout)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if line == 1 || text == "" {
			continue // column header
		}

		fields := strings.Split(text, ";")
		if len(fields) < 4 {
			return 0, false, fmt.Errorf("product line %d: expected at least 4 fields, got %d", line, len(fields))
		}
		if strings.TrimSpace(fields[1]) != want {
			continue
		}

		raw := strings.TrimSpace(fields[3])
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false, fmt.Errorf("product line %d: bad temperature %q: %w", line, raw, err)
		}
		if value <= sentinelMissing {
			return 0, false, nil
		}
		return value, true, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, false, fmt.Errorf("read product: %w", err)
	}
	return 0, false, nil
}
