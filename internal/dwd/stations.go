package dwd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/zerotwo/dwd-krige/internal/grid"
)

const stationDateLayout = "20060102"

// ParseStationInventory reads the fixed-layout station description file
// (TU_Stundenwerte_Beschreibung_Stationen.txt). The file carries two header
// lines followed by whitespace-separated rows; the station name may contain
// spaces, the federal state is the last field.
func ParseStationInventory(r io.Reader) ([]Station, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	stations := make([]Station, 0, 512)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if line <= 2 || text == "" {
			continue // column header and separator row
		}

		fields := strings.Fields(text)
		if len(fields) < 8 {
			return nil, fmt.Errorf("station inventory line %d: expected at least 8 fields, got %d", line, len(fields))
		}

		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("station inventory line %d: bad station id %q: %w", line, fields[0], err)
		}
		from, err := time.Parse(stationDateLayout, fields[1])
		if err != nil {
			return nil, fmt.Errorf("station inventory line %d: bad start date %q: %w", line, fields[1], err)
		}
		to, err := time.Parse(stationDateLayout, fields[2])
		if err != nil {
			return nil, fmt.Errorf("station inventory line %d: bad end date %q: %w", line, fields[2], err)
		}
		elev, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("station inventory line %d: bad elevation %q: %w", line, fields[3], err)
		}
		lat, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("station inventory line %d: bad latitude %q: %w", line, fields[4], err)
		}
		lon, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("station inventory line %d: bad longitude %q: %w", line, fields[5], err)
		}

		stations = append(stations, Station{
			ID:        fmt.Sprintf("%05d", id),
			Name:      strings.Join(fields[6:len(fields)-1], " "),
			State:     fields[len(fields)-1],
			Lat:       lat,
			Lon:       lon,
			Elevation: elev,
			From:      from,
			To:        to,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read station inventory: %w", err)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("station inventory contained no stations")
	}
	return stations, nil
}

// FilterStations keeps stations inside the extent whose measurement window
// covers ts.
func FilterStations(stations []Station, ext grid.Extent, ts time.Time) []Station {
	out := make([]Station, 0, len(stations))
	for _, st := range stations {
		if !ext.Contains(st.Lat, st.Lon) {
			continue
		}
		if !st.Covers(ts) {
			continue
		}
		out = append(out, st)
	}
	return out
}
