package dwd

import "time"

// Station is one entry of the CDC hourly air-temperature station inventory.
type Station struct {
	ID        string
	Name      string
	State     string
	Lat       float64
	Lon       float64
	Elevation float64
	From      time.Time
	To        time.Time
}

// Covers reports whether the station's measurement window includes ts.
func (s Station) Covers(ts time.Time) bool {
	day := ts.UTC().Truncate(24 * time.Hour)
	return !day.Before(s.From) && !day.After(s.To)
}
