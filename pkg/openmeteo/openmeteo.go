// Package openmeteo provides helpers shared by the Open-Meteo forecast and
// air quality API clients: query construction, the common response header
// and local-time parsing.
// API documentation: https://open-meteo.com/en/docs
package openmeteo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Layouts used by Open-Meteo for timestamps in the location's local time.
const (
	DateTimeLayout = "2006-01-02T15:04"
	DateLayout     = "2006-01-02"
)

// Header holds the fields every Open-Meteo response starts with.
type Header struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	UTCOffsetSeconds     int     `json:"utc_offset_seconds"`
	Timezone             string  `json:"timezone"`
	TimezoneAbbreviation string  `json:"timezone_abbreviation"`
}

// Location returns a fixed zone matching the response's UTC offset.
func (h Header) Location() *time.Location {
	name := h.TimezoneAbbreviation
	if name == "" {
		name = h.Timezone
	}
	if name == "" {
		name = "UTC"
	}
	return time.FixedZone(name, h.UTCOffsetSeconds)
}

// Query builds the common query parameters. Variables are joined with commas
// per block (current, hourly, daily).
func Query(lat, lon float64, current, hourly, daily []string) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	if len(current) > 0 {
		q.Set("current", strings.Join(current, ","))
	}
	if len(hourly) > 0 {
		q.Set("hourly", strings.Join(hourly, ","))
	}
	if len(daily) > 0 {
		q.Set("daily", strings.Join(daily, ","))
	}
	q.Set("timezone", "auto")
	return q
}

// ParseTime parses an Open-Meteo local timestamp ("2006-01-02T15:04" or
// "2006-01-02") in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	layout := DateTimeLayout
	if len(s) == len(DateLayout) {
		layout = DateLayout
	}
	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

// ValueOr returns *p, or fallback when p is nil.
func ValueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// At returns s[i], or nil when i is out of range.
func At[T any](s []*T, i int) *T {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}
