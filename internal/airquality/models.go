// Package airquality provides air quality data access and caching.
package airquality

import (
	"errors"
	"time"

	"github.com/airglance/airglance/internal/classify"
)

// Provider errors.
var (
	ErrNoMeasurements      = errors.New("no measurements available")
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// HourlyAQI is one point of the hourly european AQI series.
type HourlyAQI struct {
	Time  time.Time
	Value float64
}

// Snapshot represents a point-in-time snapshot of air quality at a location.
// This is the internal normalized format for all air quality data.
type Snapshot struct {
	Lat      float64
	Lon      float64
	Timezone string

	// Readings holds the current value per metric kind.
	// Kinds the provider did not report are absent.
	Readings map[classify.MetricKind]float64

	// ObservedAt is the provider's timestamp for Readings.
	ObservedAt time.Time

	// Hourly is the european AQI series in ascending time order.
	Hourly []HourlyAQI

	// FetchedAt is when this snapshot was retrieved from the provider.
	FetchedAt time.Time

	// Provider identifies the data source.
	Provider string
}

// NewSnapshot creates a new empty snapshot.
func NewSnapshot(provider string, lat, lon float64) *Snapshot {
	return &Snapshot{
		Lat:       lat,
		Lon:       lon,
		Readings:  make(map[classify.MetricKind]float64),
		FetchedAt: time.Now(),
		Provider:  provider,
	}
}

// Reading returns the current reading for kind, if present.
func (s *Snapshot) Reading(kind classify.MetricKind) (classify.Reading, bool) {
	v, ok := s.Readings[kind]
	if !ok {
		return classify.Reading{}, false
	}
	return classify.Reading{Kind: kind, Value: v}, true
}

// SetReading adds or updates a reading. Invalid values are dropped.
func (s *Snapshot) SetReading(kind classify.MetricKind, value float64) {
	if !classify.Valid(value) {
		return
	}
	s.Readings[kind] = value
}

// Pollutants returns the present pollutant readings in display order.
func (s *Snapshot) Pollutants() []classify.Reading {
	readings := make([]classify.Reading, 0, len(s.Readings))
	for _, kind := range classify.Pollutants() {
		if r, ok := s.Reading(kind); ok {
			readings = append(readings, r)
		}
	}
	return readings
}

// HourlyFrom returns up to limit hourly points at or after from.
func (s *Snapshot) HourlyFrom(from time.Time, limit int) []HourlyAQI {
	start := len(s.Hourly)
	for i, h := range s.Hourly {
		if !h.Time.Before(from) {
			start = i
			break
		}
	}

	end := start + limit
	if end > len(s.Hourly) {
		end = len(s.Hourly)
	}

	out := make([]HourlyAQI, end-start)
	copy(out, s.Hourly[start:end])
	return out
}
