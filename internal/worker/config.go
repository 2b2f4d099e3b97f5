// Package worker warms the provider caches in the background so dashboard
// requests for popular cities are served from cache.
package worker

import (
	"time"

	"github.com/airglance/airglance/internal/location"
)

// RefreshTarget is a city whose data is kept warm.
type RefreshTarget struct {
	// Name is the resolved city name.
	Name string

	// Point is the city's coordinate.
	Point Point
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// RefreshConfig controls what the refresh job warms and how often.
type RefreshConfig struct {
	Targets []RefreshTarget

	// Concurrency caps how many cities refresh at once (default: 3).
	Concurrency int

	// Timeout bounds the refresh of one city across all providers (default: 30s).
	Timeout time.Duration

	// Interval is the period between runs started by Start (default: 15m).
	Interval time.Duration

	RefreshAirQuality bool
	RefreshWeather    bool
}

// DefaultRefreshConfig returns the default refresh configuration without targets.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency:       3,
		Timeout:           30 * time.Second,
		Interval:          15 * time.Minute,
		RefreshAirQuality: true,
		RefreshWeather:    true,
	}
}

// ResolveTargets looks up each city name with a prefix search and returns the
// first match per name, skipping duplicates. Names with no match are returned
// in missing.
func ResolveTargets(index *location.Index, names []string) (targets []RefreshTarget, missing []string) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		loc, err := index.First(name)
		if err != nil {
			missing = append(missing, name)
			continue
		}
		key := loc.Name + "/" + loc.Country
		if seen[key] {
			continue
		}
		seen[key] = true
		targets = append(targets, RefreshTarget{
			Name:  loc.Name,
			Point: Point{Lat: loc.Lat.Float64(), Lon: loc.Lon.Float64()},
		})
	}
	return targets, missing
}

// TotalPoints is the number of cities a run covers.
func (c RefreshConfig) TotalPoints() int {
	return len(c.Targets)
}
