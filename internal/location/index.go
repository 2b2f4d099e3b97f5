package location

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const (
	// DefaultEarlyExitThreshold is the squared planar distance, in squared
	// degrees, below which Nearest stops scanning.
	DefaultEarlyExitThreshold = 0.01

	// MinQueryLength is the minimum trimmed query length Search accepts.
	MinQueryLength = 2

	// MaxSearchResults caps the number of locations Search returns.
	MaxSearchResults = 10
)

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithEarlyExitThreshold sets the squared distance below which Nearest
// returns without checking the remaining candidates.
func WithEarlyExitThreshold(d2 float64) IndexOption {
	return func(i *Index) {
		i.earlyExit = d2
	}
}

// WithExhaustiveScan disables the early exit so Nearest always returns the
// true minimum.
func WithExhaustiveScan() IndexOption {
	return func(i *Index) {
		i.earlyExit = 0
	}
}

// Index is an immutable collection of locations. It is safe for concurrent
// use.
type Index struct {
	locations []Location
	folded    []string
	earlyExit float64
}

// NewIndex builds an index over a copy of locations.
func NewIndex(locations []Location, opts ...IndexOption) *Index {
	idx := &Index{
		locations: make([]Location, len(locations)),
		folded:    make([]string, len(locations)),
		earlyExit: DefaultEarlyExitThreshold,
	}
	copy(idx.locations, locations)

	caser := cases.Fold()
	for i, loc := range idx.locations {
		idx.folded[i] = caser.String(loc.Name)
	}

	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Len returns the number of indexed locations. A nil Index is empty and every
// lookup on it finds nothing.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.locations)
}

// All returns a copy of the indexed locations in load order.
func (i *Index) All() []Location {
	if i == nil {
		return []Location{}
	}
	out := make([]Location, len(i.locations))
	copy(out, i.locations)
	return out
}

// Nearest returns the location closest to (lat, lon) by squared planar
// distance. Ties go to the first location in load order. The scan stops as
// soon as the best distance so far drops below the early-exit threshold, so
// with several candidates under the threshold the first one found wins.
// The boolean is false when the index is empty.
func (i *Index) Nearest(lat, lon float64) (Location, bool) {
	if i.Len() == 0 {
		return Location{}, false
	}

	best := -1
	var bestDist float64
	for j := range i.locations {
		d := squaredDistance(lat, lon, i.locations[j])
		if best < 0 || d < bestDist {
			best = j
			bestDist = d
		}
		if bestDist < i.earlyExit {
			break
		}
	}

	return i.locations[best], true
}

func squaredDistance(lat, lon float64, loc Location) float64 {
	dLat := lat - loc.Lat.Float64()
	dLon := lon - loc.Lon.Float64()
	return dLat*dLat + dLon*dLon
}

// Search returns up to MaxSearchResults locations whose name starts with
// query, compared case-insensitively after trimming. Queries shorter than
// MinQueryLength characters return nil. Results keep load order.
func (i *Index) Search(query string) []Location {
	q := strings.TrimSpace(query)
	if i == nil || utf8.RuneCountInString(q) < MinQueryLength {
		return nil
	}
	q = cases.Fold().String(q)

	var results []Location
	for j, name := range i.folded {
		if !strings.HasPrefix(name, q) {
			continue
		}
		results = append(results, i.locations[j])
		if len(results) == MaxSearchResults {
			break
		}
	}
	return results
}

// First returns the first Search match for query.
func (i *Index) First(query string) (Location, error) {
	matches := i.Search(query)
	if len(matches) == 0 {
		return Location{}, ErrNotFound
	}
	return matches[0], nil
}
