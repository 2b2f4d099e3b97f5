// Package location provides the city index used for nearest-city resolution
// and name autocomplete.
package location

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Location errors.
var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrNotFound          = errors.New("location not found")
)

// Location is a named place with decimal-degree coordinates.
type Location struct {
	Name    string     `json:"name"`
	Country string     `json:"country"`
	Lat     Coordinate `json:"lat"`
	Lon     Coordinate `json:"lng"`
}

// Coordinate is a decimal-degree value that decodes from either a JSON number
// or a numeric JSON string. It is always finite.
type Coordinate float64

func toCoordinate(v float64) (Coordinate, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidCoordinate, v)
	}
	return Coordinate(v), nil
}

// Float64 returns the coordinate as a float64.
func (c Coordinate) Float64() float64 {
	return float64(c)
}

// UnmarshalJSON implements json.Unmarshaler for Coordinate.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrInvalidCoordinate
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCoordinate, raw)
	}
	coord, err := toCoordinate(v)
	if err != nil {
		return err
	}
	*c = coord
	return nil
}

// MarshalJSON implements json.Marshaler for Coordinate. Coordinates are
// always written as numbers.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if _, err := toCoordinate(float64(c)); err != nil {
		return nil, err
	}
	return strconv.AppendFloat(nil, float64(c), 'f', -1, 64), nil
}
