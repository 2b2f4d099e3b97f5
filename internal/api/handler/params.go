package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/airglance/airglance/internal/api/models"
)

// Field error codes.
const (
	codeRequired   = "REQUIRED"
	codeInvalid    = "INVALID"
	codeOutOfRange = "OUT_OF_RANGE"
)

// parseCoordinates reads the lat and lon query parameters. Both must be
// finite decimal degrees within range.
func parseCoordinates(r *http.Request) (lat, lon float64, errs []models.FieldError) {
	lat, errs = parseDegrees(r, errs, "lat", 90)
	lon, errs = parseDegrees(r, errs, "lon", 180)
	return lat, lon, errs
}

// hasCoordinates reports whether either coordinate parameter was supplied.
func hasCoordinates(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("lat") || q.Has("lon")
}

func parseDegrees(r *http.Request, errs []models.FieldError, field string, limit float64) (float64, []models.FieldError) {
	raw := strings.TrimSpace(r.URL.Query().Get(field))
	if raw == "" {
		return 0, append(errs, models.FieldError{Field: field, Message: "is required", Code: codeRequired})
	}

	v, err := parseFinite(raw)
	if err != nil {
		return 0, append(errs, models.FieldError{Field: field, Message: "must be a decimal number", Code: codeInvalid})
	}
	if v < -limit || v > limit {
		return 0, append(errs, models.FieldError{
			Field:   field,
			Message: "must be between " + strconv.Itoa(int(-limit)) + " and " + strconv.Itoa(int(limit)),
			Code:    codeOutOfRange,
		})
	}
	return v, errs
}

// parseFinite parses a float and rejects NaN and infinities, which
// strconv.ParseFloat accepts.
func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
