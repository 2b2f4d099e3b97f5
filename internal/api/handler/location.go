package handler

import (
	"net/http"

	"github.com/airglance/airglance/internal/api/models"
	"github.com/airglance/airglance/internal/api/response"
	"github.com/airglance/airglance/internal/location"
)

// LocationHandler handles city search and nearest-city lookups.
type LocationHandler struct {
	index *location.Index
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(index *location.Index) *LocationHandler {
	if index == nil {
		index = location.NewIndex(nil)
	}
	return &LocationHandler{index: index}
}

// Search handles GET /v1/locations/search?q= - case-insensitive name prefix
// search. Queries shorter than two characters return an empty list.
func (h *LocationHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	items := h.index.Search(q)
	if items == nil {
		items = []location.Location{}
	}
	response.JSON(w, r, http.StatusOK, models.LocationList{Query: q, Items: items})
}

// Nearest handles GET /v1/locations/nearest?lat=&lon=.
func (h *LocationHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	lat, lon, errs := parseCoordinates(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return
	}

	loc, ok := h.index.Nearest(lat, lon)
	if !ok {
		response.Problem(w, r, models.KindNotFound, "no locations loaded")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NearestLocation{
		Query:    models.Point{Lat: lat, Lon: lon},
		Location: loc,
	})
}
