package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/airglance/airglance/internal/airquality"
	"github.com/airglance/airglance/internal/api/models"
	"github.com/airglance/airglance/internal/api/response"
	"github.com/airglance/airglance/internal/dashboard"
	"github.com/airglance/airglance/internal/weather"
)

// DashboardBuilder builds dashboards. *dashboard.Service satisfies it.
type DashboardBuilder interface {
	Build(ctx context.Context, lat, lon float64) (*dashboard.Dashboard, error)
	BuildForCity(ctx context.Context, query string) (*dashboard.Dashboard, error)
}

// DashboardHandler handles the dashboard endpoint.
type DashboardHandler struct {
	builder DashboardBuilder
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(builder DashboardBuilder) *DashboardHandler {
	return &DashboardHandler{builder: builder}
}

// GetDashboard handles GET /v1/dashboard. The location is given either as
// lat and lon or as a city name prefix.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))

	var (
		d   *dashboard.Dashboard
		err error
	)

	switch {
	case city != "" && hasCoordinates(r):
		response.BadRequest(w, r, "use either city or lat and lon, not both", []models.FieldError{
			{Field: "city", Message: "cannot be combined with lat and lon", Code: codeInvalid},
		})
		return
	case city != "":
		d, err = h.builder.BuildForCity(r.Context(), city)
	case hasCoordinates(r):
		lat, lon, errs := parseCoordinates(r)
		if len(errs) > 0 {
			response.BadRequest(w, r, "invalid coordinates", errs)
			return
		}
		d, err = h.builder.Build(r.Context(), lat, lon)
	default:
		response.BadRequest(w, r, "either city or lat and lon are required", []models.FieldError{
			{Field: "city", Message: "is required when lat and lon are absent", Code: codeRequired},
		})
		return
	}

	if err != nil {
		writeDashboardError(w, r, city, err)
		return
	}

	response.JSON(w, r, http.StatusOK, d)
}

func writeDashboardError(w http.ResponseWriter, r *http.Request, city string, err error) {
	switch {
	case errors.Is(err, dashboard.ErrCityNotFound):
		response.Problem(w, r, models.KindCityNotFound, fmt.Sprintf("no city matches %q", city))
	case errors.Is(err, weather.ErrInvalidCoordinates),
		errors.Is(err, airquality.ErrInvalidCoordinates):
		response.BadRequest(w, r, "invalid coordinates", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.Problem(w, r, models.KindUnavailable, "request timed out")
	case errors.Is(err, weather.ErrProviderUnavailable):
		response.Problem(w, r, models.KindUpstream, "weather provider unavailable")
	case errors.Is(err, airquality.ErrProviderUnavailable),
		errors.Is(err, airquality.ErrNoMeasurements):
		response.Problem(w, r, models.KindUpstream, "air quality provider unavailable")
	default:
		response.Problem(w, r, models.KindInternal, "failed to build dashboard")
	}
}
