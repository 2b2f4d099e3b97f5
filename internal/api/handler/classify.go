package handler

import (
	"net/http"
	"strings"

	"github.com/airglance/airglance/internal/api/models"
	"github.com/airglance/airglance/internal/api/response"
	"github.com/airglance/airglance/internal/classify"
)

// ClassifyHandler classifies single readings.
type ClassifyHandler struct{}

// NewClassifyHandler creates a new ClassifyHandler.
func NewClassifyHandler() *ClassifyHandler {
	return &ClassifyHandler{}
}

// Classify handles GET /v1/classify?kind=&value=.
func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var errs []models.FieldError

	rawKind := strings.TrimSpace(r.URL.Query().Get("kind"))
	kind, err := classify.ParseKind(rawKind)
	switch {
	case rawKind == "":
		errs = append(errs, models.FieldError{Field: "kind", Message: "is required", Code: codeRequired})
	case err != nil:
		errs = append(errs, models.FieldError{Field: "kind", Message: "unknown metric kind", Code: codeInvalid})
	}

	rawValue := strings.TrimSpace(r.URL.Query().Get("value"))
	value, err := parseFinite(rawValue)
	switch {
	case rawValue == "":
		errs = append(errs, models.FieldError{Field: "value", Message: "is required", Code: codeRequired})
	case err != nil:
		errs = append(errs, models.FieldError{Field: "value", Message: "must be a finite decimal number", Code: codeInvalid})
	}

	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid reading", errs)
		return
	}

	response.JSON(w, r, http.StatusOK, models.Classification{
		Gauge: classify.Display(kind, value),
		Table: models.NewMetricTable(kind),
	})
}
