package handler

import (
	"net/http"
	"time"

	"github.com/airglance/airglance/internal/api/models"
	"github.com/airglance/airglance/internal/api/response"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	tables models.MetricTables
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{tables: models.NewMetricTables()}
}

// ListMetricTables handles GET /v1/metadata/metrics - threshold tables for
// every metric kind. The tables are static so clients may cache them.
func (h *MetadataHandler) ListMetricTables(w http.ResponseWriter, r *http.Request) {
	response.CacheFor(w, time.Hour)
	response.JSON(w, r, http.StatusOK, h.tables)
}
