// Package handler provides HTTP handlers for the airglance API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/airglance/airglance/internal/api/models"
	"github.com/airglance/airglance/internal/api/response"
	"github.com/airglance/airglance/internal/provider/resilience"
)

// LocationCounter reports how many locations are loaded.
type LocationCounter interface {
	Len() int
}

// Pinger checks a backing store. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RefreshReporter exposes background refresh statistics.
type RefreshReporter interface {
	MetricsSnapshot() map[string]interface{}
}

// OpsConfig holds the dependencies of the operational endpoints. Every
// field except the version strings is optional.
type OpsConfig struct {
	Version   string
	BuildTime string
	Locations LocationCounter
	Database  Pinger
	Registry  *resilience.Registry
	Refresh   RefreshReporter
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - the service is ready once the
// location index is loaded and the database, when configured, answers.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	subsystems := h.subsystems(r.Context())

	status := models.HealthStatusOK
	details := make(map[string]interface{}, len(subsystems))
	for _, s := range subsystems {
		details[s.Name] = s.Status
		if s.Status == models.HealthStatusFail {
			status = models.HealthStatusFail
		}
	}

	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}

	response.JSON(w, r, code, models.Health{
		Status:  status,
		Time:    models.Timestamp(time.Now()),
		Details: details,
	})
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: h.subsystems(r.Context()),
		Providers:  []models.ProviderStatus{},
	}

	for _, s := range status.Subsystems {
		status.Status = worst(status.Status, s.Status)
	}

	if h.cfg.Registry != nil {
		for _, health := range h.cfg.Registry.Snapshot() {
			p := providerStatus(health)
			status.Providers = append(status.Providers, p)
			status.Status = worst(status.Status, p.Status)
			if p.Status != models.HealthStatusOK {
				status.DegradedProviders = append(status.DegradedProviders, p.Provider)
			}
		}
	}

	if h.cfg.Refresh != nil {
		status.Refresh = h.cfg.Refresh.MetricsSnapshot()
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) subsystems(ctx context.Context) []models.SubsystemStatus {
	var subsystems []models.SubsystemStatus

	index := models.SubsystemStatus{Name: "location-index", Status: models.HealthStatusOK}
	if h.cfg.Locations == nil || h.cfg.Locations.Len() == 0 {
		index.Status = models.HealthStatusFail
		index.Detail = strPtr("no locations loaded")
	}
	subsystems = append(subsystems, index)

	if h.cfg.Database != nil {
		db := models.SubsystemStatus{Name: "database", Status: models.HealthStatusOK}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.cfg.Database.Ping(pingCtx); err != nil {
			db.Status = models.HealthStatusFail
			db.Detail = strPtr(err.Error())
		}
		subsystems = append(subsystems, db)
	}

	return subsystems
}

func providerStatus(health resilience.ProviderHealth) models.ProviderStatus {
	p := models.ProviderStatus{
		Provider:     health.Name,
		Status:       models.HealthStatusOK,
		CircuitState: health.CircuitState.String(),
	}

	switch health.CircuitState {
	case gobreaker.StateOpen:
		p.Status = models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		p.Status = models.HealthStatusDegraded
	}

	if health.LastSuccessAt != nil {
		ts := models.Timestamp(*health.LastSuccessAt)
		p.LastSuccessAt = &ts
	}
	if health.LastFailureAt != nil {
		ts := models.Timestamp(*health.LastFailureAt)
		p.LastFailureAt = &ts
	}
	if health.LastLatency > 0 {
		ms := health.LastLatency.Milliseconds()
		p.LatencyMs = &ms
	}
	if health.LastError != "" {
		p.Message = strPtr(health.LastError)
	}

	return p
}

var severity = map[models.HealthStatus]int{
	models.HealthStatusOK:       0,
	models.HealthStatusDegraded: 1,
	models.HealthStatusFail:     2,
}

// worst returns the more severe of two statuses.
func worst(a, b models.HealthStatus) models.HealthStatus {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

func strPtr(s string) *string {
	return &s
}
