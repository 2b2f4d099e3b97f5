package models

// Health is the body of the liveness and readiness probes.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    Timestamp      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// SystemStatus is the body of GET /v1/ops/status. Status is the worst of
// every subsystem and provider status.
type SystemStatus struct {
	Status            HealthStatus      `json:"status"`
	Time              Timestamp         `json:"time"`
	Subsystems        []SubsystemStatus `json:"subsystems"`
	Providers         []ProviderStatus  `json:"providers"`
	DegradedProviders []string          `json:"degradedProviders,omitempty"`
	Refresh           map[string]any    `json:"refresh,omitempty"`
}

type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus reports one upstream client: its breaker state and the
// outcome of its most recent calls.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	LatencyMs     *int64       `json:"latencyMs,omitempty"`
	Message       *string      `json:"message,omitempty"`
}
