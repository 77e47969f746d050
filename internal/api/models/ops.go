package models

import "time"

// HealthStatus is the coarse health of the service or a subsystem.
type HealthStatus string

// Health statuses.
const (
	HealthStatusOK       HealthStatus = "ok"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health is the liveness/readiness response body.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    time.Time      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// SystemStatus reports the gateway's transport and cache state.
type SystemStatus struct {
	Status         HealthStatus `json:"status"`
	Time           time.Time    `json:"time"`
	Transport      string       `json:"transport"`
	CircuitState   string       `json:"circuit_state,omitempty"`
	AirportsLoaded bool         `json:"airports_loaded"`
	AirportCount   int          `json:"airport_count"`
}
