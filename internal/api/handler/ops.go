package handler

import (
	"net/http"
	"time"

	"github.com/skygate/skygate/internal/airports"
	"github.com/skygate/skygate/internal/api/models"
	"github.com/skygate/skygate/internal/api/response"
	"github.com/skygate/skygate/internal/flightdata"
)

// circuitStater is implemented by transports that expose a circuit breaker.
type circuitStater interface {
	CircuitState() string
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	flights   *flightdata.Service
	airports  *airports.Cache
	transport any
}

// OpsHandlerConfig holds configuration for the OpsHandler.
type OpsHandlerConfig struct {
	Version   string
	BuildTime string
	Flights   *flightdata.Service
	Airports  *airports.Cache
	// Transport is the active transport, inspected for breaker state.
	Transport any
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsHandlerConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		flights:   cfg.Flights,
		airports:  cfg.Airports,
		transport: cfg.Transport,
	}
}

// HealthCheck handles GET /ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /ops/ready - readiness check. The gateway is
// stateless; being up is being ready.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
	})
}

// SystemStatus handles GET /ops/status - transport and cache state.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:         models.HealthStatusOK,
		Time:           time.Now(),
		Transport:      h.flights.TransportName(),
		AirportsLoaded: h.airports.Loaded(),
		AirportCount:   h.airports.Size(),
	}

	if cs, ok := h.transport.(circuitStater); ok {
		status.CircuitState = cs.CircuitState()
		if status.CircuitState == "open" {
			status.Status = models.HealthStatusDegraded
		}
	}

	response.OK(w, r, status)
}
