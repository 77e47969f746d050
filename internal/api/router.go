// Package api provides the HTTP API for the SkyGate flight-data gateway.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/skygate/skygate/internal/airports"
	"github.com/skygate/skygate/internal/api/handler"
	"github.com/skygate/skygate/internal/api/middleware"
	"github.com/skygate/skygate/internal/flightdata"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version       string
	BuildTime     string
	Logger        zerolog.Logger
	ServiceName   string
	Metrics       *middleware.Metrics
	FlightService *flightdata.Service
	AirportCache  *airports.Cache
	// Transport is the active provider transport, used for status reporting.
	Transport any
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "skygate-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.ContentTypeJSON)

	flightsHandler := handler.NewFlightsHandler(cfg.FlightService)
	departuresHandler := handler.NewDeparturesHandler(cfg.FlightService)
	searchHandler := handler.NewSearchHandler(cfg.FlightService)
	airportsHandler := handler.NewAirportsHandler(cfg.AirportCache)
	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Flights:   cfg.FlightService,
		Airports:  cfg.AirportCache,
		Transport: cfg.Transport,
	})

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)

	// Data endpoints
	r.Group(func(r chi.Router) {
		r.Use(standardRateLimit)
		r.Get("/airports", airportsHandler.Search)
		r.Get("/flights", flightsHandler.List)
		r.Get("/live-departures", departuresHandler.List)
		r.Get("/search-flights", searchHandler.Search)
	})

	// Detail lookups can trigger a provider-side fleet scan
	r.With(expensiveRateLimit).Get("/flights/{id}", flightsHandler.Details)

	// Ops endpoints
	r.Route("/ops", func(r chi.Router) {
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
		r.Get("/status", opsHandler.SystemStatus)
	})

	return r
}
