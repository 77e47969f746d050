package flightdata

import (
	"context"
	"errors"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/skygate/skygate/internal/provider"
)

// DefaultLimit is the number of live positions requested when the caller does
// not specify one. Bandwidth-constrained clients are expected to lower it
// themselves; the gateway only forwards.
const DefaultLimit = 1500

// DefaultAirport is the departure board shown when no airport is requested.
const DefaultAirport = "GRU"

// ServiceConfig holds configuration for the gateway service.
type ServiceConfig struct {
	// Transport reaches the provider. Required.
	Transport provider.Transport

	// Logger for provider call diagnostics.
	Logger zerolog.Logger

	// DetailsCacheTTL is how long flight details are cached (default: 60s).
	// Detail lookups can trigger an expensive fleet scan on the provider
	// side, so repeated opens of the same flight reuse the previous answer.
	DetailsCacheTTL time.Duration
}

// Service is the gateway façade: four read-only operations, each one provider
// call through the active transport, normalized into domain types. The
// service holds no flight state between requests.
type Service struct {
	transport provider.Transport
	logger    zerolog.Logger

	detailsTTL   time.Duration
	detailsCache *gocache.Cache
	detailsGroup singleflight.Group
}

// NewService creates a new gateway service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.DetailsCacheTTL
	if ttl == 0 {
		ttl = 60 * time.Second
	}

	return &Service{
		transport:    cfg.Transport,
		logger:       cfg.Logger,
		detailsTTL:   ttl,
		detailsCache: gocache.New(ttl, 5*time.Minute),
	}
}

// TransportName reports which transport variant is active.
func (s *Service) TransportName() string {
	return s.transport.Name()
}

// LiveFlights returns the current position snapshot, optionally scoped to a
// bounding box. A nil box means worldwide. The box must be ordered and in
// range; limit falls back to DefaultLimit when not positive.
func (s *Service) LiveFlights(ctx context.Context, box *BoundingBox, limit int) ([]Flight, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := provider.Params{"limit": strconv.Itoa(limit)}
	if box != nil {
		params["min_lat"] = formatCoord(box.MinLat)
		params["max_lat"] = formatCoord(box.MaxLat)
		params["min_lon"] = formatCoord(box.MinLon)
		params["max_lon"] = formatCoord(box.MaxLon)
	}

	raw, err := s.invoke(ctx, provider.OpLivePositions, params)
	if err != nil {
		return nil, err
	}

	var flights []Flight
	if err := decodeEnvelope(raw, &flights, s.logger); err != nil {
		return nil, err
	}
	return flights, nil
}

// LiveDepartures returns the departure board of one airport. An empty airport
// code falls back to DefaultAirport.
func (s *Service) LiveDepartures(ctx context.Context, airport string) ([]Departure, error) {
	if airport == "" {
		airport = DefaultAirport
	}

	raw, err := s.invoke(ctx, provider.OpLiveDepartures, provider.Params{"airport": airport})
	if err != nil {
		return nil, err
	}

	var departures []Departure
	if err := decodeEnvelope(raw, &departures, s.logger); err != nil {
		return nil, err
	}
	return departures, nil
}

// FlightDetails fetches the detail view of one flight. The airline ICAO and
// aircraft hints let the provider fall back to a fleet scan when the flight
// itself carries no imagery. A provider-reported failure becomes
// ErrFlightNotFound carrying the provider's message.
//
// Results are cached briefly and concurrent identical lookups share a single
// provider call.
func (s *Service) FlightDetails(ctx context.Context, id, airlineICAO, aircraft string) (*FlightDetails, error) {
	key := id + "|" + airlineICAO + "|" + aircraft

	if cached, ok := s.detailsCache.Get(key); ok {
		details := cached.(*FlightDetails)
		return details, nil
	}

	v, err, _ := s.detailsGroup.Do(key, func() (interface{}, error) {
		raw, err := s.invoke(ctx, provider.OpFlightDetails, provider.Params{
			"id":           id,
			"airline_icao": airlineICAO,
			"aircraft":     aircraft,
		})
		if err != nil {
			return nil, err
		}

		var details FlightDetails
		if err := decodeEnvelope(raw, &details, s.logger); err != nil {
			var perr *ProviderError
			if errors.As(err, &perr) {
				return nil, &NotFoundError{Message: perr.Message}
			}
			return nil, err
		}

		s.detailsCache.Set(key, &details, s.detailsTTL)
		return &details, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*FlightDetails), nil
}

// SearchFlights returns flights between an origin and destination airport,
// optionally on a given date (YYYY-MM-DD). Origin and destination must be
// bare IATA codes; composite "CODE - Name" strings are reduced by the caller.
func (s *Service) SearchFlights(ctx context.Context, origin, dest, date string) ([]SearchResult, error) {
	params := provider.Params{
		"origin": origin,
		"dest":   dest,
	}
	if date != "" {
		params["date"] = date
	}

	raw, err := s.invoke(ctx, provider.OpSearchFlights, params)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	if err := decodeEnvelope(raw, &results, s.logger); err != nil {
		return nil, err
	}
	return results, nil
}

// invoke runs one provider operation, collapsing transport failures to
// ErrBackendUnavailable with the root cause logged server-side only.
func (s *Service) invoke(ctx context.Context, op provider.Operation, params provider.Params) ([]byte, error) {
	start := time.Now()
	raw, err := s.transport.Invoke(ctx, op, params)
	if err != nil {
		s.logger.Error().Err(err).
			Str("operation", string(op)).
			Str("transport", s.transport.Name()).
			Dur("duration", time.Since(start)).
			Msg("provider invocation failed")
		return nil, ErrBackendUnavailable
	}
	return raw, nil
}

// NotFoundError reports that the provider does not know the requested flight.
// It matches ErrFlightNotFound under errors.Is while keeping the provider's
// message available for the response envelope.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return ErrFlightNotFound.Error()
	}
	return e.Message
}

// Is makes errors.Is(err, ErrFlightNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrFlightNotFound
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
