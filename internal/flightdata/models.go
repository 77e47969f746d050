// Package flightdata provides the gateway over the flight-data provider:
// it issues provider operations through the configured transport and
// normalizes their raw output into domain types.
package flightdata

import "errors"

// Gateway errors.
var (
	// ErrBackendUnavailable covers transport failures and garbled provider
	// output. The technical detail is logged, never shown to callers.
	ErrBackendUnavailable = errors.New("flight data backend unavailable")

	// ErrFlightNotFound is returned when the provider reports that the
	// requested flight does not exist.
	ErrFlightNotFound = errors.New("flight not found")
)

// ProviderError carries an error message the provider itself reported inside
// a well-formed envelope. The message is safe to pass through to callers.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Flight is one live position snapshot. Snapshots are re-fetched whole on
// every poll; the gateway never diffs or merges them.
type Flight struct {
	ID            string   `json:"id"`
	Callsign      string   `json:"callsign"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Heading       float64  `json:"heading"`
	Altitude      float64  `json:"altitude"`
	GroundSpeed   float64  `json:"ground_speed"`
	VerticalSpeed *float64 `json:"vertical_speed,omitempty"`
	OnGround      *bool    `json:"on_ground,omitempty"`
	Airline       string   `json:"airline"`
	AirlineICAO   string   `json:"airline_icao,omitempty"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	Aircraft      string   `json:"aircraft"`
}

// FlightDetails holds the lazily fetched detail view of one flight.
type FlightDetails struct {
	Airline       string `json:"airline,omitempty"`
	AirlineLogo   string `json:"airline_logo,omitempty"`
	AircraftModel string `json:"aircraft_model,omitempty"`
	Origin        string `json:"origin,omitempty"`
	Destination   string `json:"destination,omitempty"`
	Status        string `json:"status,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
}

// Departure is one scheduled departure from an airport.
type Departure struct {
	ID            string `json:"id"`
	Callsign      string `json:"callsign"`
	FlightNumber  string `json:"flight_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	Airline       string `json:"airline"`
	AirlineICAO   string `json:"airline_icao,omitempty"`
	AirlineLogo   string `json:"airline_logo,omitempty"`
	Aircraft      string `json:"aircraft"`
	Status        string `json:"status"`
	Duration      string `json:"duration"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
}

// SearchAirline is the airline block of a search result.
type SearchAirline struct {
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
	Logo string `json:"logo,omitempty"`
}

// SearchAircraft is the aircraft block of a search result.
type SearchAircraft struct {
	Model string `json:"model,omitempty"`
	Code  string `json:"code,omitempty"`
}

// SearchTimes holds the departure timestamps of a search result, as Unix
// seconds in the provider's timezone handling.
type SearchTimes struct {
	Scheduled *int64 `json:"scheduled"`
	Estimated *int64 `json:"estimated"`
	Real      *int64 `json:"real"`
}

// SearchResult is one flight found between an origin/destination pair.
type SearchResult struct {
	ID           string         `json:"id,omitempty"`
	FlightNumber string         `json:"flight_number,omitempty"`
	Airline      SearchAirline  `json:"airline"`
	Aircraft     SearchAircraft `json:"aircraft"`
	Time         SearchTimes    `json:"time"`
	Status       string         `json:"status,omitempty"`
}

// BoundingBox is the geographic rectangle scoping a live-position query to a
// viewport.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Valid reports whether the box is ordered (min not above max on both axes)
// and within coordinate range.
func (b BoundingBox) Valid() bool {
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return false
	}
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLon < -180 || b.MaxLon > 180 {
		return false
	}
	return true
}
