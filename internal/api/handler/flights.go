// Package handler provides HTTP handlers for the SkyGate API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skygate/skygate/internal/api/response"
	"github.com/skygate/skygate/internal/flightdata"
)

// FlightsHandler handles live-position and flight-detail endpoints.
type FlightsHandler struct {
	flights *flightdata.Service
}

// NewFlightsHandler creates a new FlightsHandler.
func NewFlightsHandler(flights *flightdata.Service) *FlightsHandler {
	return &FlightsHandler{flights: flights}
}

// List handles GET /flights - live positions, optionally scoped to a
// bounding box. The four box parameters are accepted as a unit: either all
// four are present and ordered, or none are.
func (h *FlightsHandler) List(w http.ResponseWriter, r *http.Request) {
	box, err := parseBoundingBox(r)
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}

	limit := flightdata.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			response.BadRequest(w, r, "Invalid limit")
			return
		}
	}

	flights, err := h.flights.LiveFlights(r.Context(), box, limit)
	if err != nil {
		response.InternalError(w, r, "Failed to fetch flights from backend")
		return
	}

	if flights == nil {
		flights = []flightdata.Flight{}
	}
	response.OK(w, r, flights)
}

// Details handles GET /flights/{id} - lazily fetched flight details.
// A provider-reported miss surfaces as 404 with the provider's message.
func (h *FlightsHandler) Details(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	airlineICAO := r.URL.Query().Get("airline_icao")
	aircraft := r.URL.Query().Get("aircraft")

	details, err := h.flights.FlightDetails(r.Context(), id, airlineICAO, aircraft)
	if err != nil {
		if errors.Is(err, flightdata.ErrFlightNotFound) {
			response.NotFound(w, r, err.Error())
			return
		}
		response.InternalError(w, r, "Failed to fetch flight details")
		return
	}

	response.OK(w, r, details)
}

// parseBoundingBox extracts the viewport box from the query. Returns nil when
// no box parameter is present, an error when the box is partial, malformed or
// inverted.
func parseBoundingBox(r *http.Request) (*flightdata.BoundingBox, error) {
	q := r.URL.Query()
	raw := [4]string{q.Get("min_lat"), q.Get("max_lat"), q.Get("min_lon"), q.Get("max_lon")}

	present := 0
	for _, v := range raw {
		if v != "" {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present < 4 {
		return nil, errors.New("Bounding box requires min_lat, max_lat, min_lon and max_lon")
	}

	var vals [4]float64
	for i, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.New("Invalid bounding box")
		}
		vals[i] = f
	}

	box := &flightdata.BoundingBox{
		MinLat: vals[0],
		MaxLat: vals[1],
		MinLon: vals[2],
		MaxLon: vals[3],
	}
	if !box.Valid() {
		return nil, errors.New("Invalid bounding box")
	}
	return box, nil
}
