package handler

import (
	"errors"
	"net/http"

	"github.com/skygate/skygate/internal/api/response"
	"github.com/skygate/skygate/internal/flightdata"
)

// DeparturesHandler handles the live departure board endpoint.
type DeparturesHandler struct {
	flights *flightdata.Service
}

// NewDeparturesHandler creates a new DeparturesHandler.
func NewDeparturesHandler(flights *flightdata.Service) *DeparturesHandler {
	return &DeparturesHandler{flights: flights}
}

// List handles GET /live-departures - scheduled departures of one airport,
// defaulting to GRU. A failure the provider reported itself is passed through
// unchanged; everything else collapses to a generic message.
func (h *DeparturesHandler) List(w http.ResponseWriter, r *http.Request) {
	airport := r.URL.Query().Get("airport")

	departures, err := h.flights.LiveDepartures(r.Context(), airport)
	if err != nil {
		var perr *flightdata.ProviderError
		if errors.As(err, &perr) {
			response.InternalError(w, r, perr.Message)
			return
		}
		response.InternalError(w, r, "Internal server error")
		return
	}

	if departures == nil {
		departures = []flightdata.Departure{}
	}
	response.OK(w, r, departures)
}
