package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/skygate/skygate/internal/api/response"
	"github.com/skygate/skygate/internal/flightdata"
)

// SearchHandler handles the flight search endpoint.
type SearchHandler struct {
	flights *flightdata.Service
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(flights *flightdata.Service) *SearchHandler {
	return &SearchHandler{flights: flights}
}

// Search handles GET /search-flights - flights between two airports.
// Origin and destination may arrive as bare codes or as composite
// "CODE - Full Name" picker values; only the leading code is forwarded.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := q.Get("origin")
	dest := q.Get("dest")

	if origin == "" || dest == "" {
		response.BadRequest(w, r, "Missing origin or destination")
		return
	}

	originCode := extractCode(origin)
	destCode := extractCode(dest)

	results, err := h.flights.SearchFlights(r.Context(), originCode, destCode, q.Get("date"))
	if err != nil {
		var perr *flightdata.ProviderError
		if errors.As(err, &perr) {
			response.InternalError(w, r, perr.Message)
			return
		}
		response.InternalError(w, r, "Invalid response from backend")
		return
	}

	if results == nil {
		results = []flightdata.SearchResult{}
	}
	response.OK(w, r, results)
}

// extractCode reduces a composite "CODE - Full Name" value to its leading
// code. Bare codes pass through unchanged.
func extractCode(value string) string {
	code, _, _ := strings.Cut(value, " - ")
	return strings.TrimSpace(code)
}
