package handler

import (
	"net/http"

	"github.com/skygate/skygate/internal/airports"
	"github.com/skygate/skygate/internal/api/response"
)

// AirportsHandler handles the airport reference search endpoint.
type AirportsHandler struct {
	cache *airports.Cache
}

// NewAirportsHandler creates a new AirportsHandler.
func NewAirportsHandler(cache *airports.Cache) *AirportsHandler {
	return &AirportsHandler{cache: cache}
}

// Search handles GET /airports?q= - substring search over the reference
// dataset. Queries under two characters return an empty list without loading
// the dataset; a dataset that failed to load also yields an empty list, never
// an error.
func (h *AirportsHandler) Search(w http.ResponseWriter, r *http.Request) {
	results := h.cache.Search(r.URL.Query().Get("q"))
	if results == nil {
		results = []airports.Airport{}
	}
	response.OK(w, r, results)
}
