package handler

import (
	"net/http"
	"strconv"

	"github.com/perundhu/backend/internal/domain"
)

// connectingRoutesResponse is the JSON body of GET /api/v1/routes/connecting.
type connectingRoutesResponse struct {
	Itineraries []domain.Itinerary `json:"itineraries"`
	Count       int                `json:"count"`
}

// directRoutesResponse is the JSON body of GET /api/v1/routes/direct.
type directRoutesResponse struct {
	Buses []domain.Bus `json:"buses"`
	Count int          `json:"count"`
}

// GetConnectingRoutes handles GET /api/v1/routes/connecting.
// Query parameters: from and to (location ids, required), maxTransfers
// (optional, non-negative, default 2) and departAfter (optional "HH:MM",
// drops journeys leaving earlier). Unknown locations yield an empty result,
// not an error.
func (s *Server) GetConnectingRoutes(w http.ResponseWriter, r *http.Request) {
	from, err := queryID(r, "from")
	if err != nil {
		badRequest(w, "from must be a location id")
		return
	}
	to, err := queryID(r, "to")
	if err != nil {
		badRequest(w, "to must be a location id")
		return
	}

	q := domain.RouteQuery{
		FromLocationID: from,
		ToLocationID:   to,
		MaxTransfers:   -1,
	}
	if v := r.URL.Query().Get("maxTransfers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "maxTransfers must be a non-negative integer")
			return
		}
		q.MaxTransfers = n
	}
	if v := r.URL.Query().Get("departAfter"); v != "" {
		t, err := domain.ParseTimeOfDay(v)
		if err != nil {
			badRequest(w, "departAfter must be an HH:MM time")
			return
		}
		q.DepartAfter = &t
	}

	itineraries, err := s.routes.FindConnectingRoutes(r.Context(), q)
	if err != nil {
		writeError(w, r, err, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, connectingRoutesResponse{Itineraries: itineraries, Count: len(itineraries)})
}

// GetDirectRoutes handles GET /api/v1/routes/direct.
// Returns active buses running the exact from→to pair, earliest first.
func (s *Server) GetDirectRoutes(w http.ResponseWriter, r *http.Request) {
	from, err := queryID(r, "from")
	if err != nil {
		badRequest(w, "from must be a location id")
		return
	}
	to, err := queryID(r, "to")
	if err != nil {
		badRequest(w, "to must be a location id")
		return
	}

	buses, err := s.schedules.FindDirect(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, directRoutesResponse{Buses: buses, Count: len(buses)})
}
