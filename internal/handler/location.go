package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/perundhu/backend/internal/domain"
)

// createLocationRequest is the JSON payload of POST /api/v1/locations.
type createLocationRequest struct {
	Name      string   `json:"name" validate:"required"`
	LocalName string   `json:"local_name"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// locationListResponse is the JSON body of GET /api/v1/locations.
type locationListResponse struct {
	Locations []domain.Location `json:"locations"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
}

// locationSearchResponse is the JSON body of GET /api/v1/locations/autocomplete.
type locationSearchResponse struct {
	Locations []domain.Location `json:"locations"`
	Count     int               `json:"count"`
}

// ListLocations handles GET /api/v1/locations with page/limit parameters.
func (s *Server) ListLocations(w http.ResponseWriter, r *http.Request) {
	p := pagination(r)
	locations, total, err := s.locations.List(r.Context(), p)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, locationListResponse{
		Locations: locations,
		Total:     total,
		Page:      p.Page,
		Limit:     p.Limit,
	})
}

// GetLocation handles GET /api/v1/locations/{id}.
func (s *Server) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "id must be an integer")
		return
	}
	loc, err := s.locations.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// AutocompleteLocations handles GET /api/v1/locations/autocomplete?q=.
// Queries shorter than three characters are rejected by the service.
func (s *Server) AutocompleteLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.locations.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, locationSearchResponse{Locations: locations, Count: len(locations)})
}

// CreateLocation handles POST /api/v1/locations. Returns 201 with the
// persisted location.
func (s *Server) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		unprocessable(w, payloadMessage(err))
		return
	}

	loc, err := s.locations.Create(r.Context(), domain.Location{
		Name:      req.Name,
		LocalName: req.LocalName,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

// payloadMessage renders the first failed payload rule as "field failed
// rule ...", enough for a client to fix the request.
func payloadMessage(err error) string {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) && len(verr) > 0 {
		return verr[0].Field() + " failed rule " + verr[0].Tag()
	}
	return err.Error()
}
