package handler

import (
	"encoding/json"
	"net/http"

	"github.com/perundhu/backend/internal/domain"
)

// createBusRequest is the JSON payload of POST /api/v1/buses. Departure,
// arrival and stop times are "HH:MM" strings; omit them when the schedule
// is unknown.
type createBusRequest struct {
	Name           string              `json:"name" validate:"required"`
	Number         string              `json:"number" validate:"required"`
	FromLocationID int64               `json:"from_location_id" validate:"required,gt=0"`
	ToLocationID   int64               `json:"to_location_id" validate:"required,gt=0,nefield=FromLocationID"`
	Departure      *string             `json:"departure_time"`
	Arrival        *string             `json:"arrival_time"`
	Active         *bool               `json:"active"`
	Stops          []createStopRequest `json:"stops" validate:"dive"`
}

// createStopRequest is one stop row inside createBusRequest. LocationID
// zero marks a stop whose place is not in the locations table yet; Name
// carries the crowdsourced text in that case.
type createStopRequest struct {
	LocationID int64   `json:"location_id"`
	Name       string  `json:"name"`
	Arrival    *string `json:"arrival_time"`
	Departure  *string `json:"departure_time"`
	StopOrder  int     `json:"stop_order" validate:"required,gt=0"`
}

// busListResponse is the JSON body of GET /api/v1/buses.
type busListResponse struct {
	Buses []domain.Bus `json:"buses"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// busDetailResponse is the JSON body of GET /api/v1/buses/{id} and of a
// successful POST /api/v1/buses.
type busDetailResponse struct {
	Bus   domain.Bus    `json:"bus"`
	Stops []domain.Stop `json:"stops"`
}

// setBusActiveRequest is the JSON payload of PATCH /api/v1/buses/{id}/active.
type setBusActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ListBuses handles GET /api/v1/buses with page/limit parameters.
func (s *Server) ListBuses(w http.ResponseWriter, r *http.Request) {
	p := pagination(r)
	buses, total, err := s.schedules.ListBuses(r.Context(), p)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, busListResponse{Buses: buses, Total: total, Page: p.Page, Limit: p.Limit})
}

// GetBus handles GET /api/v1/buses/{id}, returning the bus with its
// ordered stop list.
func (s *Server) GetBus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "id must be an integer")
		return
	}
	bus, stops, err := s.schedules.GetBus(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "bus not found")
		return
	}
	writeJSON(w, http.StatusOK, busDetailResponse{Bus: bus, Stops: stops})
}

// CreateBus handles POST /api/v1/buses. Returns 201 with the persisted bus
// and stops; the schedule change invalidates the route graph through the
// service.
func (s *Server) CreateBus(w http.ResponseWriter, r *http.Request) {
	var req createBusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		unprocessable(w, payloadMessage(err))
		return
	}

	bus := domain.Bus{
		Name:           req.Name,
		Number:         req.Number,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Active:         true,
	}
	if req.Active != nil {
		bus.Active = *req.Active
	}
	var err error
	if bus.Departure, err = optionalTime(req.Departure); err != nil {
		badRequest(w, "departure_time must be an HH:MM time")
		return
	}
	if bus.Arrival, err = optionalTime(req.Arrival); err != nil {
		badRequest(w, "arrival_time must be an HH:MM time")
		return
	}

	stops := make([]domain.Stop, 0, len(req.Stops))
	for _, sr := range req.Stops {
		stop := domain.Stop{
			LocationID: sr.LocationID,
			Name:       sr.Name,
			StopOrder:  sr.StopOrder,
		}
		if stop.Arrival, err = optionalTime(sr.Arrival); err != nil {
			badRequest(w, "stop arrival_time must be an HH:MM time")
			return
		}
		if stop.Departure, err = optionalTime(sr.Departure); err != nil {
			badRequest(w, "stop departure_time must be an HH:MM time")
			return
		}
		stops = append(stops, stop)
	}

	created, createdStops, err := s.schedules.CreateBus(r.Context(), bus, stops)
	if err != nil {
		writeError(w, r, err, "location not found")
		return
	}
	writeJSON(w, http.StatusCreated, busDetailResponse{Bus: created, Stops: createdStops})
}

// SetBusActive handles PATCH /api/v1/buses/{id}/active, flipping the flag
// that admits a bus into the route graph.
func (s *Server) SetBusActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "id must be an integer")
		return
	}
	var req setBusActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "request body must be valid JSON")
		return
	}
	if req.Active == nil {
		unprocessable(w, "active is required")
		return
	}

	if err := s.schedules.SetBusActive(r.Context(), id, *req.Active); err != nil {
		writeError(w, r, err, "bus not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// optionalTime parses a nullable "HH:MM" string from a request payload.
func optionalTime(s *string) (*domain.TimeOfDay, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := domain.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
