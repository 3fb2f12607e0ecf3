// Package handler implements the HTTP handlers for the Perundhu API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (routes.go, bus.go, location.go, ...) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/perundhu/backend/internal/domain"
	"github.com/perundhu/backend/spec"
)

// RouteServicer defines the journey-planning operations the route handlers
// depend on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the routing engine or the
// database.
type RouteServicer interface {
	FindConnectingRoutes(ctx context.Context, q domain.RouteQuery) ([]domain.Itinerary, error)
}

// ScheduleServicer defines the bus schedule operations the bus handlers
// depend on.
type ScheduleServicer interface {
	FindDirect(ctx context.Context, fromID, toID int64) ([]domain.Bus, error)
	GetBus(ctx context.Context, id int64) (domain.Bus, []domain.Stop, error)
	ListBuses(ctx context.Context, p domain.PaginationParams) ([]domain.Bus, int64, error)
	CreateBus(ctx context.Context, bus domain.Bus, stops []domain.Stop) (domain.Bus, []domain.Stop, error)
	SetBusActive(ctx context.Context, id int64, active bool) error
}

// LocationServicer defines the location operations the location handlers
// depend on.
type LocationServicer interface {
	Create(ctx context.Context, loc domain.Location) (domain.Location, error)
	GetByID(ctx context.Context, id int64) (domain.Location, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Location, int64, error)
	Search(ctx context.Context, query string) ([]domain.Location, error)
}

// ExportServicer defines the flat schedule export the export handler
// depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ScheduleExportRow, error)
}

// Pinger reports whether the database is reachable. Satisfied by
// pgxpool.Pool; only the health handler touches it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies shared by all API endpoints.
type Server struct {
	routes    RouteServicer
	schedules ScheduleServicer
	locations LocationServicer
	exports   ExportServicer
	db        Pinger

	validate *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
func NewServer(routes RouteServicer, schedules ScheduleServicer, locations LocationServicer, exports ExportServicer, db Pinger) *Server {
	return &Server{
		routes:    routes,
		schedules: schedules,
		locations: locations,
		exports:   exports,
		db:        db,
		validate:  validator.New(),
	}
}

// Routes assembles the HTTP routes served by this API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/routes", func(r chi.Router) {
			r.Get("/connecting", s.GetConnectingRoutes)
			r.Get("/direct", s.GetDirectRoutes)
		})
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", s.ListLocations)
			r.Post("/", s.CreateLocation)
			r.Get("/autocomplete", s.AutocompleteLocations)
			r.Get("/{id}", s.GetLocation)
		})
		r.Route("/buses", func(r chi.Router) {
			r.Get("/", s.ListBuses)
			r.Post("/", s.CreateBus)
			r.Get("/{id}", s.GetBus)
			r.Patch("/{id}/active", s.SetBusActive)
		})
		r.Get("/export/schedules", s.ExportSchedules)
	})

	return r
}

// GetOpenAPI handles GET /openapi.yaml, serving the embedded API document.
// Serving it from the binary keeps the document and the running code in sync.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}

// pathID parses the {id} URL parameter as an int64 database id.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// queryID parses a required query parameter as an int64 database id.
func queryID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
}

// pagination reads the optional page and limit query parameters. Values
// that do not parse are ignored, falling back to the defaults.
func pagination(r *http.Request) domain.PaginationParams {
	var page, limit *int
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = &n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = &n
	}
	return domain.NewPaginationParams(page, limit)
}
