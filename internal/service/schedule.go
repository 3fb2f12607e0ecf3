package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/perundhu/backend/internal/domain"
	"github.com/perundhu/backend/internal/repo"
)

// ScheduleService implements business logic for bus schedule operations.
// It holds the location repo because creating a bus requires verifying
// that its endpoint locations exist, and the graph invalidator because
// every schedule write must mark the cached transit graph stale.
type ScheduleService struct {
	locations repo.LocationRepo
	buses     repo.BusRepo
	stops     repo.StopRepo
	graphs    GraphInvalidator
}

// NewScheduleService constructs a ScheduleService backed by the provided
// repos and graph invalidator.
func NewScheduleService(locations repo.LocationRepo, buses repo.BusRepo, stops repo.StopRepo, graphs GraphInvalidator) *ScheduleService {
	return &ScheduleService{locations: locations, buses: buses, stops: stops, graphs: graphs}
}

// FindDirect returns active buses running the exact from→to pair, earliest
// departure first. Always returns a non-nil slice so callers can safely
// range over it.
func (s *ScheduleService) FindDirect(ctx context.Context, fromID, toID int64) ([]domain.Bus, error) {
	buses, err := s.buses.ListByRoute(ctx, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.FindDirect: %w", err)
	}
	if buses == nil {
		return []domain.Bus{}, nil
	}
	return buses, nil
}

// GetBus returns a single bus with its ordered stop list.
// Returns domain.ErrNotFound if no bus with that ID exists.
func (s *ScheduleService) GetBus(ctx context.Context, id int64) (domain.Bus, []domain.Stop, error) {
	bus, err := s.buses.GetByID(ctx, id)
	if err != nil {
		return domain.Bus{}, nil, fmt.Errorf("service.ScheduleService.GetBus: %w", err)
	}
	stops, err := s.stops.ListByBusID(ctx, id)
	if err != nil {
		return domain.Bus{}, nil, fmt.Errorf("service.ScheduleService.GetBus: %w", err)
	}
	if stops == nil {
		stops = []domain.Stop{}
	}
	return bus, stops, nil
}

// ListBuses returns one page of buses plus the total count.
func (s *ScheduleService) ListBuses(ctx context.Context, p domain.PaginationParams) ([]domain.Bus, int64, error) {
	buses, total, err := s.buses.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ScheduleService.ListBuses: %w", err)
	}
	if buses == nil {
		buses = []domain.Bus{}
	}
	return buses, total, nil
}

// CreateBus validates the bus and its stops, verifies the endpoint
// locations exist, persists both, then invalidates the cached graph.
// Returns domain.ErrValidation if input violates business rules.
// Returns domain.ErrNotFound if an endpoint location does not exist.
//
// The bus and its stops are written in two statements; a failure between
// them leaves a stopless bus, which contributes nothing to the graph.
func (s *ScheduleService) CreateBus(ctx context.Context, bus domain.Bus, stops []domain.Stop) (domain.Bus, []domain.Stop, error) {
	if err := validateBus(bus); err != nil {
		return domain.Bus{}, nil, err
	}
	if err := validateStops(stops); err != nil {
		return domain.Bus{}, nil, err
	}
	for _, id := range []int64{bus.FromLocationID, bus.ToLocationID} {
		if _, err := s.locations.GetByID(ctx, id); err != nil {
			return domain.Bus{}, nil, fmt.Errorf("service.ScheduleService.CreateBus: %w", err)
		}
	}

	created, err := s.buses.Create(ctx, bus)
	if err != nil {
		return domain.Bus{}, nil, fmt.Errorf("service.ScheduleService.CreateBus: %w", err)
	}
	for i := range stops {
		stops[i].BusID = created.ID
	}
	createdStops, err := s.stops.CreateBatch(ctx, stops)
	if err != nil {
		return domain.Bus{}, nil, fmt.Errorf("service.ScheduleService.CreateBus: %w", err)
	}

	s.graphs.Invalidate()
	return created, createdStops, nil
}

// SetBusActive flips a bus's active flag and invalidates the cached graph.
// Returns domain.ErrNotFound if no bus with that ID exists.
func (s *ScheduleService) SetBusActive(ctx context.Context, id int64, active bool) error {
	if err := s.buses.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("service.ScheduleService.SetBusActive: %w", err)
	}
	s.graphs.Invalidate()
	return nil
}

// validateBus enforces business rules for bus creation.
//   - Name and Number must be non-empty (whitespace-only values are rejected).
//   - Both endpoint locations must be set and must differ.
func validateBus(bus domain.Bus) error {
	if strings.TrimSpace(bus.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(bus.Number) == "" {
		return fmt.Errorf("%w: number is required", domain.ErrValidation)
	}
	if bus.FromLocationID <= 0 || bus.ToLocationID <= 0 {
		return fmt.Errorf("%w: from and to locations are required", domain.ErrValidation)
	}
	if bus.FromLocationID == bus.ToLocationID {
		return fmt.Errorf("%w: from and to locations must differ", domain.ErrValidation)
	}
	return nil
}

// validateStops enforces business rules for a bus's stop list.
//   - Each stop needs a resolved location or at least a free-text name.
//   - Stop order must be strictly increasing.
func validateStops(stops []domain.Stop) error {
	for i, st := range stops {
		if st.LocationID == 0 && strings.TrimSpace(st.Name) == "" {
			return fmt.Errorf("%w: stop %d needs a location or a name", domain.ErrValidation, i+1)
		}
		if i > 0 && st.StopOrder <= stops[i-1].StopOrder {
			return fmt.Errorf("%w: stop order must be strictly increasing", domain.ErrValidation)
		}
	}
	return nil
}
