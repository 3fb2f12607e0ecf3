package repo

import (
	"context"

	"github.com/perundhu/backend/internal/domain"
)

// ScheduleSource bundles the bus and stop read queries a route graph build
// needs, satisfying routing.ScheduleSource.
type ScheduleSource struct {
	buses BusRepo
	stops StopRepo
}

// NewScheduleSource constructs a ScheduleSource over the given repos.
func NewScheduleSource(buses BusRepo, stops StopRepo) *ScheduleSource {
	return &ScheduleSource{buses: buses, stops: stops}
}

// ListActiveBuses returns every active bus.
func (s *ScheduleSource) ListActiveBuses(ctx context.Context) ([]domain.Bus, error) {
	return s.buses.ListActive(ctx)
}

// ListStopsGroupedByBus returns the stops of the given buses keyed by bus ID.
func (s *ScheduleSource) ListStopsGroupedByBus(ctx context.Context, busIDs []int64) (map[int64][]domain.Stop, error) {
	return s.stops.ListGroupedByBusIDs(ctx, busIDs)
}
