// Package service contains the business logic for the Perundhu API.
// Services validate inputs, enforce business rules, and orchestrate repo
// and routing calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/perundhu/backend/internal/domain"
	"github.com/perundhu/backend/internal/repo"
	"github.com/perundhu/backend/internal/routing"
)

// GraphInvalidator marks the cached transit graph stale. Every schedule
// write path must call it so the next search sees the new data.
type GraphInvalidator interface {
	Invalidate()
}

// GraphProvider supplies the current transit graph snapshot. Implemented
// by routing.Cache.
type GraphProvider interface {
	Get(ctx context.Context) (*routing.Graph, error)
	GraphInvalidator
}

// RouteService answers connecting-route queries. It owns no schedule data:
// the graph comes from the provider, and locations are looked up only to
// reject queries for ids that do not exist.
type RouteService struct {
	graphs    GraphProvider
	locations repo.LocationRepo
	opts      routing.Options
}

// NewRouteService constructs a RouteService searching graphs from the
// provider with the given options.
func NewRouteService(graphs GraphProvider, locations repo.LocationRepo, opts routing.Options) *RouteService {
	return &RouteService{graphs: graphs, locations: locations, opts: opts}
}

// FindConnectingRoutes plans multi-bus journeys between the query's
// locations. An unknown location, identical endpoints, or an unreachable
// destination all yield an empty slice, not an error. A negative
// MaxTransfers selects routing.DefaultMaxTransfers.
func (s *RouteService) FindConnectingRoutes(ctx context.Context, q domain.RouteQuery) ([]domain.Itinerary, error) {
	if q.FromLocationID == q.ToLocationID {
		return []domain.Itinerary{}, nil
	}
	for _, id := range []int64{q.FromLocationID, q.ToLocationID} {
		if _, err := s.locations.GetByID(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return []domain.Itinerary{}, nil
			}
			return nil, fmt.Errorf("service.RouteService.FindConnectingRoutes: %w", err)
		}
	}

	g, err := s.graphs.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.RouteService.FindConnectingRoutes: %w", err)
	}

	maxTransfers := q.MaxTransfers
	if maxTransfers < 0 {
		maxTransfers = routing.DefaultMaxTransfers
	}
	paths := routing.FindPaths(g, routing.SearchParams{
		From:         q.FromLocationID,
		To:           q.ToLocationID,
		MaxTransfers: maxTransfers,
	}, s.opts)
	paths = routing.RankPaths(paths, q.DepartAfter, s.opts)

	itineraries := make([]domain.Itinerary, 0, len(paths))
	for _, p := range paths {
		if it, ok := assembleItinerary(p); ok {
			itineraries = append(itineraries, it)
		}
	}
	slog.DebugContext(ctx, "connecting routes searched",
		"from", q.FromLocationID,
		"to", q.ToLocationID,
		"max_transfers", maxTransfers,
		"candidates", len(paths),
		"itineraries", len(itineraries),
	)
	return itineraries, nil
}

// InvalidateGraph marks the cached graph stale. Exposed so schedule writes
// outside this service can force a rebuild.
func (s *RouteService) InvalidateGraph() {
	s.graphs.Invalidate()
}

// assembleItinerary merges a path's consecutive same-bus segments into
// legs and totals them up. TotalDurationMinutes is carried over from the
// search, which counts ride time plus transfer waits but not dwell at a
// bus's own intermediate stops, so it can come out below a leg's
// wall-clock duration. It reports false for a path that yields no legs;
// callers drop such paths and keep the rest of the response.
func assembleItinerary(p routing.Path) (domain.Itinerary, bool) {
	if len(p.Segs) == 0 {
		return domain.Itinerary{}, false
	}

	legs := []domain.Leg{}
	start := 0
	for i := 1; i <= len(p.Segs); i++ {
		if i < len(p.Segs) && p.Segs[i].BusID == p.Segs[start].BusID {
			continue
		}
		legs = append(legs, assembleLeg(p.Segs[start:i]))
		start = i
	}

	it := domain.Itinerary{
		Legs:                 legs,
		TotalDurationMinutes: p.DurationMinutes,
		TransferCount:        len(legs) - 1,
	}
	total := 0.0
	for _, leg := range legs {
		if leg.DistanceKm == nil {
			return it, true
		}
		total += *leg.DistanceKm
	}
	it.TotalDistanceKm = &total
	return it, true
}

// assembleLeg flattens one same-bus run of segments into a single leg. The
// leg duration is the wall-clock span from first departure to last arrival
// when both ends are timed, which includes dwell at intermediate stops;
// otherwise it is the sum of the segment durations.
func assembleLeg(run []routing.Segment) domain.Leg {
	first, last := run[0], run[len(run)-1]
	leg := domain.Leg{
		BusID:           first.BusID,
		BusName:         first.BusName,
		BusNumber:       first.BusNumber,
		OriginStop:      first.From.Name,
		DestinationStop: last.To.Name,
		Departure:       first.Departure,
		Arrival:         last.Arrival,
	}
	if first.Departure != nil && last.Arrival != nil {
		leg.DurationMinutes = first.Departure.MinutesUntil(*last.Arrival)
	} else {
		for _, seg := range run {
			leg.DurationMinutes += seg.DurationMinutes
		}
	}
	if km, ok := legDistance(first.From, last.To); ok {
		leg.DistanceKm = &km
	}
	return leg
}

// legDistance estimates the great-circle distance between a leg's endpoint
// locations; ok is false when either side lacks coordinates.
func legDistance(from, to routing.Place) (float64, bool) {
	if from.Lat == nil || from.Lon == nil || to.Lat == nil || to.Lon == nil {
		return 0, false
	}
	return domain.HaversineKm(*from.Lat, *from.Lon, *to.Lat, *to.Lon), true
}
