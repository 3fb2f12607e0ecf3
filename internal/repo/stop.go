package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/perundhu/backend/internal/domain"
)

// StopRepo defines the persistence operations for route stops.
type StopRepo interface {
	// CreateBatch inserts all stops of one bus in a single statement and
	// returns the persisted records ordered by stop_order.
	CreateBatch(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error)

	// ListByBusID returns the stops of one bus ordered by stop_order, with
	// the location name and coordinates joined in.
	ListByBusID(ctx context.Context, busID int64) ([]domain.Stop, error)

	// ListGroupedByBusIDs returns the stops of all given buses keyed by bus
	// ID in one round trip, each slice ordered by stop_order. Graph builds
	// read every schedule through this instead of querying per bus.
	ListGroupedByBusIDs(ctx context.Context, busIDs []int64) (map[int64][]domain.Stop, error)
}

// pgStopRepo is the Postgres implementation of StopRepo.
type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

// CreateBatch inserts all given stops with one unnest statement. A zero
// LocationID is stored as NULL (unresolved stop).
func (r *pgStopRepo) CreateBatch(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error) {
	if len(stops) == 0 {
		return []domain.Stop{}, nil
	}

	const q = `
		WITH inserted AS (
			INSERT INTO stops (bus_id, location_id, name, arrival_time, departure_time, stop_order)
			SELECT * FROM unnest(
				@bus_ids::bigint[],
				@location_ids::bigint[],
				@names::text[],
				@arrivals::time[],
				@departures::time[],
				@stop_orders::int[])
			RETURNING id, bus_id, COALESCE(location_id, 0) AS location_id, name,
				arrival_time, departure_time, stop_order
		)
		SELECT id, bus_id, location_id, name, arrival_time, departure_time, stop_order
		FROM inserted
		ORDER BY stop_order`

	n := len(stops)
	busIDs := make([]int64, n)
	locIDs := make([]pgtype.Int8, n)
	names := make([]string, n)
	arrivals := make([]pgtype.Time, n)
	departures := make([]pgtype.Time, n)
	orders := make([]int32, n)
	for i, s := range stops {
		busIDs[i] = s.BusID
		if s.LocationID != 0 {
			locIDs[i] = pgtype.Int8{Int64: s.LocationID, Valid: true}
		}
		names[i] = s.Name
		arrivals[i] = pgTime(s.Arrival)
		departures[i] = pgTime(s.Departure)
		orders[i] = int32(s.StopOrder)
	}

	args := pgx.NamedArgs{
		"bus_ids":      busIDs,
		"location_ids": locIDs,
		"names":        names,
		"arrivals":     arrivals,
		"departures":   departures,
		"stop_orders":  orders,
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.CreateBatch: %w", err)
	}
	defer rows.Close()

	out := []domain.Stop{}
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.CreateBatch: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.CreateBatch: rows: %w", err)
	}
	return out, nil
}

// ListByBusID returns the stops of one bus ordered by stop_order.
func (r *pgStopRepo) ListByBusID(ctx context.Context, busID int64) ([]domain.Stop, error) {
	const q = stopWithLocationSelect + `
		WHERE s.bus_id = @bus_id
		ORDER BY s.stop_order`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"bus_id": busID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByBusID: %w", err)
	}
	defer rows.Close()

	stops := []domain.Stop{}
	for rows.Next() {
		s, err := scanStopWithLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByBusID: scan: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByBusID: rows: %w", err)
	}
	return stops, nil
}

// ListGroupedByBusIDs loads the stops of many buses at once and groups them
// by bus ID. Buses without stops simply have no key in the result.
func (r *pgStopRepo) ListGroupedByBusIDs(ctx context.Context, busIDs []int64) (map[int64][]domain.Stop, error) {
	grouped := make(map[int64][]domain.Stop, len(busIDs))
	if len(busIDs) == 0 {
		return grouped, nil
	}

	const q = stopWithLocationSelect + `
		WHERE s.bus_id = ANY(@bus_ids)
		ORDER BY s.bus_id, s.stop_order`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"bus_ids": busIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListGroupedByBusIDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanStopWithLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListGroupedByBusIDs: scan: %w", err)
		}
		grouped[s.BusID] = append(grouped[s.BusID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListGroupedByBusIDs: rows: %w", err)
	}
	return grouped, nil
}

// stopWithLocationSelect joins each stop with its resolved location so graph
// builds need no follow-up lookups. Unresolved stops come back with a zero
// location_id and empty location fields.
const stopWithLocationSelect = `
	SELECT s.id, s.bus_id, COALESCE(s.location_id, 0), s.name,
	       s.arrival_time, s.departure_time, s.stop_order,
	       COALESCE(l.name, ''), l.latitude, l.longitude
	FROM stops s
	LEFT JOIN locations l ON l.id = s.location_id`

// scanStop maps a plain stops row (no location join) into a domain.Stop.
func scanStop(s scanner) (domain.Stop, error) {
	var (
		st       domain.Stop
		arr, dep pgtype.Time
	)

	err := s.Scan(&st.ID, &st.BusID, &st.LocationID, &st.Name, &arr, &dep, &st.StopOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stop{}, domain.ErrNotFound
		}
		return domain.Stop{}, err
	}

	st.Arrival = timeOfDay(arr)
	st.Departure = timeOfDay(dep)
	return st, nil
}

// scanStopWithLocation maps a joined row (stop plus location name and
// coordinates) into a domain.Stop.
func scanStopWithLocation(s scanner) (domain.Stop, error) {
	var (
		st       domain.Stop
		arr, dep pgtype.Time
		lat, lon pgtype.Float8
	)

	err := s.Scan(&st.ID, &st.BusID, &st.LocationID, &st.Name, &arr, &dep, &st.StopOrder,
		&st.LocationName, &lat, &lon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stop{}, domain.ErrNotFound
		}
		return domain.Stop{}, err
	}

	st.Arrival = timeOfDay(arr)
	st.Departure = timeOfDay(dep)
	if lat.Valid {
		v := lat.Float64
		st.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		st.Longitude = &v
	}
	return st, nil
}
