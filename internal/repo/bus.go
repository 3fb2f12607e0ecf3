package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/perundhu/backend/internal/domain"
)

// BusRepo defines the persistence operations for Buses.
type BusRepo interface {
	// Create inserts a new bus and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, bus domain.Bus) (domain.Bus, error)

	// GetByID retrieves a single bus by primary key.
	// Returns domain.ErrNotFound if no bus with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Bus, error)

	// List returns one page of buses ordered by id, plus the total count.
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Bus, int64, error)

	// ListActive returns every active bus ordered by id. Graph builds read
	// the whole schedule through this.
	ListActive(ctx context.Context) ([]domain.Bus, error)

	// ListByRoute returns active buses running from fromID to toID, ordered
	// by departure time with untimed buses last.
	ListByRoute(ctx context.Context, fromID, toID int64) ([]domain.Bus, error)

	// SetActive flips the active flag.
	// Returns domain.ErrNotFound if no bus with that ID exists.
	SetActive(ctx context.Context, id int64, active bool) error
}

// pgBusRepo is the Postgres implementation of BusRepo.
type pgBusRepo struct {
	db db
}

// NewBusRepo constructs a BusRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBusRepo(db db) BusRepo {
	return &pgBusRepo{db: db}
}

const busColumns = `id, name, number, from_location_id, to_location_id,
	departure_time, arrival_time, active, created_at, updated_at`

// Create inserts a new bus row and returns the full persisted record.
func (r *pgBusRepo) Create(ctx context.Context, bus domain.Bus) (domain.Bus, error) {
	const q = `
		INSERT INTO buses (name, number, from_location_id, to_location_id,
			departure_time, arrival_time, active)
		VALUES (@name, @number, @from_location_id, @to_location_id,
			@departure_time, @arrival_time, @active)
		RETURNING ` + busColumns

	args := pgx.NamedArgs{
		"name":             bus.Name,
		"number":           bus.Number,
		"from_location_id": bus.FromLocationID,
		"to_location_id":   bus.ToLocationID,
		"departure_time":   pgTime(bus.Departure),
		"arrival_time":     pgTime(bus.Arrival),
		"active":           bus.Active,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanBus(row)
	if err != nil {
		return domain.Bus{}, fmt.Errorf("repo.BusRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a bus by primary key.
func (r *pgBusRepo) GetByID(ctx context.Context, id int64) (domain.Bus, error) {
	const q = `SELECT ` + busColumns + ` FROM buses WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanBus(row)
	if err != nil {
		return domain.Bus{}, fmt.Errorf("repo.BusRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of buses ordered by id plus the total count.
func (r *pgBusRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Bus, int64, error) {
	const countQ = `SELECT count(*) FROM buses`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.BusRepo.List: count: %w", err)
	}

	const q = `SELECT ` + busColumns + `
		FROM buses
		ORDER BY id
		LIMIT @limit OFFSET @offset`

	buses, err := r.queryBuses(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BusRepo.List: %w", err)
	}
	return buses, total, nil
}

// ListActive returns every active bus ordered by id.
func (r *pgBusRepo) ListActive(ctx context.Context) ([]domain.Bus, error) {
	const q = `SELECT ` + busColumns + ` FROM buses WHERE active ORDER BY id`

	buses, err := r.queryBuses(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.BusRepo.ListActive: %w", err)
	}
	return buses, nil
}

// ListByRoute returns active buses on the exact from->to endpoints ordered
// by departure time, untimed buses last.
func (r *pgBusRepo) ListByRoute(ctx context.Context, fromID, toID int64) ([]domain.Bus, error) {
	const q = `SELECT ` + busColumns + `
		FROM buses
		WHERE active
		  AND from_location_id = @from_id
		  AND to_location_id = @to_id
		ORDER BY departure_time NULLS LAST, id`

	buses, err := r.queryBuses(ctx, q, pgx.NamedArgs{"from_id": fromID, "to_id": toID})
	if err != nil {
		return nil, fmt.Errorf("repo.BusRepo.ListByRoute: %w", err)
	}
	return buses, nil
}

// SetActive flips the active flag of one bus.
func (r *pgBusRepo) SetActive(ctx context.Context, id int64, active bool) error {
	const q = `UPDATE buses SET active = @active, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "active": active})
	if err != nil {
		return fmt.Errorf("repo.BusRepo.SetActive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BusRepo.SetActive: %w", domain.ErrNotFound)
	}
	return nil
}

// queryBuses runs a bus query and scans all rows.
func (r *pgBusRepo) queryBuses(ctx context.Context, q string, args ...any) ([]domain.Bus, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buses := []domain.Bus{}
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		buses = append(buses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return buses, nil
}

// scanBus maps a single database row into a domain.Bus.
// It handles the nullable TIME conversions.
func scanBus(s scanner) (domain.Bus, error) {
	var (
		b        domain.Bus
		dep, arr pgtype.Time
	)

	err := s.Scan(&b.ID, &b.Name, &b.Number, &b.FromLocationID, &b.ToLocationID,
		&dep, &arr, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bus{}, domain.ErrNotFound
		}
		return domain.Bus{}, err
	}

	b.Departure = timeOfDay(dep)
	b.Arrival = timeOfDay(arr)
	return b, nil
}

// timeOfDay converts a nullable Postgres TIME into a *domain.TimeOfDay,
// truncating to whole minutes.
func timeOfDay(t pgtype.Time) *domain.TimeOfDay {
	if !t.Valid {
		return nil
	}
	v := domain.TimeOfDay(t.Microseconds / 60_000_000)
	return &v
}

// pgTime converts a *domain.TimeOfDay into a nullable Postgres TIME.
func pgTime(t *domain.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(t.Minutes()) * 60_000_000, Valid: true}
}
