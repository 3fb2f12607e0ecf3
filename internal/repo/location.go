// Package repo contains all database access logic for the Perundhu API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/perundhu/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LocationRepo defines the persistence operations for Locations.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type LocationRepo interface {
	// Create inserts a new location and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, loc domain.Location) (domain.Location, error)

	// GetByID retrieves a single location by primary key.
	// Returns domain.ErrNotFound if no location with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Location, error)

	// List returns one page of locations ordered by name, plus the total count.
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Location, int64, error)

	// SearchByName returns up to 20 locations whose name or local-language
	// name contains term, case-insensitively, ordered by name.
	SearchByName(ctx context.Context, term string) ([]domain.Location, error)
}

// pgLocationRepo is the Postgres implementation of LocationRepo.
type pgLocationRepo struct {
	db db
}

// NewLocationRepo constructs a LocationRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewLocationRepo(db db) LocationRepo {
	return &pgLocationRepo{db: db}
}

// Create inserts a new location row and returns the full persisted record.
func (r *pgLocationRepo) Create(ctx context.Context, loc domain.Location) (domain.Location, error) {
	const q = `
		INSERT INTO locations (name, local_name, latitude, longitude)
		VALUES (@name, @local_name, @latitude, @longitude)
		RETURNING id, name, local_name, latitude, longitude, created_at, updated_at`

	args := pgx.NamedArgs{
		"name":       loc.Name,
		"local_name": loc.LocalName,
		"latitude":   loc.Latitude, // nil becomes NULL
		"longitude":  loc.Longitude,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanLocation(row)
	if err != nil {
		return domain.Location{}, fmt.Errorf("repo.LocationRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a location by primary key.
func (r *pgLocationRepo) GetByID(ctx context.Context, id int64) (domain.Location, error) {
	const q = `
		SELECT id, name, local_name, latitude, longitude, created_at, updated_at
		FROM locations
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanLocation(row)
	if err != nil {
		return domain.Location{}, fmt.Errorf("repo.LocationRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of locations ordered by name plus the total count.
func (r *pgLocationRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Location, int64, error) {
	const countQ = `SELECT count(*) FROM locations`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.LocationRepo.List: count: %w", err)
	}

	const q = `
		SELECT id, name, local_name, latitude, longitude, created_at, updated_at
		FROM locations
		ORDER BY name
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.LocationRepo.List: %w", err)
	}
	defer rows.Close()

	locs := []domain.Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.LocationRepo.List: scan: %w", err)
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.LocationRepo.List: rows: %w", err)
	}
	return locs, total, nil
}

// SearchByName returns locations whose English or local-language name
// contains term, case-insensitively. Capped at 20 rows — this backs an
// autocomplete box, not a browse page.
func (r *pgLocationRepo) SearchByName(ctx context.Context, term string) ([]domain.Location, error) {
	const q = `
		SELECT id, name, local_name, latitude, longitude, created_at, updated_at
		FROM locations
		WHERE name ILIKE '%' || @term || '%'
		   OR local_name ILIKE '%' || @term || '%'
		ORDER BY name
		LIMIT 20`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"term": term})
	if err != nil {
		return nil, fmt.Errorf("repo.LocationRepo.SearchByName: %w", err)
	}
	defer rows.Close()

	locs := []domain.Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.LocationRepo.SearchByName: scan: %w", err)
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.LocationRepo.SearchByName: rows: %w", err)
	}
	return locs, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanLocation maps a single database row into a domain.Location.
// It handles the nullable coordinate conversions.
func scanLocation(s scanner) (domain.Location, error) {
	var (
		loc      domain.Location
		lat, lon pgtype.Float8
	)

	err := s.Scan(&loc.ID, &loc.Name, &loc.LocalName, &lat, &lon, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Location{}, domain.ErrNotFound
		}
		return domain.Location{}, err
	}

	if lat.Valid {
		v := lat.Float64
		loc.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		loc.Longitude = &v
	}
	return loc, nil
}
