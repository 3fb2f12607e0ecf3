package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/perundhu/backend/internal/domain"
)

// ExportRepo reads the flat schedule export view.
type ExportRepo interface {
	// ListRows returns one row per stop with bus fields repeated, ordered by
	// bus id then stop order. Buses without stops yield a single row with
	// zero stop fields.
	ListRows(ctx context.Context) ([]domain.ScheduleExportRow, error)
}

// pgExportRepo is the Postgres implementation of ExportRepo.
type pgExportRepo struct {
	db db
}

// NewExportRepo constructs an ExportRepo backed by the provided db connection.
func NewExportRepo(db db) ExportRepo {
	return &pgExportRepo{db: db}
}

// ListRows joins buses with their endpoint locations and stops in one query.
func (r *pgExportRepo) ListRows(ctx context.Context) ([]domain.ScheduleExportRow, error) {
	const q = `
		SELECT b.id, b.name, b.number, fl.name, tl.name,
		       b.departure_time, b.arrival_time, b.active,
		       COALESCE(s.stop_order, 0), COALESCE(s.name, ''), COALESCE(l.name, ''),
		       s.arrival_time, s.departure_time
		FROM buses b
		JOIN locations fl ON fl.id = b.from_location_id
		JOIN locations tl ON tl.id = b.to_location_id
		LEFT JOIN stops s ON s.bus_id = b.id
		LEFT JOIN locations l ON l.id = s.location_id
		ORDER BY b.id, s.stop_order NULLS FIRST`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ExportRepo.ListRows: %w", err)
	}
	defer rows.Close()

	out := []domain.ScheduleExportRow{}
	for rows.Next() {
		var (
			row                          domain.ScheduleExportRow
			busDep, busArr, stArr, stDep pgtype.Time
		)
		err := rows.Scan(&row.BusID, &row.BusName, &row.BusNumber,
			&row.FromLocation, &row.ToLocation,
			&busDep, &busArr, &row.Active,
			&row.StopOrder, &row.StopName, &row.StopLocation,
			&stArr, &stDep)
		if err != nil {
			return nil, fmt.Errorf("repo.ExportRepo.ListRows: scan: %w", err)
		}
		row.Departure = exportTime(busDep)
		row.Arrival = exportTime(busArr)
		row.StopArrival = exportTime(stArr)
		row.StopDeparture = exportTime(stDep)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExportRepo.ListRows: rows: %w", err)
	}
	return out, nil
}

// exportTime formats a nullable TIME as "HH:MM", empty when NULL.
func exportTime(t pgtype.Time) string {
	if v := timeOfDay(t); v != nil {
		return v.String()
	}
	return ""
}
