package service

import (
	"context"
	"fmt"

	"github.com/perundhu/backend/internal/domain"
	"github.com/perundhu/backend/internal/repo"
)

// ExportService assembles a full flat export of the bus schedule.
type ExportService struct {
	repo repo.ExportRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(r repo.ExportRepo) *ExportService {
	return &ExportService{repo: r}
}

// Export returns one ScheduleExportRow per stop across all buses.
// Buses with no stops contribute one row with empty stop fields.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ExportService) Export(ctx context.Context) ([]domain.ScheduleExportRow, error) {
	rows, err := s.repo.ListRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	if rows == nil {
		rows = []domain.ScheduleExportRow{}
	}
	return rows, nil
}
