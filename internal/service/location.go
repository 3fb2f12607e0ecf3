package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/perundhu/backend/internal/domain"
	"github.com/perundhu/backend/internal/repo"
)

// minSearchRunes is the shortest location search term accepted. Counted in
// runes, not bytes, so Tamil queries are measured the same as Latin ones.
const minSearchRunes = 3

// LocationService implements business logic for Location operations.
type LocationService struct {
	repo repo.LocationRepo
}

// NewLocationService constructs a LocationService backed by the provided repo.
func NewLocationService(r repo.LocationRepo) *LocationService {
	return &LocationService{repo: r}
}

// Create validates and persists a new location.
// Returns domain.ErrValidation if input violates business rules.
func (s *LocationService) Create(ctx context.Context, loc domain.Location) (domain.Location, error) {
	if err := validateLocation(loc); err != nil {
		return domain.Location{}, err
	}
	result, err := s.repo.Create(ctx, loc)
	if err != nil {
		return domain.Location{}, fmt.Errorf("service.LocationService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single location by ID.
// Returns domain.ErrNotFound if no location with that ID exists.
func (s *LocationService) GetByID(ctx context.Context, id int64) (domain.Location, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Location{}, fmt.Errorf("service.LocationService.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of locations plus the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *LocationService) List(ctx context.Context, p domain.PaginationParams) ([]domain.Location, int64, error) {
	locations, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.LocationService.List: %w", err)
	}
	if locations == nil {
		locations = []domain.Location{}
	}
	return locations, total, nil
}

// Search returns locations whose name or local name matches the query,
// for autocomplete. Returns domain.ErrValidation when the trimmed query is
// shorter than minSearchRunes.
func (s *LocationService) Search(ctx context.Context, query string) ([]domain.Location, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchRunes {
		return nil, fmt.Errorf("%w: search term must be at least %d characters", domain.ErrValidation, minSearchRunes)
	}
	locations, err := s.repo.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service.LocationService.Search: %w", err)
	}
	if locations == nil {
		locations = []domain.Location{}
	}
	return locations, nil
}

// validateLocation enforces business rules for location creation.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Coordinates come as a pair and must be in range.
func validateLocation(loc domain.Location) error {
	if strings.TrimSpace(loc.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if (loc.Latitude == nil) != (loc.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be given together", domain.ErrValidation)
	}
	if loc.Latitude != nil {
		if *loc.Latitude < -90 || *loc.Latitude > 90 {
			return fmt.Errorf("%w: latitude out of range", domain.ErrValidation)
		}
		if *loc.Longitude < -180 || *loc.Longitude > 180 {
			return fmt.Errorf("%w: longitude out of range", domain.ErrValidation)
		}
	}
	return nil
}
