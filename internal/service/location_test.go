package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perundhu/backend/internal/domain"
	"github.com/perundhu/backend/internal/repo"
	"github.com/perundhu/backend/internal/service"
)

// mockLocationRepo is a hand-written test double for repo.LocationRepo.
// Each method is a function field — set only the ones your test needs.
type mockLocationRepo struct {
	create       func(ctx context.Context, loc domain.Location) (domain.Location, error)
	getByID      func(ctx context.Context, id int64) (domain.Location, error)
	list         func(ctx context.Context, p domain.PaginationParams) ([]domain.Location, int64, error)
	searchByName func(ctx context.Context, query string) ([]domain.Location, error)
}

func (m *mockLocationRepo) Create(ctx context.Context, loc domain.Location) (domain.Location, error) {
	return m.create(ctx, loc)
}
func (m *mockLocationRepo) GetByID(ctx context.Context, id int64) (domain.Location, error) {
	return m.getByID(ctx, id)
}
func (m *mockLocationRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Location, int64, error) {
	return m.list(ctx, p)
}
func (m *mockLocationRepo) SearchByName(ctx context.Context, query string) ([]domain.Location, error) {
	return m.searchByName(ctx, query)
}

// compile-time check: mockLocationRepo must satisfy repo.LocationRepo.
var _ repo.LocationRepo = (*mockLocationRepo)(nil)

// knownLocations returns a mockLocationRepo whose GetByID resolves the
// given ids and reports domain.ErrNotFound for everything else.
func knownLocations(ids ...int64) *mockLocationRepo {
	return &mockLocationRepo{
		getByID: func(_ context.Context, id int64) (domain.Location, error) {
			for _, known := range ids {
				if id == known {
					return domain.Location{ID: id}, nil
				}
			}
			return domain.Location{}, domain.ErrNotFound
		},
	}
}

// ---- Create ----------------------------------------------------------------

func TestLocationService_Create_OK(t *testing.T) {
	svc := service.NewLocationService(&mockLocationRepo{
		create: func(_ context.Context, loc domain.Location) (domain.Location, error) {
			loc.ID = 7
			return loc, nil
		},
	})

	got, err := svc.Create(context.Background(), domain.Location{Name: "Vellore", LocalName: "வேலூர்"})

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Vellore", got.Name)
}

func TestLocationService_Create_NameRequired(t *testing.T) {
	svc := service.NewLocationService(&mockLocationRepo{})

	_, err := svc.Create(context.Background(), domain.Location{Name: "   "})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLocationService_Create_CoordinatesComeAsPair(t *testing.T) {
	lat := 12.9165
	svc := service.NewLocationService(&mockLocationRepo{})

	_, err := svc.Create(context.Background(), domain.Location{Name: "Vellore", Latitude: &lat})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLocationService_Create_CoordinatesOutOfRange(t *testing.T) {
	lat, lon := 91.0, 79.1325
	svc := service.NewLocationService(&mockLocationRepo{})

	_, err := svc.Create(context.Background(), domain.Location{Name: "Vellore", Latitude: &lat, Longitude: &lon})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- GetByID ---------------------------------------------------------------

func TestLocationService_GetByID_OK(t *testing.T) {
	svc := service.NewLocationService(knownLocations(5))

	got, err := svc.GetByID(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}

func TestLocationService_GetByID_NotFound(t *testing.T) {
	svc := service.NewLocationService(knownLocations())

	_, err := svc.GetByID(context.Background(), 5)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- List ------------------------------------------------------------------

func TestLocationService_List_NormalizesNilSlice(t *testing.T) {
	svc := service.NewLocationService(&mockLocationRepo{
		list: func(_ context.Context, _ domain.PaginationParams) ([]domain.Location, int64, error) {
			return nil, 0, nil
		},
	})

	got, total, err := svc.List(context.Background(), domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.NotNil(t, got, "should return empty slice, not nil")
	assert.Len(t, got, 0)
	assert.Equal(t, int64(0), total)
}

// ---- Search ----------------------------------------------------------------

func TestLocationService_Search_OK(t *testing.T) {
	var gotQuery string
	svc := service.NewLocationService(&mockLocationRepo{
		searchByName: func(_ context.Context, query string) ([]domain.Location, error) {
			gotQuery = query
			return []domain.Location{{ID: 1, Name: "Tiruvannamalai"}}, nil
		},
	})

	got, err := svc.Search(context.Background(), "  tiru ")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tiru", gotQuery, "query should be trimmed before matching")
}

func TestLocationService_Search_TooShort(t *testing.T) {
	svc := service.NewLocationService(&mockLocationRepo{})

	_, err := svc.Search(context.Background(), "ti")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLocationService_Search_CountsRunesNotBytes(t *testing.T) {
	svc := service.NewLocationService(&mockLocationRepo{})

	// Two Tamil characters are six bytes but still too short a query.
	_, err := svc.Search(context.Background(), "வே")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLocationService_Search_NormalizesNilSlice(t *testing.T) {
	svc := service.NewLocationService(&mockLocationRepo{
		searchByName: func(_ context.Context, _ string) ([]domain.Location, error) {
			return nil, nil
		},
	})

	got, err := svc.Search(context.Background(), "tiru")

	require.NoError(t, err)
	assert.NotNil(t, got, "should return empty slice, not nil")
	assert.Len(t, got, 0)
}

func TestLocationService_Search_RepoErrorWrapped(t *testing.T) {
	repoErr := errors.New("connection refused")
	svc := service.NewLocationService(&mockLocationRepo{
		searchByName: func(_ context.Context, _ string) ([]domain.Location, error) {
			return nil, repoErr
		},
	})

	_, err := svc.Search(context.Background(), "tiru")

	require.Error(t, err)
	assert.ErrorIs(t, err, repoErr, "original error should remain unwrappable")
}
