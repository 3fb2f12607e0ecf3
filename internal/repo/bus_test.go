package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perundhu/backend/internal/domain"
)

func TestBusRepo_Create(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	from := mustCreateLocation(t, r.locations, "Chennai")
	to := mustCreateLocation(t, r.locations, "Vellore")

	got, err := r.buses.Create(ctx, domain.Bus{
		Name:           "Chennai Vellore Express",
		Number:         "139",
		FromLocationID: from.ID,
		ToLocationID:   to.ID,
		Departure:      tod(6, 0),
		Arrival:        tod(9, 30),
		Active:         true,
	})

	require.NoError(t, err)
	assert.NotZero(t, got.ID, "ID should be DB-generated")
	assert.Equal(t, "139", got.Number)
	assert.Equal(t, from.ID, got.FromLocationID)
	require.NotNil(t, got.Departure)
	assert.Equal(t, "06:00", got.Departure.String())
	require.NotNil(t, got.Arrival)
	assert.Equal(t, "09:30", got.Arrival.String())
	assert.True(t, got.Active)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
}

func TestBusRepo_Create_WithoutTimes(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	from := mustCreateLocation(t, r.locations, "Arni")
	to := mustCreateLocation(t, r.locations, "Kanchipuram")

	got, err := r.buses.Create(ctx, domain.Bus{
		Name:           "Town Service",
		Number:         "7A",
		FromLocationID: from.ID,
		ToLocationID:   to.ID,
		Active:         true,
	})

	require.NoError(t, err)
	assert.Nil(t, got.Departure, "Departure should be nil when not provided")
	assert.Nil(t, got.Arrival, "Arrival should be nil when not provided")
}

func TestBusRepo_GetByID(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	from := mustCreateLocation(t, r.locations, "Polur")
	to := mustCreateLocation(t, r.locations, "Tiruvannamalai")
	created := mustCreateBus(t, r.buses, from.ID, to.ID)

	got, err := r.buses.GetByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Number, got.Number)
}

func TestBusRepo_GetByID_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.buses.GetByID(context.Background(), 999_999_999)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBusRepo_ListActive_ExcludesInactive(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	from := mustCreateLocation(t, r.locations, "Vaniyambadi")
	to := mustCreateLocation(t, r.locations, "Jolarpet")

	active := mustCreateBus(t, r.buses, from.ID, to.ID)
	inactive, err := r.buses.Create(ctx, domain.Bus{
		Name:           "Withdrawn Service",
		Number:         "X1",
		FromLocationID: from.ID,
		ToLocationID:   to.ID,
		Active:         false,
	})
	require.NoError(t, err)

	buses, err := r.buses.ListActive(ctx)

	require.NoError(t, err)
	var ids []int64
	for _, b := range buses {
		ids = append(ids, b.ID)
		assert.True(t, b.Active)
	}
	assert.Contains(t, ids, active.ID)
	assert.NotContains(t, ids, inactive.ID)
}

func TestBusRepo_ListByRoute(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	from := mustCreateLocation(t, r.locations, "Chennai CMBT")
	to := mustCreateLocation(t, r.locations, "Vellore New Bus Stand")
	elsewhere := mustCreateLocation(t, r.locations, "Bengaluru")

	late, err := r.buses.Create(ctx, domain.Bus{
		Name: "Late Runner", Number: "L2",
		FromLocationID: from.ID, ToLocationID: to.ID,
		Departure: tod(18, 0), Arrival: tod(21, 0), Active: true,
	})
	require.NoError(t, err)
	early, err := r.buses.Create(ctx, domain.Bus{
		Name: "Early Runner", Number: "E1",
		FromLocationID: from.ID, ToLocationID: to.ID,
		Departure: tod(5, 30), Arrival: tod(8, 30), Active: true,
	})
	require.NoError(t, err)
	untimed, err := r.buses.Create(ctx, domain.Bus{
		Name: "Untimed Runner", Number: "U1",
		FromLocationID: from.ID, ToLocationID: to.ID, Active: true,
	})
	require.NoError(t, err)
	_, err = r.buses.Create(ctx, domain.Bus{
		Name: "Other Route", Number: "O1",
		FromLocationID: from.ID, ToLocationID: elsewhere.ID, Active: true,
	})
	require.NoError(t, err)

	got, err := r.buses.ListByRoute(ctx, from.ID, to.ID)

	require.NoError(t, err)
	require.Len(t, got, 3, "only the exact from->to services")
	assert.Equal(t, early.ID, got[0].ID, "earliest departure first")
	assert.Equal(t, late.ID, got[1].ID)
	assert.Equal(t, untimed.ID, got[2].ID, "untimed services last")
}

func TestBusRepo_ListByRoute_ExcludesInactive(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	from := mustCreateLocation(t, r.locations, "Arakkonam")
	to := mustCreateLocation(t, r.locations, "Tiruttani")

	bus := mustCreateBus(t, r.buses, from.ID, to.ID)
	require.NoError(t, r.buses.SetActive(ctx, bus.ID, false))

	got, err := r.buses.ListByRoute(ctx, from.ID, to.ID)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBusRepo_SetActive(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	from := mustCreateLocation(t, r.locations, "Sholinghur")
	to := mustCreateLocation(t, r.locations, "Walajapet")
	bus := mustCreateBus(t, r.buses, from.ID, to.ID)

	require.NoError(t, r.buses.SetActive(ctx, bus.ID, false))

	got, err := r.buses.GetByID(ctx, bus.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.True(t, got.UpdatedAt.After(bus.UpdatedAt) || got.UpdatedAt.Equal(bus.UpdatedAt))
}

func TestBusRepo_SetActive_NotFound(t *testing.T) {
	r := newTestRepos(t)

	err := r.buses.SetActive(context.Background(), 999_999_999, false)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBusRepo_List(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	from := mustCreateLocation(t, r.locations, "Kaveripakkam")
	to := mustCreateLocation(t, r.locations, "Ocheri")
	mustCreateBus(t, r.buses, from.ID, to.ID)
	mustCreateBus(t, r.buses, to.ID, from.ID)

	buses, total, err := r.buses.List(ctx, domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(2))
	assert.GreaterOrEqual(t, len(buses), 2)
}
