package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perundhu/backend/internal/domain"
	"github.com/perundhu/backend/internal/routing"
)

// seg builds a bare segment for ranking tests; ranking only looks at bus
// IDs, locations, and the first departure.
func seg(busID, from, to int64, dep *domain.TimeOfDay) routing.Segment {
	return routing.Segment{
		BusID:     busID,
		From:      routing.Place{LocationID: from},
		To:        routing.Place{LocationID: to},
		Departure: dep,
	}
}

func direct(busID int64, duration int, dep *domain.TimeOfDay) routing.Path {
	return routing.Path{
		Segs:            []routing.Segment{seg(busID, 10, 30, dep)},
		DurationMinutes: duration,
		Transfers:       0,
		Cost:            float64(duration),
	}
}

func oneTransfer(busA, busB int64, via int64, duration int, dep *domain.TimeOfDay) routing.Path {
	return routing.Path{
		Segs: []routing.Segment{
			seg(busA, 10, via, dep),
			seg(busB, via, 30, nil),
		},
		DurationMinutes: duration,
		Transfers:       1,
		Cost:            float64(duration) + 30,
	}
}

func capped(n int) routing.Options {
	opts := routing.DefaultOptions()
	opts.ResultCap = n
	return opts
}

// ---- ordering ----------------------------------------------------------------

func TestRankPaths_OrdersByTransfersThenDuration(t *testing.T) {
	paths := []routing.Path{
		oneTransfer(1, 2, 20, 150, tod(6, 0)), // cost 180
		direct(3, 180, tod(6, 30)),            // cost 180, same cost but zero transfers
		direct(4, 240, tod(7, 0)),             // cost 240
	}

	ranked := routing.RankPaths(paths, nil, routing.DefaultOptions())

	require.Len(t, ranked, 3)
	assert.Equal(t, 0, ranked[0].Transfers)
	assert.Equal(t, 180, ranked[0].DurationMinutes)
	assert.Equal(t, 0, ranked[1].Transfers)
	assert.Equal(t, 1, ranked[2].Transfers)
}

func TestRankPaths_EmptyInput(t *testing.T) {
	assert.Empty(t, routing.RankPaths(nil, nil, routing.DefaultOptions()))
}

func TestRankPaths_UnderCapSkipsDiversityFilter(t *testing.T) {
	// Three identically shaped paths under a cap of 10 all survive.
	paths := []routing.Path{
		direct(1, 100, tod(6, 0)),
		direct(2, 110, tod(7, 0)),
		direct(3, 120, tod(8, 0)),
	}

	ranked := routing.RankPaths(paths, nil, routing.DefaultOptions())

	assert.Len(t, ranked, 3)
}

// ---- diversity ---------------------------------------------------------------

func TestRankPaths_KeepsOnePathPerShapeFirst(t *testing.T) {
	var paths []routing.Path
	for i := 0; i < 6; i++ {
		paths = append(paths, direct(int64(i+1), 100+i, tod(6, i)))
	}
	for i := 0; i < 6; i++ {
		paths = append(paths, oneTransfer(int64(i+11), int64(i+21), 20, 110+i, tod(6, i)))
	}

	ranked := routing.RankPaths(paths, nil, capped(2))

	// Cheapest of each shape: one direct, one via location 20.
	require.Len(t, ranked, 2)
	assert.Equal(t, 0, ranked[0].Transfers)
	assert.Equal(t, 100, ranked[0].DurationMinutes)
	assert.Equal(t, 1, ranked[1].Transfers)
	assert.Equal(t, 110, ranked[1].DurationMinutes)
}

func TestRankPaths_BackfillsWhenShapesRunOut(t *testing.T) {
	// Twelve paths, all the same shape: the cap is still filled, in cost order.
	var paths []routing.Path
	for i := 0; i < 12; i++ {
		paths = append(paths, direct(int64(i+1), 100+i, tod(6, i)))
	}

	ranked := routing.RankPaths(paths, nil, capped(3))

	require.Len(t, ranked, 3)
	assert.Equal(t, 100, ranked[0].DurationMinutes)
	assert.Equal(t, 101, ranked[1].DurationMinutes)
	assert.Equal(t, 102, ranked[2].DurationMinutes)
}

func TestRankPaths_SameChainDifferentBusesShareShape(t *testing.T) {
	// Both paths run 10 -> 20 -> 30 with a transfer at 20; different buses
	// do not make them diverse.
	var paths []routing.Path
	for i := 0; i < 11; i++ {
		paths = append(paths, oneTransfer(int64(i+1), int64(i+101), 20, 100+i, tod(6, i)))
	}
	paths = append(paths, oneTransfer(991, 992, 25, 150, tod(6, 30))) // distinct interchange

	ranked := routing.RankPaths(paths, nil, capped(2))

	require.Len(t, ranked, 2)
	// One path per interchange survives, not the two cheapest twins.
	vias := map[int64]bool{
		ranked[0].Segs[1].From.LocationID: true,
		ranked[1].Segs[1].From.LocationID: true,
	}
	assert.True(t, vias[20])
	assert.True(t, vias[25])
}

// ---- depart-after ------------------------------------------------------------

func TestRankPaths_DepartAfterDropsEarlierDepartures(t *testing.T) {
	paths := []routing.Path{
		direct(1, 100, tod(6, 0)),
		direct(2, 110, tod(9, 0)),
		direct(3, 120, nil), // unknown departure is kept
	}

	cutoff := domain.NewTimeOfDay(7, 0)
	ranked := routing.RankPaths(paths, &cutoff, routing.DefaultOptions())

	require.Len(t, ranked, 2)
	assert.Equal(t, 110, ranked[0].DurationMinutes)
	assert.Equal(t, 120, ranked[1].DurationMinutes)
}

func TestRankPaths_DepartAfterKeepsExactMatch(t *testing.T) {
	paths := []routing.Path{direct(1, 100, tod(7, 0))}

	cutoff := domain.NewTimeOfDay(7, 0)
	ranked := routing.RankPaths(paths, &cutoff, routing.DefaultOptions())

	assert.Len(t, ranked, 1)
}

func TestRankPaths_NeverExceedsCap(t *testing.T) {
	var paths []routing.Path
	for i := 0; i < 25; i++ {
		paths = append(paths, direct(int64(i+1), 100+i, tod(6, i)))
	}

	ranked := routing.RankPaths(paths, nil, routing.DefaultOptions())

	assert.Len(t, ranked, routing.DefaultOptions().ResultCap)
}
