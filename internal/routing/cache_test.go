package routing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perundhu/backend/internal/domain"
	"github.com/perundhu/backend/internal/routing"
)

// fakeSource is a hand-written test double for routing.ScheduleSource.
// It counts builds via ListActiveBuses, which every build calls exactly once.
type fakeSource struct {
	mu     sync.Mutex
	builds int
	err    error

	buses []domain.Bus
	stops map[int64][]domain.Stop
}

func (f *fakeSource) ListActiveBuses(ctx context.Context) ([]domain.Bus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds++
	if f.err != nil {
		return nil, f.err
	}
	return f.buses, nil
}

func (f *fakeSource) ListStopsGroupedByBus(ctx context.Context, busIDs []int64) (map[int64][]domain.Stop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops, nil
}

func (f *fakeSource) buildCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builds
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

var _ routing.ScheduleSource = (*fakeSource)(nil)

func linearSource() *fakeSource {
	return &fakeSource{
		buses: []domain.Bus{bus(1, "Only")},
		stops: map[int64][]domain.Stop{
			1: {stopAt(1, 10, 1, nil, tod(6, 0)), stopAt(1, 20, 2, tod(7, 0), nil)},
		},
	}
}

// ---- Get ---------------------------------------------------------------------

func TestCache_GetBuildsOnceAndReuses(t *testing.T) {
	src := linearSource()
	c := routing.NewCache(src, time.Hour)

	g1, err := c.Get(context.Background())
	require.NoError(t, err)
	g2, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.buildCount())
	assert.Equal(t, g1.SnapshotID, g2.SnapshotID)
	assert.Equal(t, 1, g1.EdgeCount())
}

func TestCache_GetPropagatesSourceError(t *testing.T) {
	src := linearSource()
	srcErr := errors.New("db down")
	src.setErr(srcErr)
	c := routing.NewCache(src, time.Hour)

	_, err := c.Get(context.Background())
	require.ErrorIs(t, err, srcErr)

	// Nothing was cached; the next call retries and succeeds.
	src.setErr(nil)
	g, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestCache_ConcurrentGetsShareOneBuild(t *testing.T) {
	src := linearSource()
	c := routing.NewCache(src, time.Hour)

	const callers = 16
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := c.Get(context.Background())
			errs[i] = err
			if g != nil {
				ids[i] = g.SnapshotID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, src.buildCount())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

// ---- Invalidate --------------------------------------------------------------

func TestCache_InvalidateForcesRebuild(t *testing.T) {
	src := linearSource()
	c := routing.NewCache(src, time.Hour)

	g1, err := c.Get(context.Background())
	require.NoError(t, err)

	c.Invalidate()

	g2, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, src.buildCount())
	assert.NotEqual(t, g1.SnapshotID, g2.SnapshotID)
}

func TestCache_InvalidateWithoutSnapshotIsNoop(t *testing.T) {
	src := linearSource()
	c := routing.NewCache(src, time.Hour)

	c.Invalidate()

	assert.Zero(t, src.buildCount())
}

// ---- max age -----------------------------------------------------------------

func TestCache_RebuildsAfterMaxAge(t *testing.T) {
	src := linearSource()
	c := routing.NewCache(src, 30*time.Millisecond)

	_, err := c.Get(context.Background())
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.buildCount())
}

// ---- WarmUp ------------------------------------------------------------------

func TestCache_WarmUpBuildsEagerly(t *testing.T) {
	src := linearSource()
	c := routing.NewCache(src, time.Hour)

	c.WarmUp(context.Background(), 0)

	assert.Equal(t, 1, src.buildCount())

	// The warmed snapshot serves the first request without another build.
	_, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.buildCount())
}

func TestCache_WarmUpAbandonedOnCancel(t *testing.T) {
	src := linearSource()
	c := routing.NewCache(src, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c.WarmUp(ctx, time.Hour)

	assert.Zero(t, src.buildCount())
}
