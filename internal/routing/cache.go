package routing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/perundhu/backend/internal/domain"
)

// DefaultGraphMaxAge bounds how long a snapshot is served before a rebuild.
// It is the backstop for schedule changes that bypass the explicit
// invalidation hooks (manual SQL, batch imports).
const DefaultGraphMaxAge = time.Hour

// ScheduleSource supplies the rows a graph build reads. It is the read side
// of the bus and stop repositories.
type ScheduleSource interface {
	// ListActiveBuses returns every active bus.
	ListActiveBuses(ctx context.Context) ([]domain.Bus, error)

	// ListStopsGroupedByBus returns the stops of the given buses keyed by
	// bus ID, each slice ordered by stop sequence.
	ListStopsGroupedByBus(ctx context.Context, busIDs []int64) (map[int64][]domain.Stop, error)
}

// Cache holds the current graph snapshot and rebuilds it on demand.
// Readers take an RWMutex fast path; at most one build runs at a time
// behind buildMu, and the snapshot is swapped in only once fully built, so
// no caller ever observes a partial graph.
type Cache struct {
	source ScheduleSource
	maxAge time.Duration

	mu      sync.RWMutex
	current *Graph

	buildMu sync.Mutex
}

// NewCache constructs a Cache over the given source. A maxAge of zero or
// less falls back to DefaultGraphMaxAge.
func NewCache(source ScheduleSource, maxAge time.Duration) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultGraphMaxAge
	}
	return &Cache{source: source, maxAge: maxAge}
}

// Get returns the current snapshot, building one first when none exists or
// the cached one has outlived maxAge. Callers that arrive during a build
// block and then all receive the same freshly built snapshot.
func (c *Cache) Get(ctx context.Context) (*Graph, error) {
	if g := c.fresh(); g != nil {
		return g, nil
	}

	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	// Another caller may have finished the build while we waited.
	if g := c.fresh(); g != nil {
		return g, nil
	}

	g, err := c.build(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.current = g
	c.mu.Unlock()
	return g, nil
}

// Invalidate drops the cached snapshot so the next Get rebuilds from the
// database. Write paths that change buses, stops, or locations call this
// after committing.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	had := c.current != nil
	c.current = nil
	c.mu.Unlock()

	if had {
		slog.Info("route graph cache invalidated")
	}
}

// WarmUp builds the graph ahead of the first request. It waits for delay so
// the rest of the service finishes starting, then triggers a normal Get.
// Run it in its own goroutine; cancelling ctx abandons the warmup.
func (c *Cache) WarmUp(ctx context.Context, delay time.Duration) {
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}

	slog.Info("warming route graph cache")
	if _, err := c.Get(ctx); err != nil {
		slog.Error("route graph warmup failed", "error", err)
	}
}

// fresh returns the cached snapshot if present and younger than maxAge.
func (c *Cache) fresh() *Graph {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil || time.Since(c.current.BuiltAt) > c.maxAge {
		return nil
	}
	return c.current
}

func (c *Cache) build(ctx context.Context) (*Graph, error) {
	start := time.Now()

	buses, err := c.source.ListActiveBuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("routing.Cache.build: list active buses: %w", err)
	}
	ids := make([]int64, 0, len(buses))
	for _, b := range buses {
		ids = append(ids, b.ID)
	}
	stops, err := c.source.ListStopsGroupedByBus(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("routing.Cache.build: list stops: %w", err)
	}

	g := BuildGraph(buses, stops)
	slog.Info("route graph built",
		"snapshot_id", g.SnapshotID,
		"buses", len(buses),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return g, nil
}
