package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/perundhu/backend/internal/domain"
	"github.com/perundhu/backend/internal/repo"
	"github.com/perundhu/backend/migrations"
	"github.com/perundhu/backend/testutil"
)

// TestMain runs once before any test in the repo_test package. It applies
// all pending migrations to the test database so individual tests never
// need to think about schema state.
func TestMain(m *testing.M) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		// No test DB configured — skip all tests in this package cleanly.
		os.Exit(m.Run())
	}

	// Use a plain *sql.DB for goose (it needs database/sql, not pgx pool).
	// We construct it manually here rather than through testutil.NewPool
	// because TestMain doesn't have a *testing.T to pass.
	db := testutil.MustOpenSQLDB(os.Getenv("TEST_DATABASE_URL"))
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		log.Fatalf("TestMain: create goose provider: %v", err)
	}

	if _, err := provider.Up(context.Background()); err != nil {
		log.Fatalf("TestMain: run migrations: %v", err)
	}

	os.Exit(m.Run())
}

// ---- shared fixtures ---------------------------------------------------------

// testRepos bundles every repo over one shared transaction.
type testRepos struct {
	locations repo.LocationRepo
	buses     repo.BusRepo
	stops     repo.StopRepo
	export    repo.ExportRepo
}

// newTestRepos opens a single transaction and returns all repos backed by it.
// Tests create locations, buses, and stops within the same transaction, which
// is rolled back automatically when the test finishes.
func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return testRepos{
		locations: repo.NewLocationRepo(tx),
		buses:     repo.NewBusRepo(tx),
		stops:     repo.NewStopRepo(tx),
		export:    repo.NewExportRepo(tx),
	}
}

// tod returns a pointer to the given clock time.
func tod(h, m int) *domain.TimeOfDay {
	v := domain.NewTimeOfDay(h, m)
	return &v
}

// mustCreateLocation inserts a location with coordinates and fails the test
// if the insert does not succeed.
func mustCreateLocation(t *testing.T, r repo.LocationRepo, name string) domain.Location {
	t.Helper()
	lat, lon := 12.9165, 79.1325
	loc, err := r.Create(context.Background(), domain.Location{
		Name:      name,
		LocalName: name + " (local)",
		Latitude:  &lat,
		Longitude: &lon,
	})
	require.NoError(t, err, "create location")
	return loc
}

// mustCreateBus inserts an active, timed bus between two locations.
func mustCreateBus(t *testing.T, r repo.BusRepo, fromID, toID int64) domain.Bus {
	t.Helper()
	bus, err := r.Create(context.Background(), domain.Bus{
		Name:           "Vellore Express",
		Number:         "27D",
		FromLocationID: fromID,
		ToLocationID:   toID,
		Departure:      tod(6, 0),
		Arrival:        tod(9, 30),
		Active:         true,
	})
	require.NoError(t, err, "create bus")
	return bus
}

// stopRow returns a Stop ready for insertion.
func stopRow(busID, locID int64, name string, order int, arr, dep *domain.TimeOfDay) domain.Stop {
	return domain.Stop{
		BusID:      busID,
		LocationID: locID,
		Name:       name,
		Arrival:    arr,
		Departure:  dep,
		StopOrder:  order,
	}
}
