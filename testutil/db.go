// Package testutil holds the Postgres fixtures shared by the parking meter
// integration tests. Every helper that needs a database skips the calling
// test when TEST_DATABASE_URL is unset, so `go test ./...` runs anywhere.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/migrations"
)

// DSNEnv names the variable holding the integration database URL.
const DSNEnv = "TEST_DATABASE_URL"

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool connects to the integration database and closes the pool when the
// test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := connect(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// BeginTx opens a transaction that is rolled back when the test finishes.
// Repos built on it see a migrated schema and leave no rows behind.
func BeginTx(t *testing.T) pgx.Tx {
	t.Helper()
	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.BeginTx: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB returns a database/sql handle for goose. It shares the test's pool.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db := stdlib.OpenDBFromPool(NewPool(t))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Migrate applies pending migrations to the database at dsn, the same way the
// server does at start-up. It is meant for TestMain, where there is no
// *testing.T; it is safe to run from several test binaries at once.
func Migrate(ctx context.Context, dsn string) error {
	pool, err := connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("testutil.Migrate: %w", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if _, err := migrations.Up(ctx, db); err != nil {
		return fmt.Errorf("testutil.Migrate: %w", err)
	}
	return nil
}

// SeedZone inserts a zone directly, bypassing the repos under test.
func SeedZone(t *testing.T, q Querier, name string, hourlyRate int64) domain.Zone {
	t.Helper()
	z := domain.Zone{ID: uuid.New(), Name: name, HourlyRate: hourlyRate}
	err := q.QueryRow(context.Background(),
		`INSERT INTO zones (id, name, hourly_rate) VALUES ($1, $2, $3) RETURNING created_at`,
		z.ID, z.Name, z.HourlyRate,
	).Scan(&z.CreatedAt)
	if err != nil {
		t.Fatalf("testutil.SeedZone %q: %v", name, err)
	}
	return z
}

// SeedVehicle registers a plate for userID directly, bypassing the repos
// under test.
func SeedVehicle(t *testing.T, q Querier, userID uuid.UUID, plate string) domain.Vehicle {
	t.Helper()
	v := domain.Vehicle{UserID: userID, Plate: plate}
	err := q.QueryRow(context.Background(),
		`INSERT INTO vehicles (user_id, plate) VALUES ($1, $2) RETURNING id, created_at`,
		userID, plate,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		t.Fatalf("testutil.SeedVehicle %q: %v", plate, err)
	}
	return v
}

// PurgeOnCleanup deletes the vehicle's sessions, the vehicle and the zone when
// the test finishes. Tests that commit through a pool, rather than a rolled
// back transaction, use it to leave the shared database clean.
func PurgeOnCleanup(t *testing.T, q Querier, vehicleID, zoneID uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		ctx := context.Background()
		for _, stmt := range []struct {
			sql string
			arg uuid.UUID
		}{
			{`DELETE FROM parking_sessions WHERE vehicle_id = $1`, vehicleID},
			{`DELETE FROM vehicles WHERE id = $1`, vehicleID},
			{`DELETE FROM zones WHERE id = $1`, zoneID},
		} {
			if _, err := q.Exec(ctx, stmt.sql, stmt.arg); err != nil {
				t.Logf("testutil.PurgeOnCleanup: %v", err)
			}
		}
	})
}

func connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}
