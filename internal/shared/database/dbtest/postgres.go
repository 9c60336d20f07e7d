//go:build integration

// Package dbtest starts a throwaway PostgreSQL container with the station
// schema applied, for repository integration tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/digital-station/platform/internal/shared/database"
)

// NewPool runs postgres:16-alpine, applies every migration and returns a
// pool. The container and pool are released when the test ends.
// Run with: go test -tags=integration ./...
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("station"),
		postgres.WithUsername("station"),
		postgres.WithPassword("station"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return pool
}

// SeedPolice inserts a police member and returns its id.
func SeedPolice(t *testing.T, pool *pgxpool.Pool, stationID int64, name string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO police_members (station_id, name, password_hash) VALUES ($1, $2, 'x') RETURNING member_id`,
		stationID, name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed police member: %v", err)
	}
	return id
}
