package repositories

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"eventify/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedDBOnce sync.Once
	sharedDB     *sql.DB
	sharedDBErr  error
	sharedDBSkip string
)

// setupTestDB returns a migrated database shared by the package tests.
// DATABASE_URL wins when set; otherwise a throwaway Postgres container is
// started, and the test is skipped when Docker is unavailable.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
	}

	sharedDBOnce.Do(func() {
		sharedDB, sharedDBSkip, sharedDBErr = openTestDB()
	})
	if sharedDBSkip != "" {
		t.Skip(sharedDBSkip)
	}
	require.NoError(t, sharedDBErr)

	resetTables(t, sharedDB)
	return sharedDB
}

func openTestDB() (*sql.DB, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		container, err := tcpostgres.Run(
			ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("eventify_test"),
			tcpostgres.WithUsername("eventify"),
			tcpostgres.WithPassword("eventify"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			),
		)
		if err != nil {
			return nil, "failed to start postgres container: " + err.Error(), nil
		}

		dbURL, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			return nil, "", err
		}
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, "", err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, "failed to ping test database: " + err.Error(), nil
	}

	if _, err := database.NewMigrator(db, zerolog.Nop()).Up(ctx); err != nil {
		return nil, "", err
	}
	return db, "", nil
}

func resetTables(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE revoked_tokens, registrations, events, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}
