package testdb

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/stretchr/testify/require"
)

// Timeout bounds connection and setup work.
const Timeout = 5 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// GetTestDB opens a connection to the test database and makes sure the
// schema is current. The connection is closed when the test ends.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := DatabaseURL()
	if dsn == "" {
		if IsCI() {
			t.Fatalf("%s must be set in CI", EnvTestDatabaseURL)
		}
		t.Skipf("%s not set, skipping database test", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err, "failed to open %s", redact.DSN(dsn))
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to reach %s", redact.DSN(dsn))

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(context.Background(), db, postgres.MigrateUp, nil)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// CleanupUser removes a user committed outside WithTx. Tasks go with it via
// ON DELETE CASCADE.
func CleanupUser(t *testing.T, db *sql.DB, username string) {
	t.Helper()
	t.Cleanup(func() {
		_, err := db.Exec("DELETE FROM users WHERE username = $1", username)
		if err != nil {
			t.Logf("failed to clean up user %q: %v", username, err)
		}
	})
}
