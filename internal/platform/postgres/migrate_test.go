package postgres_test

import (
	"context"
	"io/fs"
	"testing"

	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(postgres.Migrations, postgres.MigrationsDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"00001_create_users.sql", "00002_create_tasks.sql"}, names)

	for _, name := range names {
		body, err := fs.ReadFile(postgres.Migrations, postgres.MigrationsDir+"/"+name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up")
		assert.Contains(t, string(body), "-- +goose Down")
	}
}

func TestMigrate_UnknownCommand(t *testing.T) {
	db, mock := newMockDB(t)

	err := postgres.Migrate(context.Background(), db, "sideways", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
	assert.NoError(t, mock.ExpectationsWereMet())
}
