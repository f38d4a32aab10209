package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func newHashedUser(t *testing.T, username string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(username, "secret1")
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	return user
}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, nil)
		user := newHashedUser(t, "alice")

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID, "alice", user.HashedPassword, domain.RoleUser, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, nil)
		user := newHashedUser(t, "alice")

		mock.ExpectExec(`INSERT INTO users`).WillReturnError(newPgError("23505"))

		err := s.Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrUsernameExists)
		assert.True(t, store.IsDuplicateError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing hash is rejected before querying", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, nil)
		user := newHashedUser(t, "alice")
		user.HashedPassword = ""

		err := s.Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver failure", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, nil)

		mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("connection reset"))

		err := s.Create(context.Background(), newHashedUser(t, "alice"))
		var storeErr *store.StoreError
		assert.ErrorAs(t, err, &storeErr)
		assert.False(t, store.IsDuplicateError(err))
	})
}

func TestPostgresUserStore_Get(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	columns := []string{"id", "username", "hashed_password", "role", "created_at"}

	t.Run("by username", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, nil)

		mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id.String(), "alice", "hash", domain.RoleAdmin, created))

		user, err := s.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "hash", user.HashedPassword)
		assert.True(t, user.IsAdmin())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by id not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, nil)

		mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := s.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
