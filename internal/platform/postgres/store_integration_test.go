//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/phrazzld/tasks-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_UserStore(t *testing.T) {
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)

		user := newHashedUser(t, "itest-"+uuid.NewString()[:8])
		require.NoError(t, users.Create(ctx, user))

		found, err := users.GetByUsername(ctx, user.Username)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, domain.RoleUser, found.Role)

		err = users.Create(ctx, newHashedUser(t, user.Username))
		assert.ErrorIs(t, err, store.ErrUsernameExists)
	})
}

func TestIntegration_TaskStore(t *testing.T) {
	db := testdb.GetTestDB(t)
	ctx := context.Background()

	users := postgres.NewPostgresUserStore(db, nil)
	tasks := postgres.NewPostgresTaskStore(db, nil)

	newOwner := func(t *testing.T) uuid.UUID {
		user := newHashedUser(t, "itest-"+uuid.NewString()[:8])
		testdb.CleanupUser(t, db, user.Username)
		require.NoError(t, users.Create(ctx, user))
		return user.ID
	}

	alice := newOwner(t)
	bob := newOwner(t)

	for i := 1; i <= 7; i++ {
		task, err := domain.NewTask(alice, domain.TaskDraft{Title: fmt.Sprintf("task %d", i), Done: i%2 == 0})
		require.NoError(t, err)
		require.NoError(t, tasks.Insert(ctx, task))
		require.NotZero(t, task.ID)
	}

	page, total, err := tasks.List(ctx, alice, domain.TaskQuery{Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, page, 2)
	assert.Equal(t, "task 6", page[0].Title)

	done := true
	_, doneTotal, err := tasks.List(ctx, alice, domain.TaskQuery{Page: 1, PerPage: 5, Done: &done})
	require.NoError(t, err)
	assert.Equal(t, int64(3), doneTotal)

	_, bobTotal, err := tasks.List(ctx, bob, domain.TaskQuery{Page: 1, PerPage: 5})
	require.NoError(t, err)
	assert.Zero(t, bobTotal)

	first, err := tasks.Find(ctx, alice, page[0].ID)
	require.NoError(t, err)

	_, err = tasks.Find(ctx, bob, first.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	updated, err := tasks.Update(ctx, first, domain.TaskPatch{
		Title:       domain.Some("renamed"),
		Description: domain.Some[*string](nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Nil(t, updated.Description)

	require.NoError(t, tasks.Delete(ctx, updated))
	_, err = tasks.Find(ctx, alice, updated.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}
