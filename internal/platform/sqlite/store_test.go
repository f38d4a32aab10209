package sqlite_test

import (
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/platform/sqlite"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sqlite.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func createUser(t *testing.T, users *sqlite.UserStore, username string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(username, "secret1")
	require.NoError(t, err)
	user.HashedPassword = "hash-" + username
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func createTask(t *testing.T, tasks *sqlite.TaskStore, owner uuid.UUID, title string, done bool) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(owner, domain.TaskDraft{Title: title, Done: done})
	require.NoError(t, err)
	require.NoError(t, tasks.Insert(context.Background(), task))
	return task
}

func TestUserStore(t *testing.T) {
	db := setupTestDB(t)
	users := sqlite.NewUserStore(db, nil)
	ctx := context.Background()

	alice := createUser(t, users, "alice")

	byName, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)
	assert.Equal(t, "hash-alice", byName.HashedPassword)
	assert.Equal(t, domain.RoleUser, byName.Role)

	byID, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = users.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	dup, err := domain.NewUser("alice", "other")
	require.NoError(t, err)
	dup.HashedPassword = "x"
	err = users.Create(ctx, dup)
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	noHash, err := domain.NewUser("carol", "pw")
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(ctx, noHash), store.ErrInvalidEntity)
}

func TestTaskStore_InsertAndFind(t *testing.T) {
	db := setupTestDB(t)
	users := sqlite.NewUserStore(db, nil)
	tasks := sqlite.NewTaskStore(db, nil)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	desc := "two litres"
	task, err := domain.NewTask(alice.ID, domain.TaskDraft{Title: "Buy milk", Description: &desc})
	require.NoError(t, err)
	require.NoError(t, tasks.Insert(ctx, task))
	assert.Positive(t, task.ID)

	second := createTask(t, tasks, alice.ID, "Walk dog", false)
	assert.Greater(t, second.ID, task.ID, "ids increase monotonically")

	found, err := tasks.Find(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", found.Title)
	require.NotNil(t, found.Description)
	assert.Equal(t, "two litres", *found.Description)
	assert.WithinDuration(t, task.CreatedAt, found.CreatedAt, time.Second)

	_, err = tasks.Find(ctx, bob.ID, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound, "foreign task looks missing")

	_, err = tasks.Find(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStore_List(t *testing.T) {
	db := setupTestDB(t)
	users := sqlite.NewUserStore(db, nil)
	tasks := sqlite.NewTaskStore(db, nil)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	for i := 0; i < 7; i++ {
		createTask(t, tasks, alice.ID, "task", i%2 == 0)
	}
	createTask(t, tasks, bob.ID, "bob's", false)

	done := true
	notDone := false

	tests := []struct {
		name      string
		query     domain.TaskQuery
		wantLen   int
		wantTotal int64
	}{
		{name: "first page", query: domain.TaskQuery{Page: 1, PerPage: 5}, wantLen: 5, wantTotal: 7},
		{name: "second page", query: domain.TaskQuery{Page: 2, PerPage: 5}, wantLen: 2, wantTotal: 7},
		{name: "past the end", query: domain.TaskQuery{Page: 3, PerPage: 5}, wantLen: 0, wantTotal: 7},
		{name: "offset overflows int", query: domain.TaskQuery{Page: math.MaxInt, PerPage: 100}, wantLen: 0, wantTotal: 7},
		{name: "offset wraps to zero", query: domain.TaskQuery{Page: 288230376151711745, PerPage: 64}, wantLen: 0, wantTotal: 7},
		{name: "done only", query: domain.TaskQuery{Page: 1, PerPage: 10, Done: &done}, wantLen: 4, wantTotal: 4},
		{name: "open only", query: domain.TaskQuery{Page: 1, PerPage: 10, Done: &notDone}, wantLen: 3, wantTotal: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := tasks.List(ctx, alice.ID, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Len(t, items, tt.wantLen)
			assert.NotNil(t, items)
			for i := 1; i < len(items); i++ {
				assert.Less(t, items[i-1].ID, items[i].ID, "ascending id order")
			}
			for _, item := range items {
				assert.Equal(t, alice.ID, item.UserID)
				if tt.query.Done != nil {
					assert.Equal(t, *tt.query.Done, item.Done)
				}
			}
		})
	}
}

func TestTaskStore_Update(t *testing.T) {
	db := setupTestDB(t)
	users := sqlite.NewUserStore(db, nil)
	tasks := sqlite.NewTaskStore(db, nil)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	desc := "details"
	task, err := domain.NewTask(alice.ID, domain.TaskDraft{Title: "Original", Description: &desc})
	require.NoError(t, err)
	require.NoError(t, tasks.Insert(ctx, task))

	updated, err := tasks.Update(ctx, task, domain.TaskPatch{Done: domain.Some(true)})
	require.NoError(t, err)
	assert.True(t, updated.Done)
	assert.Equal(t, "Original", updated.Title)
	require.NotNil(t, updated.Description)

	cleared, err := tasks.Update(ctx, task, domain.TaskPatch{Description: domain.Some[*string](nil)})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.True(t, cleared.Done, "absent fields are preserved")

	reloaded, err := tasks.Find(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Description)
	assert.True(t, reloaded.Done)

	_, err = tasks.Update(ctx, task, domain.TaskPatch{Title: domain.Some("")})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	foreign := *task
	foreign.UserID = bob.ID
	_, err = tasks.Update(ctx, &foreign, domain.TaskPatch{Done: domain.Some(false)})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStore_Delete(t *testing.T) {
	db := setupTestDB(t)
	users := sqlite.NewUserStore(db, nil)
	tasks := sqlite.NewTaskStore(db, nil)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	task := createTask(t, tasks, alice.ID, "Remove me", false)

	require.NoError(t, tasks.Delete(ctx, task))
	assert.ErrorIs(t, tasks.Delete(ctx, task), store.ErrTaskNotFound)

	_, err := tasks.Find(ctx, alice.ID, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestOpen_DebugLoggingOmitsBoundValues(t *testing.T) {
	tests := []struct {
		name       string
		wantTraces bool
	}{
		{name: "debug logger traces parameterized sql", wantTraces: true},
		{name: "info logger stays quiet", wantTraces: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := logger.GetTestLogger(t)
			if !tt.wantTraces {
				log = slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			}

			db, err := sqlite.Open(":memory:", log)
			require.NoError(t, err)
			t.Cleanup(func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			})

			hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
			require.NoError(t, err)
			user, err := domain.NewUser("alice", "secret1")
			require.NoError(t, err)
			user.HashedPassword = string(hash)

			users := sqlite.NewUserStore(db, nil)
			require.NoError(t, users.Create(context.Background(), user))
			_, err = users.GetByUsername(context.Background(), "alice")
			require.NoError(t, err)

			logs := buf.String()
			assert.NotContains(t, logs, string(hash))
			assert.NotContains(t, logs, "$2a$")
			assert.NotContains(t, logs, "alice")
			if tt.wantTraces {
				assert.Contains(t, logs, "INSERT INTO")
			} else {
				assert.Empty(t, logs)
			}
		})
	}
}
