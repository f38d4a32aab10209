package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore using PostgreSQL.
type PostgresTaskStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
// Updates run in their own transactions, so a full *sql.DB is required.
func NewPostgresTaskStore(db *sql.DB, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

const taskColumns = `id, user_id, title, description, done, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Done,
		&task.CreatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		d := description.String
		task.Description = &d
	}
	task.CreatedAt = task.CreatedAt.UTC()

	return &task, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Insert implements store.TaskStore.Insert
func (s *PostgresTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (user_id, title, description, done, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		task.UserID,
		task.Title,
		nullableString(task.Description),
		task.Done,
		task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		log.Error("failed to insert task",
			slog.String("error", err.Error()),
			slog.String("user_id", task.UserID.String()))
		return store.NewStoreError("task", "insert", "failed to insert task", MapError(err))
	}

	log.Debug("task inserted",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// Find implements store.TaskStore.Find
func (s *PostgresTaskStore) Find(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to find task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "find", "failed to query task", MapError(err))
	}

	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(
	ctx context.Context,
	owner uuid.UUID,
	q domain.TaskQuery,
) ([]*domain.Task, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := ` WHERE user_id = $1`
	args := []any{owner}
	if q.Done != nil {
		where += ` AND done = $2`
		args = append(args, *q.Done)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("task", "list", "failed to count tasks", MapError(err))
	}
	if q.Beyond(total) {
		return []*domain.Task{}, total, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		taskColumns, where, len(args)+1, len(args)+2)
	args = append(args, q.PerPage, q.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("task", "list", "failed to query tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0, q.PerPage)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, store.NewStoreError("task", "list", "failed to scan task row", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, store.NewStoreError("task", "list", "error iterating task rows", err)
	}

	return tasks, total, nil
}

// Update implements store.TaskStore.Update
// The row is re-read under a row lock so the patch applies to the latest
// committed state.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	task *domain.Task,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		lockQuery := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`
		current, err := scanTask(tx.QueryRowContext(ctx, lockQuery, task.ID, task.UserID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrTaskNotFound
			}
			return store.NewStoreError("task", "update", "failed to lock task", MapError(err))
		}

		current.ApplyPatch(patch)
		if err := current.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET title = $1, description = $2, done = $3
			WHERE id = $4 AND user_id = $5
		`,
			current.Title,
			nullableString(current.Description),
			current.Done,
			current.ID,
			current.UserID,
		)
		if err != nil {
			return store.NewStoreError("task", "update", "failed to update task", MapError(err))
		}
		if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to update task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", task.ID))
		}
		return nil, err
	}

	return updated, nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		task.ID, task.UserID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}
