package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
	"gorm.io/gorm"
)

// TaskStore implements store.TaskStore on top of GORM.
type TaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTaskStore creates a GORM-backed task store.
func NewTaskStore(db *gorm.DB, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Insert implements store.TaskStore.Insert
func (s *TaskStore) Insert(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	m := newTaskModel(task)
	m.ID = 0
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert task",
			slog.String("error", err.Error()),
			slog.String("user_id", task.UserID.String()))
		return store.NewStoreError("task", "insert", "failed to insert task", MapError(err))
	}

	task.ID = m.ID
	return nil
}

// Find implements store.TaskStore.Find
func (s *TaskStore) Find(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	return findTask(s.db.WithContext(ctx), owner, id)
}

func findTask(db *gorm.DB, owner uuid.UUID, id int64) (*domain.Task, error) {
	var m taskModel
	err := db.Where("id = ? AND user_id = ?", id, owner.String()).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "find", "failed to query task", MapError(err))
	}
	return m.toDomain()
}

func (s *TaskStore) scoped(ctx context.Context, owner uuid.UUID, q domain.TaskQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&taskModel{}).Where("user_id = ?", owner.String())
	if q.Done != nil {
		tx = tx.Where("done = ?", *q.Done)
	}
	return tx
}

// List implements store.TaskStore.List
func (s *TaskStore) List(
	ctx context.Context,
	owner uuid.UUID,
	q domain.TaskQuery,
) ([]*domain.Task, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int64
	if err := s.scoped(ctx, owner, q).Count(&total).Error; err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("task", "list", "failed to count tasks", MapError(err))
	}
	if q.Beyond(total) {
		return []*domain.Task{}, total, nil
	}

	var models []taskModel
	err := s.scoped(ctx, owner, q).
		Order("id ASC").
		Limit(q.PerPage).
		Offset(q.Offset()).
		Find(&models).Error
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("task", "list", "failed to query tasks", MapError(err))
	}

	tasks := make([]*domain.Task, 0, len(models))
	for i := range models {
		task, err := models[i].toDomain()
		if err != nil {
			return nil, 0, store.NewStoreError("task", "list", "failed to decode task row", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, total, nil
}

// Update implements store.TaskStore.Update
// SQLite serializes writers, so the transaction alone gives the same
// read-modify-write guarantee as a row lock.
func (s *TaskStore) Update(
	ctx context.Context,
	task *domain.Task,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	var updated *domain.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findTask(tx, task.UserID, task.ID)
		if err != nil {
			return err
		}

		current.ApplyPatch(patch)
		if err := current.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		result := tx.Model(&taskModel{}).
			Where("id = ? AND user_id = ?", current.ID, current.UserID.String()).
			Updates(map[string]any{
				"title":       current.Title,
				"description": current.Description,
				"done":        current.Done,
			})
		if result.Error != nil {
			return store.NewStoreError("task", "update", "failed to update task", MapError(result.Error))
		}
		if result.RowsAffected == 0 {
			return store.ErrTaskNotFound
		}

		updated = current
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", task.ID))
		}
		return nil, err
	}

	return updated, nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, task *domain.Task) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", task.ID, task.UserID.String()).
		Delete(&taskModel{})
	if result.Error != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("error", result.Error.Error()),
			slog.Int64("task_id", task.ID))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(result.Error))
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}
