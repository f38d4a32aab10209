package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/cache"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
	"golang.org/x/sync/singleflight"
)

// TaskPayloadValidator turns raw request bodies into validated task input.
type TaskPayloadValidator interface {
	ValidateCreate(body []byte) (domain.TaskDraft, error)
	ValidateUpdate(body []byte) (domain.TaskPatch, error)
}

// TaskService provides owner-scoped task operations. The owner is always the
// verified caller and is never taken from a payload.
type TaskService interface {
	// List returns one page of the owner's tasks, served from the cache when possible.
	List(ctx context.Context, owner uuid.UUID, query domain.TaskQuery) (*domain.TaskPage, error)

	// Create validates body and stores a new task for owner.
	Create(ctx context.Context, owner uuid.UUID, body []byte) (*domain.Task, error)

	// Get returns one of the owner's tasks.
	Get(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error)

	// Update applies a partial update. An empty patch changes nothing.
	Update(ctx context.Context, owner uuid.UUID, id int64, body []byte) (*domain.Task, error)

	// Delete removes one of the owner's tasks.
	Delete(ctx context.Context, owner uuid.UUID, id int64) error

	// CacheStats reports listing cache counters.
	CacheStats() cache.StatsSnapshot
}

type taskServiceImpl struct {
	tasks     store.TaskStore
	validator TaskPayloadValidator
	cache     cache.Cache
	group     singleflight.Group
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	validator TaskPayloadValidator,
	listingCache cache.Cache,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if validator == nil {
		return nil, domain.NewValidationError("validator", "cannot be nil", domain.ErrValidation)
	}
	if listingCache == nil {
		listingCache = cache.NewNoopCache()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:     tasks,
		validator: validator,
		cache:     listingCache,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// List implements TaskService.List
//
// The cache generation is read before the store query, so a page computed
// concurrently with a mutation lands under a key that is already stale.
func (s *taskServiceImpl) List(
	ctx context.Context,
	owner uuid.UUID,
	query domain.TaskQuery,
) (*domain.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", owner.String()),
		slog.Int("page", query.Page),
		slog.Int("per_page", query.PerPage),
	)

	if err := query.Validate(); err != nil {
		log.Warn("rejected task listing query", slog.String("error", err.Error()))
		return nil, err
	}

	version, err := s.cache.Version(ctx)
	if err != nil {
		log.Warn("listing cache unavailable, reading from store",
			slog.String("error", err.Error()))
		return s.loadPage(ctx, owner, query)
	}

	key := cache.ListingKey(version, owner, query.Page, query.PerPage, query.Done)

	var cached domain.TaskPage
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("listing cache read failed", slog.String("error", err.Error()))
	}
	if hit {
		log.Debug("listing served from cache")
		return &cached, nil
	}

	// The load is shared with concurrent callers for the same key, so it must
	// outlive any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	results := s.group.DoChan(key, func() (interface{}, error) {
		page, err := s.loadPage(loadCtx, owner, query)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(loadCtx, key, page); err != nil {
			log.Warn("listing cache write failed", slog.String("error", err.Error()))
		}
		return page, nil
	})

	var res singleflight.Result
	select {
	case res = <-results:
	case <-ctx.Done():
		log.Debug("listing abandoned by caller", slog.String("error", ctx.Err().Error()))
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	page := res.Val.(*domain.TaskPage)
	log.Info("listed tasks",
		slog.Int64("total", page.Total),
		slog.Int("count", len(page.Tasks)),
		slog.Bool("shared", res.Shared))
	return page, nil
}

func (s *taskServiceImpl) loadPage(
	ctx context.Context,
	owner uuid.UUID,
	query domain.TaskQuery,
) (*domain.TaskPage, error) {
	items, total, err := s.tasks.List(ctx, owner, query)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", owner.String()))
		return nil, NewTaskServiceError("list", "failed to load tasks", err)
	}
	return domain.NewTaskPage(items, total, query), nil
}

// Create implements TaskService.Create
func (s *taskServiceImpl) Create(ctx context.Context, owner uuid.UUID, body []byte) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", owner.String()))

	draft, err := s.validator.ValidateCreate(body)
	if err != nil {
		log.Warn("rejected task payload", slog.String("error", err.Error()))
		return nil, err
	}

	task, err := domain.NewTask(owner, draft)
	switch {
	case errors.Is(err, domain.ErrEmptyTitle), errors.Is(err, domain.ErrTitleTooLong):
		log.Warn("rejected task", slog.String("error", err.Error()))
		return nil, domain.NewValidationError("title", err.Error(), err)
	case err != nil:
		log.Error("failed to build task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create", "invalid task", err)
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create", "failed to save task", err)
	}

	s.invalidate(ctx, log, "create")

	log.Info("task created", slog.Int64("task_id", task.ID))
	return task, nil
}

// Get implements TaskService.Get
func (s *taskServiceImpl) Get(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	task, err := s.find(ctx, "get", owner, id)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update implements TaskService.Update
//
// Ownership is checked before the payload, so a request for a foreign task
// is always 404 even when the payload is also invalid.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	owner uuid.UUID,
	id int64,
	body []byte,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", owner.String()),
		slog.Int64("task_id", id),
	)

	current, err := s.find(ctx, "update", owner, id)
	if err != nil {
		return nil, err
	}

	patch, err := s.validator.ValidateUpdate(body)
	if err != nil {
		log.Warn("rejected task update payload", slog.String("error", err.Error()))
		return nil, err
	}

	if patch.IsEmpty() {
		log.Debug("empty task update, nothing to do")
		return current, nil
	}

	updated, err := s.tasks.Update(ctx, current, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTaskNotFound):
			log.Warn("task vanished during update")
			return nil, err
		case errors.Is(err, store.ErrInvalidEntity):
			log.Warn("task update violates invariants", slog.String("error", err.Error()))
			return nil, domain.NewValidationError("title", domain.ErrEmptyTitle.Error(), err)
		}
		log.Error("failed to update task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("update", "failed to save task", err)
	}

	s.invalidate(ctx, log, "update")

	log.Info("task updated", slog.Any("fields", patch.Fields()))
	return updated, nil
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, owner uuid.UUID, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", owner.String()),
		slog.Int64("task_id", id),
	)

	task, err := s.find(ctx, "delete", owner, id)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Warn("task vanished before delete")
			return err
		}
		log.Error("failed to delete task", slog.String("error", err.Error()))
		return NewTaskServiceError("delete", "failed to delete task", err)
	}

	s.invalidate(ctx, log, "delete")

	log.Info("task deleted")
	return nil
}

// CacheStats implements TaskService.CacheStats
func (s *taskServiceImpl) CacheStats() cache.StatsSnapshot {
	return s.cache.Stats()
}

func (s *taskServiceImpl) find(ctx context.Context, op string, owner uuid.UUID, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.Find(ctx, owner, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Warn("task not found",
				slog.String("operation", op),
				slog.String("user_id", owner.String()),
				slog.Int64("task_id", id))
			return nil, err
		}
		log.Error("failed to load task",
			slog.String("operation", op),
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, NewTaskServiceError(op, fmt.Sprintf("failed to load task %d", id), err)
	}
	return task, nil
}

// invalidate runs after a committed mutation. Failure is logged, never returned.
func (s *taskServiceImpl) invalidate(ctx context.Context, log *slog.Logger, op string) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Error("failed to invalidate listing cache",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
}
