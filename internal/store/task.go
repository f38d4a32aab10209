package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// TaskStore defines durable storage of tasks. Every read and write is scoped
// to an owner; a task owned by someone else behaves exactly like a missing one.
type TaskStore interface {
	// Insert persists a new task and assigns its ID.
	Insert(ctx context.Context, task *domain.Task) error

	// Find returns the task with the given ID if it belongs to owner.
	// Returns ErrTaskNotFound otherwise.
	Find(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error)

	// List returns one page of owner's tasks ordered by ascending ID, plus the
	// total number of tasks matching the filter. A page past the end yields no
	// items and the correct total.
	List(ctx context.Context, owner uuid.UUID, query domain.TaskQuery) ([]*domain.Task, int64, error)

	// Update applies the fields present in patch to the stored task inside a
	// single transaction and returns the result.
	// Returns ErrTaskNotFound if the task disappeared or changed owner.
	Update(ctx context.Context, task *domain.Task, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes the task. Returns ErrTaskNotFound if no row was removed.
	Delete(ctx context.Context, task *domain.Task) error
}
