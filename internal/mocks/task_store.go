package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
// Without function fields set it behaves like a small in-memory store.
type MockTaskStore struct {
	// Custom behavior functions
	InsertFn func(ctx context.Context, task *domain.Task) error
	FindFn   func(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error)
	ListFn   func(ctx context.Context, owner uuid.UUID, q domain.TaskQuery) ([]*domain.Task, int64, error)
	UpdateFn func(ctx context.Context, task *domain.Task, patch domain.TaskPatch) (*domain.Task, error)
	DeleteFn func(ctx context.Context, task *domain.Task) error

	mu     sync.Mutex
	tasks  map[int64]*domain.Task
	nextID int64

	// Call tracking for verification
	InsertCalls int
	ListCalls   int
	UpdateCalls int
	DeleteCalls int
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty in-memory mock store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[int64]*domain.Task)}
}

func (m *MockTaskStore) init() {
	if m.tasks == nil {
		m.tasks = make(map[int64]*domain.Task)
	}
}

// Insert implements store.TaskStore.Insert
func (m *MockTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	m.InsertCalls++
	m.mu.Unlock()

	if m.InsertFn != nil {
		return m.InsertFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()

	m.nextID++
	task.ID = m.nextID
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

// Find implements store.TaskStore.Find
func (m *MockTaskStore) Find(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, owner, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok || task.UserID != owner {
		return nil, store.ErrTaskNotFound
	}
	found := *task
	return &found, nil
}

// List implements store.TaskStore.List
func (m *MockTaskStore) List(
	ctx context.Context,
	owner uuid.UUID,
	q domain.TaskQuery,
) ([]*domain.Task, int64, error) {
	m.mu.Lock()
	m.ListCalls++
	m.mu.Unlock()

	if m.ListFn != nil {
		return m.ListFn(ctx, owner, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	matching := make([]*domain.Task, 0)
	for _, task := range m.tasks {
		if task.UserID != owner {
			continue
		}
		if q.Done != nil && task.Done != *q.Done {
			continue
		}
		copied := *task
		matching = append(matching, &copied)
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })

	total := int64(len(matching))
	if q.Beyond(total) {
		return []*domain.Task{}, total, nil
	}
	start := q.Offset()
	end := start + q.PerPage
	if end > len(matching) {
		end = len(matching)
	}
	return matching[start:end], total, nil
}

// Update implements store.TaskStore.Update
func (m *MockTaskStore) Update(
	ctx context.Context,
	task *domain.Task,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task, patch)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tasks[task.ID]
	if !ok || current.UserID != task.UserID {
		return nil, store.ErrTaskNotFound
	}
	updated := *current
	updated.ApplyPatch(patch)
	if err := updated.Validate(); err != nil {
		return nil, store.ErrInvalidEntity
	}
	m.tasks[task.ID] = &updated
	result := updated
	return &result, nil
}

// Delete implements store.TaskStore.Delete
func (m *MockTaskStore) Delete(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	m.DeleteCalls++
	m.mu.Unlock()

	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tasks[task.ID]
	if !ok || current.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, task.ID)
	return nil
}
