package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/cache"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// TestifyMockTaskService is a testify/mock implementation of service.TaskService.
type TestifyMockTaskService struct {
	mock.Mock
}

func (m *TestifyMockTaskService) List(
	ctx context.Context,
	owner uuid.UUID,
	query domain.TaskQuery,
) (*domain.TaskPage, error) {
	args := m.Called(ctx, owner, query)
	if page, ok := args.Get(0).(*domain.TaskPage); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockTaskService) Create(ctx context.Context, owner uuid.UUID, body []byte) (*domain.Task, error) {
	args := m.Called(ctx, owner, body)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockTaskService) Get(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	args := m.Called(ctx, owner, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockTaskService) Update(
	ctx context.Context,
	owner uuid.UUID,
	id int64,
	body []byte,
) (*domain.Task, error) {
	args := m.Called(ctx, owner, id, body)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockTaskService) Delete(ctx context.Context, owner uuid.UUID, id int64) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *TestifyMockTaskService) CacheStats() cache.StatsSnapshot {
	args := m.Called()
	if stats, ok := args.Get(0).(cache.StatsSnapshot); ok {
		return stats
	}
	return cache.StatsSnapshot{}
}
