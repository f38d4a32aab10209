// Package mocks provides shared test doubles for the stores, services and
// infrastructure interfaces.
//
// Two styles are available. Function-field mocks (MockTaskStore,
// MockUserStore, MockJWTService, MockPasswordHasher, MockCache) fall back to
// simple in-memory behavior when a field is left nil, so most tests only
// override the call they care about:
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.FindFn = func(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
//	    return nil, store.ErrTaskNotFound
//	}
//
// The Testify* mocks embed testify's mock.Mock for tests that assert on
// exact call arguments.
package mocks
