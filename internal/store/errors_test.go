package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrTaskNotFound", err: ErrTaskNotFound, expected: true},
		{name: "ErrUserNotFound", err: ErrUserNotFound, expected: true},
		{
			name:     "wrapped ErrTaskNotFound",
			err:      fmt.Errorf("failed to find task: %w", ErrTaskNotFound),
			expected: true,
		},
		{name: "duplicate is not not-found", err: ErrUsernameExists, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "ErrUsernameExists", err: ErrUsernameExists, expected: true},
		{
			name:     "store error wrapping duplicate",
			err:      NewStoreError("user", "create", "insert failed", ErrUsernameExists),
			expected: true,
		},
		{name: "not found", err: ErrTaskNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDuplicateError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk full")

	withCause := NewStoreError("task", "insert", "failed to insert task", cause)
	assert.Equal(t, "insert operation on task failed: failed to insert task: disk full", withCause.Error())
	assert.ErrorIs(t, withCause, cause)

	withoutCause := NewStoreError("task", "list", "bad page", nil)
	assert.Equal(t, "list operation on task failed: bad page", withoutCause.Error())
	assert.Nil(t, withoutCause.Unwrap())
}
