// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic; implementations live under
// internal/platform (PostgreSQL and SQLite).
package store
