// Package sqlite provides GORM-backed implementations of the store
// interfaces for single-node deployments and tests. The schema is created
// with GORM's AutoMigrate rather than the goose migrations used for
// PostgreSQL.
package sqlite
