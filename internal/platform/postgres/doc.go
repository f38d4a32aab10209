// Package postgres provides PostgreSQL-specific implementations of the
// storage interfaces defined in the internal/store package, together with
// the embedded goose migrations that create the schema. Queries go through
// database/sql with the pgx stdlib driver; driver errors are translated into
// store sentinels by MapError.
package postgres
