// Package testdb provides helpers for PostgreSQL integration tests.
//
// Tests that need a real database call GetTestDB, which skips the test unless
// TASKS_TEST_DATABASE_URL (or DATABASE_URL) is set and fails it instead when
// running in CI. The schema is migrated once per process with the same
// embedded goose migrations the server uses.
//
// Typical usage:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.GetTestDB(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			users := postgres.NewPostgresUserStore(tx, nil)
//			...
//		})
//	}
package testdb
