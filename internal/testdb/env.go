package testdb

import "os"

// Environment variables consulted for the test database URL, in order.
const (
	EnvTestDatabaseURL = "TASKS_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// ciVars are set by common CI providers.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// DatabaseURL returns the first non-empty test database URL.
func DatabaseURL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no database is configured.
func ShouldSkipDatabaseTest() bool {
	return DatabaseURL() == ""
}

// IsCI reports whether the process runs under a CI provider.
func IsCI() bool {
	for _, name := range ciVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
