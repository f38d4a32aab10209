// Package middleware contains the HTTP middleware shared by all routes:
// request tracing, bearer authentication, role checks and rate limiting.
package middleware
