// Package shared holds the request and response helpers used by both the
// API handlers and the middleware.
package shared
