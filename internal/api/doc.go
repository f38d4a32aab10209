// Package api contains the HTTP handlers. Handlers read the caller's identity
// from the request context, hand it explicitly to the services and map
// service errors to JSON responses; they never expose raw errors.
package api
