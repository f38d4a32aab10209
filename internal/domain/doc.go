// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, their tasks, partial task updates
// and paginated task listings. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
