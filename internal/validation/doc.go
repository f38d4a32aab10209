// Package validation turns raw task payloads into domain drafts and patches.
// Every problem in a payload is collected and reported together as a
// *domain.ValidationError keyed by field name.
package validation
