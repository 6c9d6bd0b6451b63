// Package store defines the persistence interfaces consumed by the
// dispatcher and the API layer, along with the sentinel errors shared by all
// implementations. Concrete stores live in internal/platform/postgres.
package store
