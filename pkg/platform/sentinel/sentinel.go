package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: primary key or offer batch collision
// - ErrAlreadyUsed: unique identity claim lost (tax id, contract number)
// - ErrUnavailable: backing service (redis) unreachable
//
// For validation errors (bad input, broken invariants, lifecycle
// transitions), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
