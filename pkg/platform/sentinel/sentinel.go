package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches, and clients return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store or cache
// - ErrUnavailable: upstream service failed, timed out, or answered with
//   something we could not parse
// - ErrConflict: operation collides with one already in progress
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
