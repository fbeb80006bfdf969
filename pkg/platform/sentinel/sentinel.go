package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into domain errors with reasons.
//
//   - ErrNotFound: no row for the key
//   - ErrAlreadyUsed: a uniqueness constraint rejected the write (one application per user)
//   - ErrConflict: a concurrent writer changed the row first
//   - ErrUnavailable: backing service (cache, broker) unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
