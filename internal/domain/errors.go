package domain

import "errors"

// Error kinds surfaced to external collaborators. Validation and
// state-conflict are reported to the caller; non-terminal-state transient
// I/O is absorbed and retried by the storage layer; a terminal-state
// persist failure is surfaced as ErrTransient; fatal invariant violations
// are not handled as errors: the lane recovers the panic and rebuilds its
// book from storage (see internal/lane).
var (
	ErrValidation    = errors.New("validation")
	ErrNotFound      = errors.New("not_found")
	ErrStateConflict = errors.New("state_conflict")
	ErrTransient     = errors.New("transient")
)
