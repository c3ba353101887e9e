package clinical

import (
	"errors"
)

// Error taxonomy for the visibility & collaboration engine. Handlers map
// these onto HTTP statuses; everything else wraps with %w and checks with
// errors.Is.
var (
	// ErrNotFound: the target entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrRoleMismatch: the operation was attempted by (or against) a role
	// that cannot take part in it, e.g. a professional connecting to
	// another professional.
	ErrRoleMismatch = errors.New("role mismatch")

	// ErrAlreadyConnected: the consent edge already exists. An idempotency
	// guard, not something the caller should blindly retry.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrAlreadyExists: duplicate thread or other uniqueness clash.
	ErrAlreadyExists = errors.New("already exists")

	// ErrSpecialtyIsolation: an attempt to read across specialty
	// boundaries. Security-relevant; audited even when the operation fails.
	ErrSpecialtyIsolation = errors.New("specialty isolation violation")

	// ErrConflict: concurrent mutation detected by a uniqueness constraint
	// or an invalid state transition.
	ErrConflict = errors.New("conflict")
)
