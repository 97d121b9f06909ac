package repositories

import "errors"

// Error kinds produced by every repository implementation. Callers match
// with errors.Is rather than inspecting message text.
var (
	// ErrNotFound means no record exists for the given id.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey means a unique constraint (email, federated id)
	// rejected the write. Under concurrent creates the constraint is the
	// serialization point: exactly one writer wins, the rest get this.
	ErrDuplicateKey = errors.New("duplicate key")
)
