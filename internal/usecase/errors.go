package usecase

import "errors"

// Sentinel errors the HTTP layer maps onto status codes. Services wrap them
// with context; handlers match with errors.Is.
var (
	// ErrInvalidInput covers malformed requests and reports that fail
	// validation before they reach the ledger.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound covers lookups that name something the ledger does not
	// have, other than matches, which carry their own sentinel.
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDependencyUnavailable signals an open circuit or a disabled
	// external client.
	ErrDependencyUnavailable = errors.New("upstream unavailable")
)
