package models

import (
	"errors"
)

// -----------------------------------------------------------------------------

var (
	// ErrInvalidParameters is returned when the caller supplies wrong sized keys or IVs, malformed
	// keys or ciphertext that is not block aligned.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInvalidOperation is returned on encoding or serialization mismatches and when the
	// algorithm and key combination cannot perform the requested operation.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrServiceError is returned when the underlying primitive fails or produces output that
	// violates its post-conditions.
	ErrServiceError = errors.New("service error")
)
