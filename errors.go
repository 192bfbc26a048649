package cryptoservice

import (
	"github.com/mxmauro/cryptoservice/models"
)

// -----------------------------------------------------------------------------

var (
	// ErrInvalidParameters is returned on caller misuse: wrong key or IV sizes, malformed keys,
	// ciphertext that is not block aligned or an unknown engine. Never retry.
	ErrInvalidParameters = models.ErrInvalidParameters

	// ErrInvalidOperation is returned when the ciphertext is not valid base64, when the value
	// cannot be serialized or deserialized, or when the key cannot perform the operation.
	ErrInvalidOperation = models.ErrInvalidOperation

	// ErrServiceError is returned when the underlying primitive fails or produces output that
	// violates its post-conditions. It usually means corrupted input or a library fault.
	ErrServiceError = models.ErrServiceError
)
