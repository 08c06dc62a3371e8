// Package common defines shared constants and sentinel errors used across
// the credsec layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorQuery    = errors.New("query error")

	// Codec errors (integrity failure or malformed ciphertext).
	ErrorAuthentication = errors.New("authentication error")

	// Input and setup errors.
	ErrorValidation    = errors.New("validation error")
	ErrorConfiguration = errors.New("configuration error")

	// Access control errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Breach-intel API errors (after retries are exhausted).
	ErrorExternalService = errors.New("external service error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
