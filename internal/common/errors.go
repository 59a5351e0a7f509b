// Package common defines shared sentinel errors used across the minichat
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors. Wrapped by the validate package with the name of the
	// offending parameter; raised before any store access.
	ErrorValidation = errors.New("validation error")

	// Repository-level errors.
	ErrorAlreadyExists = errors.New("already exists")

	// Auth errors (invalid or malformed session token).
	ErrorInvalidToken = errors.New("invalid token")
)
