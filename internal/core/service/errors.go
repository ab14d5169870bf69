package service

import "errors"

// Sentinels shared by the services in this package. Operation-specific
// ones live next to their service.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
