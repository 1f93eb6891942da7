package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when the request clashes with current state (e.g. a running pipeline)
	ErrConflict = errors.New("resource conflict")

	// ErrClassifierUnavailable is returned when the external scorer cannot be reached or answers badly
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrInvalidCredentials is returned when a staff login does not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownSourceKind is returned for uploads that are not catalog, roster or sales
	ErrUnknownSourceKind = errors.New("unknown source kind")
)
