package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks caller input that fails validation.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrMissingData marks a catalog record without the fields a simulation needs.
	ErrMissingData = errors.New("missing data")

	// ErrNotFound marks upstream data that does not exist, e.g. an unknown
	// asteroid id or an address the geocoder cannot resolve.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks a failure of an external collaborator such as the
	// catalog, the geocoder or the place search.
	ErrUpstream = errors.New("upstream failure")
)

// ParameterError describes which field failed validation and why.
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

func invalid(field, format string, args ...any) error {
	return &ParameterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
