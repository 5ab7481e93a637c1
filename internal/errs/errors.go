// Package errs defines the error kinds shared by the sandbox packages.
// Call sites wrap one of the sentinels with context so callers can match
// the kind with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidParameter is returned for bad construction arguments,
	// such as non-positive rates or counts.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDomain is returned for physically meaningless inputs to the
	// dispersion law, such as a non-positive frequency.
	ErrDomain = errors.New("domain error")

	// ErrInvalidArgument is returned for bad call-time arguments, such as
	// a zero width or an inverted range.
	ErrInvalidArgument = errors.New("invalid argument")
)
