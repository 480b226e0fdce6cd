package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or incomplete requests. Never
	// retried; surfaced to the caller as a 4xx.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientData marks requests whose measurements carry no
	// usable values, so the caller can prompt for re-measurement.
	ErrInsufficientData = errors.New("insufficient measurement data")

	// ErrPolicyNotConfigured is returned when a tenant has no tyre
	// threshold policy. Hard-coded defaults would misrepresent the
	// tenant's safety policy, so no recommendation is produced.
	ErrPolicyNotConfigured = errors.New("tyre threshold policy not configured")

	// ErrUpstreamClassification is returned when every upstream
	// classifier call failed; there is no scoring on zero evidence.
	ErrUpstreamClassification = errors.New("upstream classification failed")
)

// Validationf wraps ErrValidation with a human-readable reason
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
