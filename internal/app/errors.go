package app

import (
	"errors"
	"fmt"
	"strings"
)

// Application-level errors. Handlers switch on these with errors.Is.
var (
	ErrValidation         = fmt.Errorf("validation failed")
	ErrClientNotFound     = fmt.Errorf("client not found")
	ErrPersistence        = fmt.Errorf("persistence failure")
	ErrExternalDelivery   = fmt.Errorf("external delivery failed")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUnauthenticated    = fmt.Errorf("no valid session")
	ErrSweepInProgress    = fmt.Errorf("a due-date sweep is already running")
)

// ValidationError carries the fields a caller has to fix.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func deliveryError(channel string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExternalDelivery, channel, err)
}

// IsClientError reports whether err should be shown to the caller as-is.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrSweepInProgress)
}
