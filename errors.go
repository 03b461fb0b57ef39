package billpay

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// Request errors
	ErrMissingParameter = errors.New("billpay: missing required parameter")
	ErrInvalidAmount    = errors.New("billpay: invalid amount")

	// Invoice errors
	ErrInvoiceNotFound  = errors.New("billpay: invoice not found")
	ErrDuplicateInvoice = errors.New("billpay: invoice already exists for month")

	// Store errors
	ErrStoreClosed     = errors.New("billpay: store is closed")
	ErrMigrationFailed = errors.New("billpay: migration failed")
)

// ValidationError represents a missing or malformed input field.
// It matches ErrMissingParameter under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("billpay: validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return ErrMissingParameter }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "billpay: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("billpay: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrorOrNil returns e when it holds errors, nil otherwise.
func (e MultiError) ErrorOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound)
}

// IsConflict returns true if the error reports an existing invoice.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateInvoice)
}

// IsBadRequest returns true if the error was caused by caller input.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrMissingParameter) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrDuplicateInvoice)
}
