// Package errors provides common domain error types for the invoice auditor.
//
// This package defines sentinel errors for common domain conditions like "not found"
// or "duplicate" that can be used across all packages. Using typed errors enables
// consistent error handling patterns with errors.Is() checks.
//
// Usage:
//
//	import iaerrors "github.com/auditkit/invaudit/pkg/errors"
//
//	// Return a domain error
//	return nil, iaerrors.ErrNotFound
//
//	// Check for domain errors
//	if iaerrors.IsNotFound(err) {
//	    // handle not found case
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrNotFound indicates the requested resource was not found
	// (an ERP record returning 404, or a missing review directory).
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate indicates the same invoice content has already been processed.
	ErrDuplicate = errors.New("duplicate content")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrPersistence indicates a filesystem move or write failure. Persistence
	// errors are fatal for the invoice being processed and are not retried.
	ErrPersistence = errors.New("persistence error")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsDuplicate reports whether any error in err's chain is ErrDuplicate.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsPersistence reports whether any error in err's chain is ErrPersistence.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
