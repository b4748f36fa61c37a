package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrBusinessRule indicates a well-formed request that the ledger's rules refuse.
var ErrBusinessRule = errors.New("business rule violation")

// ErrTransient marks failures the caller may retry: lock timeouts, lost connections,
// serialization conflicts. Nothing was committed when this is returned.
var ErrTransient = errors.New("transient storage error")

// ErrStorage marks non-retryable storage failures.
var ErrStorage = errors.New("storage error")

// IsRetryable reports whether err is safe for the caller to retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
