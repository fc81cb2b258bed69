package domain

import "strings"

// Error codes attached to CredentialError values. Codes are stable API;
// descriptions are free text for humans.
const (
	ErrCodeInvalidArgument  = "invalid_argument"
	ErrCodeManagerClosed    = "manager_closed"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeDuplicateKey     = "duplicate_key"
	ErrCodePasswordMismatch = "password_mismatch"
	ErrCodeStorageFailure   = "storage_failure"
)

// CredentialError is a single structured failure attached to an operation
// result. It never carries hash material or algorithm identifiers.
type CredentialError struct {
	Code        string
	Description string
}

// Error implements error.
func (e CredentialError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Description
}

// OperationResult reports the outcome of a mutating credential operation.
// Invariant: Succeeded is true iff Errors is empty.
type OperationResult struct {
	Succeeded bool
	Errors    []CredentialError
}

// OK returns a successful result.
func OK() OperationResult {
	return OperationResult{Succeeded: true}
}

// Failed returns a failure result carrying the provided errors in order.
func Failed(errs ...CredentialError) OperationResult {
	copied := make([]CredentialError, len(errs))
	copy(copied, errs)
	return OperationResult{Errors: copied}
}

// HasCode reports whether any attached error carries the given code.
func (r OperationResult) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// ErrorDescriptions joins the attached error descriptions for log output.
func (r OperationResult) ErrorDescriptions() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}
