// Package errors defines the structured error taxonomy surfaced to callers.
// Every failure carries a stable code and enough detail to self-correct;
// none of them are retried internally.
package errors

import "fmt"

// ErrorCode represents a Tartarus error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNoChanges        ErrorCode = "NO_CHANGES"        // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrAlreadyExists    ErrorCode = "ALREADY_EXISTS"    // 409
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED" // 422
	ErrCancelled        ErrorCode = "CANCELLED"         // 499
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// TartarusError represents a structured error with code, status, and details.
type TartarusError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TartarusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TartarusError {
	return &TartarusError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNoChanges creates a 400 error for an update whose section set is empty
// after vocabulary filtering. No write is attempted.
func NewNoChanges(operation string) *TartarusError {
	return &TartarusError{
		Code:    ErrNoChanges,
		Status:  400,
		Message: fmt.Sprintf("%s: no section values provided", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewNotFound creates a 404 error for a repository with no project summary.
// Not retried; the caller must create the summary first.
func NewNotFound(repository string) *TartarusError {
	return &TartarusError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("no project summary for repository %q", repository),
		Details: map[string]any{"repository": repository},
	}
}

// NewAlreadyExists creates a 409 error for creation on a repository that
// already has a summary. Not retried; the caller must switch to an update.
func NewAlreadyExists(repository string) *TartarusError {
	return &TartarusError{
		Code:    ErrAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("project summary for repository %q already exists", repository),
		Details: map[string]any{"repository": repository},
	}
}

// NewMissingTier1 creates a 422 error naming exactly the tier-1 sections
// absent or empty at creation.
func NewMissingTier1(missing []string) *TartarusError {
	return &TartarusError{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: fmt.Sprintf("missing required tier-1 sections: %v", missing),
		Details: map[string]any{"missing_sections": missing},
	}
}

// NewInvalidSections creates a 422 error for section names outside the
// vocabulary an operation accepts, listing the offending names verbatim.
func NewInvalidSections(operation string, names []string) *TartarusError {
	return &TartarusError{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: fmt.Sprintf("%s: section names outside the accepted vocabulary: %v", operation, names),
		Details: map[string]any{"operation": operation, "invalid_sections": names},
	}
}

// NewCancelled creates a 499 error for an operation cancelled via context.
func NewCancelled(operation string) *TartarusError {
	return &TartarusError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors. The core
// makes no availability guarantees beyond passing through the backing
// store's behavior; these are opaque and distinct from the caller-input codes.
func NewInternal(err error) *TartarusError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TartarusError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TartarusError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TartarusError); ok {
		return tErr.Code == code
	}
	return false
}
