package errors

import "fmt"

// ErrorCode represents an entalign error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST" // 400
	ErrUnauthenticated ErrorCode = "UNAUTHENTICATED" // 401
	ErrNotAuthorized   ErrorCode = "NOT_AUTHORIZED"  // 403
	ErrNotFound        ErrorCode = "NOT_FOUND"       // 404
	ErrConflict        ErrorCode = "CONFLICT"        // 409
	ErrMatcherFailure  ErrorCode = "MATCHER_FAILURE" // 502
	ErrInternal        ErrorCode = "INTERNAL"        // 500
)

// AlignError represents a structured error with code, status, and details.
type AlignError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *AlignError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *AlignError {
	return &AlignError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthenticated creates a 401 error for requests without an identity.
func NewUnauthenticated() *AlignError {
	return &AlignError{
		Code:    ErrUnauthenticated,
		Status:  401,
		Message: "no authenticated user",
	}
}

// NewNotAuthorized creates a 403 error for identity mismatches on owned records.
func NewNotAuthorized(msg string) *AlignError {
	return &AlignError{
		Code:    ErrNotAuthorized,
		Status:  403,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for unknown texts or annotation records.
func NewNotFound(identifier string) *AlignError {
	return &AlignError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConflict creates a 409 error for duplicate annotation attempts.
// Submit resolves duplicates internally as a no-op; this exists for
// callers that ask for strict semantics.
func NewConflict(msg string) *AlignError {
	return &AlignError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewMatcherFailure creates a 502 error for embedding or fuzzy computation
// failures. The alignment engine degrades to an empty result instead of
// returning this; surfaces that report degradation use it.
func NewMatcherFailure(err error) *AlignError {
	msg := "matcher failure"
	if err != nil {
		msg = err.Error()
	}
	return &AlignError{
		Code:    ErrMatcherFailure,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *AlignError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &AlignError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an AlignError with the given code.
func Is(err error, code ErrorCode) bool {
	if aErr, ok := err.(*AlignError); ok {
		return aErr.Code == code
	}
	return false
}
