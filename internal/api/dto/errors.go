package dto

import "strings"

// APIError is the uniform error payload of the linking API. Handlers
// always respond with this shape on failure so clients switch on Code,
// not on status text.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes the linking API distinguishes.
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeInternalError = "internal_error"
	ErrCodeValidation    = "validation_error"
	// ErrCodeAlreadyLinked marks a link request that lost the race for
	// its children: another run claimed them first.
	ErrCodeAlreadyLinked = "already_linked"
)

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// NotFoundError creates a not found error response.
func NotFoundError(resource string) APIError {
	return NewAPIError(ErrCodeNotFound, resource+" not found")
}

// BadRequestError creates a bad request error response.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// InternalError creates an internal server error response.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}

// ValidationError creates a validation error response.
func ValidationError(message string) APIError {
	return NewAPIError(ErrCodeValidation, message)
}

// AlreadyLinkedError reports which children were claimed by another
// linking run before this request could take them.
func AlreadyLinkedError(childIDs []string) APIError {
	return NewAPIError(ErrCodeAlreadyLinked,
		"transactions already linked to another parent: "+strings.Join(childIDs, ", "))
}
