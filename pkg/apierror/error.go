package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error represents a structured operation error with a stable code.
type Error struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithDetails attaches structured details (e.g. candidate oids, remaining
// lock duration) to the error.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	response := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    e.Code,
			"message": e.Message,
		},
	}

	if e.Details != nil {
		response["error"].(map[string]interface{})["details"] = e.Details
	}

	data, _ := json.Marshal(response)
	return data
}

// From converts any error into an *Error. Unknown errors become
// INTERNAL_ERROR so nothing escapes the operation boundary untyped.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return InternalError(err.Error())
}

// Validation creates a 400 error for a missing or invalid field.
func Validation(code, message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       code,
		Message:    message,
	}
}

// NotFound creates a 404 error with the given code.
func NotFound(code, message string) *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       code,
		Message:    message,
	}
}

// State creates a 409 error for an operation rejected by current state
// (locked item, live pending sell, ambiguous reference, bad token).
func State(code, message string) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       code,
		Message:    message,
	}
}

// Persistence creates a 500 error for load/save failures.
func Persistence(code, message string) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       code,
		Message:    message,
	}
}

// SchemaMismatch creates a 500 error for an unsupported ledger schema.
func SchemaMismatch(message string) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "SCHEMA_MISMATCH",
		Message:    message,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
	}
}
