package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a user-safe, structured service error. The Code and Message are
// what callers see over the wire; anything sensitive stays in server logs.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	CodeNotEntitled      = "NOT_ENTITLED"
	CodeUnknownTest      = "UNKNOWN_TEST"
	CodeAlreadyAttempted = "ALREADY_ATTEMPTED"
	CodeMissingFields    = "MISSING_FIELDS"
	CodeAttemptClosed    = "ATTEMPT_CLOSED"
	CodeAttemptNotFound  = "ATTEMPT_NOT_FOUND"
	CodeResultNotFound   = "RESULT_NOT_FOUND"
	CodeStorageFailure   = "STORAGE_FAILURE"
	CodeTestExists       = "TEST_EXISTS"
)

func NotEntitled(email, testID string) *Error {
	return &Error{
		Code:    CodeNotEntitled,
		Message: fmt.Sprintf("no entitlement found for %s on test %s, complete payment first", email, testID),
		Status:  http.StatusForbidden,
	}
}

func UnknownTest(testID string) *Error {
	return &Error{
		Code:    CodeUnknownTest,
		Message: fmt.Sprintf("test %s not found", testID),
		Status:  http.StatusNotFound,
	}
}

func AlreadyAttempted(testID string) *Error {
	return &Error{
		Code:    CodeAlreadyAttempted,
		Message: fmt.Sprintf("test %s has already been attempted", testID),
		Status:  http.StatusConflict,
	}
}

func MissingFields(detail string) *Error {
	return &Error{
		Code:    CodeMissingFields,
		Message: detail,
		Status:  http.StatusBadRequest,
	}
}

func AttemptClosed(attemptID uint) *Error {
	return &Error{
		Code:    CodeAttemptClosed,
		Message: fmt.Sprintf("attempt %d is already completed", attemptID),
		Status:  http.StatusConflict,
	}
}

func AttemptNotFound(attemptID uint) *Error {
	return &Error{
		Code:    CodeAttemptNotFound,
		Message: fmt.Sprintf("attempt %d not found", attemptID),
		Status:  http.StatusNotFound,
	}
}

func ResultNotFound(attemptID uint) *Error {
	return &Error{
		Code:    CodeResultNotFound,
		Message: fmt.Sprintf("no result found for attempt %d", attemptID),
		Status:  http.StatusNotFound,
	}
}

func TestExists(testID string) *Error {
	return &Error{
		Code:    CodeTestExists,
		Message: fmt.Sprintf("test %s already exists", testID),
		Status:  http.StatusConflict,
	}
}

// StorageFailure is deliberately opaque; the wrapped cause is for logs only.
func StorageFailure(err error) *Error {
	return &Error{
		Code:    CodeStorageFailure,
		Message: "an internal storage error occurred",
		Status:  http.StatusInternalServerError,
	}
}

// From extracts a structured *Error from err, falling back to an opaque
// storage failure so raw storage errors never leak to clients.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return StorageFailure(err)
}
