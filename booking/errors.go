package booking

import (
	"errors"
	"fmt"
)

// Code identifies why an operation was rejected.
type Code string

const (
	CodeNotFound          Code = "NotFound"
	CodeForbidden         Code = "Forbidden"
	CodeInvalidDateRange  Code = "InvalidDateRange"
	CodeStayLength        Code = "StayLengthViolation"
	CodeCapacityExceeded  Code = "CapacityExceeded"
	CodeConflict          Code = "Conflict"
	CodeInvalidTransition Code = "InvalidTransition"
	CodeImmutableState    Code = "ImmutableState"
)

// Error is returned for every rejected operation. Field names the input or
// constraint that failed so the calling layer can render a specific message;
// the core itself does no formatting or localization beyond Message.
type Error struct {
	Code    Code   `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the taxonomy code from err, or "" when err is not a
// booking error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func errNotFound(entity string) *Error {
	return &Error{Code: CodeNotFound, Field: entity, Message: entity + " not found"}
}

func errForbidden(field, message string) *Error {
	return &Error{Code: CodeForbidden, Field: field, Message: message}
}

func errInvalidDateRange(field, message string) *Error {
	return &Error{Code: CodeInvalidDateRange, Field: field, Message: message}
}

func errStayLength(message string) *Error {
	return &Error{Code: CodeStayLength, Field: "nights", Message: message}
}

func errCapacityExceeded(capacity int) *Error {
	return &Error{Code: CodeCapacityExceeded, Field: "guests", Message: fmt.Sprintf("property sleeps at most %d guests", capacity)}
}

func errConflict() *Error {
	return &Error{Code: CodeConflict, Field: "checkIn", Message: "selected dates are not available"}
}

func errInvalidTransition(from, to Status) *Error {
	return &Error{Code: CodeInvalidTransition, Field: "status", Message: fmt.Sprintf("cannot change status from %s to %s", from, to)}
}

func errImmutableState(status Status) *Error {
	return &Error{Code: CodeImmutableState, Field: "status", Message: fmt.Sprintf("booking is %s and can no longer be edited", status)}
}
