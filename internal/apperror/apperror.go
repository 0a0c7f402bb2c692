// Package apperror defines the client-visible error taxonomy.
//
// Every failure that should reach a client with a specific status and code is an
// *Error; anything else is treated as an internal error by the terminal handler.
package apperror

import (
	"errors"
	"net/http"
)

// Error codes carried in the response envelope.
const (
	CodeTokenNotFound    = "TOKEN_NOT_FOUND"
	CodeTokenInvalid     = "TOKEN_INVALID"
	CodeRoleNotFound     = "ROLE_NOT_FOUND"
	CodeInsufficientRole = "INSUFFICIENT_ROLE"
	CodeEventNotFound    = "EVENT_NOT_FOUND"
	CodeAttendeeNotFound = "ATTENDEE_NOT_FOUND"
	CodeTicketNotFound   = "TICKET_NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
	CodeRateLimited      = "RATE_LIMITED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeRouteNotFound    = "ROUTE_NOT_FOUND"
)

type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns a copy of e that records cause for logging. The client-visible
// message is unchanged.
func (e *Error) Wrap(cause error) *Error {
	clone := *e
	clone.Err = cause
	return &clone
}

func New(status int, message, code string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Authentication(message, code string) *Error {
	return New(http.StatusUnauthorized, message, code)
}

func Authorization(message, code string) *Error {
	return New(http.StatusForbidden, message, code)
}

func NotFound(message, code string) *Error {
	return New(http.StatusNotFound, message, code)
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, message, CodeValidation)
}

// As reports whether err carries an *Error and returns it.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
