package client

import (
	"errors"
	"net/http"
)

// Error codes that are not stringified HTTP statuses.
const (
	CodeTimeout         = "TIMEOUT"
	CodeConnectionError = "CONNECTION_ERROR"
	CodeUnknownError    = "UNKNOWN_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
)

// Error is the single failure type returned by the client. Status is 0 when
// no HTTP response was received.
type Error struct {
	Message string
	Status  int
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

var statusMessages = map[int]string{
	http.StatusUnauthorized:        "Authentication failed. Please check the server's API credentials.",
	http.StatusForbidden:           "Access denied. The server is not permitted to use the AI service.",
	http.StatusNotFound:            "The requested endpoint was not found. Please check the server address.",
	http.StatusTooManyRequests:     "Too many requests. Please wait a moment and try again.",
	http.StatusInternalServerError: "The server encountered an error. Please try again later.",
	http.StatusBadGateway:          "Ule Msee is temporarily unavailable. Please try again shortly.",
	http.StatusServiceUnavailable:  "Ule Msee is temporarily unavailable. Please try again shortly.",
	http.StatusGatewayTimeout:      "The AI service took too long to respond. Please try again.",
}

func validationError(message string) *Error {
	return &Error{Message: message, Status: http.StatusBadRequest, Code: CodeValidationError}
}

func asError(err error) (*Error, bool) {
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr, true
	}
	return nil, false
}

// IsConnectionError reports whether the server could not be reached at all.
func IsConnectionError(err error) bool {
	cErr, ok := asError(err)
	return ok && cErr.Code == CodeConnectionError
}

func IsRateLimited(err error) bool {
	cErr, ok := asError(err)
	return ok && cErr.Status == http.StatusTooManyRequests
}

func IsTimeout(err error) bool {
	cErr, ok := asError(err)
	return ok && (cErr.Code == CodeTimeout || cErr.Status == http.StatusGatewayTimeout)
}
