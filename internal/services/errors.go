package services

import "fmt"

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for field, msg := range e.Fields {
		return fmt.Sprintf("validation error: %s: %s", field, msg)
	}
	return "Validation error"
}

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// UpstreamAuthError means the upstream API rejected our credential. It is
// never retried against the fallback model.
type UpstreamAuthError struct {
	Status  int
	Message string
}

func (e *UpstreamAuthError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

type UpstreamTimeoutError struct{ Message string }

func (e *UpstreamTimeoutError) Error() string { return e.Message }

type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError is any other non-200 upstream reply.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream API error: %d - %s", e.Status, e.Message)
}

type InternalError struct{ Message string }

func (e *InternalError) Error() string { return e.Message }
