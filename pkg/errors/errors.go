package errors

import "fmt"

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrValidation is returned when request validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrUpstream is returned when a call to the Shopify API fails.
// The raw upstream error is kept for server-side logging only and
// must never be written to a client response.
type ErrUpstream struct {
	Operation string
	Err       error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Operation, e.Err)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Err
}
