// Package base holds the types shared by every request builder: the Result
// wrapper returned from Run and the structured error it carries.
package base

import (
	"errors"
	"fmt"
	"strings"
)

// WeaviateError is one structured error reported by the server or raised while
// performing the round trip.
type WeaviateError struct {
	Message string
	// Err is set when the failure happened on the client side (connection,
	// marshalling, cancelled context).
	Err error
}

func (e *WeaviateError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *WeaviateError) Unwrap() error { return e.Err }

// Result wraps the outcome of a single request. Payload is only meaningful
// when HasErrors reports false.
type Result[T any] struct {
	StatusCode int
	Payload    T
	Errors     []*WeaviateError
}

// NewResult builds a Result from the parts produced by the transport.
func NewResult[T any](statusCode int, payload T, errs []*WeaviateError) *Result[T] {
	return &Result[T]{StatusCode: statusCode, Payload: payload, Errors: errs}
}

// ErrorResult builds a Result carrying errs and the zero payload.
func ErrorResult[T any](statusCode int, errs []*WeaviateError) *Result[T] {
	var zero T
	return &Result[T]{StatusCode: statusCode, Payload: zero, Errors: errs}
}

// HasErrors reports whether the request failed.
func (r *Result[T]) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// Err folds the error list into a single error, nil when there is none.
func (r *Result[T]) Err() error {
	if !r.HasErrors() {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	var cause error
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
		if cause == nil && e.Err != nil {
			cause = e.Err
		}
	}
	err := &StatusError{StatusCode: r.StatusCode, Message: strings.Join(msgs, "; ")}
	if cause != nil {
		return errors.Join(err, cause)
	}
	return err
}

// StatusError is returned by Result.Err.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.StatusCode == 0 {
		return "weaviate: " + e.Message
	}
	return fmt.Sprintf("weaviate: status %d: %s", e.StatusCode, e.Message)
}
