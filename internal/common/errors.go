// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Upstream data errors.
	ErrUpstreamData = errors.New("malformed upstream data")

	// Backend errors.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ParseError reports a field value from the backend that could not be parsed.
// It always matches ErrUpstreamData under errors.Is.
type ParseError struct {
	Err   error
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %s %q: %v", ErrUpstreamData, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrUpstreamData, e.Err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
