package main

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by stores and state machines.
var (
	// ErrNotFound is returned when a record does not exist under the
	// requested key or id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a lifecycle mutation is
	// requested from a state that does not permit it.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrGenerationUnavailable is returned when no remote generator is
	// configured (missing API key).
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrNoActiveUser is returned when an operation requires an active
	// user and none has been selected.
	ErrNoActiveUser = errors.New("no active user")
)

// ValidationError reports a field that failed boundary validation before
// any state was written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// MalformedError reports stored state that could not be decoded. Callers
// that load optional state recover to a default value; strict loads
// propagate it.
type MalformedError struct {
	Key string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed record %q: %v", e.Key, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// GenerationError wraps a failure from the remote text generator. The
// drafting pipeline absorbs it and falls back to templates.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func asMalformed(err error, target **MalformedError) bool {
	return errors.As(err, target)
}
