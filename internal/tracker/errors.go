package tracker

import "errors"

// ErrNotFound is returned when an application is missing or does not belong
// to the caller. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("application not found")

// ErrUnauthenticated is returned when no caller id is available.
var ErrUnauthenticated = errors.New("unauthenticated")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }
