package apiclient

import (
	"errors"
	"fmt"
)

var (
	ErrValidationRejected = errors.New("validation rejected")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("version conflict")
	ErrTransport          = errors.New("transport error")
	// ErrInvalidContent marks a response whose document could not be read.
	// Retrying does not help.
	ErrInvalidContent = errors.New("invalid content in response")
)

// Error is returned by every Client call that fails. Kind is one of the
// sentinels above and is matched by errors.Is.
type Error struct {
	Kind    error
	Status  int
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func kindForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status == 409:
		return ErrConflict
	case status >= 400 && status < 500:
		return ErrValidationRejected
	default:
		return ErrTransport
	}
}
