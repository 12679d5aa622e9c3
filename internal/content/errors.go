package content

import (
	"errors"
	"fmt"
)

var ErrInvalidContentShape = errors.New("invalid content shape")

// ShapeError reports a section payload whose shape does not match its type.
type ShapeError struct {
	Type   SectionType
	Reason string
	Err    error
}

func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("invalid %q section content: %s", e.Type, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShapeError) Is(target error) bool { return target == ErrInvalidContentShape }

func (e *ShapeError) Unwrap() error { return e.Err }

func shapeErr(t SectionType, reason string, err error) error {
	return &ShapeError{Type: t, Reason: reason, Err: err}
}
