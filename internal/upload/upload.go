// Package upload defines how section editors turn a local file into a durable
// URL without knowing which storage backend sits behind it.
package upload

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindImage Kind = "image"
	KindRaw   Kind = "raw"
)

// Blob is a local file selected for upload. Data is kept in memory so the
// same blob can be retried after a failure.
type Blob struct {
	Name string
	Data []byte
}

func (b Blob) Size() int64 { return int64(len(b.Data)) }

// Result is what a successful upload yields. Size is human readable.
type Result struct {
	URL      string
	Name     string
	Size     string
	MIMEType string
}

// Uploader stores a blob and returns its durable URL. The context deadline
// bounds the whole operation; implementations may retry internally but only
// report final success or failure.
type Uploader interface {
	Upload(ctx context.Context, blob Blob, kind Kind) (Result, error)
}

var (
	ErrRejected  = errors.New("upload rejected")
	ErrTransport = errors.New("upload transport error")
)

// RejectedError carries the reason a file was refused.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return "upload rejected: " + e.Reason }

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

func Rejected(format string, args ...any) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

// TransportError wraps network and storage failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return ErrTransport.Error()
	}
	return "upload transport error: " + e.Err.Error()
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }
