// Package editor holds one editing widget per section type. Editors replace a
// section's content wholesale on every mutation and report each change
// through OnChange. An editor bound to an Owner reads and writes the owner's
// copy, so it never writes back content the owner has since replaced.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tdc-backend/internal/content"
	"tdc-backend/internal/upload"
)

var (
	ErrBusy       = errors.New("upload already in progress")
	ErrNoUploader = errors.New("no uploader configured")
)

// Change is emitted after every successful mutation.
type Change struct {
	SectionID content.ID
	Content   content.Content
}

// Owner holds the authoritative copy of the sections it hands editors for.
type Owner interface {
	SectionContent(id content.ID) (content.Content, bool)
	// UpdateSection applies fn to the current content of id and returns the
	// stored result.
	UpdateSection(id content.ID, fn func(content.Content) content.Content) (content.Content, error)
}

type Options struct {
	Uploader upload.Uploader
	OnChange func(Change)
	Owner    Owner
}

// Editor is implemented by TextEditor, CodeEditor, ImageEditor, FileEditor and
// Placeholder.
type Editor interface {
	SectionID() content.ID
	Content() content.Content
	// Message is the last user-visible status of the editor, empty when none.
	Message() string
	Err() error
}

// New returns the editor for section's type. Sections with missing or
// malformed content get a Placeholder instead of an error.
func New(section content.Section, opts Options) Editor {
	b := &base{id: section.ID, opts: opts, content: section.Content}
	if section.Problem != nil {
		return &Placeholder{base: b, err: fmt.Errorf("section %s: %w", section.ID, section.Problem)}
	}
	if !section.Valid() {
		return &Placeholder{base: b, err: fmt.Errorf("section %s: %w", section.ID, content.ErrInvalidContentShape)}
	}
	switch section.Content.(type) {
	case content.TextContent:
		return &TextEditor{base: b}
	case content.CodeContent:
		return &CodeEditor{base: b}
	case content.ImageContent:
		return &ImageEditor{base: b}
	case content.FileContent:
		return &FileEditor{base: b}
	}
	return &Placeholder{base: b, err: content.ErrInvalidContentShape}
}

type base struct {
	mu       sync.Mutex
	id       content.ID
	opts     Options
	content  content.Content
	message  string
	lastErr  error
	inFlight bool
}

func (b *base) SectionID() content.ID { return b.id }

func (b *base) Content() content.Content {
	if b.opts.Owner != nil {
		if c, ok := b.opts.Owner.SectionContent(b.id); ok {
			b.mu.Lock()
			b.content = c
			b.mu.Unlock()
			return c
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

func (b *base) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}

func (b *base) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Busy reports whether an upload started by this editor is still running.
func (b *base) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inFlight
}

// update builds the next content from the current one and notifies the
// listener outside the lock. With an Owner the owner's copy is the current
// one; a section the owner no longer has fails the edit.
func (b *base) update(fn func(cur content.Content) content.Content) error {
	var next content.Content
	if b.opts.Owner != nil {
		var err error
		next, err = b.opts.Owner.UpdateSection(b.id, fn)
		if err != nil {
			b.mu.Lock()
			b.lastErr = err
			b.message = "This section is no longer part of the document."
			b.mu.Unlock()
			return err
		}
		b.mu.Lock()
	} else {
		b.mu.Lock()
		next = fn(b.content)
	}
	b.content = next
	b.message = ""
	b.lastErr = nil
	b.mu.Unlock()
	if b.opts.OnChange != nil {
		b.opts.OnChange(Change{SectionID: b.id, Content: next})
	}
	return nil
}

func (b *base) fail(err error) error {
	b.mu.Lock()
	b.lastErr = err
	b.message = describeUploadError(err)
	b.mu.Unlock()
	return err
}

// runUpload performs one upload with the in-flight guard held. On success
// apply builds the new content from the content current at that moment.
func (b *base) runUpload(ctx context.Context, blob upload.Blob, kind upload.Kind, apply func(cur content.Content, res upload.Result) content.Content) error {
	if b.opts.Uploader == nil {
		return b.fail(ErrNoUploader)
	}

	b.mu.Lock()
	if b.inFlight {
		b.mu.Unlock()
		return ErrBusy
	}
	b.inFlight = true
	b.message = "Uploading " + blob.Name + "..."
	b.mu.Unlock()

	res, err := b.opts.Uploader.Upload(ctx, blob, kind)

	b.mu.Lock()
	b.inFlight = false
	b.mu.Unlock()

	if err != nil {
		return b.fail(err)
	}
	if err := b.update(func(cur content.Content) content.Content { return apply(cur, res) }); err != nil {
		return err
	}
	b.mu.Lock()
	b.message = "Uploaded " + res.Name
	b.mu.Unlock()
	return nil
}

func describeUploadError(err error) string {
	var rejected *upload.RejectedError
	switch {
	case errors.As(err, &rejected):
		return "File rejected: " + rejected.Reason
	case errors.Is(err, upload.ErrRejected):
		return "File rejected."
	case errors.Is(err, upload.ErrTransport):
		return "Upload failed. Check your connection and try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "Upload timed out. Try again."
	case errors.Is(err, ErrNoUploader):
		return "Uploads are not available."
	}
	return "Upload failed: " + err.Error()
}

// Placeholder stands in for a section whose stored content is unusable. It
// renders an empty state and accepts no mutations.
type Placeholder struct {
	*base
	err error
}

func (p *Placeholder) Err() error { return p.err }

func (p *Placeholder) Message() string {
	return "This section could not be displayed."
}
