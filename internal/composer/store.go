// Package composer assembles sections into lessons, lessons into modules and
// modules into a course (or sections into a blog post), keeping the edited
// draft next to the last saved original until it is submitted or discarded.
package composer

import (
	"context"
	"errors"

	"tdc-backend/internal/apiclient"
	"tdc-backend/internal/content"
	"tdc-backend/internal/editor"
	"tdc-backend/internal/upload"
)

var (
	ErrNotDirty     = errors.New("nothing to save")
	ErrSaveInFlight = errors.New("save already in progress")
	ErrInvalidField = errors.New("invalid field value")

	// ErrUnsupported is returned by the per-section save for sections that
	// were never persisted; those go through PublishSection or Submit.
	ErrUnsupported = errors.New("operation not supported for unsaved section")
)

// CourseStore is the persistence collaborator for courses.
type CourseStore interface {
	GetCourse(ctx context.Context, id string) (content.Course, error)
	CreateCourse(ctx context.Context, course content.Course) (content.Course, error)
	UpdateCourse(ctx context.Context, course content.Course) (content.Course, error)
}

// PostStore is the persistence collaborator for blog posts.
type PostStore interface {
	GetPost(ctx context.Context, id string) (content.BlogPost, error)
	CreatePost(ctx context.Context, post content.BlogPost) (content.BlogPost, error)
	UpdatePost(ctx context.Context, post content.BlogPost) (content.BlogPost, error)
	UpdatePostSection(ctx context.Context, postID content.ID, section content.Section) (int64, error)
	AddPostSection(ctx context.Context, postID content.ID, section content.Section) (content.Section, int64, error)
	DeletePostSection(ctx context.Context, postID, sectionID content.ID) (int64, error)
}

var (
	_ CourseStore = (*apiclient.Client)(nil)
	_ PostStore   = (*apiclient.Client)(nil)

	_ editor.Owner = (*CourseComposer)(nil)
	_ editor.Owner = (*PostComposer)(nil)
)

// Describe turns an error returned by a composer or editor into the message
// shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *apiclient.Error
	var rejected *upload.RejectedError
	switch {
	case errors.Is(err, ErrNotDirty):
		return "There are no changes to save."
	case errors.Is(err, ErrSaveInFlight):
		return "A save is already in progress."
	case errors.Is(err, ErrUnsupported):
		return "Save the whole post to store new sections."
	case errors.Is(err, ErrInvalidField):
		return "That value is not allowed: " + err.Error()
	case errors.Is(err, ErrSectionNotFound):
		return "That section no longer exists."
	case errors.Is(err, ErrIndexOutOfRange):
		return "That item no longer exists."
	case errors.Is(err, apiclient.ErrUnauthorized):
		return "Your session has expired. Sign in again; your changes are kept."
	case errors.Is(err, apiclient.ErrConflict):
		return "Someone else saved this document since you opened it. Reload to see their changes."
	case errors.Is(err, apiclient.ErrNotFound):
		return "This document no longer exists."
	case errors.Is(err, apiclient.ErrValidationRejected) && errors.As(err, &apiErr):
		return "The server rejected the changes: " + apiErr.Message
	case errors.Is(err, apiclient.ErrInvalidContent), errors.Is(err, content.ErrInvalidContentShape):
		return "This content could not be read."
	case errors.Is(err, apiclient.ErrTransport):
		return "Could not reach the server. Your changes are kept; try again."
	case errors.As(err, &rejected):
		return "File rejected: " + rejected.Reason
	case errors.Is(err, upload.ErrTransport):
		return "Upload failed. Try again."
	}
	return "Something went wrong: " + err.Error()
}
