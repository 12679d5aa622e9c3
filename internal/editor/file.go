package editor

import (
	"context"

	"tdc-backend/internal/content"
	"tdc-backend/internal/upload"
)

type FileEditor struct {
	*base
}

func (e *FileEditor) File() content.FileContent {
	c, _ := e.Content().(content.FileContent)
	return c
}

// Upload stores blob as a raw file and sets url, name, size and type together.
func (e *FileEditor) Upload(ctx context.Context, blob upload.Blob) error {
	return e.runUpload(ctx, blob, upload.KindRaw, func(_ content.Content, res upload.Result) content.Content {
		name := res.Name
		if name == "" {
			name = blob.Name
		}
		return content.FileContent{URL: res.URL, Name: name, Size: res.Size, MIMEType: res.MIMEType}
	})
}
