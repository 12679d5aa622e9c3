package editor

import (
	"context"
	"strings"

	"tdc-backend/internal/content"
	"tdc-backend/internal/upload"
)

type ImageEditor struct {
	*base
}

func (e *ImageEditor) current() content.ImageContent {
	c, _ := e.Content().(content.ImageContent)
	return c
}

func (e *ImageEditor) URL() string     { return e.current().URL }
func (e *ImageEditor) Caption() string { return e.current().Caption }

func (e *ImageEditor) SetURL(url string) error {
	url = strings.TrimSpace(url)
	return e.update(func(cur content.Content) content.Content {
		img, _ := cur.(content.ImageContent)
		return content.ImageContent{URL: url, Caption: img.Caption}
	})
}

func (e *ImageEditor) SetCaption(caption string) error {
	return e.update(func(cur content.Content) content.Content {
		img, _ := cur.(content.ImageContent)
		return content.ImageContent{URL: img.URL, Caption: caption}
	})
}

// Upload stores blob as an image and, only on success, points the section at
// the returned URL. The caption is kept.
func (e *ImageEditor) Upload(ctx context.Context, blob upload.Blob) error {
	return e.runUpload(ctx, blob, upload.KindImage, func(cur content.Content, res upload.Result) content.Content {
		img, _ := cur.(content.ImageContent)
		return content.ImageContent{URL: res.URL, Caption: img.Caption}
	})
}
