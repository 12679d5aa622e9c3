package editor

import "tdc-backend/internal/content"

type TextEditor struct {
	*base
}

func (e *TextEditor) Text() string {
	c, _ := e.Content().(content.TextContent)
	return c.Text
}

func (e *TextEditor) SetText(text string) error {
	return e.update(func(content.Content) content.Content { return content.TextContent{Text: text} })
}
