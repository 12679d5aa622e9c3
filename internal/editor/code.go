package editor

import (
	"fmt"

	"tdc-backend/internal/content"
)

type CodeEditor struct {
	*base
}

func (e *CodeEditor) current() content.CodeContent {
	c, _ := e.Content().(content.CodeContent)
	return c
}

func (e *CodeEditor) Code() string               { return e.current().Code }
func (e *CodeEditor) Language() content.Language { return e.current().Language }

func (e *CodeEditor) SetCode(code string) error {
	return e.update(func(cur content.Content) content.Content {
		c, _ := cur.(content.CodeContent)
		return content.CodeContent{Code: code, Language: c.Language}
	})
}

// SetLanguage keeps the code body. Unsupported languages leave the section
// unchanged.
func (e *CodeEditor) SetLanguage(lang content.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("language %q: %w", lang, content.ErrInvalidContentShape)
	}
	return e.update(func(cur content.Content) content.Content {
		c, _ := cur.(content.CodeContent)
		return content.CodeContent{Code: c.Code, Language: lang}
	})
}
