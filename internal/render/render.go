// Package render turns lesson and blog post sections into sanitized HTML for
// previews and the public site.
package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"tdc-backend/internal/content"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("figure", "figcaption", "small")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^(language-[a-z]+|section section-[a-z]+)$`)).OnElements("code", "div")
	p.AllowAttrs("data-section-id").Matching(regexp.MustCompile(`^[A-Za-z0-9-]+$`)).OnElements("div")
	p.AllowAttrs("download").OnElements("a")
	return p
}

// Sections renders each section in order, wrapped in a div carrying its type.
// Sections with unusable content render as an empty placeholder.
func Sections(sections []content.Section) (string, error) {
	var buf bytes.Buffer
	for _, s := range sections {
		fmt.Fprintf(&buf, `<div class="section section-%s" data-section-id="%s">`, s.Type(), html.EscapeString(s.ID.String()))
		if err := section(&buf, s); err != nil {
			return "", fmt.Errorf("render section %s: %w", s.ID, err)
		}
		buf.WriteString("</div>\n")
	}
	return policy.Sanitize(buf.String()), nil
}

func Lesson(l content.Lesson) (string, error) {
	body, err := Sections(l.Sections)
	if err != nil {
		return "", err
	}
	return policy.Sanitize("<h1>"+html.EscapeString(l.Title)+"</h1>\n") + body, nil
}

func Post(p content.BlogPost) (string, error) {
	var head strings.Builder
	head.WriteString("<h1>" + html.EscapeString(p.Title) + "</h1>\n")
	if p.BannerImage.URL != "" {
		fmt.Fprintf(&head, `<img src="%s" alt="%s">`+"\n", html.EscapeString(p.BannerImage.URL), html.EscapeString(p.BannerImage.Alt))
	}
	body, err := Sections(p.Sections)
	if err != nil {
		return "", err
	}
	return policy.Sanitize(head.String()) + body, nil
}

func section(buf *bytes.Buffer, s content.Section) error {
	switch c := s.Content.(type) {
	case content.TextContent:
		return md.Convert([]byte(c.Text), buf)
	case content.CodeContent:
		fmt.Fprintf(buf, `<pre><code class="language-%s">%s</code></pre>`, c.Language, html.EscapeString(c.Code))
	case content.ImageContent:
		if c.URL == "" {
			return nil
		}
		fmt.Fprintf(buf, `<figure><img src="%s" alt="%s">`, html.EscapeString(c.URL), html.EscapeString(c.Caption))
		if c.Caption != "" {
			fmt.Fprintf(buf, `<figcaption>%s</figcaption>`, html.EscapeString(c.Caption))
		}
		buf.WriteString("</figure>")
	case content.FileContent:
		if c.URL == "" {
			return nil
		}
		name := c.Name
		if name == "" {
			name = c.URL
		}
		fmt.Fprintf(buf, `<a href="%s" download>%s</a>`, html.EscapeString(c.URL), html.EscapeString(name))
		if c.Size != "" {
			fmt.Fprintf(buf, ` <small>%s</small>`, html.EscapeString(c.Size))
		}
	}
	return nil
}
