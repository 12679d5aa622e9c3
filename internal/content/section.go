package content

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
)

type SectionType string

const (
	SectionText  SectionType = "text"
	SectionCode  SectionType = "code"
	SectionImage SectionType = "image"
	SectionFile  SectionType = "file"
)

func (t SectionType) Valid() bool {
	switch t {
	case SectionText, SectionCode, SectionImage, SectionFile:
		return true
	}
	return false
}

// Content is the payload of a section. The set of implementations is closed:
// TextContent, CodeContent, ImageContent and FileContent.
type Content interface {
	Type() SectionType
	sectionContent()
}

type TextContent struct {
	Text string `json:"text" bson:"text"`
}

type CodeContent struct {
	Code     string   `json:"code" bson:"code"`
	Language Language `json:"language" bson:"language" validate:"language"`
}

type ImageContent struct {
	URL     string `json:"url" bson:"url"`
	Caption string `json:"caption" bson:"caption"`
}

// FileContent describes an uploaded attachment. Size is human readable and
// MIMEType is serialized as "type".
type FileContent struct {
	URL      string `json:"url" bson:"url"`
	Name     string `json:"name" bson:"name"`
	Size     string `json:"size" bson:"size"`
	MIMEType string `json:"type" bson:"type"`
}

func (TextContent) Type() SectionType  { return SectionText }
func (CodeContent) Type() SectionType  { return SectionCode }
func (ImageContent) Type() SectionType { return SectionImage }
func (FileContent) Type() SectionType  { return SectionFile }

func (TextContent) sectionContent()  {}
func (CodeContent) sectionContent()  {}
func (ImageContent) sectionContent() {}
func (FileContent) sectionContent()  {}

// EmptyContent returns the empty payload for t.
func EmptyContent(t SectionType) (Content, error) {
	switch t {
	case SectionText:
		return TextContent{}, nil
	case SectionCode:
		return CodeContent{Language: DefaultLanguage}, nil
	case SectionImage:
		return ImageContent{}, nil
	case SectionFile:
		return FileContent{}, nil
	}
	return nil, shapeErr(t, "unknown section type", nil)
}

// ContentEqual reports whether two payloads are identical. All payload types
// are comparable, so interface equality covers both type and fields.
func ContentEqual(a, b Content) bool {
	return a == b
}

// Section is the smallest addressable unit of lesson and blog post bodies.
// Its type is always the type of its content. A section whose stored content
// could not be decoded has no Content and reports why in Problem.
type Section struct {
	ID      ID
	Content Content
	Problem error `validate:"-"`
}

func (s Section) Type() SectionType {
	if s.Content == nil {
		return ""
	}
	return s.Content.Type()
}

// Valid reports whether the section carries a usable payload.
func (s Section) Valid() bool {
	if s.Problem != nil || s.Content == nil {
		return false
	}
	if code, ok := s.Content.(CodeContent); ok && !code.Language.Valid() {
		return false
	}
	return true
}

type sectionJSON struct {
	ID      ID              `json:"id"`
	Type    SectionType     `json:"type"`
	Content json.RawMessage `json:"content"`
}

func (s Section) MarshalJSON() ([]byte, error) {
	if s.Problem != nil {
		return nil, s.Problem
	}
	if s.Content == nil {
		return nil, shapeErr("", "missing content", nil)
	}
	payload, err := json.Marshal(s.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sectionJSON{ID: s.ID, Type: s.Content.Type(), Content: payload})
}

// UnmarshalJSON rejects input that is not a section object. Content that does
// not match the section type is kept out of the document: the section decodes
// with a nil Content and the *ShapeError in Problem, and Validate rejects it.
func (s *Section) UnmarshalJSON(data []byte) error {
	var wire sectionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return shapeErr("", "malformed section", err)
	}
	c, err := decodeJSONContent(wire.Type, wire.Content)
	if err != nil {
		*s = Section{ID: wire.ID, Problem: err}
		return nil
	}
	*s = Section{ID: wire.ID, Content: c}
	return nil
}

func decodeJSONContent(t SectionType, raw json.RawMessage) (Content, error) {
	empty, err := EmptyContent(t)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return empty, nil
	}
	if raw[0] != '{' {
		return nil, shapeErr(t, "content must be an object", nil)
	}

	var c Content
	switch t {
	case SectionText:
		var v TextContent
		err = json.Unmarshal(raw, &v)
		c = v
	case SectionCode:
		v := CodeContent{Language: DefaultLanguage}
		err = json.Unmarshal(raw, &v)
		if v.Language == "" {
			v.Language = DefaultLanguage
		}
		c = v
	case SectionImage:
		var v ImageContent
		err = json.Unmarshal(raw, &v)
		c = v
	case SectionFile:
		var v FileContent
		err = json.Unmarshal(raw, &v)
		c = v
	}
	if err != nil {
		return nil, shapeErr(t, "field type mismatch", err)
	}
	return checkContent(c)
}

func checkContent(c Content) (Content, error) {
	if code, ok := c.(CodeContent); ok && !code.Language.Valid() {
		return nil, shapeErr(SectionCode, "unsupported language "+string(code.Language), nil)
	}
	return c, nil
}

type sectionBSON struct {
	ID      ID          `bson:"id"`
	Type    SectionType `bson:"type"`
	Content bson.Raw    `bson:"content,omitempty"`
}

func (s Section) MarshalBSON() ([]byte, error) {
	if s.Problem != nil {
		return nil, s.Problem
	}
	if s.Content == nil {
		return nil, shapeErr("", "missing content", nil)
	}
	payload, err := bson.Marshal(s.Content)
	if err != nil {
		return nil, err
	}
	return bson.Marshal(sectionBSON{ID: s.ID, Type: s.Content.Type(), Content: payload})
}

func (s *Section) UnmarshalBSON(data []byte) error {
	var doc sectionBSON
	if err := bson.Unmarshal(data, &doc); err != nil {
		return shapeErr("", "malformed section document", err)
	}
	empty, err := EmptyContent(doc.Type)
	if err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		*s = Section{ID: doc.ID, Content: empty}
		return nil
	}

	var c Content
	switch doc.Type {
	case SectionText:
		var v TextContent
		err = bson.Unmarshal(doc.Content, &v)
		c = v
	case SectionCode:
		v := CodeContent{Language: DefaultLanguage}
		err = bson.Unmarshal(doc.Content, &v)
		if v.Language == "" {
			v.Language = DefaultLanguage
		}
		c = v
	case SectionImage:
		var v ImageContent
		err = bson.Unmarshal(doc.Content, &v)
		c = v
	case SectionFile:
		var v FileContent
		err = bson.Unmarshal(doc.Content, &v)
		c = v
	}
	if err != nil {
		return shapeErr(doc.Type, "field type mismatch", err)
	}
	c, err = checkContent(c)
	if err != nil {
		return err
	}
	*s = Section{ID: doc.ID, Content: c}
	return nil
}

// NewSection returns a section of type t with empty content and a provisional ID.
func NewSection(t SectionType) (Section, error) {
	c, err := EmptyContent(t)
	if err != nil {
		return Section{}, err
	}
	return Section{ID: NewLocalID(), Content: c}, nil
}

func NewTextSection(text string) Section {
	return Section{ID: NewLocalID(), Content: TextContent{Text: text}}
}

func NewCodeSection(code string, lang Language) (Section, error) {
	c, err := checkContent(CodeContent{Code: code, Language: lang})
	if err != nil {
		return Section{}, err
	}
	return Section{ID: NewLocalID(), Content: c}, nil
}

func NewImageSection(url, caption string) Section {
	return Section{ID: NewLocalID(), Content: ImageContent{URL: url, Caption: caption}}
}

func IndexOfSection(sections []Section, id ID) int {
	for i, s := range sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func SectionByID(sections []Section, id ID) (Section, bool) {
	if i := IndexOfSection(sections, id); i >= 0 {
		return sections[i], true
	}
	return Section{}, false
}

func cloneSections(in []Section) []Section {
	if in == nil {
		return nil
	}
	out := make([]Section, len(in))
	copy(out, in)
	return out
}
