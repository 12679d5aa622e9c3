package content

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSectionJSONShapeMatchesType(t *testing.T) {
	raw := `{"id":"s1","type":"code","content":{"code":"print(1)","language":"python"}}`

	var s Section
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, SectionCode, s.Type())
	assert.Equal(t, PersistedID("s1"), s.ID)
	assert.Equal(t, CodeContent{Code: "print(1)", Language: LangPython}, s.Content)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestSectionJSONKeepsMalformedContentOut(t *testing.T) {
	cases := map[string]string{
		"unknown type":     `{"id":"s1","type":"video","content":{}}`,
		"content string":   `{"id":"s1","type":"text","content":"hello"}`,
		"wrong field type": `{"id":"s1","type":"text","content":{"text":42}}`,
		"bad language":     `{"id":"s1","type":"code","content":{"code":"x","language":"cobol"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var s Section
			require.NoError(t, json.Unmarshal([]byte(raw), &s))
			assert.Equal(t, PersistedID("s1"), s.ID)
			assert.Nil(t, s.Content)
			assert.False(t, s.Valid())
			assert.True(t, errors.Is(s.Problem, ErrInvalidContentShape), "got %v", s.Problem)
			var shape *ShapeError
			assert.True(t, errors.As(s.Problem, &shape))

			_, err := json.Marshal(s)
			assert.ErrorIs(t, err, ErrInvalidContentShape)
		})
	}
}

func TestSectionJSONRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`"hello"`, `[1,2]`, `42`} {
		var s Section
		err := json.Unmarshal([]byte(raw), &s)
		assert.ErrorIs(t, err, ErrInvalidContentShape, raw)
	}
}

func TestMalformedSectionFailsDocumentValidation(t *testing.T) {
	var l Lesson
	require.NoError(t, json.Unmarshal([]byte(`{"title":"L","sections":[{"id":"s1","type":"text","content":{"text":"ok"}},{"id":"s2","type":"code","content":{"language":"cobol"}}]}`), &l))
	require.Len(t, l.Sections, 2)
	assert.True(t, l.Sections[0].Valid())
	assert.False(t, l.Sections[1].Valid())

	c := NewCourse("Go")
	m := NewModule("M")
	m.Lessons = append(m.Lessons, l)
	c.Modules = append(c.Modules, m)
	assert.ErrorIs(t, c.Validate(), ErrInvalidContentShape)
}

func TestSectionJSONMissingFieldsDecodeEmpty(t *testing.T) {
	var s Section
	require.NoError(t, json.Unmarshal([]byte(`{"id":"s1","type":"file","content":{"url":"https://cdn/x.pdf"}}`), &s))
	assert.Equal(t, FileContent{URL: "https://cdn/x.pdf"}, s.Content)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"s2","type":"code"}`), &s))
	assert.Equal(t, CodeContent{Language: DefaultLanguage}, s.Content)
}

func TestLocalIDsAreNotSentOverTheWire(t *testing.T) {
	s := NewTextSection("hello")
	require.True(t, s.ID.IsLocal())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":null,"type":"text","content":{"text":"hello"}}`, string(out))

	var back Section
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, back.ID.IsZero())
	assert.False(t, back.ID.IsPersisted())
}

func TestProvisionalIDsFromTheWireAreUnassigned(t *testing.T) {
	var s Section
	require.NoError(t, json.Unmarshal([]byte(`{"id":"tmp-1234","type":"text","content":{"text":"x"}}`), &s))
	assert.True(t, s.ID.IsZero())
	assert.False(t, s.ID.IsPersisted())

	data, err := bson.Marshal(bson.M{"id": "tmp-abcd", "type": "text", "content": bson.M{"text": "x"}})
	require.NoError(t, err)
	var fromDB Section
	require.NoError(t, bson.Unmarshal(data, &fromDB))
	assert.True(t, fromDB.ID.IsZero())

	var kept ID
	require.NoError(t, json.Unmarshal([]byte(`"temple"`), &kept))
	assert.Equal(t, "temple", kept.String())
}

func TestSectionBSON(t *testing.T) {
	in := Section{ID: PersistedID("abc"), Content: FileContent{URL: "u", Name: "n.pdf", Size: "12 kB", MIMEType: "application/pdf"}}
	data, err := bson.Marshal(in)
	require.NoError(t, err)

	var out Section
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	bad, err := bson.Marshal(bson.M{"id": "abc", "type": "text", "content": bson.M{"text": 12}})
	require.NoError(t, err)
	err = bson.Unmarshal(bad, &out)
	assert.ErrorIs(t, err, ErrInvalidContentShape)
}

func TestCourseBSONKeepsIDs(t *testing.T) {
	c := NewCourse("Go 101")
	c.ID = PersistedID("c1")
	m := NewModule("Basics")
	m.ID = PersistedID("m1")
	l := NewLesson("Hello")
	l.ID = PersistedID("l1")
	s := NewTextSection("hi")
	s.ID = PersistedID("s1")
	l.Sections = append(l.Sections, s)
	m.Lessons = append(m.Lessons, l)
	c.Modules = append(c.Modules, m)

	data, err := bson.Marshal(c)
	require.NoError(t, err)
	var out Course
	require.NoError(t, bson.Unmarshal(data, &out))
	assert.Equal(t, "c1", out.ID.String())
	assert.Equal(t, "s1", out.Modules[0].Lessons[0].Sections[0].ID.String())
	assert.Equal(t, TextContent{Text: "hi"}, out.Modules[0].Lessons[0].Sections[0].Content)
}

func TestNewSectionDefaults(t *testing.T) {
	for _, typ := range []SectionType{SectionText, SectionCode, SectionImage, SectionFile} {
		s, err := NewSection(typ)
		require.NoError(t, err)
		assert.Equal(t, typ, s.Type())
		assert.True(t, s.ID.IsLocal())
	}
	_, err := NewSection("video")
	assert.ErrorIs(t, err, ErrInvalidContentShape)

	_, err = NewCodeSection("x", "brainfuck")
	assert.ErrorIs(t, err, ErrInvalidContentShape)
}
