package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLessonIsLocked(t *testing.T) {
	l := NewLesson("Intro")
	assert.True(t, l.IsLocked)
	assert.Empty(t, l.Sections)
	assert.True(t, l.ID.IsLocal())
}

func TestCourseCloneDoesNotAlias(t *testing.T) {
	c := NewCourse("Go")
	m := NewModule("M")
	l := NewLesson("L")
	l.Sections = append(l.Sections, NewTextSection("a"))
	m.Lessons = append(m.Lessons, l)
	c.Modules = append(c.Modules, m)

	clone := c.Clone()
	clone.Modules[0].Lessons[0].Sections[0] = NewTextSection("b")
	clone.Modules[0].Title = "changed"

	assert.Equal(t, TextContent{Text: "a"}, c.Modules[0].Lessons[0].Sections[0].Content)
	assert.Equal(t, "M", c.Modules[0].Title)
}

func TestIsFree(t *testing.T) {
	c := NewCourse("Free")
	assert.True(t, c.IsFree())
	c.Price = 499
	assert.False(t, c.IsFree())
}

func TestAddTagDeduplicates(t *testing.T) {
	p := NewBlogPost("Post", "Ann")
	assert.True(t, p.AddTag("python"))
	assert.False(t, p.AddTag(" python "))
	assert.True(t, p.AddTag("go"))
	assert.False(t, p.AddTag(""))
	assert.Equal(t, []string{"python", "go"}, p.Tags)

	assert.True(t, p.RemoveTag("python"))
	assert.False(t, p.RemoveTag("python"))
	assert.Equal(t, []string{"go"}, p.Tags)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Dedupe([]string{"a", " b", "a", "", "b "}))
}
