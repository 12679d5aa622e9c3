package composer

import (
	"errors"
	"fmt"

	"tdc-backend/internal/content"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrSectionNotFound = errors.New("section not found")
)

// The functions below never modify their inputs and return values that share
// no slices with them.

func AddModule(c content.Course, m content.Module) content.Course {
	out := c.Clone()
	out.Modules = append(out.Modules, m.Clone())
	return out
}

func AddLesson(c content.Course, moduleIndex int, l content.Lesson) (content.Course, error) {
	if err := checkIndex("module", moduleIndex, len(c.Modules)); err != nil {
		return c, err
	}
	out := c.Clone()
	out.Modules[moduleIndex].Lessons = append(out.Modules[moduleIndex].Lessons, l.Clone())
	return out, nil
}

func AddSection(l content.Lesson, s content.Section) content.Lesson {
	out := l.Clone()
	out.Sections = append(out.Sections, s)
	return out
}

func RemoveSection(l content.Lesson, id content.ID) (content.Lesson, error) {
	sections, err := removeSection(l.Sections, id)
	if err != nil {
		return l, err
	}
	out := l.Clone()
	out.Sections = sections
	return out, nil
}

func RemoveModule(c content.Course, moduleIndex int) (content.Course, error) {
	if err := checkIndex("module", moduleIndex, len(c.Modules)); err != nil {
		return c, err
	}
	out := c.Clone()
	modules := make([]content.Module, 0, len(out.Modules)-1)
	modules = append(modules, out.Modules[:moduleIndex]...)
	out.Modules = append(modules, out.Modules[moduleIndex+1:]...)
	return out, nil
}

func RemoveLesson(c content.Course, moduleIndex, lessonIndex int) (content.Course, error) {
	if err := checkIndex("module", moduleIndex, len(c.Modules)); err != nil {
		return c, err
	}
	if err := checkIndex("lesson", lessonIndex, len(c.Modules[moduleIndex].Lessons)); err != nil {
		return c, err
	}
	out := c.Clone()
	old := out.Modules[moduleIndex].Lessons
	lessons := make([]content.Lesson, 0, len(old)-1)
	lessons = append(lessons, old[:lessonIndex]...)
	out.Modules[moduleIndex].Lessons = append(lessons, old[lessonIndex+1:]...)
	return out, nil
}

func ReplaceLesson(c content.Course, moduleIndex, lessonIndex int, l content.Lesson) (content.Course, error) {
	if err := checkIndex("module", moduleIndex, len(c.Modules)); err != nil {
		return c, err
	}
	if err := checkIndex("lesson", lessonIndex, len(c.Modules[moduleIndex].Lessons)); err != nil {
		return c, err
	}
	out := c.Clone()
	out.Modules[moduleIndex].Lessons[lessonIndex] = l.Clone()
	return out, nil
}

// ReplaceSection swaps the content of the section identified by id wherever
// it sits in the course.
func ReplaceSection(c content.Course, id content.ID, payload content.Content) (content.Course, error) {
	for mi, m := range c.Modules {
		for li, l := range m.Lessons {
			if content.IndexOfSection(l.Sections, id) < 0 {
				continue
			}
			out := c.Clone()
			sections := out.Modules[mi].Lessons[li].Sections
			sections[content.IndexOfSection(sections, id)].Content = payload
			return out, nil
		}
	}
	return c, fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
}

func AddPostSection(p content.BlogPost, s content.Section) content.BlogPost {
	out := p.Clone()
	out.Sections = append(out.Sections, s)
	return out
}

func RemovePostSection(p content.BlogPost, id content.ID) (content.BlogPost, error) {
	sections, err := removeSection(p.Sections, id)
	if err != nil {
		return p, err
	}
	out := p.Clone()
	out.Sections = sections
	return out, nil
}

func ReplacePostSection(p content.BlogPost, id content.ID, payload content.Content) (content.BlogPost, error) {
	i := content.IndexOfSection(p.Sections, id)
	if i < 0 {
		return p, fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
	}
	out := p.Clone()
	out.Sections[i].Content = payload
	return out, nil
}

func removeSection(sections []content.Section, id content.ID) ([]content.Section, error) {
	i := content.IndexOfSection(sections, id)
	if i < 0 {
		return nil, fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
	}
	out := make([]content.Section, 0, len(sections)-1)
	out = append(out, sections[:i]...)
	return append(out, sections[i+1:]...), nil
}

func checkIndex(what string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%s %d of %d: %w", what, i, n, ErrIndexOutOfRange)
	}
	return nil
}
