package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"tdc-backend/internal/apiclient"
	"tdc-backend/internal/content"
	"tdc-backend/internal/diff"
	"tdc-backend/internal/editor"
	"tdc-backend/internal/render"
	"tdc-backend/internal/upload"
)

// CourseComposer is the state of one open course editor.
type CourseComposer struct {
	store CourseStore
	log   *slog.Logger

	mu          sync.Mutex
	draft       content.Course
	original    content.Course
	inFlight    bool
	lastErr     error
	needsReauth bool
}

// NewCourseComposer opens an editor for a course that does not exist yet.
func NewCourseComposer(store CourseStore, log *slog.Logger) *CourseComposer {
	c := content.NewCourse("")
	return newCourseComposer(store, log, c)
}

// LoadCourse fetches a course for editing. A failed read yields no composer.
func LoadCourse(ctx context.Context, store CourseStore, id string, log *slog.Logger) (*CourseComposer, error) {
	course, err := store.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load course %s: %w", id, err)
	}
	return newCourseComposer(store, log, course), nil
}

func newCourseComposer(store CourseStore, log *slog.Logger, course content.Course) *CourseComposer {
	if log == nil {
		log = slog.Default()
	}
	return &CourseComposer{
		store:    store,
		log:      log.With(slog.String("component", "course_composer")),
		draft:    course.Clone(),
		original: course.Clone(),
	}
}

func (c *CourseComposer) Draft() content.Course {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

func (c *CourseComposer) Original() content.Course {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.original.Clone()
}

func (c *CourseComposer) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return diff.CourseDirty(c.draft, c.original)
}

func (c *CourseComposer) State() diff.State { return diff.StateOf(c.Dirty()) }

func (c *CourseComposer) SaveEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return diff.SaveEnabled(diff.CourseDirty(c.draft, c.original), c.inFlight)
}

func (c *CourseComposer) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// NeedsReauth is set when the last save failed because the session expired.
func (c *CourseComposer) NeedsReauth() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsReauth
}

func (c *CourseComposer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// edit applies fn to a copy of the draft and adopts it when fn succeeds.
func (c *CourseComposer) edit(fn func(content.Course) (content.Course, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(c.draft.Clone())
	if err != nil {
		return err
	}
	c.draft = next
	return nil
}

func (c *CourseComposer) SetTitle(title string) {
	_ = c.edit(func(d content.Course) (content.Course, error) { d.Title = title; return d, nil })
}

func (c *CourseComposer) SetDescription(description string) {
	_ = c.edit(func(d content.Course) (content.Course, error) { d.Description = description; return d, nil })
}

func (c *CourseComposer) SetCategory(category string) {
	_ = c.edit(func(d content.Course) (content.Course, error) { d.Category = category; return d, nil })
}

// CategorySuggestions lists the suggested categories, the draft's current one
// first when it is not among them.
func (c *CourseComposer) CategorySuggestions() []string {
	c.mu.Lock()
	current := strings.TrimSpace(c.draft.Category)
	c.mu.Unlock()
	out := make([]string, 0, len(content.SuggestedCategories)+1)
	if current != "" && !slices.Contains(content.SuggestedCategories, current) {
		out = append(out, current)
	}
	return append(out, content.SuggestedCategories...)
}

func (c *CourseComposer) SetInstructor(in content.Instructor) {
	_ = c.edit(func(d content.Course) (content.Course, error) { d.Instructor = in; return d, nil })
}

func (c *CourseComposer) SetLevel(level content.Level) error {
	if !level.Valid() {
		return fmt.Errorf("level %q: %w", level, ErrInvalidField)
	}
	return c.edit(func(d content.Course) (content.Course, error) { d.Level = level; return d, nil })
}

func (c *CourseComposer) SetPrice(price int) error {
	if price < 0 {
		return fmt.Errorf("price %d: %w", price, ErrInvalidField)
	}
	return c.edit(func(d content.Course) (content.Course, error) { d.Price = price; return d, nil })
}

func (c *CourseComposer) SetResources(resources []content.Resource) error {
	for _, r := range resources {
		if !r.Type.Valid() || r.Count < 0 {
			return fmt.Errorf("resource %q: %w", r.Type, ErrInvalidField)
		}
	}
	return c.edit(func(d content.Course) (content.Course, error) {
		d.Resources = append([]content.Resource(nil), resources...)
		return d, nil
	})
}

func (c *CourseComposer) AddModule(m content.Module) {
	_ = c.edit(func(d content.Course) (content.Course, error) { return AddModule(d, m), nil })
}

func (c *CourseComposer) RemoveModule(moduleIndex int) error {
	return c.edit(func(d content.Course) (content.Course, error) { return RemoveModule(d, moduleIndex) })
}

func (c *CourseComposer) AddLesson(moduleIndex int, l content.Lesson) error {
	return c.edit(func(d content.Course) (content.Course, error) { return AddLesson(d, moduleIndex, l) })
}

func (c *CourseComposer) RemoveLesson(moduleIndex, lessonIndex int) error {
	return c.edit(func(d content.Course) (content.Course, error) { return RemoveLesson(d, moduleIndex, lessonIndex) })
}

// UpdateLesson edits the scalar fields of a lesson; sections go through
// AddSection, RemoveSection and section editors.
func (c *CourseComposer) UpdateLesson(moduleIndex, lessonIndex int, fn func(*content.Lesson)) error {
	return c.edit(func(d content.Course) (content.Course, error) {
		if err := checkIndex("module", moduleIndex, len(d.Modules)); err != nil {
			return d, err
		}
		if err := checkIndex("lesson", lessonIndex, len(d.Modules[moduleIndex].Lessons)); err != nil {
			return d, err
		}
		l := d.Modules[moduleIndex].Lessons[lessonIndex].Clone()
		sections := l.Sections
		fn(&l)
		l.Sections = sections
		return ReplaceLesson(d, moduleIndex, lessonIndex, l)
	})
}

func (c *CourseComposer) UpdateModule(moduleIndex int, fn func(*content.Module)) error {
	return c.edit(func(d content.Course) (content.Course, error) {
		if err := checkIndex("module", moduleIndex, len(d.Modules)); err != nil {
			return d, err
		}
		m := d.Modules[moduleIndex]
		lessons := m.Lessons
		fn(&m)
		m.Lessons = lessons
		d.Modules[moduleIndex] = m
		return d, nil
	})
}

func (c *CourseComposer) AddSection(moduleIndex, lessonIndex int, s content.Section) error {
	if !s.Valid() {
		return fmt.Errorf("section %s: %w", s.ID, content.ErrInvalidContentShape)
	}
	return c.edit(func(d content.Course) (content.Course, error) {
		l, err := lessonAt(d, moduleIndex, lessonIndex)
		if err != nil {
			return d, err
		}
		return ReplaceLesson(d, moduleIndex, lessonIndex, AddSection(l, s))
	})
}

func (c *CourseComposer) RemoveSection(moduleIndex, lessonIndex int, id content.ID) error {
	return c.edit(func(d content.Course) (content.Course, error) {
		l, err := lessonAt(d, moduleIndex, lessonIndex)
		if err != nil {
			return d, err
		}
		l, err = RemoveSection(l, id)
		if err != nil {
			return d, err
		}
		return ReplaceLesson(d, moduleIndex, lessonIndex, l)
	})
}

// SectionEditor returns an editor bound to the draft: it reads the draft's
// copy of the section and applies every edit to it.
func (c *CourseComposer) SectionEditor(moduleIndex, lessonIndex int, id content.ID, up upload.Uploader) (editor.Editor, error) {
	c.mu.Lock()
	l, err := lessonAt(c.draft, moduleIndex, lessonIndex)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s, ok := content.SectionByID(l.Sections, id)
	if !ok {
		return nil, fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
	}
	return editor.New(s, editor.Options{Uploader: up, Owner: c}), nil
}

// SectionContent returns the draft content of section id.
func (c *CourseComposer) SectionContent(id content.ID) (content.Content, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := content.SectionByID(c.draft.Sections(), id)
	return s.Content, ok
}

// UpdateSection replaces the draft content of section id with fn applied to
// it.
func (c *CourseComposer) UpdateSection(id content.ID, fn func(content.Content) content.Content) (content.Content, error) {
	var next content.Content
	err := c.edit(func(d content.Course) (content.Course, error) {
		s, ok := content.SectionByID(d.Sections(), id)
		if !ok {
			return d, fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
		}
		next = fn(s.Content)
		return ReplaceSection(d, id, next)
	})
	if err != nil {
		c.log.Warn("course composer: edit for missing section dropped", slog.String("section_id", id.String()))
		return nil, err
	}
	return next, nil
}

// Discard restores the draft to the last saved state.
func (c *CourseComposer) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = c.original.Clone()
	c.lastErr = nil
}

// Submit persists the whole draft. Unsaved courses are created, saved ones
// replaced. The server's copy then becomes both draft and original, which
// re-keys every provisional identifier. Failures leave the draft untouched.
func (c *CourseComposer) Submit(ctx context.Context) (content.Course, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return content.Course{}, ErrSaveInFlight
	}
	if !diff.CourseDirty(c.draft, c.original) {
		c.mu.Unlock()
		return content.Course{}, ErrNotDirty
	}
	if err := c.draft.Validate(); err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return content.Course{}, err
	}
	c.inFlight = true
	draft := c.draft.Clone()
	c.mu.Unlock()

	var saved content.Course
	var err error
	if draft.ID.IsPersisted() {
		saved, err = c.store.UpdateCourse(ctx, draft)
	} else {
		saved, err = c.store.CreateCourse(ctx, draft)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.lastErr = err
		c.needsReauth = errors.Is(err, apiclient.ErrUnauthorized)
		c.log.Warn("course composer submit: failed", slog.String("course_id", draft.ID.String()), slog.String("error", err.Error()))
		return content.Course{}, err
	}
	c.draft = saved.Clone()
	c.original = saved.Clone()
	c.lastErr = nil
	c.needsReauth = false
	c.log.Info("course composer submit: ok", slog.String("course_id", saved.ID.String()), slog.Int64("version", saved.Version))
	return saved.Clone(), nil
}

// PreviewLesson renders the draft lesson as it would appear to readers.
func (c *CourseComposer) PreviewLesson(moduleIndex, lessonIndex int) (string, error) {
	c.mu.Lock()
	l, err := lessonAt(c.draft, moduleIndex, lessonIndex)
	c.mu.Unlock()
	if err != nil {
		return "", err
	}
	return render.Lesson(l)
}

func lessonAt(c content.Course, moduleIndex, lessonIndex int) (content.Lesson, error) {
	if err := checkIndex("module", moduleIndex, len(c.Modules)); err != nil {
		return content.Lesson{}, err
	}
	if err := checkIndex("lesson", lessonIndex, len(c.Modules[moduleIndex].Lessons)); err != nil {
		return content.Lesson{}, err
	}
	return c.Modules[moduleIndex].Lessons[lessonIndex], nil
}
