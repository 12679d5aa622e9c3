package content

import (
	"strings"
	"time"
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type ResourceType string

const (
	ResourceVideo    ResourceType = "video"
	ResourceExercise ResourceType = "exercise"
	ResourceQuiz     ResourceType = "quiz"
	ResourceDownload ResourceType = "download"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceVideo, ResourceExercise, ResourceQuiz, ResourceDownload:
		return true
	}
	return false
}

// SuggestedCategories is offered by the course editor; any category is accepted.
var SuggestedCategories = []string{
	"Web Development",
	"Data Science",
	"Machine Learning",
	"Mobile Development",
	"DevOps",
	"Programming Languages",
	"Databases",
	"Design",
}

type Instructor struct {
	Name  string `json:"name" bson:"name"`
	Title string `json:"title" bson:"title"`
	Image string `json:"image" bson:"image"`
}

type Resource struct {
	Type  ResourceType `json:"type" bson:"type" validate:"resource_type"`
	Count int          `json:"count" bson:"count" validate:"gte=0"`
}

type Course struct {
	ID          ID         `json:"id" bson:"_id,omitempty"`
	Title       string     `json:"title" bson:"title" validate:"required"`
	Description string     `json:"description" bson:"description"`
	Level       Level      `json:"level" bson:"level" validate:"level"`
	Category    string     `json:"category" bson:"category"`
	Price       int        `json:"price" bson:"price" validate:"gte=0"`
	Instructor  Instructor `json:"instructor" bson:"instructor"`
	Resources   []Resource `json:"resources" bson:"resources" validate:"dive"`
	Modules     []Module   `json:"modules" bson:"modules" validate:"dive"`
	Version     int64      `json:"version" bson:"version"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// IsFree reports whether the course skips checkout.
func (c Course) IsFree() bool { return c.Price == 0 }

type Module struct {
	ID          ID       `json:"id" bson:"id"`
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description" bson:"description"`
	Duration    string   `json:"duration" bson:"duration"`
	Lessons     []Lesson `json:"lessons" bson:"lessons" validate:"dive"`
}

type Lesson struct {
	ID          ID        `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Duration    string    `json:"duration" bson:"duration"`
	VideoURL    string    `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
	IsLocked    bool      `json:"isLocked" bson:"isLocked"`
	Sections    []Section `json:"sections" bson:"sections" validate:"dive"`
}

func NewCourse(title string) Course {
	return Course{
		ID:        NewLocalID(),
		Title:     strings.TrimSpace(title),
		Level:     LevelBeginner,
		Resources: []Resource{},
		Modules:   []Module{},
	}
}

func NewModule(title string) Module {
	return Module{ID: NewLocalID(), Title: strings.TrimSpace(title), Lessons: []Lesson{}}
}

// NewLesson returns a locked lesson with no sections.
func NewLesson(title string) Lesson {
	return Lesson{ID: NewLocalID(), Title: strings.TrimSpace(title), IsLocked: true, Sections: []Section{}}
}

func (c Course) Clone() Course {
	out := c
	if c.Resources != nil {
		out.Resources = make([]Resource, len(c.Resources))
		copy(out.Resources, c.Resources)
	}
	if c.Modules != nil {
		out.Modules = make([]Module, len(c.Modules))
		for i, m := range c.Modules {
			out.Modules[i] = m.Clone()
		}
	}
	return out
}

func (m Module) Clone() Module {
	out := m
	if m.Lessons != nil {
		out.Lessons = make([]Lesson, len(m.Lessons))
		for i, l := range m.Lessons {
			out.Lessons[i] = l.Clone()
		}
	}
	return out
}

func (l Lesson) Clone() Lesson {
	out := l
	out.Sections = cloneSections(l.Sections)
	return out
}

// Sections returns every section of the course in curriculum order.
func (c Course) Sections() []Section {
	var out []Section
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			out = append(out, l.Sections...)
		}
	}
	return out
}

// Validate checks every section payload of the course.
func (c Course) Validate() error {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if err := validateSections(l.Sections); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateSections(sections []Section) error {
	for _, s := range sections {
		if s.Problem != nil {
			return s.Problem
		}
		if s.Content == nil {
			return shapeErr("", "missing content", nil)
		}
		if _, err := checkContent(s.Content); err != nil {
			return err
		}
	}
	return nil
}
