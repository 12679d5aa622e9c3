package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tdc-backend/internal/content"
)

var (
	ErrNotFound        = errors.New("course not found")
	ErrVersionConflict = errors.New("course was modified by someone else")
	ErrInvalidContent  = errors.New("invalid course content")
)

type Service struct {
	repo     Repository
	location *time.Location
	now      func() time.Time
}

func NewService(repo Repository, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		location: location,
		now:      time.Now,
	}
}

func newID() content.ID {
	return content.PersistedID(primitive.NewObjectID().Hex())
}

// assignIDs gives every nested entity without a server identifier a fresh one.
func assignIDs(c *content.Course) {
	for mi := range c.Modules {
		m := &c.Modules[mi]
		if !m.ID.IsPersisted() {
			m.ID = newID()
		}
		for li := range m.Lessons {
			l := &m.Lessons[li]
			if !l.ID.IsPersisted() {
				l.ID = newID()
			}
			if l.Sections == nil {
				l.Sections = []content.Section{}
			}
			for si := range l.Sections {
				if !l.Sections[si].ID.IsPersisted() {
					l.Sections[si].ID = newID()
				}
			}
		}
		if m.Lessons == nil {
			m.Lessons = []content.Lesson{}
		}
	}
}

func normalize(c *content.Course) error {
	c.Title = strings.TrimSpace(c.Title)
	c.Category = strings.TrimSpace(c.Category)
	if c.Level == "" {
		c.Level = content.LevelBeginner
	}
	if c.Resources == nil {
		c.Resources = []content.Resource{}
	}
	if c.Modules == nil {
		c.Modules = []content.Module{}
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in content.Course) (content.Course, error) {
	course := in.Clone()
	if err := normalize(&course); err != nil {
		return content.Course{}, err
	}
	now := s.now().In(s.location)
	course.ID = newID()
	course.Version = 1
	course.CreatedAt = now
	course.UpdatedAt = now
	assignIDs(&course)

	if err := s.repo.Create(ctx, course); err != nil {
		return content.Course{}, err
	}
	return course, nil
}

// Update replaces the whole course. in.Version must match the stored version.
func (s *Service) Update(ctx context.Context, id string, in content.Course) (content.Course, error) {
	id = strings.TrimSpace(id)
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return content.Course{}, err
	}
	if in.Version != cur.Version {
		return content.Course{}, ErrVersionConflict
	}

	course := in.Clone()
	if err := normalize(&course); err != nil {
		return content.Course{}, err
	}
	course.ID = cur.ID
	course.Version = cur.Version + 1
	course.CreatedAt = cur.CreatedAt
	course.UpdatedAt = s.now().In(s.location)
	assignIDs(&course)

	if err := s.repo.Replace(ctx, course, cur.Version); err != nil {
		return content.Course{}, err
	}
	return course, nil
}

func (s *Service) Get(ctx context.Context, id string) (content.Course, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]content.Course, int64, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
