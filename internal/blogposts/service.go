package blogposts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tdc-backend/internal/content"
	"tdc-backend/internal/render"
)

var (
	ErrNotFound        = errors.New("blog post not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrTypeMismatch    = errors.New("section type cannot change")
	ErrVersionConflict = errors.New("blog post was modified by someone else")
	ErrInvalidContent  = errors.New("invalid blog post content")
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

func normalize(p *content.BlogPost) error {
	p.Title = strings.TrimSpace(p.Title)
	p.AuthorNameFE = strings.TrimSpace(p.AuthorNameFE)
	p.Tags = content.Dedupe(p.Tags)
	p.Topics = content.Dedupe(p.Topics)
	if p.Sections == nil {
		p.Sections = []content.Section{}
	}
	for i := range p.Sections {
		if !p.Sections[i].ID.IsPersisted() {
			p.Sections[i].ID = newID()
		}
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in content.BlogPost) (content.BlogPost, error) {
	post := in.Clone()
	if err := normalize(&post); err != nil {
		return content.BlogPost{}, err
	}
	now := s.now().In(s.location)
	post.ID = newID()
	post.Version = 1
	post.CreatedAt = now
	post.UpdatedAt = now

	if err := s.repo.Create(ctx, post); err != nil {
		return content.BlogPost{}, err
	}
	return post, nil
}

// Update replaces title, author, banner, tags, topics and the sections list.
func (s *Service) Update(ctx context.Context, id string, in content.BlogPost) (content.BlogPost, error) {
	cur, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return content.BlogPost{}, err
	}
	if in.Version != cur.Version {
		return content.BlogPost{}, ErrVersionConflict
	}

	post := in.Clone()
	if err := normalize(&post); err != nil {
		return content.BlogPost{}, err
	}
	post.ID = cur.ID
	post.Version = cur.Version + 1
	post.CreatedAt = cur.CreatedAt
	post.UpdatedAt = s.now().In(s.location)

	if err := s.repo.Replace(ctx, post, cur.Version); err != nil {
		return content.BlogPost{}, err
	}
	return post, nil
}

func (s *Service) Get(ctx context.Context, id string) (content.BlogPost, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]content.BlogPost, int64, error) {
	filter.Tag = strings.TrimSpace(filter.Tag)
	filter.Topic = strings.TrimSpace(filter.Topic)
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

// UpdateSection replaces the content of an existing section. The section keeps
// its type.
func (s *Service) UpdateSection(ctx context.Context, postID, sectionID string, section content.Section) (int64, error) {
	if section.Problem != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidContent, section.Problem)
	}
	if section.Content == nil {
		return 0, fmt.Errorf("%w: missing content", ErrInvalidContent)
	}
	cur, err := s.repo.Get(ctx, strings.TrimSpace(postID))
	if err != nil {
		return 0, err
	}
	stored, ok := content.SectionByID(cur.Sections, content.PersistedID(sectionID))
	if !ok {
		return 0, ErrSectionNotFound
	}
	if stored.Type() != section.Type() {
		return 0, ErrTypeMismatch
	}
	section.ID = stored.ID
	return s.repo.UpdateSection(ctx, cur.ID.String(), section, s.now().In(s.location))
}

// AddSection appends a section and returns it with its server identifier.
func (s *Service) AddSection(ctx context.Context, postID string, section content.Section) (content.Section, int64, error) {
	if section.Problem != nil {
		return content.Section{}, 0, fmt.Errorf("%w: %v", ErrInvalidContent, section.Problem)
	}
	if section.Content == nil {
		return content.Section{}, 0, fmt.Errorf("%w: missing content", ErrInvalidContent)
	}
	section.ID = newID()
	version, err := s.repo.AddSection(ctx, strings.TrimSpace(postID), section, s.now().In(s.location))
	if err != nil {
		return content.Section{}, 0, err
	}
	return section, version, nil
}

func (s *Service) DeleteSection(ctx context.Context, postID, sectionID string) (int64, error) {
	return s.repo.DeleteSection(ctx, strings.TrimSpace(postID), strings.TrimSpace(sectionID), s.now().In(s.location))
}

// RenderHTML returns the sanitized reader view of a post.
func (s *Service) RenderHTML(ctx context.Context, id string) (string, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return render.Post(post)
}
