package blogposts

import (
	"context"
	"sort"
	"sync"
	"time"

	"tdc-backend/internal/content"
)

// MemoryRepository keeps posts in process memory. It backs STORE=memory and
// the tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]content.BlogPost
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]content.BlogPost)}
}

func (r *MemoryRepository) Create(ctx context.Context, post content.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[post.ID.String()] = post.Clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (content.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.items[id]
	if !ok {
		return content.BlogPost{}, ErrNotFound
	}
	return post.Clone(), nil
}

func (r *MemoryRepository) Replace(ctx context.Context, post content.BlogPost, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[post.ID.String()]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	r.items[post.ID.String()] = post.Clone()
	return nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) matching(filter ListFilter) []content.BlogPost {
	out := make([]content.BlogPost, 0, len(r.items))
	for _, p := range r.items {
		if filter.Tag != "" && !contains(p.Tags, filter.Tag) {
			continue
		}
		if filter.Topic != "" && !contains(p.Topics, filter.Topic) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]content.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.matching(filter)
	items := make([]content.BlogPost, 0)
	for i := offset; i < int64(len(all)) && int64(len(items)) < limit; i++ {
		items = append(items, all[i].Clone())
	}
	return items, nil
}

func (r *MemoryRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

// mutate applies fn to a copy of the stored post and commits it with a bumped
// version when fn succeeds.
func (r *MemoryRepository) mutate(postID string, at time.Time, fn func(*content.BlogPost) error) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[postID]
	if !ok {
		return 0, ErrNotFound
	}
	next := cur.Clone()
	if err := fn(&next); err != nil {
		return 0, err
	}
	next.Version++
	next.UpdatedAt = at
	r.items[postID] = next
	return next.Version, nil
}

func (r *MemoryRepository) UpdateSection(ctx context.Context, postID string, section content.Section, at time.Time) (int64, error) {
	return r.mutate(postID, at, func(p *content.BlogPost) error {
		i := content.IndexOfSection(p.Sections, section.ID)
		if i < 0 || p.Sections[i].Type() != section.Type() {
			return ErrSectionNotFound
		}
		p.Sections[i] = section
		return nil
	})
}

func (r *MemoryRepository) AddSection(ctx context.Context, postID string, section content.Section, at time.Time) (int64, error) {
	return r.mutate(postID, at, func(p *content.BlogPost) error {
		p.Sections = append(p.Sections, section)
		return nil
	})
}

func (r *MemoryRepository) DeleteSection(ctx context.Context, postID, sectionID string, at time.Time) (int64, error) {
	return r.mutate(postID, at, func(p *content.BlogPost) error {
		i := content.IndexOfSection(p.Sections, content.PersistedID(sectionID))
		if i < 0 {
			return ErrSectionNotFound
		}
		p.Sections = append(p.Sections[:i:i], p.Sections[i+1:]...)
		return nil
	})
}
