package courses

import (
	"context"
	"sort"
	"sync"

	"tdc-backend/internal/content"
)

// MemoryRepository keeps courses in process memory. It backs STORE=memory
// and the tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]content.Course
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]content.Course)}
}

func (r *MemoryRepository) Create(ctx context.Context, course content.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[course.ID.String()] = course.Clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (content.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	course, ok := r.items[id]
	if !ok {
		return content.Course{}, ErrNotFound
	}
	return course.Clone(), nil
}

func (r *MemoryRepository) Replace(ctx context.Context, course content.Course, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[course.ID.String()]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	r.items[course.ID.String()] = course.Clone()
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *MemoryRepository) matching(filter ListFilter) []content.Course {
	out := make([]content.Course, 0, len(r.items))
	for _, c := range r.items {
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		if filter.Level != "" && c.Level != filter.Level {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]content.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.matching(filter)
	items := make([]content.Course, 0)
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
