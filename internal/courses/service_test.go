package courses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdc-backend/internal/content"
)

func draftCourse() content.Course {
	c := content.NewCourse("  Go from zero ")
	m := content.NewModule("Basics")
	l := content.NewLesson("Hello")
	l.Sections = append(l.Sections, content.NewTextSection("hello"))
	m.Lessons = append(m.Lessons, l)
	c.Modules = append(c.Modules, m)
	return c
}

func TestCreateAssignsIdentifiers(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.UTC)
	created, err := svc.Create(context.Background(), draftCourse())
	require.NoError(t, err)

	assert.True(t, created.ID.IsPersisted())
	assert.Equal(t, "Go from zero", created.Title)
	assert.Equal(t, int64(1), created.Version)
	m := created.Modules[0]
	assert.True(t, m.ID.IsPersisted())
	assert.True(t, m.Lessons[0].ID.IsPersisted())
	assert.True(t, m.Lessons[0].Sections[0].ID.IsPersisted())
	assert.False(t, created.CreatedAt.IsZero())
}

func TestUpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), time.UTC)
	created, err := svc.Create(ctx, draftCourse())
	require.NoError(t, err)

	edit := created.Clone()
	edit.Modules = append(edit.Modules, content.NewModule("Advanced"))
	updated, err := svc.Update(ctx, created.ID.String(), edit)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, created.Modules[0].ID, updated.Modules[0].ID)
	assert.True(t, updated.Modules[1].ID.IsPersisted())
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, created.ID.String(), edit)
	assert.ErrorIs(t, err, ErrVersionConflict)

	_, err = svc.Update(ctx, "missing", edit)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReplacesModuleTree(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), time.UTC)
	created, err := svc.Create(ctx, draftCourse())
	require.NoError(t, err)

	edit := created.Clone()
	edit.Modules = nil
	_, err = svc.Update(ctx, created.ID.String(), edit)
	require.NoError(t, err)

	stored, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Empty(t, stored.Modules)
	assert.Empty(t, stored.Sections())
}

func TestCreateRejectsMissingContent(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.UTC)
	c := draftCourse()
	c.Modules[0].Lessons[0].Sections = append(c.Modules[0].Lessons[0].Sections, content.Section{ID: content.NewLocalID()})
	_, err := svc.Create(context.Background(), c)
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), time.UTC)
	for _, cat := range []string{"Design", "Design", "DevOps"} {
		c := draftCourse()
		c.Category = cat
		_, err := svc.Create(ctx, c)
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, ListFilter{Category: "Design"}, 1, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(2), total)

	require.NoError(t, svc.Delete(ctx, items[0].ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, items[0].ID.String()), ErrNotFound)
}
