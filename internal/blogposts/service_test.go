package blogposts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdc-backend/internal/content"
)

func draftPost() content.BlogPost {
	p := content.NewBlogPost("Channels", "Ada")
	p.Tags = []string{"go", "python", "go", " "}
	p.Topics = []string{"Tutorials"}
	code, _ := content.NewCodeSection("ch := make(chan int)", content.LangGo)
	p.Sections = append(p.Sections, content.NewTextSection("intro"), code)
	return p
}

func TestCreateDedupesAndAssigns(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.UTC)
	post, err := svc.Create(context.Background(), draftPost())
	require.NoError(t, err)
	assert.True(t, post.ID.IsPersisted())
	assert.Equal(t, []string{"go", "python"}, post.Tags)
	for _, s := range post.Sections {
		assert.True(t, s.ID.IsPersisted())
	}
}

func TestSectionOperationsBumpVersion(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), time.UTC)
	post, err := svc.Create(ctx, draftPost())
	require.NoError(t, err)
	id := post.ID.String()
	codeID := post.Sections[1].ID.String()

	code, err := content.NewCodeSection("ch := make(chan string)", content.LangGo)
	require.NoError(t, err)
	version, err := svc.UpdateSection(ctx, id, codeID, code)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	_, err = svc.UpdateSection(ctx, id, codeID, content.NewTextSection("retyped"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = svc.UpdateSection(ctx, id, "missing", code)
	assert.ErrorIs(t, err, ErrSectionNotFound)

	added, version, err := svc.AddSection(ctx, id, content.NewImageSection("https://x/y.png", ""))
	require.NoError(t, err)
	assert.True(t, added.ID.IsPersisted())
	assert.Equal(t, int64(3), version)

	version, err = svc.DeleteSection(ctx, id, post.Sections[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)
	_, err = svc.DeleteSection(ctx, id, post.Sections[0].ID.String())
	assert.ErrorIs(t, err, ErrSectionNotFound)

	stored, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, stored.Sections, 2)
	assert.Equal(t, content.CodeContent{Code: "ch := make(chan string)", Language: content.LangGo}, stored.Sections[0].Content)
	assert.Equal(t, added.ID, stored.Sections[1].ID)

	_, _, err = svc.AddSection(ctx, "missing", code)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRequiresCurrentVersion(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), time.UTC)
	post, err := svc.Create(ctx, draftPost())
	require.NoError(t, err)

	_, _, err = svc.AddSection(ctx, post.ID.String(), content.NewTextSection("more"))
	require.NoError(t, err)

	post.Title = "Stale"
	_, err = svc.Update(ctx, post.ID.String(), post)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestRenderHTML(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), time.UTC)
	p := draftPost()
	p.Sections = append(p.Sections, content.NewTextSection("**bold** <script>alert(1)</script>"))
	post, err := svc.Create(ctx, p)
	require.NoError(t, err)

	html, err := svc.RenderHTML(ctx, post.ID.String())
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.NotContains(t, html, "<script>")
}
