package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"tdc-backend/internal/apiclient"
	"tdc-backend/internal/content"
	"tdc-backend/internal/diff"
	"tdc-backend/internal/editor"
	"tdc-backend/internal/render"
	"tdc-backend/internal/upload"
)

// PostComposer is the state of one open blog post editor. Besides the
// whole-post save it offers per-section calls for persisted posts.
type PostComposer struct {
	store PostStore
	log   *slog.Logger

	mu          sync.Mutex
	draft       content.BlogPost
	original    content.BlogPost
	inFlight    bool
	sectionBusy map[content.ID]bool
	lastErr     error
	needsReauth bool
}

func NewPostComposer(store PostStore, author string, log *slog.Logger) *PostComposer {
	return newPostComposer(store, log, content.NewBlogPost("", author))
}

// LoadPost fetches a post for editing. A failed read yields no composer.
func LoadPost(ctx context.Context, store PostStore, id string, log *slog.Logger) (*PostComposer, error) {
	post, err := store.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load post %s: %w", id, err)
	}
	return newPostComposer(store, log, post), nil
}

func newPostComposer(store PostStore, log *slog.Logger, post content.BlogPost) *PostComposer {
	if log == nil {
		log = slog.Default()
	}
	return &PostComposer{
		store:       store,
		log:         log.With(slog.String("component", "post_composer")),
		draft:       post.Clone(),
		original:    post.Clone(),
		sectionBusy: make(map[content.ID]bool),
	}
}

func (p *PostComposer) Draft() content.BlogPost {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Clone()
}

func (p *PostComposer) Original() content.BlogPost {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.original.Clone()
}

func (p *PostComposer) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return diff.PostDirty(p.draft, p.original)
}

func (p *PostComposer) State() diff.State { return diff.StateOf(p.Dirty()) }

func (p *PostComposer) SaveEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return diff.SaveEnabled(diff.PostDirty(p.draft, p.original), p.busy())
}

func (p *PostComposer) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

func (p *PostComposer) NeedsReauth() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.needsReauth
}

func (p *PostComposer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// SaveableSections lists the sections that currently show a per-section save.
// Unsaved posts have none, and none are offered while the whole post is being
// saved or while that section's own save is running.
func (p *PostComposer) SaveableSections() []content.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.original.ID.IsPersisted() || p.inFlight {
		return nil
	}
	var out []content.ID
	for _, id := range diff.SaveableSections(p.draft.Sections, p.original.Sections) {
		if !p.sectionBusy[id] {
			out = append(out, id)
		}
	}
	return out
}

func (p *PostComposer) SectionSaveable(id content.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.original.ID.IsPersisted() && !p.inFlight && !p.sectionBusy[id] &&
		diff.SectionSaveable(p.draft.Sections, p.original.Sections, id)
}

func (p *PostComposer) edit(fn func(*content.BlogPost) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.draft.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	p.draft = next
	return nil
}

func (p *PostComposer) SetTitle(title string) {
	_ = p.edit(func(d *content.BlogPost) error { d.Title = title; return nil })
}

func (p *PostComposer) SetAuthor(name string) {
	_ = p.edit(func(d *content.BlogPost) error { d.AuthorNameFE = name; return nil })
}

func (p *PostComposer) SetBanner(b content.BannerImage) {
	_ = p.edit(func(d *content.BlogPost) error { d.BannerImage = b; return nil })
}

// TopicSuggestions lists the suggested topics the draft does not carry yet.
func (p *PostComposer) TopicSuggestions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(content.SuggestedTopics))
	for _, topic := range content.SuggestedTopics {
		if !slices.Contains(p.draft.Topics, topic) {
			out = append(out, topic)
		}
	}
	return out
}

// AddTag reports false when the tag is blank or already present.
func (p *PostComposer) AddTag(tag string) bool {
	var added bool
	_ = p.edit(func(d *content.BlogPost) error { added = d.AddTag(tag); return nil })
	return added
}

func (p *PostComposer) RemoveTag(tag string) bool {
	var removed bool
	_ = p.edit(func(d *content.BlogPost) error { removed = d.RemoveTag(tag); return nil })
	return removed
}

func (p *PostComposer) AddTopic(topic string) bool {
	var added bool
	_ = p.edit(func(d *content.BlogPost) error { added = d.AddTopic(topic); return nil })
	return added
}

func (p *PostComposer) RemoveTopic(topic string) bool {
	var removed bool
	_ = p.edit(func(d *content.BlogPost) error { removed = d.RemoveTopic(topic); return nil })
	return removed
}

// AddSection appends s to the draft only.
func (p *PostComposer) AddSection(s content.Section) error {
	if !s.Valid() {
		return fmt.Errorf("section %s: %w", s.ID, content.ErrInvalidContentShape)
	}
	return p.edit(func(d *content.BlogPost) error {
		*d = AddPostSection(*d, s)
		return nil
	})
}

// RemoveSection deletes a section. Sections that exist on the server are
// deleted there first and then dropped from both draft and original; sections
// that were never saved only leave the draft.
func (p *PostComposer) RemoveSection(ctx context.Context, id content.ID) error {
	p.mu.Lock()
	if content.IndexOfSection(p.draft.Sections, id) < 0 && content.IndexOfSection(p.original.Sections, id) < 0 {
		p.mu.Unlock()
		return fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
	}
	persisted := p.original.ID.IsPersisted() && content.IndexOfSection(p.original.Sections, id) >= 0
	if !persisted {
		p.draft, _ = RemovePostSection(p.draft, id)
		p.mu.Unlock()
		return nil
	}
	if p.inFlight || p.sectionBusy[id] {
		p.mu.Unlock()
		return ErrSaveInFlight
	}
	p.sectionBusy[id] = true
	postID := p.original.ID
	p.mu.Unlock()

	version, err := p.store.DeletePostSection(ctx, postID, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sectionBusy, id)
	if err != nil {
		p.recordErr(err)
		p.log.Warn("post composer delete section: failed", slog.String("post_id", postID.String()), slog.String("section_id", id.String()), slog.String("error", err.Error()))
		return err
	}
	if next, rerr := RemovePostSection(p.draft, id); rerr == nil {
		p.draft = next
	}
	if next, rerr := RemovePostSection(p.original, id); rerr == nil {
		p.original = next
	}
	p.setVersion(version)
	p.lastErr = nil
	p.log.Info("post composer delete section: ok", slog.String("post_id", postID.String()), slog.String("section_id", id.String()))
	return nil
}

// SaveSection stores the draft content of one persisted section and adopts it
// into the original, leaving every other pending change dirty.
func (p *PostComposer) SaveSection(ctx context.Context, id content.ID) error {
	p.mu.Lock()
	draftSection, inDraft := content.SectionByID(p.draft.Sections, id)
	if !inDraft {
		p.mu.Unlock()
		return fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
	}
	if !p.original.ID.IsPersisted() || content.IndexOfSection(p.original.Sections, id) < 0 {
		p.mu.Unlock()
		return fmt.Errorf("section %s: %w", id, ErrUnsupported)
	}
	if !diff.SectionSaveable(p.draft.Sections, p.original.Sections, id) {
		p.mu.Unlock()
		return ErrNotDirty
	}
	if p.inFlight || p.sectionBusy[id] {
		p.mu.Unlock()
		return ErrSaveInFlight
	}
	p.sectionBusy[id] = true
	postID := p.original.ID
	p.mu.Unlock()

	version, err := p.store.UpdatePostSection(ctx, postID, draftSection)

	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sectionBusy, id)
	if err != nil {
		p.recordErr(err)
		p.log.Warn("post composer save section: failed", slog.String("post_id", postID.String()), slog.String("section_id", id.String()), slog.String("error", err.Error()))
		return err
	}
	if next, rerr := ReplacePostSection(p.original, id, draftSection.Content); rerr == nil {
		p.original = next
	}
	p.setVersion(version)
	p.lastErr = nil
	p.log.Info("post composer save section: ok", slog.String("post_id", postID.String()), slog.String("section_id", id.String()))
	return nil
}

// PublishSection appends a draft-only section to a persisted post. The server
// identity replaces the provisional one in the draft and the section is added
// to the original.
func (p *PostComposer) PublishSection(ctx context.Context, id content.ID) (content.Section, error) {
	p.mu.Lock()
	s, ok := content.SectionByID(p.draft.Sections, id)
	if !ok {
		p.mu.Unlock()
		return content.Section{}, fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
	}
	if !p.original.ID.IsPersisted() || content.IndexOfSection(p.original.Sections, id) >= 0 {
		p.mu.Unlock()
		return content.Section{}, fmt.Errorf("section %s: %w", id, ErrUnsupported)
	}
	if p.inFlight || p.sectionBusy[id] {
		p.mu.Unlock()
		return content.Section{}, ErrSaveInFlight
	}
	p.sectionBusy[id] = true
	postID := p.original.ID
	p.mu.Unlock()

	saved, version, err := p.store.AddPostSection(ctx, postID, s)

	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sectionBusy, id)
	if err != nil {
		p.recordErr(err)
		p.log.Warn("post composer publish section: failed", slog.String("post_id", postID.String()), slog.String("error", err.Error()))
		return content.Section{}, err
	}
	if i := content.IndexOfSection(p.draft.Sections, id); i >= 0 {
		next := p.draft.Clone()
		next.Sections[i] = saved
		p.draft = next
	}
	p.original = AddPostSection(p.original, saved)
	p.setVersion(version)
	p.lastErr = nil
	p.log.Info("post composer publish section: ok", slog.String("post_id", postID.String()), slog.String("section_id", saved.ID.String()))
	return saved, nil
}

// SectionEditor returns an editor bound to the draft: it reads the draft's
// copy of the section and applies every edit to it.
func (p *PostComposer) SectionEditor(id content.ID, up upload.Uploader) (editor.Editor, error) {
	p.mu.Lock()
	s, ok := content.SectionByID(p.draft.Sections, id)
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
	}
	return editor.New(s, editor.Options{Uploader: up, Owner: p}), nil
}

func (p *PostComposer) SectionContent(id content.ID) (content.Content, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := content.SectionByID(p.draft.Sections, id)
	return s.Content, ok
}

func (p *PostComposer) UpdateSection(id content.ID, fn func(content.Content) content.Content) (content.Content, error) {
	var next content.Content
	err := p.edit(func(d *content.BlogPost) error {
		s, ok := content.SectionByID(d.Sections, id)
		if !ok {
			return fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
		}
		next = fn(s.Content)
		out, err := ReplacePostSection(*d, id, next)
		*d = out
		return err
	})
	if err != nil {
		p.log.Warn("post composer: edit for missing section dropped", slog.String("section_id", id.String()))
		return nil, err
	}
	return next, nil
}

func (p *PostComposer) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = p.original.Clone()
	p.lastErr = nil
}

// Submit persists the whole post, replacing tags, topics and the sections
// list on the server. The response becomes both draft and original.
func (p *PostComposer) Submit(ctx context.Context) (content.BlogPost, error) {
	p.mu.Lock()
	if p.busy() {
		p.mu.Unlock()
		return content.BlogPost{}, ErrSaveInFlight
	}
	if !diff.PostDirty(p.draft, p.original) {
		p.mu.Unlock()
		return content.BlogPost{}, ErrNotDirty
	}
	if err := p.draft.Validate(); err != nil {
		p.lastErr = err
		p.mu.Unlock()
		return content.BlogPost{}, err
	}
	p.inFlight = true
	draft := p.draft.Clone()
	p.mu.Unlock()

	var saved content.BlogPost
	var err error
	if draft.ID.IsPersisted() {
		saved, err = p.store.UpdatePost(ctx, draft)
	} else {
		saved, err = p.store.CreatePost(ctx, draft)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if err != nil {
		p.recordErr(err)
		p.log.Warn("post composer submit: failed", slog.String("post_id", draft.ID.String()), slog.String("error", err.Error()))
		return content.BlogPost{}, err
	}
	p.draft = saved.Clone()
	p.original = saved.Clone()
	p.lastErr = nil
	p.needsReauth = false
	p.log.Info("post composer submit: ok", slog.String("post_id", saved.ID.String()), slog.Int64("version", saved.Version))
	return saved.Clone(), nil
}

func (p *PostComposer) Preview() (string, error) {
	return render.Post(p.Draft())
}

// busy reports whether any save of this post, whole or per section, is
// running. busy, recordErr and setVersion expect p.mu to be held.
func (p *PostComposer) busy() bool {
	return p.inFlight || len(p.sectionBusy) > 0
}

func (p *PostComposer) recordErr(err error) {
	p.lastErr = err
	p.needsReauth = errors.Is(err, apiclient.ErrUnauthorized)
}

func (p *PostComposer) setVersion(v int64) {
	if v == 0 {
		return
	}
	p.draft.Version = v
	p.original.Version = v
}
