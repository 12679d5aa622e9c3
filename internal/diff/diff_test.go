package diff

import (
	"testing"

	"tdc-backend/internal/content"
)

func persistedPost() content.BlogPost {
	p := content.NewBlogPost("Intro to Go", "Ann")
	p.ID = content.PersistedID("p1")
	p.Tags = []string{"go", "backend"}
	p.Topics = []string{"Programming"}
	p.Sections = []content.Section{
		{ID: content.PersistedID("s1"), Content: content.TextContent{Text: "hello"}},
		{ID: content.PersistedID("s2"), Content: content.CodeContent{Code: "fmt.Println(1)", Language: content.LangGo}},
	}
	return p
}

func TestPostDirtyOnlyChangedCodeSection(t *testing.T) {
	original := persistedPost()
	draft := original.Clone()
	draft.Sections[1].Content = content.CodeContent{Code: "fmt.Println(2)", Language: content.LangGo}

	if !PostDirty(draft, original) {
		t.Fatalf("expected post to be dirty")
	}
	ids := SaveableSections(draft.Sections, original.Sections)
	if len(ids) != 1 || ids[0] != content.PersistedID("s2") {
		t.Fatalf("expected only s2 to be saveable, got %v", ids)
	}
	if SectionSaveable(draft.Sections, original.Sections, content.PersistedID("s1")) {
		t.Fatalf("unchanged section must not be saveable")
	}
}

func TestPostDirtyIgnoresTagOrder(t *testing.T) {
	original := persistedPost()
	draft := original.Clone()
	draft.Tags = []string{"backend", "go"}

	if PostDirty(draft, original) {
		t.Fatalf("reordered tags must not make the post dirty")
	}

	draft.Tags = append(draft.Tags, "cloud")
	if !PostDirty(draft, original) {
		t.Fatalf("added tag must make the post dirty")
	}
}

func TestNewSectionIsDirtyButNotSaveable(t *testing.T) {
	original := persistedPost()
	draft := original.Clone()
	fresh := content.NewTextSection("new")
	draft.Sections = append(draft.Sections, fresh)

	if !PostDirty(draft, original) {
		t.Fatalf("added section must make the post dirty")
	}
	if SectionSaveable(draft.Sections, original.Sections, fresh.ID) {
		t.Fatalf("a section missing from original cannot use the per-section save")
	}
}

func TestRemovedSectionNotSaveable(t *testing.T) {
	original := persistedPost()
	draft := original.Clone()
	draft.Sections = draft.Sections[:1]

	if !SectionsDirty(draft.Sections, original.Sections) {
		t.Fatalf("removal must be dirty")
	}
	if SectionSaveable(draft.Sections, original.Sections, content.PersistedID("s2")) {
		t.Fatalf("removed section must not be saveable")
	}
}

func TestCourseDirty(t *testing.T) {
	c := content.NewCourse("Go")
	m := content.NewModule("M1")
	l := content.NewLesson("L1")
	l.Sections = append(l.Sections, content.NewTextSection("a"))
	m.Lessons = append(m.Lessons, l)
	c.Modules = append(c.Modules, m)

	draft := c.Clone()
	if CourseDirty(draft, c) {
		t.Fatalf("clone must be clean")
	}
	if StateOf(CourseDirty(draft, c)) != Clean {
		t.Fatalf("expected clean state")
	}

	draft.Modules[0].Lessons[0].IsLocked = false
	if !CourseDirty(draft, c) {
		t.Fatalf("lesson lock change must be dirty")
	}

	draft = c.Clone()
	draft.Price = 10
	if !CourseDirty(draft, c) {
		t.Fatalf("price change must be dirty")
	}
}

func TestSaveEnabled(t *testing.T) {
	if SaveEnabled(false, false) {
		t.Fatalf("clean documents cannot be saved")
	}
	if SaveEnabled(true, true) {
		t.Fatalf("in-flight saves disable the control")
	}
	if !SaveEnabled(true, false) {
		t.Fatalf("dirty documents can be saved")
	}
}

func TestSameSet(t *testing.T) {
	if !SameSet(nil, []string{}) {
		t.Fatalf("nil and empty are the same set")
	}
	if SameSet([]string{"a"}, []string{"b"}) {
		t.Fatalf("different sets")
	}
	if !SameSet([]string{"a", "b"}, []string{"b", "a", "a"}) {
		t.Fatalf("multiplicity must be ignored")
	}
}
