// Package diff decides whether an edited document differs from its last
// saved copy. It never persists anything.
package diff

import (
	"tdc-backend/internal/content"
)

type State int

const (
	Clean State = iota
	Dirty
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

func StateOf(dirty bool) State {
	if dirty {
		return Dirty
	}
	return Clean
}

// SaveEnabled reports whether a save control should accept a click.
func SaveEnabled(dirty, inFlight bool) bool {
	return dirty && !inFlight
}

func CourseDirty(draft, original content.Course) bool {
	if draft.ID != original.ID ||
		draft.Title != original.Title ||
		draft.Description != original.Description ||
		draft.Level != original.Level ||
		draft.Category != original.Category ||
		draft.Price != original.Price ||
		draft.Instructor != original.Instructor {
		return true
	}
	if !sameResources(draft.Resources, original.Resources) {
		return true
	}
	if len(draft.Modules) != len(original.Modules) {
		return true
	}
	for i := range draft.Modules {
		if ModuleDirty(draft.Modules[i], original.Modules[i]) {
			return true
		}
	}
	return false
}

func ModuleDirty(draft, original content.Module) bool {
	if draft.ID != original.ID ||
		draft.Title != original.Title ||
		draft.Description != original.Description ||
		draft.Duration != original.Duration {
		return true
	}
	if len(draft.Lessons) != len(original.Lessons) {
		return true
	}
	for i := range draft.Lessons {
		if LessonDirty(draft.Lessons[i], original.Lessons[i]) {
			return true
		}
	}
	return false
}

func LessonDirty(draft, original content.Lesson) bool {
	if draft.ID != original.ID ||
		draft.Title != original.Title ||
		draft.Description != original.Description ||
		draft.Duration != original.Duration ||
		draft.VideoURL != original.VideoURL ||
		draft.IsLocked != original.IsLocked {
		return true
	}
	return SectionsDirty(draft.Sections, original.Sections)
}

// PostDirty compares tags and topics as sets; everything else is compared
// field by field and sections in order.
func PostDirty(draft, original content.BlogPost) bool {
	if draft.ID != original.ID ||
		draft.Title != original.Title ||
		draft.AuthorNameFE != original.AuthorNameFE ||
		draft.BannerImage != original.BannerImage {
		return true
	}
	if !SameSet(draft.Tags, original.Tags) || !SameSet(draft.Topics, original.Topics) {
		return true
	}
	return SectionsDirty(draft.Sections, original.Sections)
}

// SectionsDirty reports additions, removals, reorderings and content changes.
func SectionsDirty(draft, original []content.Section) bool {
	if len(draft) != len(original) {
		return true
	}
	for i := range draft {
		if draft[i].ID != original[i].ID {
			return true
		}
		if !content.ContentEqual(draft[i].Content, original[i].Content) {
			return true
		}
	}
	return false
}

// SectionSaveable reports whether the per-section save affordance applies to
// id: the section must exist in both copies and its content must differ.
func SectionSaveable(draft, original []content.Section, id content.ID) bool {
	d, ok := content.SectionByID(draft, id)
	if !ok {
		return false
	}
	o, ok := content.SectionByID(original, id)
	if !ok {
		return false
	}
	return !content.ContentEqual(d.Content, o.Content)
}

// SaveableSections lists, in draft order, every section SectionSaveable accepts.
func SaveableSections(draft, original []content.Section) []content.ID {
	var out []content.ID
	for _, s := range draft {
		if SectionSaveable(draft, original, s.ID) {
			out = append(out, s.ID)
		}
	}
	return out
}

// SameSet compares two string lists ignoring order and multiplicity.
func SameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, ok := as[v]; !ok {
			return false
		}
		bs[v] = struct{}{}
	}
	return len(as) == len(bs)
}

func sameResources(a, b []content.Resource) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
