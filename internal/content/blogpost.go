package content

import (
	"strings"
	"time"
)

// SuggestedTopics is the vocabulary offered by the post editor. It is not a
// closed set.
var SuggestedTopics = []string{
	"Programming",
	"Web Development",
	"Data Science",
	"Artificial Intelligence",
	"Career",
	"Tutorials",
	"News",
}

type BannerImage struct {
	URL string `json:"url" bson:"url"`
	Alt string `json:"alt" bson:"alt"`
}

type BlogPost struct {
	ID           ID          `json:"id" bson:"_id,omitempty"`
	Title        string      `json:"title" bson:"title" validate:"required"`
	AuthorNameFE string      `json:"authorNameFE" bson:"authorNameFE"`
	BannerImage  BannerImage `json:"bannerImage" bson:"bannerImage"`
	Tags         []string    `json:"tags" bson:"tags"`
	Topics       []string    `json:"topics" bson:"topics"`
	Sections     []Section   `json:"sections" bson:"sections" validate:"dive"`
	Version      int64       `json:"version" bson:"version"`
	CreatedAt    time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt" bson:"updatedAt"`
}

func NewBlogPost(title, author string) BlogPost {
	return BlogPost{
		ID:           NewLocalID(),
		Title:        strings.TrimSpace(title),
		AuthorNameFE: strings.TrimSpace(author),
		Tags:         []string{},
		Topics:       []string{},
		Sections:     []Section{},
	}
}

func (p BlogPost) Clone() BlogPost {
	out := p
	out.Tags = cloneStrings(p.Tags)
	out.Topics = cloneStrings(p.Topics)
	out.Sections = cloneSections(p.Sections)
	return out
}

// AddTag returns true when tag was not present yet.
func (p *BlogPost) AddTag(tag string) bool {
	var added bool
	p.Tags, added = addUnique(p.Tags, tag)
	return added
}

func (p *BlogPost) RemoveTag(tag string) bool {
	var removed bool
	p.Tags, removed = removeValue(p.Tags, tag)
	return removed
}

func (p *BlogPost) AddTopic(topic string) bool {
	var added bool
	p.Topics, added = addUnique(p.Topics, topic)
	return added
}

func (p *BlogPost) RemoveTopic(topic string) bool {
	var removed bool
	p.Topics, removed = removeValue(p.Topics, topic)
	return removed
}

func (p BlogPost) Validate() error {
	return validateSections(p.Sections)
}

// Dedupe returns values trimmed, without blanks and duplicates, in first-seen order.
func Dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out, _ = addUnique(out, v)
	}
	return out
}

func addUnique(values []string, v string) ([]string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return values, false
	}
	for _, existing := range values {
		if existing == v {
			return values, false
		}
	}
	out := make([]string, len(values), len(values)+1)
	copy(out, values)
	return append(out, v), true
}

func removeValue(values []string, v string) ([]string, bool) {
	v = strings.TrimSpace(v)
	out := make([]string, 0, len(values))
	removed := false
	for _, existing := range values {
		if existing == v {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	return out, removed
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
