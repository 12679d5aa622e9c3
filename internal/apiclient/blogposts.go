package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"tdc-backend/internal/content"
)

type postResponse struct {
	Post content.BlogPost `json:"post"`
}

type versionResponse struct {
	Version int64 `json:"version"`
}

type sectionResponse struct {
	Section content.Section `json:"section"`
	Version int64           `json:"version"`
}

type PostList struct {
	Items  []content.BlogPost `json:"items"`
	Total  int64              `json:"total"`
	Limit  int64              `json:"limit"`
	Offset int64              `json:"offset"`
}

func (c *Client) ListPosts(ctx context.Context, tag, topic string) (PostList, error) {
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	}
	if topic != "" {
		q.Set("topic", topic)
	}
	path := "/blog-posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out PostList
	err := c.call(ctx, http.MethodGet, path, nil, false, &out)
	return out, err
}

func (c *Client) GetPost(ctx context.Context, id string) (content.BlogPost, error) {
	var out postResponse
	if err := c.call(ctx, http.MethodGet, "/blog-posts/"+escape(id), nil, false, &out); err != nil {
		return content.BlogPost{}, err
	}
	return out.Post, nil
}

func (c *Client) CreatePost(ctx context.Context, post content.BlogPost) (content.BlogPost, error) {
	var out postResponse
	if err := c.call(ctx, http.MethodPost, "/blog-posts", post, true, &out); err != nil {
		return content.BlogPost{}, err
	}
	return out.Post, nil
}

// UpdatePost replaces title, tags, topics, banner and the whole sections list.
func (c *Client) UpdatePost(ctx context.Context, post content.BlogPost) (content.BlogPost, error) {
	if err := requirePersisted("post", post.ID); err != nil {
		return content.BlogPost{}, err
	}
	var out postResponse
	if err := c.call(ctx, http.MethodPut, "/blog-posts/"+escape(post.ID.String()), post, true, &out); err != nil {
		return content.BlogPost{}, err
	}
	return out.Post, nil
}

// UpdatePostSection replaces the content of one persisted section and returns
// the post's new version.
func (c *Client) UpdatePostSection(ctx context.Context, postID content.ID, section content.Section) (int64, error) {
	if err := requirePersisted("post", postID); err != nil {
		return 0, err
	}
	if err := requirePersisted("section", section.ID); err != nil {
		return 0, err
	}
	var out versionResponse
	path := "/blog-posts/" + escape(postID.String()) + "/sections/" + escape(section.ID.String())
	if err := c.call(ctx, http.MethodPut, path, section, true, &out); err != nil {
		return 0, err
	}
	return out.Version, nil
}

// AddPostSection appends section to the post; the server assigns its id.
func (c *Client) AddPostSection(ctx context.Context, postID content.ID, section content.Section) (content.Section, int64, error) {
	if err := requirePersisted("post", postID); err != nil {
		return content.Section{}, 0, err
	}
	var out sectionResponse
	if err := c.call(ctx, http.MethodPost, "/blog-posts/"+escape(postID.String())+"/sections", section, true, &out); err != nil {
		return content.Section{}, 0, err
	}
	return out.Section, out.Version, nil
}

func (c *Client) DeletePostSection(ctx context.Context, postID, sectionID content.ID) (int64, error) {
	if err := requirePersisted("post", postID); err != nil {
		return 0, err
	}
	if err := requirePersisted("section", sectionID); err != nil {
		return 0, err
	}
	var out versionResponse
	path := "/blog-posts/" + escape(postID.String()) + "/sections/" + escape(sectionID.String())
	if err := c.call(ctx, http.MethodDelete, path, nil, true, &out); err != nil {
		return 0, err
	}
	return out.Version, nil
}
