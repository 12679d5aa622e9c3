package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"tdc-backend/internal/content"
)

type courseResponse struct {
	Course content.Course `json:"course"`
}

type CourseList struct {
	Items  []content.Course `json:"items"`
	Total  int64            `json:"total"`
	Limit  int64            `json:"limit"`
	Offset int64            `json:"offset"`
}

type CourseFilter struct {
	Category string
	Level    content.Level
	Limit    int
	Offset   int
}

func (c *Client) ListCourses(ctx context.Context, filter CourseFilter) (CourseList, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Level != "" {
		q.Set("level", string(filter.Level))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	path := "/courses"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out CourseList
	err := c.call(ctx, http.MethodGet, path, nil, false, &out)
	return out, err
}

func (c *Client) GetCourse(ctx context.Context, id string) (content.Course, error) {
	var out courseResponse
	if err := c.call(ctx, http.MethodGet, "/courses/"+escape(id), nil, false, &out); err != nil {
		return content.Course{}, err
	}
	return out.Course, nil
}

func (c *Client) CreateCourse(ctx context.Context, course content.Course) (content.Course, error) {
	var out courseResponse
	if err := c.call(ctx, http.MethodPost, "/courses", course, true, &out); err != nil {
		return content.Course{}, err
	}
	return out.Course, nil
}

// UpdateCourse replaces the stored course, including its whole module tree.
// course.Version must be the version last read.
func (c *Client) UpdateCourse(ctx context.Context, course content.Course) (content.Course, error) {
	if err := requirePersisted("course", course.ID); err != nil {
		return content.Course{}, err
	}
	var out courseResponse
	if err := c.call(ctx, http.MethodPut, "/courses/"+escape(course.ID.String()), course, true, &out); err != nil {
		return content.Course{}, err
	}
	return out.Course, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	if err := requirePersisted("course", content.PersistedID(id)); err != nil {
		return err
	}
	return c.call(ctx, http.MethodDelete, "/courses/"+escape(id), nil, true, nil)
}
