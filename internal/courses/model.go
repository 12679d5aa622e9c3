package courses

import "tdc-backend/internal/content"

type ListFilter struct {
	Category string
	Level    content.Level
}
