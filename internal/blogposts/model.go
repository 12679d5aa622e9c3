package blogposts

type ListFilter struct {
	Tag   string
	Topic string
}
