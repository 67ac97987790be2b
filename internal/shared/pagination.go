package shared

// ListFilters carries common list query parameters.
type ListFilters struct {
	Limit  int
	Offset int
	Search string
}

// Normalize applies sane bounds to limit and offset.
func (f *ListFilters) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
