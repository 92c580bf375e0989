package services

// PageParams is the offset-based pagination every list operation accepts.
type PageParams struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit to sane values.
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	return p
}

// Offset computes the row offset for the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages computes the page count for a total row count.
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Paged is the wire shape of every paginated list response.
type Paged[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPaged assembles a paged result from a data window and total count.
func NewPaged[T any](data []T, total int64, p PageParams) Paged[T] {
	p = p.Normalize()
	if data == nil {
		data = []T{}
	}
	return Paged[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// pageSlice windows an in-memory slice the way the store pages rows. Used
// by the in-memory repositories.
func pageSlice[T any](items []T, p PageParams) ([]T, int64) {
	p = p.Normalize()
	total := int64(len(items))
	start := p.Offset()
	if start >= len(items) {
		return []T{}, total
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total
}
