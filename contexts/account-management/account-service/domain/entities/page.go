package entities

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is zero-based.
type PageRequest struct {
	Page int
	Size int
}

// Normalize applies the default size when none was given.
func (p PageRequest) Normalize() PageRequest {
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, request PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if request.Size > 0 {
		totalPages = int((total + int64(request.Size) - 1) / int64(request.Size))
	}
	return Page[T]{
		Items:      items,
		Page:       request.Page,
		Size:       request.Size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
