package model

// PageMeta describes a slice of a larger result set.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// NewPageMeta computes TotalPages for the given totals.
func NewPageMeta(page, limit int, total int64) PageMeta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageMeta{Page: page, Limit: limit, TotalItems: total, TotalPages: pages}
}

// Page is a paginated result: the items of one page plus its meta.
type Page[T any] struct {
	Items []T      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

// PageItems returns the items for envelope shaping.
func (p Page[T]) PageItems() any {
	return p.Items
}

// PageMeta returns the meta for envelope shaping.
func (p Page[T]) PageMeta() any {
	return p.Meta
}
