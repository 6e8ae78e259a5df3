package analytics

import "github.com/noah-isme/trendx-analytics-api/internal/models"

// DefaultPageSize is used when the caller passes no page size.
const DefaultPageSize = 50

// AllowedPageSizes are the page sizes offered to clients.
var AllowedPageSizes = []int{25, 50, 100, 200}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items      []T
	TotalCount int
	PageCount  int
	Page       int
	PageSize   int
}

// Paginate returns page (1-based) of items. The page is clamped to
// [1, max(1, pageCount)], so an out-of-range page yields the nearest one.
func Paginate[T any](items []T, pageSize, page int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	pageCount := (total + pageSize - 1) / pageSize
	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	pageItems := items[start:end:end]
	if pageItems == nil {
		pageItems = []T{}
	}
	return Page[T]{
		Items:      pageItems,
		TotalCount: total,
		PageCount:  pageCount,
		Page:       page,
		PageSize:   pageSize,
	}
}

// Pagination converts the page into envelope metadata.
func (p Page[T]) Pagination() *models.Pagination {
	return &models.Pagination{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		PageCount:  p.PageCount,
	}
}

// ValidPageSize reports whether n is one of AllowedPageSizes.
func ValidPageSize(n int) bool {
	for _, size := range AllowedPageSizes {
		if n == size {
			return true
		}
	}
	return false
}
