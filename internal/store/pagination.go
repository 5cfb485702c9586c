package store

const (
	maxPageSize     = 100
	defaultPageSize = 20
)

// Pagination is the envelope shared by every paginated operation. The
// field names are part of the API contract and must not change.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func clampPage(page int) int64 {
	if page < 1 {
		return 1
	}
	return int64(page)
}

func clampLimit(limit int) int64 {
	if limit < 1 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return int64(limit)
}

func newPagination(page, limit, total int64) *Pagination {
	totalPages := int(total / limit)
	if total%limit != 0 {
		totalPages++
	}
	return &Pagination{
		CurrentPage: int(page),
		PageSize:    int(limit),
		TotalCount:  total,
		TotalPages:  totalPages,
		HasNextPage: int(page) < totalPages,
		HasPrevPage: page > 1,
	}
}
