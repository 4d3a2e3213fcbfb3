package shared

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filter carries the paging, ordering and free-text search of a list query.
// Zero values are valid and fall back to the first page of defaultPageSize.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Offset is the number of rows to skip for f.Page
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit is the effective page size, capped at maxPageSize
func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return defaultPageSize
	}
	return min(f.PageSize, maxPageSize)
}
