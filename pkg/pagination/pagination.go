package pagination

// Default and upper bound for page sizes requested over HTTP.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Meta describes where a page sits within the full ordered result set.
type Meta struct {
	Total              int64 `json:"total"`
	TotalPages         int64 `json:"totalPages"`
	CurrentPage        int64 `json:"currentPage"`
	NextPageExists     bool  `json:"nextPageExists"`
	PreviousPageExists bool  `json:"previousPageExists"`
}

// Compute derives page metadata from a row count and a limit/offset pair.
// limit must be positive and offset non-negative; callers validate both.
func Compute(total int64, limit, offset int) Meta {
	l := int64(limit)
	totalPages := int64(0)
	if total > 0 {
		totalPages = (total + l - 1) / l
	}
	currentPage := int64(offset)/l + 1

	return Meta{
		Total:              total,
		TotalPages:         totalPages,
		CurrentPage:        currentPage,
		NextPageExists:     currentPage < totalPages,
		PreviousPageExists: currentPage > 1,
	}
}
