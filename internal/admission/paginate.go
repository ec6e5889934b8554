package admission

// PageSize is the fixed window for application listings.
const PageSize = 4

// Pagination describes the page window returned to the client.
type Pagination struct {
	CurrentPage   int `json:"currentPage"`
	NumberOfPages int `json:"numberOfPages"`
}

// Paginate computes listing metadata. page is the 1-based requested page, or
// 0 when the client did not ask for pagination; CurrentPage echoes that
// request so the two cases stay distinguishable. An empty result always
// reports page 1 of 0.
func Paginate(total int64, page int) Pagination {
	if total == 0 {
		return Pagination{CurrentPage: 1, NumberOfPages: 0}
	}
	pages := int((total + PageSize - 1) / PageSize)
	return Pagination{CurrentPage: page, NumberOfPages: pages}
}

// Offset returns the number of rows to skip for a requested page.
func Offset(page int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * PageSize
}
