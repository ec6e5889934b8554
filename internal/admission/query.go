package admission

import "github.com/opptakhq/opptak/pkg/models"

// Sort keys accepted by the list endpoint.
const (
	SortNameAsc  = "name_asc"
	SortNameDesc = "name_desc"
	SortDateAsc  = "date_asc"
	SortDateDesc = "date_desc"
)

func ValidSort(s string) bool {
	switch s {
	case SortNameAsc, SortNameDesc, SortDateAsc, SortDateDesc:
		return true
	}
	return false
}

// ListQuery describes one application listing request after parameter
// validation. Zero values mean the filter was not supplied.
type ListQuery struct {
	// Name is matched as a case-insensitive substring of the applicant name.
	Name string
	// Committees restricts to applications with a status for one of these
	// committees. Combined with Status, a single status entry must satisfy
	// both conditions.
	Committees []int64
	Status     models.StatusValue
	Sort       string
	// Page is 1-based; 0 means no pagination was requested (first window is
	// still returned).
	Page int
}
