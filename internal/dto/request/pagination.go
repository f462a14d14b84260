package request

// MaxPage caps the page number so the computed offset cannot overflow.
const MaxPage = 1_000_000

// PaginatedRequest is the page/per_page pair read from list query strings.
type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1,max=1000000"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// Offset is the number of records to skip for the requested page.
func (p PaginatedRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	page := min(p.Page, MaxPage)
	return (page - 1) * p.Limit()
}

// Limit clamps per_page to 1..100, defaulting to 10.
func (p PaginatedRequest) Limit() int {
	if p.PerPage < 1 {
		return 10
	}
	if p.PerPage > 100 {
		return 100
	}
	return p.PerPage
}
