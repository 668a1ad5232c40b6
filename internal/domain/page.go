package domain

// Session history paging bounds.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps (Page-1)*Limit far below the int range, so the offset
	// handed to a store is always a small non-negative number.
	MaxPage = 1_000_000
)

// PaginationParams is one page of a user's session history, newest first.
// Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds a PaginationParams from the optional page and
// limit query values. Missing or non-positive values fall back to page 1 and
// DefaultPageLimit; oversized values are clamped to MaxPage and MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxPage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset returns the number of sessions that precede this page. Values built
// outside NewPaginationParams are clamped the same way, so the result is never
// negative.
func (p PaginationParams) Offset() int {
	page := min(max(p.Page, 1), MaxPage)
	limit := min(max(p.Limit, 0), MaxPageLimit)
	return (page - 1) * limit
}
