package pagination

const (
	// DefaultPerPage is the standard page size when none is provided.
	DefaultPerPage = 25
	// MaxPerPage caps how many rows any listing can request.
	MaxPerPage = 100
)

// Params holds page-number pagination inputs from controllers.
type Params struct {
	Page    int
	PerPage int
}

// Normalize clamps the page and per-page values to their allowed ranges.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the SQL offset for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Meta describes one page of a listing, for response envelopes.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// BuildMeta derives the page metadata from params and a total row count.
func BuildMeta(params Params, total int64) Meta {
	n := params.Normalize()
	pages := int(total) / n.PerPage
	if int(total)%n.PerPage != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return Meta{
		Page:       n.Page,
		PerPage:    n.PerPage,
		TotalItems: total,
		TotalPages: pages,
	}
}
