package search

// Paginator windows a result list. Page numbers are 1-based and always
// clamped into range; page size changes snap back to the first page.
type Paginator struct {
	total   int
	perPage int
	page    int
}

const defaultPerPage = 25

// pageSizes are the accepted page sizes.
var pageSizes = map[int]bool{25: true, 50: true, 100: true}

// NewPaginator creates a paginator over total results with the default
// page size.
func NewPaginator(total int) *Paginator {
	if total < 0 {
		total = 0
	}
	return &Paginator{total: total, perPage: defaultPerPage, page: 1}
}

// SetPageSize switches to one of the accepted sizes and resets to the
// first page. Unknown sizes are ignored.
func (p *Paginator) SetPageSize(n int) {
	if !pageSizes[n] || n == p.perPage {
		return
	}
	p.perPage = n
	p.page = 1
}

// SetPage moves to page n, clamped into [1, PageCount].
func (p *Paginator) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	if max := p.PageCount(); n > max {
		n = max
	}
	p.page = n
}

// Page returns the current page number.
func (p *Paginator) Page() int { return p.page }

// PerPage returns the current page size.
func (p *Paginator) PerPage() int { return p.perPage }

// Total returns the result count.
func (p *Paginator) Total() int { return p.total }

// PageCount returns the number of pages, at least 1.
func (p *Paginator) PageCount() int {
	if p.total == 0 {
		return 1
	}
	return (p.total + p.perPage - 1) / p.perPage
}

// Window returns the [start,end) slice bounds of the current page.
func (p *Paginator) Window() (int, int) {
	start := (p.page - 1) * p.perPage
	if start > p.total {
		start = p.total
	}
	end := start + p.perPage
	if end > p.total {
		end = p.total
	}
	return start, end
}

// Slice returns the current page of results.
func (p *Paginator) Slice(results []Result) []Result {
	start, end := p.Window()
	if start >= len(results) {
		return nil
	}
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
