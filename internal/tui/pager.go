package tui

// pager tracks the selected row and the visible page of a list
type pager struct {
	selected int
	page     int
	perPage  int
	count    int
}

func (p *pager) setPerPage(n int) {
	p.perPage = max(3, n)
	p.page = p.selected / p.perPage
}

// setCount clamps the selection after the list changed size
func (p *pager) setCount(n int) {
	p.count = n
	if p.selected >= n {
		p.selected = max(0, n-1)
	}
	if p.perPage > 0 {
		p.page = p.selected / p.perPage
	}
}

func (p *pager) pages() int {
	if p.perPage <= 0 || p.count == 0 {
		return 1
	}
	return (p.count + p.perPage - 1) / p.perPage
}

// window is the [start, end) range of rows on the current page
func (p *pager) window() (int, int) {
	if p.perPage <= 0 {
		return 0, p.count
	}
	start := p.page * p.perPage
	return start, min(start+p.perPage, p.count)
}

// up and down move the selection, turning the page when it leaves the window
func (p *pager) up() bool {
	if p.selected == 0 {
		return false
	}
	p.selected--
	if start, _ := p.window(); p.selected < start {
		p.page--
	}
	return true
}

func (p *pager) down() bool {
	if p.selected >= p.count-1 {
		return false
	}
	p.selected++
	if _, end := p.window(); p.selected >= end {
		p.page++
	}
	return true
}

// prev and next turn the page and pull the selection into it
func (p *pager) prev() bool {
	if p.page == 0 {
		return false
	}
	p.page--
	_, end := p.window()
	p.selected = min(p.selected, end-1)
	return true
}

func (p *pager) next() bool {
	if p.page >= p.pages()-1 {
		return false
	}
	p.page++
	start, _ := p.window()
	p.selected = max(p.selected, start)
	return true
}
