package listing

import "subpager/internal/domain"

// PagedList is an immutable snapshot of the posts loaded so far.
type PagedList struct {
	Community  string
	Posts      []domain.Post
	EndReached bool

	pageSize int
	loadMore func()
}

// Len returns the number of loaded posts; nil lists are empty.
func (p *PagedList) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Posts)
}

// PrefetchDistance is how close to the end a read must come before the next
// page is requested.
func PrefetchDistance(pageSize int) int {
	return max(pageSize/3, 1)
}

// LoadAround tells the list that index is being shown. Near the end it asks
// for the next page. Calling it on a superseded snapshot is harmless.
func (p *PagedList) LoadAround(index int) {
	if p == nil || p.EndReached || p.loadMore == nil {
		return
	}
	if index >= len(p.Posts)-PrefetchDistance(p.pageSize) {
		p.loadMore()
	}
}
