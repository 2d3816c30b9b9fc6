// Package listing builds the paged post streams of a community. A Listing is
// produced by a Provider for one community and exposes its posts, load
// progress and the refresh and retry actions.
package listing

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"subpager/internal/domain"
	"subpager/internal/feedapi"
	"subpager/internal/live"
)

// Provider creates listings for a community
type Provider interface {
	PostsOfCommunity(community string, pageSize int) *Listing
}

// FeedSource fetches one page of a community feed
type FeedSource interface {
	CommunityFeed(ctx context.Context, req feedapi.FeedRequest) (feedapi.FeedPage, error)
}

// Listing is everything the UI needs to show one community. It never changes
// after creation; a new query produces a new Listing.
type Listing struct {
	ID        uuid.UUID
	Community string
	Backend   Backend

	PagedList    *live.Value[*PagedList]
	NetworkState *live.Value[domain.NetworkState]
	RefreshState *live.Value[domain.NetworkState]

	refresh   func()
	retry     func()
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Refresh reloads the listing from its first page.
func (l *Listing) Refresh() {
	if l != nil && l.refresh != nil {
		l.refresh()
	}
}

// Retry re-runs the last failed load, if any.
func (l *Listing) Retry() {
	if l != nil && l.retry != nil {
		l.retry()
	}
}

// Close cancels in-flight loads. Results arriving afterwards are dropped.
func (l *Listing) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		if l.cancel != nil {
			l.cancel()
		}
	})
}

func newListing(community string, backend Backend, cancel context.CancelFunc) *Listing {
	return &Listing{
		ID:        uuid.New(),
		Community: community,
		Backend:   backend,
		cancel:    cancel,
	}
}
