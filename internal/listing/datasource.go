package listing

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"subpager/internal/domain"
	"subpager/internal/feedapi"
	"subpager/internal/live"
)

// keying decides how the next page of a feed is addressed
type keying int

const (
	byPage keying = iota // cursor returned with the previous page
	byItem               // name of the last loaded post
)

func (k keying) request(community string, limit int, key string) feedapi.FeedRequest {
	req := feedapi.FeedRequest{Community: community, Limit: limit}
	if k == byItem {
		req.After = key
	} else {
		req.Cursor = key
	}
	return req
}

// next returns the key of the page after page and whether the feed is done.
func (k keying) next(page feedapi.FeedPage) (string, bool) {
	if k == byItem {
		if len(page.Posts) == 0 {
			return "", true
		}
		return page.Posts[len(page.Posts)-1].Name, false
	}
	return page.Cursor, page.Cursor == ""
}

// networkSource loads one generation of a community feed into memory. A
// refresh replaces it with a new source.
type networkSource struct {
	community string
	pageSize  int
	keys      keying
	fresh     bool
	feed      FeedSource
	exec      Executor
	disp      live.Dispatcher
	ctx       context.Context
	cancel    context.CancelFunc
	log       *zap.Logger

	list         *live.Mutable[*PagedList]
	networkState *live.Mutable[domain.NetworkState]
	initialLoad  *live.Mutable[domain.NetworkState]

	mu      sync.Mutex
	posts   []domain.Post
	nextKey string
	end     bool
	loading bool
	retry   func()
}

func (s *networkSource) initialLoadSize() int {
	return s.pageSize * 3
}

func (s *networkSource) loadInitial() {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	s.networkState.Post(s.disp, domain.Loading)
	s.initialLoad.Post(s.disp, domain.Loading)

	req := s.keys.request(s.community, s.initialLoadSize(), "")
	req.Fresh = s.fresh
	s.fetch(req, func(page feedapi.FeedPage, err error) {
		s.mu.Lock()
		s.loading = false
		if err != nil {
			s.retry = s.loadInitial
			s.mu.Unlock()
			state := domain.NetworkError(err.Error())
			s.networkState.Set(state)
			s.initialLoad.Set(state)
			return
		}
		s.retry = nil
		s.posts = page.Posts
		s.nextKey, s.end = s.keys.next(page)
		snap := s.snapshotLocked()
		s.mu.Unlock()

		s.list.Set(snap)
		s.networkState.Set(domain.Loaded)
		s.initialLoad.Set(domain.Loaded)
	})
}

func (s *networkSource) loadAfter() {
	s.mu.Lock()
	// a failed load waits for retry
	if s.loading || s.end || s.retry != nil || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.loading = true
	key := s.nextKey
	s.mu.Unlock()

	s.networkState.Post(s.disp, domain.Loading)

	s.fetch(s.keys.request(s.community, s.pageSize, key), func(page feedapi.FeedPage, err error) {
		s.mu.Lock()
		s.loading = false
		if err != nil {
			s.retry = s.loadAfter
			s.mu.Unlock()
			s.networkState.Set(domain.NetworkError(err.Error()))
			return
		}
		s.retry = nil
		s.posts = append(s.posts, page.Posts...)
		s.nextKey, s.end = s.keys.next(page)
		snap := s.snapshotLocked()
		s.mu.Unlock()

		s.list.Set(snap)
		s.networkState.Set(domain.Loaded)
	})
}

// retryAllFailed runs the stored retry once.
func (s *networkSource) retryAllFailed() {
	s.mu.Lock()
	retry := s.retry
	s.retry = nil
	s.mu.Unlock()
	if retry != nil {
		retry()
	}
}

// fetch runs req on the executor and hands the result to apply on the
// dispatcher. Nothing is applied once the source is cancelled.
func (s *networkSource) fetch(req feedapi.FeedRequest, apply func(feedapi.FeedPage, error)) {
	ctx := s.ctx
	s.exec.Go(func() {
		page, err := s.feed.CommunityFeed(ctx, req)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.log.Warn("feed load failed",
				zap.String("community", req.Community),
				zap.String("cursor", req.Cursor),
				zap.String("after", req.After),
				zap.Error(err))
		}
		s.disp.Dispatch(func() {
			if ctx.Err() != nil {
				return
			}
			apply(page, err)
		})
	})
}

func (s *networkSource) snapshotLocked() *PagedList {
	return &PagedList{
		Community:  s.community,
		Posts:      slices.Clip(s.posts),
		EndReached: s.end,
		pageSize:   s.pageSize,
		loadMore:   s.loadAfter,
	}
}
