package listing

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"subpager/internal/domain"
	"subpager/internal/feedapi"
	"subpager/internal/live"
	"subpager/internal/logging"
)

// PostStore persists the posts of the Database backend
type PostStore interface {
	// PostsByCommunity returns stored posts ordered by IndexInResponse
	PostsByCommunity(ctx context.Context, community string) ([]domain.Post, error)
	// NextIndex returns the IndexInResponse the next inserted post should get
	NextIndex(ctx context.Context, community string) (int, error)
	Insert(ctx context.Context, posts []domain.Post) error
	DeleteByCommunity(ctx context.Context, community string) error
	// RunInTx runs fn against a store bound to one transaction
	RunInTx(ctx context.Context, fn func(PostStore) error) error
}

type dbProvider struct {
	ctx  context.Context
	deps Deps
	log  *zap.Logger
}

func newDBProvider(ctx context.Context, deps Deps) *dbProvider {
	return &dbProvider{ctx: ctx, deps: deps, log: logging.L(logging.CatListing)}
}

// PostsOfCommunity returns a listing backed by the post store. Stored posts
// are shown first; reaching their end fetches the next page from the network.
func (p *dbProvider) PostsOfCommunity(community string, pageSize int) *Listing {
	ctx, cancel := context.WithCancel(p.ctx)
	l := newListing(community, Database, cancel)

	d := &dbListing{
		community:    community,
		pageSize:     pageSize,
		store:        p.deps.Store,
		feed:         p.deps.Feed,
		exec:         p.deps.Executor,
		disp:         p.deps.Dispatcher,
		ctx:          ctx,
		log:          p.log,
		networkState: live.NewMutable[domain.NetworkState](),
		refreshState: live.NewMutable[domain.NetworkState](),
		fetched:      make(map[string]struct{}),
	}
	d.list = live.NewLazy[*PagedList](d.reload)

	l.PagedList = d.list.Value
	l.NetworkState = d.networkState.Value
	l.RefreshState = d.refreshState.Value
	l.refresh = d.refresh
	l.retry = d.retryAllFailed

	p.log.Debug("listing created",
		zap.String("community", community),
		zap.String("backend", Database.String()),
		zap.String("id", l.ID.String()))
	return l
}

// dbListing shows the stored posts of one community and fetches more at the
// end of the stored range.
type dbListing struct {
	community string
	pageSize  int
	store     PostStore
	feed      FeedSource
	exec      Executor
	disp      live.Dispatcher
	ctx       context.Context
	log       *zap.Logger

	list         *live.Mutable[*PagedList]
	networkState *live.Mutable[domain.NetworkState]
	refreshState *live.Mutable[domain.NetworkState]

	mu         sync.Mutex
	fetching   bool
	end        bool
	readFailed bool
	retry      func()
	fetched    map[string]struct{} // after keys already stored
}

// reload reads the stored posts and publishes them. An empty store triggers
// a fetch of the first page.
func (d *dbListing) reload() {
	ctx := d.ctx
	d.exec.Go(func() {
		posts, err := d.store.PostsByCommunity(ctx, d.community)
		if ctx.Err() != nil {
			return
		}
		d.disp.Dispatch(func() {
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				d.log.Error("read stored posts", zap.String("community", d.community), zap.Error(err))
				d.mu.Lock()
				d.readFailed = true
				d.retry = d.reload
				d.mu.Unlock()
				d.networkState.Set(domain.NetworkError(err.Error()))
				return
			}

			d.mu.Lock()
			recovered := d.readFailed
			d.readFailed = false
			snap := &PagedList{
				Community:  d.community,
				Posts:      posts,
				EndReached: d.end,
				pageSize:   d.pageSize,
			}
			snap.loadMore = func() { d.loadAfter(lastName(posts)) }
			d.mu.Unlock()

			if recovered {
				d.networkState.Set(domain.Loaded)
			}
			d.list.Set(snap)
			if len(posts) == 0 {
				d.loadAfter("")
			}
		})
	})
}

func lastName(posts []domain.Post) string {
	if len(posts) == 0 {
		return ""
	}
	return posts[len(posts)-1].Name
}

// loadAfter fetches the page following the post named after and stores it.
func (d *dbListing) loadAfter(after string) {
	d.mu.Lock()
	_, done := d.fetched[after]
	if done || d.fetching || d.end || d.retry != nil || d.ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	d.fetching = true
	d.mu.Unlock()

	d.networkState.Post(d.disp, domain.Loading)

	req := feedapi.FeedRequest{Community: d.community, Limit: d.pageSize, After: after}
	d.run(func(ctx context.Context) error {
		page, err := d.feed.CommunityFeed(ctx, req)
		if err != nil {
			return err
		}
		if len(page.Posts) == 0 {
			d.mu.Lock()
			d.end = true
			d.mu.Unlock()
			return nil
		}
		return d.store.RunInTx(ctx, func(tx PostStore) error {
			return insertPage(ctx, tx, d.community, page.Posts)
		})
	}, func(err error) {
		d.mu.Lock()
		d.fetching = false
		if err != nil {
			d.retry = func() { d.loadAfter(after) }
		} else {
			d.fetched[after] = struct{}{}
		}
		d.mu.Unlock()

		if err != nil {
			d.networkState.Set(domain.NetworkError(err.Error()))
			return
		}
		d.networkState.Set(domain.Loaded)
		d.reload()
	})
}

// refresh fetches the first page and replaces the stored posts with it.
func (d *dbListing) refresh() {
	if d.ctx.Err() != nil {
		return
	}
	d.refreshState.Post(d.disp, domain.Loading)

	req := feedapi.FeedRequest{Community: d.community, Limit: d.pageSize, Fresh: true}
	d.run(func(ctx context.Context) error {
		page, err := d.feed.CommunityFeed(ctx, req)
		if err != nil {
			return err
		}
		return d.store.RunInTx(ctx, func(tx PostStore) error {
			if err := tx.DeleteByCommunity(ctx, d.community); err != nil {
				return err
			}
			return insertPage(ctx, tx, d.community, page.Posts)
		})
	}, func(err error) {
		if err != nil {
			d.refreshState.Set(domain.NetworkError(err.Error()))
			return
		}
		d.mu.Lock()
		d.end = false
		d.retry = nil
		clear(d.fetched)
		d.mu.Unlock()
		d.refreshState.Set(domain.Loaded)
		d.reload()
	})
}

func (d *dbListing) retryAllFailed() {
	d.mu.Lock()
	retry := d.retry
	d.retry = nil
	d.mu.Unlock()
	if retry != nil {
		retry()
	}
}

// run executes work on the executor and done on the dispatcher, skipping
// done once the listing is closed.
func (d *dbListing) run(work func(context.Context) error, done func(error)) {
	ctx := d.ctx
	d.exec.Go(func() {
		err := work(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			d.log.Warn("listing load failed", zap.String("community", d.community), zap.Error(err))
		}
		d.disp.Dispatch(func() {
			if ctx.Err() != nil {
				return
			}
			done(err)
		})
	})
}

func insertPage(ctx context.Context, tx PostStore, community string, posts []domain.Post) error {
	start, err := tx.NextIndex(ctx, community)
	if err != nil {
		return fmt.Errorf("next index of %s: %w", community, err)
	}
	rows := make([]domain.Post, len(posts))
	for i, p := range posts {
		p.Community = community
		p.IndexInResponse = start + i
		rows[i] = p
	}
	if err := tx.Insert(ctx, rows); err != nil {
		return fmt.Errorf("insert posts of %s: %w", community, err)
	}
	return nil
}
