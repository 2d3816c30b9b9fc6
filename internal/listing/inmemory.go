package listing

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"subpager/internal/domain"
	"subpager/internal/live"
	"subpager/internal/logging"
)

// inMemoryProvider keeps loaded posts in memory only
type inMemoryProvider struct {
	ctx  context.Context
	keys keying
	deps Deps
	log  *zap.Logger
}

func newInMemoryProvider(ctx context.Context, keys keying, deps Deps) *inMemoryProvider {
	return &inMemoryProvider{
		ctx:  ctx,
		keys: keys,
		deps: deps,
		log:  logging.L(logging.CatListing),
	}
}

func (p *inMemoryProvider) backend() Backend {
	if p.keys == byItem {
		return InMemoryByItem
	}
	return InMemoryByPage
}

// PostsOfCommunity returns a listing whose first load starts when one of its
// streams gains an observer.
func (p *inMemoryProvider) PostsOfCommunity(community string, pageSize int) *Listing {
	ctx, cancel := context.WithCancel(p.ctx)
	l := newListing(community, p.backend(), cancel)
	f := &sourceFactory{provider: p, community: community, pageSize: pageSize, ctx: ctx}

	f.current = live.NewLazy[*networkSource](func() {
		f.replace(false)
	})

	l.PagedList = live.SwitchMap[*networkSource, *PagedList](f.current, func(s *networkSource) live.Source[*PagedList] {
		return s.list
	})
	l.NetworkState = live.SwitchMap[*networkSource, domain.NetworkState](f.current, func(s *networkSource) live.Source[domain.NetworkState] {
		return s.networkState
	})
	l.RefreshState = live.SwitchMap[*networkSource, domain.NetworkState](f.current, func(s *networkSource) live.Source[domain.NetworkState] {
		return s.initialLoad
	})
	l.refresh = f.invalidate
	l.retry = f.retry

	p.log.Debug("listing created",
		zap.String("community", community),
		zap.String("backend", l.Backend.String()),
		zap.String("id", l.ID.String()))
	return l
}

// sourceFactory creates a networkSource per generation and publishes the
// current one.
type sourceFactory struct {
	provider  *inMemoryProvider
	community string
	pageSize  int
	ctx       context.Context
	current   *live.Mutable[*networkSource]

	mu     sync.Mutex
	latest *networkSource
}

func (f *sourceFactory) replace(fresh bool) {
	ctx, cancel := context.WithCancel(f.ctx)
	s := &networkSource{
		community:    f.community,
		pageSize:     f.pageSize,
		keys:         f.provider.keys,
		fresh:        fresh,
		feed:         f.provider.deps.Feed,
		exec:         f.provider.deps.Executor,
		disp:         f.provider.deps.Dispatcher,
		ctx:          ctx,
		cancel:       cancel,
		log:          f.provider.log,
		list:         live.NewMutable[*PagedList](),
		networkState: live.NewMutable[domain.NetworkState](),
		initialLoad:  live.NewMutable[domain.NetworkState](),
	}

	f.mu.Lock()
	prev := f.latest
	f.latest = s
	f.mu.Unlock()

	if prev != nil {
		prev.cancel()
	}
	f.current.Set(s)
	s.loadInitial()
}

func (f *sourceFactory) source() *networkSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

// invalidate drops the current source and loads a new one from the first
// page. Before the first load it does nothing.
func (f *sourceFactory) invalidate() {
	if f.source() == nil || f.ctx.Err() != nil {
		return
	}
	f.replace(true)
}

func (f *sourceFactory) retry() {
	if s := f.source(); s != nil {
		s.retryAllFailed()
	}
}
