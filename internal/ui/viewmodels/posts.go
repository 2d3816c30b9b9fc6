package viewmodels

import (
	"sync"

	"go.uber.org/zap"

	"subpager/internal/domain"
	"subpager/internal/eventbus"
	"subpager/internal/listing"
	"subpager/internal/live"
	"subpager/internal/logging"
)

// PageSize is the number of posts the screen asks a listing for per page
const PageSize = 30

// PostsViewModel holds the community being shown and everything derived
// from it. A new community produces a new listing; the three exposed values
// follow whichever listing is current.
type PostsViewModel struct {
	query   *live.Mutable[string]
	listing *live.Value[*listing.Listing]

	Posts        *live.Value[*listing.PagedList]
	NetworkState *live.Value[domain.NetworkState]
	RefreshState *live.Value[domain.NetworkState]

	provider listing.Provider
	bus      eventbus.EventBus
	log      *zap.Logger

	mu        sync.Mutex
	current   *listing.Listing
	announced *listing.Listing
	closed    bool
}

// NewPostsViewModel wires the derived values over provider. bus may be nil.
func NewPostsViewModel(provider listing.Provider, bus eventbus.EventBus) *PostsViewModel {
	vm := &PostsViewModel{
		query:    live.NewMutable[string](),
		provider: provider,
		bus:      bus,
		log:      logging.L(logging.CatUI),
	}
	vm.listing = live.Map(vm.query, vm.deriveListing)

	vm.Posts = live.SwitchMap(vm.listing, func(l *listing.Listing) live.Source[*listing.PagedList] {
		if l == nil {
			return nil
		}
		return l.PagedList
	})
	vm.NetworkState = live.SwitchMap(vm.listing, func(l *listing.Listing) live.Source[domain.NetworkState] {
		if l == nil {
			return nil
		}
		return l.NetworkState
	})
	vm.RefreshState = live.SwitchMap(vm.listing, func(l *listing.Listing) live.Source[domain.NetworkState] {
		if l == nil {
			return nil
		}
		return l.RefreshState
	})
	return vm
}

// deriveListing asks the provider for the listing of community and closes
// the one it replaces.
func (vm *PostsViewModel) deriveListing(community string) *listing.Listing {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return nil
	}
	vm.mu.Unlock()

	l := vm.provider.PostsOfCommunity(community, PageSize)

	vm.mu.Lock()
	prev := vm.current
	vm.current = l
	vm.mu.Unlock()
	prev.Close()

	if l != nil {
		vm.log.Debug("listing derived",
			zap.String("community", community),
			zap.String("backend", l.Backend.String()),
			zap.String("id", l.ID.String()))
	}
	return l
}

// ShowCommunity makes name the current community. It returns false and does
// nothing when name is already current.
func (vm *PostsViewModel) ShowCommunity(name string) bool {
	prev, _ := vm.query.Get()
	if !vm.query.SetIfChanged(name, func(a, b string) bool { return a == b }) {
		return false
	}
	vm.publish(eventbus.QueryChangedEvent{Previous: prev, Current: name})

	// The listing exists now only when the graph is observed.
	vm.mu.Lock()
	l := vm.current
	fresh := l != nil && l != vm.announced && l.Community == name
	if fresh {
		vm.announced = l
	}
	vm.mu.Unlock()
	if fresh {
		vm.publish(eventbus.ListingCreatedEvent{
			Community: name,
			ListingID: l.ID.String(),
			Backend:   l.Backend.String(),
		})
	}
	return true
}

// CurrentCommunity returns the community last passed to ShowCommunity.
func (vm *PostsViewModel) CurrentCommunity() (string, bool) {
	return vm.query.Get()
}

// active returns the derived listing when it belongs to the current
// community. An unobserved graph can still hold the previous one.
func (vm *PostsViewModel) active() (*listing.Listing, bool) {
	l, ok := vm.listing.Get()
	if !ok || l == nil {
		return nil, false
	}
	if q, _ := vm.query.Get(); l.Community != q {
		return nil, false
	}
	return l, true
}

// Refresh reloads the current listing. Without one it does nothing.
func (vm *PostsViewModel) Refresh() {
	if l, ok := vm.active(); ok {
		l.Refresh()
	}
}

// Retry re-runs the failed loads of the current listing, if any.
func (vm *PostsViewModel) Retry() {
	if l, ok := vm.active(); ok {
		l.Retry()
	}
}

// Close tears the graph down and cancels the current listing.
func (vm *PostsViewModel) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	l := vm.current
	vm.current = nil
	vm.mu.Unlock()

	vm.Posts.Close()
	vm.NetworkState.Close()
	vm.RefreshState.Close()
	vm.listing.Close()
	vm.query.Close()
	l.Close()
}

func (vm *PostsViewModel) publish(e eventbus.DomainEvent) {
	if vm.bus != nil {
		vm.bus.Publish(e)
	}
}
