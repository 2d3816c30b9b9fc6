package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"subpager/internal/live"
)

var (
	// ErrUnknownBackend is returned for a backend name or value outside the enum
	ErrUnknownBackend = errors.New("unknown listing backend")
	// ErrMissingDependency is returned when a backend lacks a collaborator it needs
	ErrMissingDependency = errors.New("missing listing dependency")
)

// Backend selects how posts are fetched and kept
type Backend int

const (
	// InMemoryByItem pages the feed by the name of the last loaded post
	InMemoryByItem Backend = iota
	// InMemoryByPage pages the feed by the cursor of the previous page
	InMemoryByPage
	// Database keeps posts in the post store and fetches at its boundary
	Database
)

var backendNames = map[Backend]string{
	InMemoryByItem: "in-memory-by-item",
	InMemoryByPage: "in-memory-by-page",
	Database:       "db",
}

func (b Backend) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ParseBackend parses a backend name as printed by String.
func ParseBackend(s string) (Backend, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for b, name := range backendNames {
		if name == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Backends lists every backend in declaration order
func Backends() []Backend {
	return []Backend{InMemoryByItem, InMemoryByPage, Database}
}

// Deps are the collaborators providers are built from. Dispatcher defaults
// to live.Inline and Executor to a pool of DefaultWorkers.
type Deps struct {
	Feed       FeedSource
	Store      PostStore // Database only
	Dispatcher live.Dispatcher
	Executor   Executor
}

// NewProvider builds the provider for backend. Listings it creates stop
// loading once ctx is cancelled.
func NewProvider(ctx context.Context, backend Backend, deps Deps) (Provider, error) {
	if deps.Feed == nil {
		return nil, fmt.Errorf("%w: feed source", ErrMissingDependency)
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = live.Inline
	}
	if deps.Executor == nil {
		deps.Executor = NewPool(DefaultWorkers)
	}

	switch backend {
	case InMemoryByItem:
		return newInMemoryProvider(ctx, byItem, deps), nil
	case InMemoryByPage:
		return newInMemoryProvider(ctx, byPage, deps), nil
	case Database:
		if deps.Store == nil {
			return nil, fmt.Errorf("%w: post store for %s backend", ErrMissingDependency, backend)
		}
		return newDBProvider(ctx, deps), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}
