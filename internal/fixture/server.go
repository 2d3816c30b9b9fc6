// Package fixture serves a fake community feed with generated posts. It backs
// the serve-fixture command and the tests of the packages that talk to the
// feed endpoint.
package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	mathrand "math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faker/faker/v4"
	"go.uber.org/zap"

	"subpager/internal/feedapi"
	"subpager/internal/logging"
)

const (
	defaultLimit = 15
	maxLimit     = 100
)

// Options configures the generated data and failure behaviour
type Options struct {
	PostsPerCommunity int           // default 200
	Seed              int64         // seeds faker and scores, 0 keeps them random
	Latency           time.Duration // added before every feed response
}

// Server is the fake feed
type Server struct {
	opts Options
	log  *zap.Logger
	rand *mathrand.Rand

	mu          sync.Mutex
	communities map[string][]*feedapi.PostView
	failNext    int
	failStatus  int

	requests atomic.Int64
}

// New creates a fixture server. Posts are generated the first time a
// community is requested.
func New(opts Options) *Server {
	if opts.PostsPerCommunity <= 0 {
		opts.PostsPerCommunity = 200
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		faker.SetCryptoSource(mathrand.New(mathrand.NewSource(seed)))
	}
	return &Server{
		opts:        opts,
		log:         logging.L(logging.CatFixture),
		rand:        mathrand.New(mathrand.NewSource(seed)),
		communities: make(map[string][]*feedapi.PostView),
	}
}

// Handler returns the router serving the feed endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get(feedapi.FeedPath, s.handleCommunityFeed)
	return r
}

// FailNext makes the next n feed requests answer with status, 500 when
// status is 0.
func (s *Server) FailNext(n, status int) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
	s.failStatus = status
}

// Requests returns how many feed requests were served, failures included.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Posts returns the generated posts of community in feed order.
func (s *Server) Posts(community string) []*feedapi.PostView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*feedapi.PostView(nil), s.postsLocked(community)...)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("fixture server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fixture server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown fixture server: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleCommunityFeed(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	if s.failNext > 0 {
		s.failNext--
		status := s.failStatus
		s.mu.Unlock()
		writeError(w, status, "InternalServerError", "injected failure")
		return
	}
	s.mu.Unlock()

	q := r.URL.Query()
	community := strings.TrimSpace(q.Get("community"))
	if community == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "community parameter is required")
		return
	}

	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	s.mu.Lock()
	posts := s.postsLocked(community)
	s.mu.Unlock()

	start := 0
	switch {
	case q.Get("cursor") != "":
		n, err := strconv.Atoi(q.Get("cursor"))
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "InvalidCursor", "invalid pagination cursor")
			return
		}
		start = min(n, len(posts))
	case q.Get("after") != "":
		start = len(posts)
		after := q.Get("after")
		for i, p := range posts {
			if p.RKey == after {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(posts))

	resp := feedapi.FeedResponse{Feed: make([]*feedapi.FeedViewPost, 0, end-start)}
	for _, p := range posts[start:end] {
		resp.Feed = append(resp.Feed, &feedapi.FeedViewPost{Post: p})
	}
	if end < len(posts) {
		next := strconv.Itoa(end)
		resp.Cursor = &next
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("encode feed response", zap.Error(err))
	}
}

type fakePost struct {
	Title  string `faker:"sentence"`
	Text   string `faker:"paragraph"`
	Author string `faker:"username"`
	Link   string `faker:"url"`
}

func (s *Server) postsLocked(community string) []*feedapi.PostView {
	if posts, ok := s.communities[community]; ok {
		return posts
	}

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]*feedapi.PostView, 0, s.opts.PostsPerCommunity)
	for i := 0; i < s.opts.PostsPerCommunity; i++ {
		var fp fakePost
		if err := faker.FakeData(&fp); err != nil {
			s.log.Warn("faker failed, using placeholder post", zap.Error(err))
			fp = fakePost{Title: fmt.Sprintf("post %d", i), Author: "anonymous"}
		}

		rkey := fmt.Sprintf("%s-%04d", community, i)
		did := "did:plc:" + strings.ToLower(fp.Author)
		title, text := fp.Title, fp.Text
		up := s.rand.Intn(5000)
		down := s.rand.Intn(up/4 + 1)
		at := created.Add(-time.Duration(i) * 17 * time.Minute)

		posts = append(posts, &feedapi.PostView{
			URI:       fmt.Sprintf("at://did:plc:%s/social.coves.post/%s", community, rkey),
			CID:       fmt.Sprintf("bafy%08x", s.rand.Uint32()),
			RKey:      rkey,
			Title:     &title,
			Text:      &text,
			Author:    &feedapi.AuthorView{DID: did, Handle: fp.Author},
			Community: &feedapi.CommunityRef{DID: "did:plc:" + community, Handle: community + ".community", Name: community},
			Stats: &feedapi.PostStats{
				Upvotes:      up,
				Downvotes:    down,
				Score:        up - down,
				CommentCount: s.rand.Intn(300),
			},
			Embed: &feedapi.EmbedView{
				Type:     feedapi.ExternalEmbedType,
				External: &feedapi.ExternalView{URI: fp.Link, Title: title},
			},
			CreatedAt: at,
			IndexedAt: at.Add(time.Second),
		})
	}
	s.communities[community] = posts
	return posts
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
