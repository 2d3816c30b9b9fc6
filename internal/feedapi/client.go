// Package feedapi fetches pages of a community feed over HTTP.
package feedapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"subpager/internal/cachemanager"
	"subpager/internal/domain"
	"subpager/internal/logging"
)

const maxErrorBody = 4 << 10

// FeedRequest selects one page of a community feed. Cursor pages by position,
// After pages by the name of the last post already loaded.
type FeedRequest struct {
	Community string
	Limit     int
	Cursor    string
	After     string
	Sort      string
	// Fresh bypasses the response cache and drops every cached page of the
	// community
	Fresh bool
}

func (r FeedRequest) cacheKey() string {
	return strings.Join([]string{r.Community, strconv.Itoa(r.Limit), r.Cursor, r.After, r.Sort}, "|")
}

// FeedPage is one decoded page. An empty Cursor means the feed is exhausted.
type FeedPage struct {
	Posts  []domain.Post
	Cursor string
}

// Options tunes the transport. Zero values pick the defaults noted per field.
type Options struct {
	Timeout      time.Duration // per attempt, default 10s
	RetryMax     int           // retries after the first attempt
	RetryWaitMin time.Duration // default 100ms
	RetryWaitMax time.Duration // default 2s
	RateLimit    float64       // requests per second, 0 means unlimited
	Burst        int           // default 1
	CacheTTL     time.Duration // 0 disables the response cache
	HTTPClient   *http.Client  // replaces the underlying client, Timeout is then ignored
}

// Client talks to the community feed endpoint
type Client struct {
	baseURL  *url.URL
	http     *retryablehttp.Client
	limiter  *rate.Limiter
	cache    cachemanager.CacheManager[string, FeedPage]
	cacheTTL time.Duration
	log      *zap.Logger
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q: scheme must be http or https", baseURL)
	}

	logger := logging.L(logging.CatFeedAPI)

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = orDefault(opts.RetryWaitMin, 100*time.Millisecond)
	rc.RetryWaitMax = orDefault(opts.RetryWaitMax, 2*time.Second)
	rc.Logger = leveledLogger{logger.Sugar()}
	// hand the final response back so non-2xx statuses become APIError
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.HTTPClient != nil {
		rc.HTTPClient = opts.HTTPClient
	} else {
		rc.HTTPClient.Timeout = orDefault(opts.Timeout, 10*time.Second)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL:  u,
		http:     rc,
		limiter:  rate.NewLimiter(limit, burst),
		cacheTTL: opts.CacheTTL,
		log:      logger,
	}
	if opts.CacheTTL > 0 {
		c.cache = cachemanager.NewInMemoryCacheManager[string, FeedPage]("feed-pages", opts.CacheTTL, cachemanager.DefaultCleanupInterval)
	}
	return c, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// CommunityFeed fetches one page of a community's posts.
func (c *Client) CommunityFeed(ctx context.Context, req FeedRequest) (FeedPage, error) {
	if strings.TrimSpace(req.Community) == "" {
		return FeedPage{}, fmt.Errorf("%w: community is required", ErrInvalidRequest)
	}
	if req.Limit <= 0 {
		return FeedPage{}, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRequest, req.Limit)
	}

	key := req.cacheKey()
	if c.cache != nil {
		if req.Fresh {
			c.cache.DeletePrefix(ctx, req.Community+"|")
		} else if page, ok := c.cache.Get(ctx, key); ok {
			return page, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return FeedPage{}, fmt.Errorf("wait for rate limiter: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.feedURL(req), nil)
	if err != nil {
		return FeedPage{}, fmt.Errorf("build feed request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return FeedPage{}, fmt.Errorf("fetch feed of %s: %w", req.Community, err)
	}
	defer resp.Body.Close()

	c.log.Debug("feed response",
		zap.String("community", req.Community),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return FeedPage{}, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var decoded FeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return FeedPage{}, fmt.Errorf("decode feed of %s: %w", req.Community, err)
	}

	page := FeedPage{Posts: make([]domain.Post, 0, len(decoded.Feed))}
	for _, item := range decoded.Feed {
		if item == nil || item.Post == nil {
			continue
		}
		page.Posts = append(page.Posts, toPost(item.Post, req.Community))
	}
	if decoded.Cursor != nil {
		page.Cursor = *decoded.Cursor
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, page, c.cacheTTL)
	}
	return page, nil
}

func (c *Client) feedURL(req FeedRequest) string {
	u := c.baseURL.JoinPath(FeedPath)
	q := url.Values{}
	q.Set("community", req.Community)
	q.Set("limit", strconv.Itoa(req.Limit))
	if req.Cursor != "" {
		q.Set("cursor", req.Cursor)
	}
	if req.After != "" {
		q.Set("after", req.After)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func toPost(v *PostView, community string) domain.Post {
	p := domain.Post{
		ID:        v.URI,
		Name:      v.RKey,
		Community: community,
		CreatedAt: v.CreatedAt,
	}
	if v.Community != nil && v.Community.Name != "" {
		p.Community = v.Community.Name
	}
	if v.Title != nil {
		p.Title = *v.Title
	}
	if v.Text != nil {
		p.Body = *v.Text
	}
	if v.Author != nil {
		p.Author = v.Author.Handle
	}
	if v.Stats != nil {
		p.Score = v.Stats.Score
		p.CommentCount = v.Stats.CommentCount
	}
	if v.Embed != nil && v.Embed.External != nil {
		p.URL = v.Embed.External.URI
		p.Thumbnail = v.Embed.External.Thumb
	}
	return p
}

// leveledLogger routes retryablehttp's logging into zap
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
