package feedapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subpager/internal/feedapi"
	"subpager/internal/fixture"
)

func TestCommunityFeed_AgainstFixture(t *testing.T) {
	fx := fixture.New(fixture.Options{PostsPerCommunity: 70, Seed: 42})
	srv := httptest.NewServer(fx.Handler())
	defer srv.Close()

	c, err := feedapi.New(srv.URL, feedapi.Options{RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("by cursor", func(t *testing.T) {
		var names []string
		req := feedapi.FeedRequest{Community: "androiddev", Limit: 30}
		for {
			page, err := c.CommunityFeed(ctx, req)
			require.NoError(t, err)
			for _, p := range page.Posts {
				names = append(names, p.Name)
				assert.Equal(t, "androiddev", p.Community)
			}
			if page.Cursor == "" {
				break
			}
			req.Cursor = page.Cursor
		}
		require.Len(t, names, 70)
		assert.Equal(t, "androiddev-0069", names[69])
	})

	t.Run("by item key", func(t *testing.T) {
		page, err := c.CommunityFeed(ctx, feedapi.FeedRequest{Community: "pics", Limit: 30})
		require.NoError(t, err)
		last := page.Posts[len(page.Posts)-1].Name

		next, err := c.CommunityFeed(ctx, feedapi.FeedRequest{Community: "pics", Limit: 30, After: last})
		require.NoError(t, err)
		require.NotEmpty(t, next.Posts)
		assert.Equal(t, "pics-0030", next.Posts[0].Name)
	})

	t.Run("injected failure", func(t *testing.T) {
		fx.FailNext(1, http.StatusNotFound)
		_, err := c.CommunityFeed(ctx, feedapi.FeedRequest{Community: "golang", Limit: 10})
		assert.Equal(t, http.StatusNotFound, feedapi.StatusCode(err))
	})
}
