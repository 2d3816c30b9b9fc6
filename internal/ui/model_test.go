package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subpager/internal/config"
	"subpager/internal/domain"
	"subpager/internal/feedapi"
	"subpager/internal/listing"
	"subpager/internal/live"
	"subpager/internal/ui/viewmodels"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// fakeFeed serves 100 posts per community by offset cursor
type fakeFeed struct {
	mu       sync.Mutex
	requests []feedapi.FeedRequest
	fail     bool
}

func (f *fakeFeed) CommunityFeed(_ context.Context, req feedapi.FeedRequest) (feedapi.FeedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.fail {
		return feedapi.FeedPage{}, errors.New("connection reset")
	}

	start, _ := strconv.Atoi(req.Cursor)
	end := min(start+req.Limit, 100)
	var page feedapi.FeedPage
	for i := start; i < end; i++ {
		page.Posts = append(page.Posts, domain.Post{
			Name:      fmt.Sprintf("%s-%04d", req.Community, i),
			Title:     fmt.Sprintf("%s post %d", req.Community, i),
			Author:    "alice",
			Community: req.Community,
		})
	}
	if end < 100 {
		page.Cursor = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeFeed) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func (f *fakeFeed) calls() []feedapi.FeedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]feedapi.FeedRequest(nil), f.requests...)
}

type fakePager struct {
	shown []string
	err   error
}

func (p *fakePager) ShowInPager(content string) error {
	p.shown = append(p.shown, content)
	return p.err
}

type harness struct {
	model   *Model
	queue   *live.Queue
	feed    *fakeFeed
	pager   *fakePager
	session config.StateService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	feed := &fakeFeed{}
	q := live.NewQueue()
	provider, err := listing.NewProvider(context.Background(), listing.InMemoryByPage, listing.Deps{
		Feed:       feed,
		Dispatcher: q,
		Executor:   listing.Synchronous,
	})
	require.NoError(t, err)

	h := &harness{
		queue:   q,
		feed:    feed,
		pager:   &fakePager{},
		session: config.NewStateService(filepath.Join(t.TempDir(), "state.toml"), nil),
	}
	h.model = NewModel(Options{
		Posts:     viewmodels.NewPostsViewModel(provider, nil),
		Queue:     q,
		Session:   h.session,
		UI:        config.UISettings{ShowScore: true, MarkdownStyle: "notty", SaveOnExit: true},
		Community: "androiddev",
		Pager:     h.pager,
	})
	t.Cleanup(func() {
		h.model.shutdown()
		q.Close()
	})

	h.model.Init()
	h.model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	h.pump(t)
	return h
}

// pump delivers queued listing callbacks the way the listen command does
func (h *harness) pump(t *testing.T) {
	t.Helper()
	for i := 0; h.queue.Len() > 0; i++ {
		require.Less(t, i, 100, "queue never settles")
		h.model.Update(h.model.listen()())
	}
}

// key sends keys without running the resulting commands
func (h *harness) key(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		h.model.Update(keyMsg(k))
	}
}

// press sends one key and runs the command it returns
func (h *harness) press(t *testing.T, k string) []tea.Msg {
	t.Helper()
	_, cmd := h.model.Update(keyMsg(k))
	return run(cmd)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// run executes cmd and flattens batches
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestModel_InitShowsStartCommunity(t *testing.T) {
	h := newHarness(t)
	s := h.model.State()

	assert.Equal(t, "androiddev", s.Community)
	assert.Equal(t, viewmodels.PageSize*3, s.PostCount())
	assert.Equal(t, domain.Loaded, s.Refresh)
	assert.Equal(t, 23, s.ViewportHeight)

	view := h.model.View()
	assert.Contains(t, view, "c/androiddev")
	assert.Contains(t, view, "androiddev post 0")
}

func TestModel_EndLoadsNextPage(t *testing.T) {
	h := newHarness(t)

	h.key(t, "G")
	h.pump(t)

	s := h.model.State()
	assert.Equal(t, 100, s.PostCount())
	assert.True(t, s.Posts.EndReached)
	assert.Equal(t, 89, s.SelectedIndex)
}

func TestModel_RetryFromStatusRow(t *testing.T) {
	h := newHarness(t)
	h.feed.setFail(true)

	h.key(t, "G")
	h.pump(t)
	s := h.model.State()
	require.True(t, s.Network.IsFailed())

	h.key(t, "G")
	require.Equal(t, s.PostCount(), s.SelectedIndex, "selection on the status row")
	assert.Contains(t, h.model.View(), "connection reset")

	h.feed.setFail(false)
	h.key(t, "enter")
	h.pump(t)
	assert.Equal(t, 100, s.PostCount())
	assert.False(t, s.Network.IsFailed())
}

func TestModel_SubmitCommunity(t *testing.T) {
	h := newHarness(t)
	h.key(t, "j", "j")
	require.Equal(t, 2, h.model.State().SelectedIndex)

	h.key(t, "/", "p", "i", "c", "s", "enter")
	s := h.model.State()
	assert.Equal(t, "pics", s.Community)
	assert.Equal(t, 0, s.SelectedIndex)

	h.pump(t)
	require.Equal(t, 90, s.PostCount())
	assert.Equal(t, "pics-0000", s.Posts.Posts[0].Name)
}

func TestModel_SubmitBlankIsIgnored(t *testing.T) {
	h := newHarness(t)
	before := len(h.feed.calls())

	h.key(t, "/", " ", "enter")
	h.pump(t)

	assert.Equal(t, "androiddev", h.model.State().Community)
	assert.Len(t, h.feed.calls(), before)
}

func TestModel_RefreshReloadsFirstPage(t *testing.T) {
	h := newHarness(t)
	before := len(h.feed.calls())

	h.key(t, "r")
	h.pump(t)

	calls := h.feed.calls()
	require.Greater(t, len(calls), before)
	assert.Equal(t, "", calls[before].Cursor)
	assert.Equal(t, "androiddev", calls[before].Community)
	assert.Equal(t, domain.Loaded, h.model.State().Refresh)
}

func TestModel_OpenPost(t *testing.T) {
	h := newHarness(t)
	h.key(t, "j")

	msgs := h.press(t, "o")
	require.Len(t, h.pager.shown, 1)
	assert.Contains(t, h.pager.shown[0], "androiddev post 1")
	assert.Contains(t, msgs, tea.Msg(postPagerMsg{name: "androiddev-0001"}))
}

func TestModel_OpenPostFailureSetsStatus(t *testing.T) {
	h := newHarness(t)
	h.pager.err = errors.New("no tty")

	for _, msg := range h.press(t, "o") {
		h.model.Update(msg)
	}
	assert.Equal(t, "Could not open post: no tty", h.model.State().StatusMessage)
}

func TestModel_HelpPopup(t *testing.T) {
	h := newHarness(t)

	h.key(t, "?")
	s := h.model.State()
	require.True(t, s.ShowHelp)
	assert.Contains(t, h.model.View(), "subpager Help")

	h.key(t, "j", "j", "k")
	assert.Equal(t, 1, s.HelpScrollOffset)

	h.key(t, "esc")
	assert.False(t, s.ShowHelp)
	assert.Equal(t, 0, s.HelpScrollOffset)
}

func TestModel_HelpPagerFailureFallsBackToPopup(t *testing.T) {
	h := newHarness(t)
	h.pager.err = errors.New("no tty")

	for _, msg := range h.press(t, "H") {
		h.model.Update(msg)
	}
	require.Len(t, h.pager.shown, 1)
	assert.True(t, strings.Contains(h.pager.shown[0], "subpager Help"))
	assert.True(t, h.model.State().ShowHelp)
}

func TestModel_QuitSavesCommunity(t *testing.T) {
	h := newHarness(t)
	h.key(t, "/", "p", "i", "c", "s", "enter")

	msgs := h.press(t, "q")
	require.Contains(t, msgs, tea.Msg(quitMsg{saveState: true}))

	_, cmd := h.model.Update(quitMsg{saveState: true})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	st, err := h.session.Load()
	require.NoError(t, err)
	assert.Equal(t, "pics", st.LastCommunity)

	// the view-model is closed and no longer takes commands
	assert.True(t, h.model.posts.Posts.Closed())
}
