package views

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"subpager/internal/domain"
)

func init() {
	// plain output keeps assertions independent of the terminal
	lipgloss.SetColorProfile(termenv.Ascii)
}

func samplePosts(n int) []domain.Post {
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{
			Name:         fmt.Sprintf("p-%d", i),
			Title:        fmt.Sprintf("Post number %d", i),
			Author:       "alice",
			Score:        i,
			CommentCount: 2,
		}
	}
	return posts
}

func TestRender_PostsAndScrollIndicators(t *testing.T) {
	r := NewRenderer(true)
	out := r.Render(ViewState{
		Width:          100,
		Height:         20,
		Community:      "androiddev",
		Posts:          samplePosts(40),
		Network:        domain.Loaded,
		Refresh:        domain.Loaded,
		ViewportOffset: 5,
		ViewportHeight: 10,
		SelectedIndex:  6,
	})

	assert.Contains(t, out, "subpager")
	assert.Contains(t, out, "c/androiddev")
	assert.Contains(t, out, "↑ 5 more above ↑")
	assert.Contains(t, out, "Post number 6")
	assert.NotContains(t, out, "Post number 4")
	assert.Contains(t, out, "more below")
	assert.Contains(t, out, "Press ? for help")
}

func TestRender_StatusRowShowsError(t *testing.T) {
	r := NewRenderer(false)
	out := r.Render(ViewState{
		Width:          100,
		Height:         20,
		Community:      "pics",
		Posts:          samplePosts(2),
		Network:        domain.NetworkError("error code: 500"),
		ViewportHeight: 10,
	})
	assert.Contains(t, out, "error code: 500")
	assert.Contains(t, out, "retry")
}

func TestRender_EmptyStates(t *testing.T) {
	r := NewRenderer(false)

	out := r.Render(ViewState{Width: 80, Height: 20})
	assert.Contains(t, out, "Press / to choose a community")

	out = r.Render(ViewState{Width: 80, Height: 20, Community: "pics", Refresh: domain.Loading, Spinner: "*"})
	assert.Contains(t, out, "Loading posts")
	assert.Contains(t, out, "Refreshing")

	out = r.Render(ViewState{Width: 80, Height: 20, Community: "pics", Refresh: domain.NetworkError("dial tcp: refused")})
	assert.Contains(t, out, "dial tcp: refused")

	out = r.Render(ViewState{Width: 80, Height: 20, Community: "pics", Refresh: domain.Loaded, EndReached: true})
	assert.Contains(t, out, "No posts")
}

func TestRender_InputLine(t *testing.T) {
	r := NewRenderer(false)
	out := r.Render(ViewState{Width: 80, Height: 20, InputMode: "community", TextInput: "Community: gol"})
	assert.Contains(t, out, "Community: gol")
}

func TestRender_HelpPopup(t *testing.T) {
	r := NewRenderer(false)
	out := r.Render(ViewState{Width: 100, Height: 40, Community: "pics", Posts: samplePosts(3), ShowHelp: true, ViewportHeight: 10})
	assert.Contains(t, out, "subpager Help")
	assert.Contains(t, out, "Retry failed load")
	assert.NotContains(t, out, "Press ? for help")
}

func TestRenderHelpContent_Scrolls(t *testing.T) {
	full := strings.Split(HelpText(), "\n")
	out := strings.Split(RenderHelpContent(9, 2), "\n")
	assert.Len(t, out, 5)
	assert.Less(t, len(out), len(full))
	assert.Contains(t, out[0], "more above")
	assert.Contains(t, out[len(out)-1], "more below")
}

func TestRenderPost_TruncatesTitle(t *testing.T) {
	pr := NewPostRenderer(NewStyles(), false)
	line := pr.RenderPost(domain.Post{Title: strings.Repeat("x", 200), Author: "bob", CommentCount: 3}, false, 60)
	assert.Contains(t, line, "…")
	assert.Contains(t, line, "bob · 3 comments")
	assert.LessOrEqual(t, lipgloss.Width(line), 60)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 5))
	assert.Equal(t, "hel…", truncate("hello", 4))
	assert.Equal(t, "", truncate("hello", 0))
}

func TestPopupOverlay_KeepsSurroundings(t *testing.T) {
	pr := NewPopupRenderer(NewStyles())
	base := strings.Repeat(strings.Repeat("#", 20)+"\n", 5)
	out := pr.RenderPopupOverlay(base, "hi", 5, 20, NewStyles().Help)
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[2], "#########hi#########")
}
