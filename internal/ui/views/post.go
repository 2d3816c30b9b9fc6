package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"subpager/internal/domain"
)

// PostRenderer handles rendering of post rows
type PostRenderer struct {
	styles    *Styles
	showScore bool
}

// NewPostRenderer creates a new post renderer
func NewPostRenderer(styles *Styles, showScore bool) *PostRenderer {
	return &PostRenderer{
		styles:    styles,
		showScore: showScore,
	}
}

// RenderPost renders a post as one line, cut to width
func (r *PostRenderer) RenderPost(post domain.Post, isSelected bool, width int) string {
	bg := lipgloss.NewStyle()
	if isSelected {
		bg = r.styles.SelectionBg
	}

	var parts []string
	if r.showScore {
		parts = append(parts, r.styles.Score.Inherit(bg).Render(fmt.Sprintf("%5d", post.Score)))
		parts = append(parts, bg.Render(" "))
	}

	title := post.Title
	if title == "" {
		title = post.Name
	}
	meta := fmt.Sprintf(" %s · %d comments", post.Author, post.CommentCount)
	if post.Author == "" {
		meta = fmt.Sprintf(" %d comments", post.CommentCount)
	}

	// keep the meta suffix and shorten the title when the line is too long
	if width > 0 {
		used := lipgloss.Width(strings.Join(parts, "")) + lipgloss.Width(meta)
		title = truncate(title, width-used)
	}

	titleStyle := bg
	if isSelected {
		titleStyle = titleStyle.Bold(true)
	}
	parts = append(parts, titleStyle.Render(title))
	parts = append(parts, r.styles.Dim.Inherit(bg).Render(meta))
	return strings.Join(parts, "")
}

// RenderStatusRow renders the row that follows the posts while a page is
// loading or after a load failed.
func (r *PostRenderer) RenderStatusRow(state domain.NetworkState, spinner string, isSelected bool) string {
	var line string
	switch {
	case state.IsRunning():
		line = r.styles.StatusLoading.Render(spinner + " Loading more posts...")
	case state.IsFailed():
		msg := state.Msg
		if msg == "" {
			msg = "unknown error"
		}
		line = r.styles.StatusError.Render("✗ "+msg) + r.styles.Dim.Render("  (R or Enter to retry)")
	default:
		return ""
	}
	if isSelected {
		return r.styles.SelectionBg.Render(line)
	}
	return line
}

// truncate shortens s to at most n cells, ending with an ellipsis
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return ansi.Truncate(s, n, "…")
}
