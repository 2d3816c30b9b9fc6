package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"subpager/internal/domain"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width            int
	Height           int
	Community        string
	Posts            []domain.Post
	EndReached       bool
	Network          domain.NetworkState
	Refresh          domain.NetworkState
	SelectedIndex    int
	ViewportOffset   int
	ViewportHeight   int
	ShowHelp         bool
	HelpScrollOffset int
	StatusMessage    string
	ShowScore        bool
	Spinner          string // current spinner frame
	TextInput        string // prompt and input line, empty outside text modes
	InputMode        string
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	postRender  *PostRenderer
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer(showScore bool) *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		postRender:  NewPostRenderer(styles, showScore),
		popupRender: NewPopupRenderer(styles),
	}
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderTitleLine(state))
	content.WriteString("\n")

	if state.InputMode != "" {
		content.WriteString(state.TextInput)
		content.WriteString("\n\n")
	}

	switch {
	case len(state.Posts) == 0 && state.Refresh.IsFailed():
		content.WriteString(r.styles.StatusError.Render("✗ " + state.Refresh.Msg))
		content.WriteString("\n")
		content.WriteString(r.styles.Dim.Render("Press R to retry or r to refresh."))
	case len(state.Posts) == 0 && state.Community == "":
		content.WriteString(r.styles.Dim.Render("Press / to choose a community."))
	case len(state.Posts) == 0 && (state.EndReached || state.Refresh == domain.Loaded) && !state.Network.IsRunning():
		content.WriteString(r.styles.Dim.Render("No posts in this community."))
	case len(state.Posts) == 0 && !state.Network.IsFailed():
		content.WriteString(r.styles.Dim.Render(state.Spinner + " Loading posts..."))
	default:
		content.WriteString(r.renderPostList(state))
	}

	// Footer is pushed to the bottom when no popup is visible
	if !state.ShowHelp {
		footer := r.renderFooter(state)

		currentLines := strings.Count(content.String(), "\n") + 1
		// Account for container padding (1 top, 1 bottom from Padding(1, 2))
		availableLines := state.Height - 2
		if availableLines <= 0 {
			availableLines = 22
		}
		if paddingNeeded := availableLines - currentLines - 1; paddingNeeded > 0 {
			content.WriteString(strings.Repeat("\n", paddingNeeded))
		}
		content.WriteString("\n")
		content.WriteString(footer)
	}

	mainStyle := r.styles.Main.MaxHeight(state.Height)
	finalContent := mainStyle.Render(content.String())

	if state.ShowHelp {
		helpContent := RenderHelpContent(state.Height, state.HelpScrollOffset)
		return r.popupRender.RenderPopupOverlay(finalContent, helpContent, state.Height, state.Width, r.styles.InfoBox)
	}
	return finalContent
}

// renderTitleLine renders the logo with the community and refresh state
// right-aligned.
func (r *Renderer) renderTitleLine(state ViewState) string {
	logo := r.styles.Title.Render("subpager")
	if state.Community == "" {
		return logo
	}

	right := r.styles.Community.Render("c/" + state.Community)
	switch {
	case state.Refresh.IsRunning():
		right = r.styles.Dim.Render(state.Spinner+" Refreshing") + "  " + right
	case state.Refresh.IsFailed():
		right = r.styles.StatusError.Render("refresh failed") + "  " + right
	}

	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	// Account for main container padding
	paddingWidth := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(right)
	if paddingWidth > 0 {
		return logo + strings.Repeat(" ", paddingWidth) + right
	}
	return logo + "  " + right
}

// renderPostList renders the visible window of posts with scroll indicators
// and the trailing load-state row.
func (r *Renderer) renderPostList(state ViewState) string {
	width := state.Width - 4
	statusRow := r.postRender.RenderStatusRow(state.Network, state.Spinner, state.SelectedIndex == len(state.Posts))

	total := len(state.Posts)
	if statusRow != "" {
		total++
	}

	effectiveHeight := max(state.ViewportHeight, 1)
	needsTopIndicator := state.ViewportOffset > 0
	needsBottomIndicator := total > state.ViewportOffset+state.ViewportHeight
	if needsTopIndicator {
		effectiveHeight--
	}
	if needsBottomIndicator {
		effectiveHeight--
	}
	effectiveHeight = max(effectiveHeight, 1)

	var lines []string
	if needsTopIndicator {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↑ %d more above ↑", state.ViewportOffset)))
	}

	end := min(state.ViewportOffset+effectiveHeight, total)
	for i := state.ViewportOffset; i < end; i++ {
		if i < len(state.Posts) {
			lines = append(lines, r.postRender.RenderPost(state.Posts[i], i == state.SelectedIndex, width))
		} else {
			lines = append(lines, statusRow)
		}
	}

	if needsBottomIndicator {
		itemsBelow := max(total-end, 0)
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", itemsBelow)))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderFooter(state ViewState) string {
	left := r.styles.Help.Render("Press ? for help")
	if state.StatusMessage != "" {
		left = r.styles.Status.Render(state.StatusMessage) + "  " + left
	}
	if state.EndReached && len(state.Posts) > 0 {
		left = r.styles.Dim.Render(fmt.Sprintf("%d posts · end of feed", len(state.Posts))) + "  " + left
	}
	return left
}
