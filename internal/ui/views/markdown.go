package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"subpager/internal/domain"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// MarkdownRenderer renders post details for the pager.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdownRenderer creates a renderer wrapping at width. style is a
// glamour standard style such as "dark" or "light"; empty means "dark".
// WithAutoStyle is avoided because it queries the terminal while Bubble Tea
// owns the input stream.
func NewMarkdownRenderer(width int, style string) (*MarkdownRenderer, error) {
	if style == "" {
		style = "dark"
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return &MarkdownRenderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *MarkdownRenderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *MarkdownRenderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}

// PostMarkdown lays a post out as a markdown document.
func PostMarkdown(p domain.Post) string {
	var b strings.Builder

	title := p.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	meta := []string{}
	if p.Author != "" {
		meta = append(meta, "**"+p.Author+"**")
	}
	meta = append(meta,
		fmt.Sprintf("%d points", p.Score),
		fmt.Sprintf("%d comments", p.CommentCount))
	if p.Community != "" {
		meta = append(meta, "c/"+p.Community)
	}
	if !p.CreatedAt.IsZero() {
		meta = append(meta, p.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	b.WriteString(strings.Join(meta, " · "))
	b.WriteString("\n\n")

	if p.URL != "" {
		fmt.Fprintf(&b, "<%s>\n\n", p.URL)
	}
	if body := strings.TrimSpace(p.Body); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}
