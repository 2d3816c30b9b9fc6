package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderPopupOverlay draws the popup centred over a greyed copy of the main
// content.
func (pr *PopupRenderer) RenderPopupOverlay(mainContent, popupContent string, height, width int, popupStyle lipgloss.Style) string {
	styledPopup := popupStyle.Render(popupContent)
	if width <= 0 || height <= 0 {
		return styledPopup
	}

	popupLines := strings.Split(styledPopup, "\n")
	if len(popupLines) > height {
		popupLines = popupLines[:height]
	}
	modalW := lipgloss.Width(styledPopup)
	x := max((width-modalW)/2, 0)
	y := max((height-len(popupLines))/2, 0)

	baseLines := strings.Split(ansiRE.ReplaceAllString(mainContent, ""), "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}

	grey := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	out := make([]string, len(baseLines))
	for i, line := range baseLines {
		row := i - y
		if row < 0 || row >= len(popupLines) {
			out[i] = grey.Render(line)
			continue
		}
		left, right := splitAround(line, x, modalW)
		out[i] = grey.Render(left) + popupLines[row] + grey.Render(right)
	}
	return strings.Join(out, "\n")
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// splitAround returns the parts of a plain line left of column x and right of
// column x+w, padding the left part when the line is short.
func splitAround(line string, x, w int) (string, string) {
	runes := []rune(line)
	if len(runes) < x {
		return line + strings.Repeat(" ", x-len(runes)), ""
	}
	left := string(runes[:x])
	if x+w >= len(runes) {
		return left, ""
	}
	return left, string(runes[x+w:])
}
