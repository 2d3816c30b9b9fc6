package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Navigation", []helpEntry{
		{"↑/↓, j/k", "Navigate up/down"},
		{"PgUp/PgDn", "Page up/down"},
		{"gg/G", "Go to top/bottom"},
	}},
	{"Posts", []helpEntry{
		{"Enter, o", "Open post"},
		{"r", "Refresh from the first page"},
		{"R", "Retry failed load"},
		{"/, s", "Show another community"},
	}},
	{"Other", []helpEntry{
		{"?", "Toggle this help"},
		{"H", "Open help in pager"},
		{"q", "Quit"},
	}},
}

// HelpText returns the full help, styled
func HelpText() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("subpager Help"))
	for _, section := range helpSections {
		help.WriteString("\n")
		help.WriteString(sectionStyle.Render(section.title))
		for _, e := range section.entries {
			help.WriteString(fmt.Sprintf("\n  %s %s", keyStyle.Render(e.keys), descStyle.Render(e.desc)))
		}
	}
	return help.String()
}

// RenderHelpContent renders the window of the help that fits height
func RenderHelpContent(height int, scrollOffset int) string {
	lines := strings.Split(HelpText(), "\n")
	totalLines := len(lines)

	// popup border and padding
	visibleHeight := max(height-4, 5)
	if totalLines <= visibleHeight {
		return strings.Join(lines, "\n")
	}

	maxOffset := totalLines - visibleHeight
	scrollOffset = max(min(scrollOffset, maxOffset), 0)
	endLine := min(scrollOffset+visibleHeight, totalLines)
	visible := lines[scrollOffset:endLine]

	more := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if scrollOffset > 0 {
		visible[0] = more.Render("↑ (more above)")
	}
	if endLine < totalLines {
		visible[len(visible)-1] = more.Render("↓ (more below)")
	}
	return strings.Join(visible, "\n")
}
