package components

import (
	"fmt"
	"strings"

	"github.com/homerun-app/homerun/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports about the data.
type Status struct {
	Source      string
	Age         string // time since last refresh, empty before the first
	Refreshing  bool
	AutoRefresh bool
	Message     string // transient note such as a fetch error
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)
	msgStyle := lipgloss.NewStyle().
		Foreground(t.Yellow).
		Background(t.Surface)

	left := " [?]help  [r]efresh  [q]uit"
	if st.Message != "" {
		left += "  " + msgStyle.Render(st.Message)
	}

	var right []string
	if st.Source != "" {
		right = append(right, "source: "+st.Source)
	}
	switch {
	case st.Refreshing:
		right = append(right, "refreshing...")
	case st.Age != "":
		right = append(right, fmt.Sprintf("updated %s ago", st.Age))
	}
	if st.AutoRefresh {
		right = append(right, "auto")
	}
	r := strings.Join(right, " · ") + " "

	padding := width - lipgloss.Width(left) - lipgloss.Width(r)
	if padding < 0 {
		padding = 0
	}
	return style.Render(left + strings.Repeat(" ", padding) + r)
}
