package tui

import (
	"fmt"
	"strings"

	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/tui/components"
	"github.com/homerun-app/homerun/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// transactionsState tracks the Transactions tab list position.
type transactionsState struct {
	cursor int
	offset int
}

func (s *transactionsState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.offset > s.cursor {
		s.offset = s.cursor
	}
}

func (s *transactionsState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

// handleKey applies list navigation keys and reports whether key was one.
func (s *transactionsState) handleKey(key string, n, page int) bool {
	switch key {
	case "j", "down":
		s.move(1, n)
	case "k", "up":
		s.move(-1, n)
	case "ctrl+d", "pgdown":
		s.move(page/2, n)
	case "ctrl+u", "pgup":
		s.move(-page/2, n)
	case "home":
		s.cursor, s.offset = 0, 0
	case "end":
		s.move(n, n)
	default:
		return false
	}
	return true
}

// visible adjusts the scroll offset so the cursor stays within rows lines.
func (s *transactionsState) visible(rows int) (start int) {
	if rows < 1 {
		rows = 1
	}
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+rows {
		s.offset = s.cursor - rows + 1
	}
	return s.offset
}

func (a App) renderTransactionsTab(cw, h int) string {
	t := theme.Active
	inner := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	title := fmt.Sprintf("Transactions (%d)", len(a.recent))
	if a.days > 0 {
		title = fmt.Sprintf("Transactions, last %dd (%d)", a.days, len(a.recent))
	}
	if len(a.recent) == 0 {
		return components.ContentCard(title, mutedStyle.Render("No transactions."), cw)
	}

	// date | name | category | amount
	dateW, amtW := 12, 14
	catW := 0
	if !a.isCompactLayout() {
		catW = inner / 4
	}
	nameW := inner - dateW - amtW - catW - 3
	if nameW < 10 {
		nameW = 10
	}

	line := func(date, name, cat, amt string) string {
		s := fmt.Sprintf("%-*s %-*s ", dateW, date, nameW, cli.Truncate(name, nameW))
		if catW > 0 {
			s += fmt.Sprintf("%-*s ", catW, cli.Truncate(cat, catW))
		}
		return s + fmt.Sprintf("%*s", amtW, amt)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(line("Date", "Name", "Category", "Amount")))
	b.WriteString("\n")

	rows := h - 5
	st := a.txState
	start := st.visible(rows)
	end := start + rows
	if end > len(a.recent) {
		end = len(a.recent)
	}
	for i := start; i < end; i++ {
		tx := a.recent[i]
		name := tx.Name
		if tx.Pending {
			name += " (pending)"
		}
		amt := cli.FormatMoney(tx.Amount)
		text := line(cli.FormatDate(tx.Date), name, cli.FormatCategory(tx.Category), amt)
		amtStyle := lipgloss.NewStyle().Foreground(t.Amount(tx.IsSpend()))
		if i == st.cursor {
			b.WriteString(selStyle.Render(strings.TrimSuffix(text, amt)))
			b.WriteString(amtStyle.Background(t.SurfaceBright).Bold(true).Render(amt))
		} else {
			b.WriteString(rowStyle.Render(strings.TrimSuffix(text, amt)))
			b.WriteString(amtStyle.Background(t.Surface).Render(amt))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d-%d of %d  [j/k] move  [^d/^u] page", start+1, end, len(a.recent))))

	return components.ContentCard(title, b.String(), cw)
}
