package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tuzig/vt10x"

	"github.com/dev-namespace/hydra/internal/session"
	"github.com/dev-namespace/hydra/internal/styles"
	"github.com/dev-namespace/hydra/internal/vterm"
)

const helpText = "ctrl+o new · f1-f7 switch · ctrl+←/→ cycle · f8 close · f9 quit · ctrl+c kill agent"

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.sized {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m *Model) renderTabBar() string {
	titles := make([]string, 0, len(m.tabs))
	for i, s := range m.tabs {
		label := fmt.Sprintf("%d%s", i+1, statusSuffix(s.Status()))
		if i == m.active {
			titles = append(titles, styles.TabActive.Render(label))
		} else {
			titles = append(titles, styles.TabInactive.Render(label))
		}
	}

	line := strings.Join(titles, " | ")
	trailing := styles.Help.Render(helpText)
	if m.status != "" {
		trailing = styles.Status.Render(m.status)
	}
	if line != "" {
		line += "   "
	}
	line += trailing

	return styles.TabBar.Width(m.width - contentBorderX).Render(line)
}

func statusSuffix(st session.Status) string {
	switch st {
	case session.StatusTaskComplete:
		return " [done]"
	case session.StatusAllComplete:
		return " [ALL]"
	case session.StatusStopped, session.StatusFailed:
		return " [X]"
	default:
		return ""
	}
}

func (m *Model) renderContent() string {
	s := m.activeSession()
	if s == nil {
		return styles.Content.
			Width(m.width - contentBorderX).
			Height(m.contentRows).
			Render("no active tab - press ctrl+o to open one")
	}

	screen := renderScreen(s.Term().Snapshot())
	return styles.Content.
		Width(m.width - contentBorderX).
		Height(m.contentRows).
		Render(screen)
}

// renderScreen turns a cell grid into styled text, batching runs of
// identical colors to keep the output compact.
func renderScreen(grid [][]vterm.Cell) string {
	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderRow(row))
	}
	return b.String()
}

func renderRow(row []vterm.Cell) string {
	var b strings.Builder
	var run strings.Builder
	var curFG, curBG = vterm.DefaultFG, vterm.DefaultBG

	flush := func() {
		if run.Len() == 0 {
			return
		}
		text := run.String()
		style := lipgloss.NewStyle()
		styled := false
		if c, ok := lipglossColor(curFG, vterm.DefaultFG); ok {
			style = style.Foreground(c)
			styled = true
		}
		if c, ok := lipglossColor(curBG, vterm.DefaultBG); ok {
			style = style.Background(c)
			styled = true
		}
		if styled {
			b.WriteString(style.Render(text))
		} else {
			b.WriteString(text)
		}
		run.Reset()
	}

	for _, cell := range row {
		if cell.FG != curFG || cell.BG != curBG {
			flush()
			curFG, curBG = cell.FG, cell.BG
		}
		run.WriteRune(cell.Char)
	}
	flush()

	return strings.TrimRight(b.String(), " ")
}

// lipglossColor maps an emulator color to a lipgloss color. Default
// colors return false so untouched cells inherit the terminal theme.
func lipglossColor(c, def vt10x.Color) (lipgloss.Color, bool) {
	switch {
	case c == def:
		return "", false
	case c < 256:
		return lipgloss.Color(strconv.Itoa(int(c))), true
	default:
		return lipgloss.Color(fmt.Sprintf("#%06x", uint32(c)&0xffffff)), true
	}
}
