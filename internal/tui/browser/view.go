package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func (m Model) View() string {
	if m.root == nil {
		return "Loading..."
	}

	if m.showFullHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}

	header := headerStyle.Render("Tags")
	if m.filterInput.Focused() {
		header = m.filterInput.View()
	} else if m.query != "" {
		header += mutedStyle.Render(fmt.Sprintf("  [filter: %s]", m.query))
	}

	footer := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.status != "" {
		footer = statusStyle.Render(m.status) + "\n" + footer
	}

	fullView := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.renderTreeView(),
		"",
		footer,
	)
	return "\n" + fullView
}

func (m Model) renderTreeView() string {
	if len(m.displayNodes) == 0 {
		return mutedStyle.Render("No tagged notes.")
	}

	var b strings.Builder

	// Viewport calculation
	viewportHeight := m.getViewportHeight()
	start := m.scrollOffset
	end := min(start+viewportHeight, len(m.displayNodes))

	for i := start; i < end; i++ {
		node := m.displayNodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = selectedStyle.Render("▶ ")
		}
		indent := strings.Repeat("  ", node.depth)

		var line string
		if node.isTag() {
			foldIndicator := "▸ "
			if m.open[node.node.Key()] {
				foldIndicator = "▾ "
			}
			line = fmt.Sprintf("%s%s%s%s", cursor, indent, foldIndicator, tagStyle.Render(node.node.Tag)) +
				mutedStyle.Render(fmt.Sprintf(" %d", node.node.ItemsCount))
		} else {
			line = fmt.Sprintf("%s%s  %s", cursor, indent, node.leaf.DisplayName)
		}
		if i == m.cursor {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	// Scroll indicator
	if len(m.displayNodes) > viewportHeight {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.displayNodes))))
	}

	return b.String()
}
