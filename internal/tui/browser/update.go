package browser

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.adjustScroll()
		return m, nil

	case RootMsg:
		m.setRoot(msg.Root)
		return m, nil

	case errMsg:
		m.status = fmt.Sprintf("Error: %v", msg.err)
		return m, nil

	case tea.KeyMsg:
		if m.showFullHelp {
			m.showFullHelp = false
			return m, nil
		}

		// Handle filtering mode
		if m.filterInput.Focused() {
			switch {
			case key.Matches(msg, m.keys.Back):
				m.filterInput.SetValue(m.query)
				m.filterInput.Blur()
				return m, nil
			case key.Matches(msg, m.keys.Confirm):
				m.filterInput.Blur()
				return m, m.setQuery(m.filterInput.Value())
			default:
				m.filterInput, cmd = m.filterInput.Update(msg)
				return m, cmd
			}
		}

		if !key.Matches(msg, m.keys.GoToTop) {
			m.lastKey = ""
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showFullHelp = true
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustScroll()
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.displayNodes)-1 {
				m.cursor++
				m.adjustScroll()
			}
		case key.Matches(msg, m.keys.PageUp):
			m.cursor -= max(m.getViewportHeight()/2, 1)
			if m.cursor < 0 {
				m.cursor = 0
			}
			m.adjustScroll()
		case key.Matches(msg, m.keys.PageDown):
			m.cursor += max(m.getViewportHeight()/2, 1)
			if m.cursor >= len(m.displayNodes) {
				m.cursor = max(len(m.displayNodes)-1, 0)
			}
			m.adjustScroll()
		case key.Matches(msg, m.keys.GoToTop):
			// Handle 'gg' - go to top when g is pressed twice
			if m.lastKey == "g" {
				m.cursor = 0
				m.adjustScroll()
				m.lastKey = ""
			} else {
				m.lastKey = "g"
			}
		case key.Matches(msg, m.keys.GoToBottom):
			if len(m.displayNodes) > 0 {
				m.cursor = len(m.displayNodes) - 1
				m.adjustScroll()
			}
		case key.Matches(msg, m.keys.Open):
			return m, m.setOpen(true)
		case key.Matches(msg, m.keys.Close):
			return m, m.setOpen(false)
		case key.Matches(msg, m.keys.Toggle):
			row := m.selected()
			if row == nil {
				return m, nil
			}
			if !row.isTag() {
				m.status = row.leaf.Path
				return m, nil
			}
			return m, m.setOpen(!m.open[row.node.Key()])
		case key.Matches(msg, m.keys.Search):
			m.filterInput.SetValue(m.query)
			m.filterInput.CursorEnd()
			return m, m.filterInput.Focus()
		case key.Matches(msg, m.keys.ClearQuery):
			m.filterInput.SetValue("")
			return m, m.setQuery("")
		}
	}
	return m, nil
}

// setOpen opens or closes the tag under the cursor. Closing an item's row
// closes the tag it is listed under.
func (m *Model) setOpen(open bool) tea.Cmd {
	row := m.selected()
	if row == nil {
		return nil
	}
	idx := m.cursor
	if !row.isTag() {
		if open {
			return nil
		}
		idx = m.parentRow(idx)
		if idx < 0 {
			return nil
		}
		row = m.displayNodes[idx]
	}

	k := row.node.Key()
	if m.open[k] == open {
		return nil
	}
	if open {
		m.open[k] = true
	} else {
		delete(m.open, k)
	}
	m.cursor = idx
	m.buildDisplayTree()
	m.adjustScroll()

	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.ExpandFolder(ctx, k, open); err != nil {
			return errMsg{err}
		}
		return RootMsg{Root: ctrl.Root()}
	}
}

// parentRow returns the index of the tag row that lists row idx.
func (m Model) parentRow(idx int) int {
	depth := m.displayNodes[idx].depth
	for i := idx - 1; i >= 0; i-- {
		if n := m.displayNodes[i]; n.isTag() && n.depth < depth {
			return i
		}
	}
	return -1
}

func (m *Model) setQuery(q string) tea.Cmd {
	if q == m.query {
		return nil
	}
	m.query = q
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.SetSearchString(ctx, q); err != nil {
			return errMsg{err}
		}
		return RootMsg{Root: ctrl.Root()}
	}
}
