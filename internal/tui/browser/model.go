package browser

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/tagfolder/pkg/tree"
)

// Controller is the part of the orchestrator the browser drives.
type Controller interface {
	Root() *tree.Node
	Expanded() []string
	ExpandFolder(ctx context.Context, key string, expanded bool) error
	SetSearchString(ctx context.Context, search string) error
}

// RootMsg carries a newly published tree into the program.
type RootMsg struct {
	Root *tree.Node
}

type errMsg struct {
	err error
}

// displayNode represents a single line in the tree view.
type displayNode struct {
	node  *tree.Node // nil for items
	leaf  *tree.Leaf
	depth int
}

func (n *displayNode) isTag() bool {
	return n.node != nil
}

// Model is the main model for the tag browser TUI
type Model struct {
	ctrl         Controller
	ctx          context.Context
	root         *tree.Node
	displayNodes []*displayNode
	open         map[string]bool
	cursor       int
	scrollOffset int
	keys         KeyMap
	help         help.Model
	showFullHelp bool
	width        int
	height       int
	filterInput  textinput.Model
	query        string
	lastKey      string // For detecting 'gg'
	status       string
}

// New returns a browser over ctrl.
func New(ctx context.Context, ctrl Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "proj -archive | home"
	ti.Prompt = "/ "
	ti.CharLimit = 256

	m := Model{
		ctrl:        ctrl,
		ctx:         ctx,
		open:        make(map[string]bool),
		keys:        keys,
		help:        help.New(),
		filterInput: ti,
	}
	for _, k := range ctrl.Expanded() {
		m.open[k] = true
	}
	m.setRoot(ctrl.Root())
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// setRoot swaps in a new tree, keeping the cursor on the same row where it
// still exists.
func (m *Model) setRoot(root *tree.Node) {
	var selected string
	if m.cursor < len(m.displayNodes) {
		selected = rowID(m.displayNodes[m.cursor])
	}

	m.root = root
	m.buildDisplayTree()

	m.cursor = 0
	for i, n := range m.displayNodes {
		if rowID(n) == selected {
			m.cursor = i
			break
		}
	}
	m.adjustScroll()
}

// buildDisplayTree flattens the open part of the tree into rows. An open
// tag lists its child tags followed by its items.
func (m *Model) buildDisplayTree() {
	m.displayNodes = nil
	if m.root == nil {
		return
	}
	for _, n := range m.root.Nodes() {
		m.appendNode(n, 0)
	}
}

func (m *Model) appendNode(n *tree.Node, depth int) {
	m.displayNodes = append(m.displayNodes, &displayNode{node: n, depth: depth})
	if !m.open[n.Key()] {
		return
	}
	for _, c := range n.Nodes() {
		m.appendNode(c, depth+1)
	}
	for _, l := range n.Descendants() {
		m.displayNodes = append(m.displayNodes, &displayNode{leaf: l, depth: depth + 1})
	}
}

func rowID(n *displayNode) string {
	if n.isTag() {
		return "tag:" + n.node.Key()
	}
	return "item:" + n.leaf.Path
}

// Selected returns the row under the cursor, or nil.
func (m Model) selected() *displayNode {
	if m.cursor < 0 || m.cursor >= len(m.displayNodes) {
		return nil
	}
	return m.displayNodes[m.cursor]
}

func (m Model) getViewportHeight() int {
	// header, blank, blank, footer
	h := m.height - 5
	if h < 1 {
		return 20
	}
	return h
}

func (m *Model) adjustScroll() {
	viewportHeight := m.getViewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+viewportHeight {
		m.scrollOffset = m.cursor - viewportHeight + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
