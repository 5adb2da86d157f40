// Package render turns a published tag tree into text.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/tagfolder/pkg/tree"
)

var (
	tagStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	itemStyle  = lipgloss.NewStyle()
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Func adapts a function to the orchestrator's Publisher interface.
type Func func(root *tree.Node)

// SetRoot calls f(root).
func (f Func) SetRoot(root *tree.Node) { f(root) }

// Options controls what Render prints.
type Options struct {
	// ExpandLimit is the deepest level whose tag nodes are listed, counting
	// the root as level 1. Zero means no limit.
	ExpandLimit int
	// ShowPaths appends each item's path.
	ShowPaths bool
}

// Text writes every published tree to an io.Writer.
type Text struct {
	mu   sync.Mutex
	w    io.Writer
	opts Options
}

// NewText returns a publisher writing to w.
func NewText(w io.Writer, opts Options) *Text {
	return &Text{w: w, opts: opts}
}

// SetRoot renders root to the writer.
func (t *Text) SetRoot(root *tree.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.w, Render(root, t.opts))
}

// Render formats the tag nodes below root with their item counts, each
// followed by the items it displays.
func Render(root *tree.Node, opts Options) string {
	var sb strings.Builder
	for _, n := range root.Nodes() {
		renderNode(&sb, n, 2, "", opts)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, n *tree.Node, level int, indent string, opts Options) {
	sb.WriteString(indent)
	sb.WriteString(tagStyle.Render(n.Tag))
	sb.WriteString(countStyle.Render(fmt.Sprintf(" (%d)", n.ItemsCount)))
	sb.WriteString("\n")

	child := indent + "  "
	if opts.ExpandLimit == 0 || level < opts.ExpandLimit {
		for _, c := range n.Nodes() {
			renderNode(sb, c, level+1, child, opts)
		}
	}
	for _, l := range n.Descendants() {
		sb.WriteString(child)
		sb.WriteString(itemStyle.Render(l.DisplayName))
		if opts.ShowPaths {
			sb.WriteString(pathStyle.Render("  " + l.Path))
		}
		sb.WriteString("\n")
	}
}
