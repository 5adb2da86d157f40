package tree

import (
	"strings"
	"time"
)

const (
	// Delimiter separates the segments of a nested tag.
	Delimiter = "/"
	// SubtreeMark prefixes the remainder of a split tag, telling a nested
	// segment apart from a top-level tag with the same text.
	SubtreeMark = "→ "
	// RootTag is the tag of the tree root.
	RootTag = "root"
	// Untagged collects documents without any tag.
	Untagged = "_untagged"
)

// Entry is a child of a tag node: either a *Node or a *Leaf.
type Entry interface {
	entry()
}

// Leaf is a reference to a document. The same *Leaf is shared by every node
// the document appears under.
type Leaf struct {
	Path        string
	Filename    string
	DisplayName string
	Tags        []string // As assigned to the document, case preserved
	ModTime     time.Time
	CreateTime  time.Time
}

func (*Leaf) entry() {}

// HasTag reports whether the leaf carries tag, ignoring case.
func (l *Leaf) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Node is a tag node. Its tag is a single segment relative to its parent once
// the tree has been split.
type Node struct {
	Tag       string
	Children  []Entry
	Ancestors []string // Root first, ends with Tag; empty for the root
	Dedicated bool     // Created to host a nested child path

	ItemsCount int

	descendants    []*Leaf
	allDescendants []*Leaf
	memo           []*Leaf
	clean          bool
	memoClean      bool
}

func (*Node) entry() {}

func newNode(tag string, ancestors []string, children []Entry) *Node {
	return &Node{
		Tag:       tag,
		Ancestors: ancestors,
		Children:  children,
	}
}

// NewRoot returns a root node holding leaves as its direct children.
func NewRoot(leaves []*Leaf) *Node {
	children := make([]Entry, 0, len(leaves))
	for _, l := range leaves {
		children = append(children, l)
	}
	return newNode(RootTag, nil, children)
}

// Key returns the full tag path of the node, used to remember which nodes
// are expanded across rebuilds.
func (n *Node) Key() string {
	if len(n.Ancestors) == 0 {
		return n.Tag
	}
	return strings.Join(n.Ancestors, Delimiter)
}

// chain returns the ancestors followed by the node's own tag.
func (n *Node) chain() []string {
	c := make([]string, 0, len(n.Ancestors)+1)
	c = append(c, n.Ancestors...)
	return append(c, n.Tag)
}

// Nodes returns the tag node children in order.
func (n *Node) Nodes() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if child, ok := c.(*Node); ok {
			out = append(out, child)
		}
	}
	return out
}

// Leaves returns the leaf children in order.
func (n *Node) Leaves() []*Leaf {
	var out []*Leaf
	for _, c := range n.Children {
		if l, ok := c.(*Leaf); ok {
			out = append(out, l)
		}
	}
	return out
}

// Child returns the child node whose tag equals tag, ignoring case.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if child, ok := c.(*Node); ok && strings.EqualFold(child.Tag, tag) {
			return child
		}
	}
	return nil
}

// Walk visits n and every tag node below it, depth first. Returning false
// from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		if child, ok := c.(*Node); ok {
			Walk(child, fn)
		}
	}
}

func (n *Node) remove(target Entry) bool {
	for i, c := range n.Children {
		if c == target {
			n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
			n.invalidate()
			return true
		}
	}
	return false
}

func (n *Node) add(children ...Entry) {
	n.Children = append(n.Children, children...)
	n.invalidate()
}

// merge adds children to n. Leaves already present are skipped; nodes whose
// tag matches an existing child are merged into it. It returns the existing
// nodes that received new children.
func (n *Node) merge(children []Entry) []*Node {
	present := make(map[Entry]struct{}, len(n.Children))
	for _, c := range n.Children {
		present[c] = struct{}{}
	}

	var touched []*Node
	for _, c := range children {
		if _, ok := present[c]; ok {
			continue
		}
		if incoming, ok := c.(*Node); ok {
			if twin := n.Child(incoming.Tag); twin != nil {
				touched = append(touched, twin)
				touched = append(touched, twin.merge(incoming.Children)...)
				continue
			}
		}
		n.Children = append(n.Children, c)
		present[c] = struct{}{}
	}
	n.invalidate()
	return touched
}

func (n *Node) invalidate() {
	n.clean = false
	n.memoClean = false
}

// Arena interns leaves by path so that each document has exactly one *Leaf.
type Arena struct {
	leaves map[string]*Leaf
	order  []*Leaf
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{leaves: make(map[string]*Leaf)}
}

// Intern stores l unless a leaf with the same path exists, and returns the
// canonical leaf for that path.
func (a *Arena) Intern(l *Leaf) *Leaf {
	if existing, ok := a.leaves[l.Path]; ok {
		return existing
	}
	a.leaves[l.Path] = l
	a.order = append(a.order, l)
	return l
}

// Get returns the leaf for path.
func (a *Arena) Get(path string) (*Leaf, bool) {
	l, ok := a.leaves[path]
	return l, ok
}

// Leaves returns all interned leaves in insertion order.
func (a *Arena) Leaves() []*Leaf {
	return append([]*Leaf(nil), a.order...)
}

// Len returns the number of interned leaves.
func (a *Arena) Len() int {
	return len(a.order)
}

func containsFold(list []string, s string) bool {
	return indexFold(list, s) != -1
}

func indexFold(list []string, s string) int {
	for i, e := range list {
		if strings.EqualFold(e, s) {
			return i
		}
	}
	return -1
}

// uniqueFold drops repeated entries, ignoring case and keeping the first
// spelling.
func uniqueFold(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, e := range list {
		k := strings.ToLower(e)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
