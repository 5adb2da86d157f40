package tree

import (
	"sort"
	"strings"

	"github.com/mattsolo1/tagfolder/pkg/scheduler"
)

// Builder rewrites tag trees: it splits nested tags into nested nodes and
// expands nodes with the other tags of their items.
type Builder struct {
	// ReduceNestedParent avoids "a > a > b" chains when a nested tag is split
	// below a node that already carries its head segment.
	ReduceNestedParent bool
	Yielder            scheduler.Yielder
}

// NewBuilder returns a Builder. A nil yielder never yields.
func NewBuilder(reduceNestedParent bool, y scheduler.Yielder) *Builder {
	if y == nil {
		y = scheduler.Nop{}
	}
	return &Builder{ReduceNestedParent: reduceNestedParent, Yielder: y}
}

// Split rewrites the subtree below n until no child tag contains the
// delimiter. It reports whether anything changed; a second call on the same
// tree returns false.
func (b *Builder) Split(n *Node) bool {
	queue := []*Node{n}
	queued := map[*Node]bool{n: true}
	push := func(x *Node) {
		if !queued[x] {
			queued[x] = true
			queue = append(queue, x)
		}
	}

	modified := false
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		delete(queued, cur)

		b.yield()
		changed, touched := b.splitPass(cur)
		for _, t := range touched {
			push(t)
		}
		if changed {
			// Run the pass again until it reaches a fixed point.
			modified = true
			push(cur)
			continue
		}
		for _, c := range cur.Children {
			if child, ok := c.(*Node); ok {
				push(child)
			}
		}
	}
	return modified
}

// splitPass splits every delimited child tag of entry once. It returns the
// nodes whose children changed so that they are split again.
func (b *Builder) splitPass(entry *Node) (bool, []*Node) {
	sortBySegments(entry.Children)

	var touched []*Node
	modified := false
	for _, e := range append([]Entry(nil), entry.Children...) {
		cur, ok := e.(*Node)
		if !ok || !strings.Contains(cur.Tag, Delimiter) {
			continue
		}
		if !entry.remove(cur) {
			continue
		}
		modified = true

		head, tail := splitSegments(cur.Tag)
		base := withoutTag(cur.Ancestors, cur.Tag)
		idxHead := indexFold(cur.Ancestors, head)
		idxTail := indexFold(cur.Ancestors, tail)

		if idxHead != -1 {
			if idxHead < idxTail {
				// The chain already runs through head and then tail.
				continue
			}
			if b.ReduceNestedParent {
				w := newNode(tail, uniqueFold(concat(base, head, tail)), cur.Children)
				if old := entry.Child(tail); old != nil {
					entry.remove(old)
					touched = append(touched, w.merge(old.Children)...)
				}
				entry.add(w)
				touched = append(touched, w)
				continue
			}
		}

		parent := entry.Child(head)
		if parent == nil {
			child := newNode(tail, concat(base, head, tail), copyEntries(cur.Children))
			parent = newNode(head, uniqueFold(concat(base, head)), []Entry{child})
			parent.Dedicated = true
			entry.add(parent)
			touched = append(touched, parent)
			continue
		}

		if existing := parent.Child(tail); existing != nil {
			touched = append(touched, existing)
			touched = append(touched, existing.merge(cur.Children)...)
			parent.invalidate()
		} else {
			parent.add(newNode(tail, concat(base, head, tail), copyEntries(cur.Children)))
			parent.Dedicated = true
			touched = append(touched, parent)
		}
	}
	return modified, touched
}

func (b *Builder) yield() {
	if b.Yielder != nil {
		b.Yielder.Yield()
	}
}

// splitSegments splits "a/b/c" into "a" and "→ b/c".
func splitSegments(tag string) (string, string) {
	head, rest, _ := strings.Cut(tag, Delimiter)
	return head, SubtreeMark + rest
}

// segments counts the delimiter separated parts of a tag.
func segments(tag string) int {
	return strings.Count(tag, Delimiter) + 1
}

// sortBySegments orders tag nodes so that shallower tags come first. Leaves
// keep their relative order and sort as a single segment.
func sortBySegments(children []Entry) {
	depth := func(e Entry) int {
		if n, ok := e.(*Node); ok {
			return segments(n.Tag)
		}
		return 1
	}
	sort.SliceStable(children, func(i, j int) bool {
		return depth(children[i]) < depth(children[j])
	})
}

func withoutTag(ancestors []string, tag string) []string {
	out := make([]string, 0, len(ancestors))
	for _, a := range ancestors {
		if a != tag {
			out = append(out, a)
		}
	}
	return out
}

func concat(base []string, tags ...string) []string {
	out := make([]string, 0, len(base)+len(tags))
	out = append(out, base...)
	return append(out, tags...)
}

func copyEntries(entries []Entry) []Entry {
	return append([]Entry(nil), entries...)
}
