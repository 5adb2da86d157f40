package tree

import "github.com/mattsolo1/tagfolder/pkg/models"

// RippleDirty marks every node with a dirty descendant node as dirty itself.
// It reports whether n is dirty.
func RippleDirty(n *Node) bool {
	for _, c := range n.Children {
		if child, ok := c.(*Node); ok && RippleDirty(child) {
			n.invalidate()
		}
	}
	return !n.clean
}

// UpdateDescendants propagates dirtiness from below and recomputes every
// dirty node's descendant lists under policy.
func UpdateDescendants(root *Node, policy models.HideItems) {
	RippleDirty(root)
	ComputeDescendants(root, policy)
}

// ComputeDescendants fills the descendant caches of n and of every dirty node
// below it, and returns all leaves reachable from n. Clean child nodes are
// served from their cache.
func ComputeDescendants(n *Node, policy models.HideItems) []*Leaf {
	var all leafSet
	for _, c := range n.Children {
		switch c := c.(type) {
		case *Node:
			if c.clean {
				all.add(c.allDescendants...)
			} else {
				all.add(ComputeDescendants(c, policy)...)
			}
		case *Leaf:
			all.add(c)
		}
	}

	if !n.memoClean {
		n.memo = skipLevel(n)
		n.memoClean = true
	}
	var skip leafSet
	skip.add(n.memo...)

	if policy == models.HideAllExceptBottom || (policy == models.HideDedicatedIntermediates && n.Dedicated) {
		n.descendants = all.without(&skip)
	} else {
		n.descendants = all.items()
	}
	n.allDescendants = all.items()

	var count leafSet
	count.add(n.allDescendants...)
	count.add(n.memo...)
	n.ItemsCount = count.len()

	n.clean = true
	return n.allDescendants
}

// skipLevel returns the leaves found below n's child nodes, skipping the
// leaves placed directly under n.
func skipLevel(n *Node) []*Leaf {
	var out leafSet
	for _, c := range n.Children {
		if child, ok := c.(*Node); ok {
			collectLeaves(child, &out)
		}
	}
	return out.items()
}

func collectLeaves(n *Node, out *leafSet) {
	for _, c := range n.Children {
		switch c := c.(type) {
		case *Node:
			collectLeaves(c, out)
		case *Leaf:
			out.add(c)
		}
	}
}

// Descendants returns the leaves published for n under the active hide
// policy, or nil while n is dirty.
func (n *Node) Descendants() []*Leaf {
	if !n.clean {
		return nil
	}
	return n.descendants
}

// AllDescendants returns every leaf reachable from n, or nil while n is dirty.
func (n *Node) AllDescendants() []*Leaf {
	if !n.clean {
		return nil
	}
	return n.allDescendants
}

// SkipLevelDescendants returns the leaves reachable through n's child nodes,
// or nil while n is dirty.
func (n *Node) SkipLevelDescendants() []*Leaf {
	if !n.memoClean {
		return nil
	}
	return n.memo
}

// Dirty reports whether n's descendant caches need recomputation.
func (n *Node) Dirty() bool {
	return !n.clean
}

// leafSet is an insertion ordered set of leaves compared by identity.
type leafSet struct {
	order []*Leaf
	index map[*Leaf]struct{}
}

func (s *leafSet) add(leaves ...*Leaf) {
	if s.index == nil {
		s.index = make(map[*Leaf]struct{}, len(leaves))
	}
	for _, l := range leaves {
		if _, ok := s.index[l]; ok {
			continue
		}
		s.index[l] = struct{}{}
		s.order = append(s.order, l)
	}
}

func (s *leafSet) has(l *Leaf) bool {
	_, ok := s.index[l]
	return ok
}

func (s *leafSet) len() int {
	return len(s.order)
}

func (s *leafSet) items() []*Leaf {
	return append([]*Leaf{}, s.order...)
}

func (s *leafSet) without(other *leafSet) []*Leaf {
	out := []*Leaf{}
	for _, l := range s.order {
		if !other.has(l) {
			out = append(out, l)
		}
	}
	return out
}
