package tree

import "strings"

// Expand adds a child node for every tag carried by n's leaf children that is
// neither on n's ancestor chain nor already a child of n. Each new node holds
// exactly the leaves carrying that tag; n keeps all of its children.
//
// New nodes may carry nested tags. Their own children are split right away,
// the new nodes themselves are split by the next Split of n.
func (b *Builder) Expand(n *Node) {
	chain := n.chain()

	var tags []string
	seen := make(map[string]struct{})
	for _, l := range n.Leaves() {
		for _, t := range l.Tags {
			k := strings.ToLower(t)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			tags = append(tags, t)
		}
	}

	// Saturated: the leaves carry nothing beyond the chain.
	if len(uniqueFold(chain)) == len(uniqueFold(concat(chain, tags...))) {
		return
	}

	for _, tag := range tags {
		if containsFold(chain, tag) || n.Child(tag) != nil {
			continue
		}

		var members []Entry
		for _, l := range n.Leaves() {
			if l.HasTag(tag) {
				members = append(members, l)
			}
		}

		child := newNode(tag, uniqueFold(concat(chain, tag)), members)
		child.ItemsCount = len(members)
		n.add(child)
		b.Split(child)
	}
}

// Prune removes the leaves directly under n, keeping only its tag nodes.
func Prune(n *Node) {
	kept := n.Children[:0:0]
	for _, c := range n.Children {
		if _, ok := c.(*Node); ok {
			kept = append(kept, c)
		}
	}
	n.Children = kept
	n.invalidate()
}
