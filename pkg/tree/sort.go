package tree

import (
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mattsolo1/tagfolder/pkg/models"
)

// Sorter orders the children of every node: tag nodes first, then leaves,
// each group by its configured key. It is not safe for concurrent use.
type Sorter struct {
	collator     *collate.Collator
	compareTags  func(a, b *Node) int
	compareItems func(a, b *Leaf) int
}

// NewSorter builds the comparators selected by settings. Unknown sort types
// are logged and replaced by name ordering; NewSorter never fails.
func NewSorter(settings models.Settings, logger *logrus.Entry) *Sorter {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	s := &Sorter{collator: collate.New(language.Und)}
	s.compareTags = s.tagComparator(settings.SortTypeTag, logger)
	s.compareItems = s.itemComparator(settings.SortType, logger)
	return s
}

func direction(sortType string) int {
	if strings.Contains(sortType, "_DESC") {
		return -1
	}
	return 1
}

func (s *Sorter) text(a, b string) int {
	return s.collator.CompareString(a, b)
}

func (s *Sorter) tagComparator(sortType string, logger *logrus.Entry) func(a, b *Node) int {
	invert := direction(sortType)
	switch sortType {
	case "ITEMS_ASC", "ITEMS_DESC":
		return func(a, b *Node) int {
			return (a.ItemsCount - b.ItemsCount) * invert
		}
	case "NAME_ASC", "NAME_DESC":
	default:
		logger.WithField("sort_type_tag", sortType).Warn("Compare method (tags) corrupted, ordering by name")
	}
	return func(a, b *Node) int {
		return s.text(a.Tag, b.Tag) * invert
	}
}

func (s *Sorter) itemComparator(sortType string, logger *logrus.Entry) func(a, b *Leaf) int {
	invert := direction(sortType)
	switch sortType {
	case "DISPNAME_ASC", "DISPNAME_DESC":
	case "FULLPATH_ASC", "FULLPATH_DESC":
		return func(a, b *Leaf) int {
			return s.text(a.Path, b.Path) * invert
		}
	case "MTIME_ASC", "MTIME_DESC":
		return func(a, b *Leaf) int {
			return a.ModTime.Compare(b.ModTime) * invert
		}
	case "CTIME_ASC", "CTIME_DESC":
		return func(a, b *Leaf) int {
			return a.CreateTime.Compare(b.CreateTime) * invert
		}
	case "NAME_ASC", "NAME_DESC":
		return func(a, b *Leaf) int {
			return s.text(a.Filename, b.Filename) * invert
		}
	default:
		logger.WithField("sort_type", sortType).Warn("Compare method (items) corrupted, ordering by display name")
	}
	return func(a, b *Leaf) int {
		return s.text(a.DisplayName, b.DisplayName) * invert
	}
}

// CompareTags orders two tag nodes. Ties fall back to the raw tag text so the
// order never depends on input order.
func (s *Sorter) CompareTags(a, b *Node) int {
	if c := s.compareTags(a, b); c != 0 {
		return c
	}
	return strings.Compare(a.Tag, b.Tag)
}

// CompareItems orders two leaves. Ties fall back to the path, which is unique.
func (s *Sorter) CompareItems(a, b *Leaf) int {
	if c := s.compareItems(a, b); c != 0 {
		return c
	}
	return strings.Compare(a.Path, b.Path)
}

func (s *Sorter) compareEntries(a, b Entry) int {
	switch a := a.(type) {
	case *Node:
		if b, ok := b.(*Node); ok {
			return s.CompareTags(a, b)
		}
		return -1
	case *Leaf:
		if b, ok := b.(*Leaf); ok {
			return s.CompareItems(a, b)
		}
		return 1
	}
	return 0
}

// Sort orders n's children and published descendants, recursively.
func (s *Sorter) Sort(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		return s.compareEntries(n.Children[i], n.Children[j]) < 0
	})
	for _, c := range n.Children {
		if child, ok := c.(*Node); ok {
			s.Sort(child)
		}
	}
	sort.SliceStable(n.descendants, func(i, j int) bool {
		return s.CompareItems(n.descendants[i], n.descendants[j]) < 0
	})
}
