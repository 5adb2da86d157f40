// Package normalize turns raw documents into tree leaves, applying the
// ignore lists, nested tag flattening and the search filter.
package normalize

import (
	"path"
	"strings"

	"github.com/mattsolo1/tagfolder/pkg/models"
	"github.com/mattsolo1/tagfolder/pkg/tree"
)

// Normalizer holds the parsed form of the settings that affect which
// documents and tags make it into the tree.
type Normalizer struct {
	settings      models.Settings
	ignoreDocTags map[string]bool
	ignoreTags    map[string]bool
	ignoreFolders []string
	query         Query
}

// New prepares a normalizer for settings and search.
func New(settings models.Settings, search string) *Normalizer {
	return &Normalizer{
		settings:      settings,
		ignoreDocTags: toSet(ParseTagList(settings.IgnoreDocTags)),
		ignoreTags:    toSet(ParseTagList(settings.IgnoreTags)),
		ignoreFolders: ParseFolderList(settings.IgnoreFolders),
		query:         ParseQuery(search),
	}
}

// Normalize is a shorthand for New(settings, search).Normalize(docs).
func Normalize(docs []*models.Document, settings models.Settings, search string) []*tree.Leaf {
	return New(settings, search).Normalize(docs)
}

// Normalize converts docs into leaves interned by path. Documents that are
// ignored or filtered out by the search are dropped.
func (n *Normalizer) Normalize(docs []*models.Document) []*tree.Leaf {
	arena := tree.NewArena()
	for _, doc := range docs {
		if leaf, ok := n.Leaf(doc); ok {
			arena.Intern(leaf)
		}
	}
	return arena.Leaves()
}

// Leaf converts a single document, reporting false when it is excluded.
func (n *Normalizer) Leaf(doc *models.Document) (*tree.Leaf, bool) {
	if n.ignoredFolder(doc.Path) {
		return nil, false
	}

	tags := n.tags(doc.Tags)
	for _, tag := range tags {
		if n.ignoreDocTags[strings.ToLower(tag)] {
			return nil, false
		}
	}
	if !n.query.Match(tags) {
		return nil, false
	}

	kept := tags[:0:0]
	for _, tag := range tags {
		if !n.ignoreTags[strings.ToLower(tag)] {
			kept = append(kept, tag)
		}
	}

	return &tree.Leaf{
		Path:        doc.Path,
		Filename:    basename(doc.Path),
		DisplayName: n.displayName(doc),
		Tags:        kept,
		ModTime:     doc.ModTime,
		CreateTime:  doc.CreateTime,
	}, true
}

// tags strips the "#" prefix, drops empty segments and flattens nested tags
// when they are disabled. A document without tags is untagged.
func (n *Normalizer) tags(raw []string) []string {
	var tags []string
	for _, t := range raw {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		var segments []string
		for _, s := range strings.Split(t, tree.Delimiter) {
			if s = strings.TrimSpace(s); s != "" {
				segments = append(segments, s)
			}
		}
		if len(segments) == 0 {
			continue
		}
		if n.settings.DisableNestedTags {
			tags = append(tags, segments...)
		} else {
			tags = append(tags, strings.Join(segments, tree.Delimiter))
		}
	}
	if len(tags) == 0 {
		return []string{tree.Untagged}
	}
	return tags
}

func (n *Normalizer) ignoredFolder(p string) bool {
	lower := strings.ToLower(p)
	for _, prefix := range n.ignoreFolders {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func (n *Normalizer) displayName(doc *models.Document) string {
	name := basename(doc.Path)
	if n.settings.UseTitle && doc.Title != "" {
		name = doc.Title
	}

	dir := path.Dir(doc.Path)
	if dir == "." {
		dir = ""
	}
	switch n.settings.DisplayMethod {
	case models.DisplayNameWithPath:
		return name + " : " + dir
	case models.DisplayPathName:
		return dir + "/" + name
	default:
		return name
	}
}

func basename(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ParseTagList parses a comma separated tag list the way it is persisted:
// lowercased, with spaces and newlines removed.
func ParseTagList(s string) []string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("\n", "", "\r", "", " ", "").Replace(s)
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimPrefix(part, "#"); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseFolderList parses a comma separated list of folder prefixes. Spaces
// inside a folder name are kept.
func ParseFolderList(s string) []string {
	s = strings.ToLower(strings.NewReplacer("\n", "", "\r", "").Replace(s))
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}
