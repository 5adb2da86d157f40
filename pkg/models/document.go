package models

import "time"

// Document is a note as reported by a document source, before any tag
// normalization is applied.
type Document struct {
	Path       string    `json:"path"`
	Title      string    `json:"title,omitempty"` // Frontmatter title or first H1
	Tags       []string  `json:"tags"`            // Raw tags, possibly "#"-prefixed and nested
	ModTime    time.Time `json:"modified_at"`
	CreateTime time.Time `json:"created_at"`
}

// ChangeType describes what happened to a document on disk.
type ChangeType int

const (
	// ChangeModified covers creation and content changes of a single document.
	ChangeModified ChangeType = iota
	// ChangeRenamed means a document moved; the old path is no longer valid.
	ChangeRenamed
	// ChangeDeleted means a document was removed.
	ChangeDeleted
)

func (c ChangeType) String() string {
	switch c {
	case ChangeModified:
		return "modified"
	case ChangeRenamed:
		return "renamed"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is emitted by a document source when the underlying storage changes.
type Change struct {
	Type ChangeType
	Path string
}
