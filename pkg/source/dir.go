package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/tagfolder/pkg/frontmatter"
	"github.com/mattsolo1/tagfolder/pkg/index"
	"github.com/mattsolo1/tagfolder/pkg/models"
)

// Dir reads markdown documents from a directory tree. Paths it reports are
// slash separated and relative to Root.
type Dir struct {
	Root  string
	Index *index.Index // optional metadata cache
	log   *logrus.Entry
}

// NewDir returns a source rooted at root. idx and log may be nil.
func NewDir(root string, idx *index.Index, log *logrus.Entry) *Dir {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Dir{Root: root, Index: idx, log: log.WithField("component", "source")}
}

// Documents walks Root and returns every markdown document. Hidden
// directories are skipped. Files that fail to parse are logged and skipped.
func (d *Dir) Documents(ctx context.Context) ([]*models.Document, error) {
	var docs []*models.Document
	seen := make(map[string]bool)

	err := filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != d.Root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isMarkdown(path) {
			return nil
		}

		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		doc, err := d.Document(ctx, rel)
		if err != nil {
			d.log.WithError(err).WithField("path", rel).Warn("Skipping unreadable document")
			return nil
		}
		seen[rel] = true
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", d.Root, err)
	}

	if d.Index != nil {
		if err := d.Index.Prune(seen); err != nil {
			d.log.WithError(err).Warn("Failed to prune metadata cache")
		}
	}

	return docs, nil
}

// Document loads a single document by its relative path. A missing file
// yields an error wrapping fs.ErrNotExist.
func (d *Dir) Document(ctx context.Context, rel string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(d.Root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		if d.Index != nil && os.IsNotExist(err) {
			_ = d.Index.Delete(rel)
		}
		return nil, err
	}

	if d.Index != nil {
		doc, ok, err := d.Index.Lookup(rel, info.ModTime())
		if err != nil {
			d.log.WithError(err).WithField("path", rel).Debug("Metadata cache lookup failed")
		} else if ok {
			return doc, nil
		}
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(rel, string(content), info.ModTime())
	if err != nil {
		return nil, err
	}

	if d.Index != nil {
		if err := d.Index.Put(doc); err != nil {
			d.log.WithError(err).WithField("path", rel).Debug("Failed to cache metadata")
		}
	}
	return doc, nil
}

// Parse builds a Document from raw markdown. Tags come from the frontmatter
// and from inline #tags in the body. The creation time falls back to
// modTime when the frontmatter carries none.
func Parse(rel, content string, modTime time.Time) (*models.Document, error) {
	fm, body, err := frontmatter.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}

	doc := &models.Document{
		Path:       rel,
		ModTime:    modTime,
		CreateTime: modTime,
	}

	var fmTags []string
	if fm != nil {
		doc.Title = fm.Title
		for _, tag := range fm.Tags {
			if tag = frontmatter.NormalizeTag(tag); tag != "" {
				fmTags = append(fmTags, tag)
			}
		}
		if fm.Created != "" {
			if created, err := frontmatter.ParseTimestamp(fm.Created); err == nil {
				doc.CreateTime = created
			}
		}
	}
	if doc.Title == "" {
		doc.Title = frontmatter.ExtractTitle(body)
	}

	doc.Tags = frontmatter.MergeTags(fmTags, frontmatter.ExtractInlineTags(body))
	return doc, nil
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}
