package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/tagfolder/pkg/models"
)

// Index caches parsed document metadata keyed by path, so unchanged files
// are not re-read on every scan.
type Index struct {
	db *sql.DB
}

// NewIndex opens (or creates) the cache database at dbPath. Use ":memory:"
// for a throwaway cache.
func NewIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// a :memory: database lives per connection
	db.SetMaxOpenConns(1)

	idx := &Index{db: db}
	if err := idx.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return idx, nil
}

// init creates the database schema
func (idx *Index) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		title TEXT,
		tags TEXT,
		modified_at INTEGER,
		created_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_documents_modified ON documents(modified_at);
	`

	if _, err := idx.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create index schema: %w", err)
	}
	return nil
}

// Put stores or replaces the cached metadata for doc.
func (idx *Index) Put(doc *models.Document) error {
	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return err
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec("DELETE FROM documents WHERE path = ?", doc.Path)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO documents (path, title, tags, modified_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.Path, doc.Title, string(tags), doc.ModTime.UnixNano(), doc.CreateTime.UnixNano())
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Lookup returns the cached document for path when its recorded
// modification time equals modTime. A stale or missing entry reports false.
func (idx *Index) Lookup(path string, modTime time.Time) (*models.Document, bool, error) {
	var (
		title          string
		tagsJSON       string
		modified, crtd int64
	)
	err := idx.db.QueryRow(`
		SELECT title, tags, modified_at, created_at FROM documents WHERE path = ?
	`, path).Scan(&title, &tagsJSON, &modified, &crtd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if modified != modTime.UnixNano() {
		return nil, false, nil
	}

	doc := &models.Document{
		Path:       path,
		Title:      title,
		ModTime:    time.Unix(0, modified),
		CreateTime: time.Unix(0, crtd),
	}
	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, false, fmt.Errorf("corrupt tags for %s: %w", path, err)
	}
	return doc, true, nil
}

// Delete removes path from the cache.
func (idx *Index) Delete(path string) error {
	_, err := idx.db.Exec("DELETE FROM documents WHERE path = ?", path)
	return err
}

// Paths lists every cached path in lexical order.
func (idx *Index) Paths() ([]string, error) {
	rows, err := idx.db.Query("SELECT path FROM documents ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Prune drops cached entries whose path is not in keep.
func (idx *Index) Prune(keep map[string]bool) error {
	paths, err := idx.Paths()
	if err != nil {
		return err
	}
	for _, p := range paths {
		if keep[p] {
			continue
		}
		if err := idx.Delete(p); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (idx *Index) Close() error {
	return idx.db.Close()
}
