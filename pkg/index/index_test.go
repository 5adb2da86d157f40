package index

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/tagfolder/pkg/models"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestPutLookup(t *testing.T) {
	idx := newTestIndex(t)
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &models.Document{
		Path:       "notes/a.md",
		Title:      "A",
		Tags:       []string{"x", "y/z"},
		ModTime:    mtime,
		CreateTime: mtime.Add(-time.Hour),
	}
	require.NoError(t, idx.Put(doc))

	got, ok, err := idx.Lookup("notes/a.md", mtime)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, []string{"x", "y/z"}, got.Tags)
	assert.True(t, got.ModTime.Equal(mtime))
	assert.True(t, got.CreateTime.Equal(mtime.Add(-time.Hour)))

	t.Run("stale entry misses", func(t *testing.T) {
		_, ok, err := idx.Lookup("notes/a.md", mtime.Add(time.Second))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown path misses", func(t *testing.T) {
		_, ok, err := idx.Lookup("notes/b.md", mtime)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPutReplaces(t *testing.T) {
	idx := newTestIndex(t)
	mtime := time.Unix(100, 0)
	require.NoError(t, idx.Put(&models.Document{Path: "a.md", Tags: []string{"old"}, ModTime: mtime}))
	require.NoError(t, idx.Put(&models.Document{Path: "a.md", Tags: []string{"new"}, ModTime: mtime}))

	got, ok, err := idx.Lookup("a.md", mtime)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"new"}, got.Tags)

	paths, err := idx.Paths()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, paths)
}

func TestDeleteAndPrune(t *testing.T) {
	idx := newTestIndex(t)
	for _, p := range []string{"a.md", "b.md", "c.md"} {
		require.NoError(t, idx.Put(&models.Document{Path: p, ModTime: time.Unix(1, 0)}))
	}

	require.NoError(t, idx.Delete("a.md"))
	require.NoError(t, idx.Prune(map[string]bool{"c.md": true}))

	paths, err := idx.Paths()
	require.NoError(t, err)
	assert.Equal(t, []string{"c.md"}, paths)
}

func TestPersistsOnDisk(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	idx, err := NewIndex(dbPath)
	require.NoError(t, err)
	require.NoError(t, idx.Put(&models.Document{Path: "a.md", Tags: []string{"x"}, ModTime: time.Unix(5, 0)}))
	require.NoError(t, idx.Close())

	reopened, err := NewIndex(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Lookup("a.md", time.Unix(5, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, got.Tags)
}
