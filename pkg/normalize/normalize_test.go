package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/tagfolder/pkg/models"
	"github.com/mattsolo1/tagfolder/pkg/tree"
)

func doc(path string, tags ...string) *models.Document {
	return &models.Document{Path: path, Tags: tags, ModTime: time.Unix(1, 0), CreateTime: time.Unix(1, 0)}
}

func paths(leaves []*tree.Leaf) []string {
	out := make([]string, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, l.Path)
	}
	return out
}

func TestIgnoreDocTagVersusIgnoreTag(t *testing.T) {
	docs := []*models.Document{doc("c.md", "draft", "notes")}

	t.Run("ignore doc tag drops the document", func(t *testing.T) {
		s := models.DefaultSettings()
		s.IgnoreDocTags = "Draft"
		assert.Empty(t, Normalize(docs, s, ""))
	})

	t.Run("ignore tag only removes the tag", func(t *testing.T) {
		s := models.DefaultSettings()
		s.IgnoreTags = "draft"
		leaves := Normalize(docs, s, "")
		require.Len(t, leaves, 1)
		assert.Equal(t, []string{"notes"}, leaves[0].Tags)
	})
}

func TestSearchFilter(t *testing.T) {
	docs := []*models.Document{
		doc("a.md", "proj/alpha"),
		doc("b.md", "proj/beta", "archive"),
		doc("c.md", "home"),
		doc("d.md", "Projects"),
	}

	tests := []struct {
		search string
		want   []string
	}{
		{"", []string{"a.md", "b.md", "c.md", "d.md"}},
		{"proj -archive", []string{"a.md", "d.md"}},
		{"proj archive", []string{"b.md"}},
		{"home | alpha", []string{"a.md", "c.md"}},
		{"-proj", []string{"c.md"}},
		{"PROJ   -ARCHIVE", []string{"a.md", "d.md"}},
		{"-", []string{"a.md", "b.md", "c.md", "d.md"}},
		{"nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got := Normalize(docs, models.DefaultSettings(), tt.search)
			assert.Equal(t, tt.want, paths(got))
		})
	}
}

func TestSearchSeesIgnoredTags(t *testing.T) {
	s := models.DefaultSettings()
	s.IgnoreTags = "secret"
	leaves := Normalize([]*models.Document{doc("a.md", "secret", "x")}, s, "secret")
	require.Len(t, leaves, 1)
	assert.Equal(t, []string{"x"}, leaves[0].Tags)
}

func TestUntagged(t *testing.T) {
	leaves := Normalize([]*models.Document{doc("a.md"), doc("b.md", "#", " ")}, models.DefaultSettings(), "")
	require.Len(t, leaves, 2)
	for _, l := range leaves {
		assert.Equal(t, []string{tree.Untagged}, l.Tags)
	}
}

func TestTagCleanup(t *testing.T) {
	tests := []struct {
		name          string
		disableNested bool
		raw           []string
		want          []string
	}{
		{"hash prefix", false, []string{"#a", "b"}, []string{"a", "b"}},
		{"nested kept", false, []string{"#a/b//c/"}, []string{"a/b/c"}},
		{"nested flattened", true, []string{"#a/b", "c"}, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultSettings()
			s.DisableNestedTags = tt.disableNested
			leaves := Normalize([]*models.Document{doc("x.md", tt.raw...)}, s, "")
			require.Len(t, leaves, 1)
			assert.Equal(t, tt.want, leaves[0].Tags)
		})
	}
}

func TestIgnoreFolders(t *testing.T) {
	s := models.DefaultSettings()
	s.IgnoreFolders = "Templates/, archive old\n"
	docs := []*models.Document{
		doc("templates/daily.md", "x"),
		doc("Archive Old/a.md", "x"),
		doc("notes/a.md", "x"),
	}
	assert.Equal(t, []string{"notes/a.md"}, paths(Normalize(docs, s, "")))
}

func TestDisplayName(t *testing.T) {
	d := &models.Document{Path: "work/plans/q1.md", Title: "Quarter One", Tags: []string{"x"}}
	top := &models.Document{Path: "q2.md", Tags: []string{"x"}}

	tests := []struct {
		name     string
		method   models.DisplayMethod
		useTitle bool
		doc      *models.Document
		want     string
	}{
		{"name with title", models.DisplayName, true, d, "Quarter One"},
		{"name without title", models.DisplayName, false, d, "q1"},
		{"name and path", models.DisplayNameWithPath, true, d, "Quarter One : work/plans"},
		{"path then name", models.DisplayPathName, false, d, "work/plans/q1"},
		{"top level path", models.DisplayPathName, true, top, "/q2"},
		{"unknown method", "WHATEVER", true, d, "Quarter One"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultSettings()
			s.DisplayMethod = tt.method
			s.UseTitle = tt.useTitle
			leaf, ok := New(s, "").Leaf(tt.doc)
			require.True(t, ok)
			assert.Equal(t, tt.want, leaf.DisplayName)
			assert.Equal(t, basename(tt.doc.Path), leaf.Filename)
		})
	}
}

func TestDuplicatePathsInterned(t *testing.T) {
	leaves := Normalize([]*models.Document{doc("a.md", "x"), doc("a.md", "y")}, models.DefaultSettings(), "")
	require.Len(t, leaves, 1)
	assert.Equal(t, []string{"x"}, leaves[0].Tags)
}

func TestParseTagList(t *testing.T) {
	assert.Equal(t, []string{"draft", "wip", "to-do"}, ParseTagList("Draft, #WIP,\n to - do,,"))
	assert.Nil(t, ParseTagList(""))
}
