package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/tagfolder/cmd/config"
)

func useNotesDir(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	viper.Reset()
	config.SetDefaults(viper.GetViper())
	viper.Set("notes_dir", dir)
	viper.Set("cache_db", filepath.Join(t.TempDir(), "index.db"))
	t.Cleanup(viper.Reset)
}

func TestTreeCmd(t *testing.T) {
	useNotesDir(t, map[string]string{
		"plan.md":        "---\ntitle: Plan\ntags: [proj/alpha]\n---\n",
		"journal/day.md": "# Day one\n#journal #proj",
		"old.md":         "#proj #archive",
	})

	var out bytes.Buffer
	cmd := NewTreeCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"proj -archive", "--paths"})
	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "proj")
	assert.Contains(t, got, "→ alpha")
	assert.Contains(t, got, "Plan")
	assert.Contains(t, got, "Day one")
	assert.Contains(t, got, "journal/day.md")
	assert.NotContains(t, got, "old.md")
}

func TestTreeCmdLimit(t *testing.T) {
	useNotesDir(t, map[string]string{"a.md": "#x/y"})

	var out bytes.Buffer
	cmd := NewTreeCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--limit", "2"})
	require.NoError(t, cmd.Execute())
	assert.NotContains(t, out.String(), "→ y")
}

func TestExpandKeys(t *testing.T) {
	assert.Equal(t,
		[]string{"root/proj", "root", "root/a/b"},
		expandKeys([]string{"proj", "root", "/root/a/b/", ""}),
	)
}

func TestVersionCmdJSON(t *testing.T) {
	var out bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})
	require.NoError(t, cmd.Execute())

	var info versionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
