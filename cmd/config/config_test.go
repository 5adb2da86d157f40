package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/tagfolder/pkg/models"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.NotesDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, models.DefaultSettings(), cfg.Settings)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
notes_dir: /vault
hide_items: ALL_EXCEPT_BOTTOM
display_method: "NAME : PATH"
ignore_tags: draft, wip
sort_type: MTIME_DESC
scan_delay: 1s
`), 0o644))
	t.Setenv("TAGFOLDER_EXPAND_LIMIT", "3")

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(file)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/vault", cfg.NotesDir)
	assert.Equal(t, models.HideAllExceptBottom, cfg.Settings.HideItems)
	assert.Equal(t, models.DisplayNameWithPath, cfg.Settings.DisplayMethod)
	assert.Equal(t, "draft, wip", cfg.Settings.IgnoreTags)
	assert.Equal(t, "MTIME_DESC", cfg.Settings.SortType)
	assert.Equal(t, time.Second, cfg.Settings.ScanDelay)
	assert.Equal(t, 3, cfg.Settings.ExpandLimit)
	assert.True(t, cfg.Settings.ReduceNestedParent)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"hide_items", "SOMETIMES"},
		{"expand_limit", -1},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
