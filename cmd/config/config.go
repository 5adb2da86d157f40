package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/tagfolder/pkg/models"
)

var cfgFile string

// Config is everything the commands read from flags, env and the config
// file.
type Config struct {
	NotesDir string          `mapstructure:"notes_dir"`
	CacheDB  string          `mapstructure:"cache_db"`
	LogLevel string          `mapstructure:"log_level"`
	Settings models.Settings `mapstructure:",squash"`
}

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "tagfolder")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "failed to read config:", err)
		}
	}
}

// SetDefaults registers env binding and the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix("TAGFOLDER")
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	v.SetDefault("notes_dir", ".")
	v.SetDefault("cache_db", filepath.Join(home, ".cache", "tagfolder", "index.db"))
	v.SetDefault("log_level", "warn")

	d := models.DefaultSettings()
	v.SetDefault("display_method", string(d.DisplayMethod))
	v.SetDefault("use_title", d.UseTitle)
	v.SetDefault("ignore_doc_tags", d.IgnoreDocTags)
	v.SetDefault("ignore_tags", d.IgnoreTags)
	v.SetDefault("ignore_folders", d.IgnoreFolders)
	v.SetDefault("sort_type", d.SortType)
	v.SetDefault("sort_type_tag", d.SortTypeTag)
	v.SetDefault("expand_limit", d.ExpandLimit)
	v.SetDefault("disable_nested_tags", d.DisableNestedTags)
	v.SetDefault("hide_items", string(d.HideItems))
	v.SetDefault("scan_delay", d.ScanDelay)
	v.SetDefault("reduce_nested_parent", d.ReduceNestedParent)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if !cfg.Settings.HideItems.Valid() {
		return nil, fmt.Errorf("invalid hide_items %q", cfg.Settings.HideItems)
	}
	if cfg.Settings.ExpandLimit < 0 {
		return nil, fmt.Errorf("invalid expand_limit %d", cfg.Settings.ExpandLimit)
	}
	return &cfg, nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/tagfolder/config.yaml)")
	cmd.PersistentFlags().StringP("dir", "d", "", "notes directory (default is the current directory)")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("cache", "", "metadata cache database, \"off\" to disable")

	_ = viper.BindPFlag("notes_dir", cmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("cache_db", cmd.PersistentFlags().Lookup("cache"))
}
