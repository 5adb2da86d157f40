package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mattsolo1/tagfolder/cmd/config"
	"github.com/mattsolo1/tagfolder/pkg/index"
	"github.com/mattsolo1/tagfolder/pkg/source"
)

// env bundles what every command needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	logger *logrus.Logger
	src    *source.Dir
	idx    *index.Index
}

func (e *env) Close() {
	if e.idx != nil {
		if err := e.idx.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close metadata cache")
		}
	}
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			logger.SetLevel(lvl)
		} else {
			logger.Warnf("unknown log level %q, using warn", level)
		}
	}
	return logger
}

// setup loads the configuration, the logger and the document source.
func setup() (*env, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.LogLevel)

	e := &env{cfg: cfg, logger: logger}
	if cfg.CacheDB != "" && cfg.CacheDB != "off" {
		if err := os.MkdirAll(filepath.Dir(cfg.CacheDB), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		idx, err := index.NewIndex(cfg.CacheDB)
		if err != nil {
			// The cache only saves work; run without it.
			logger.WithError(err).Warn("Metadata cache unavailable")
		} else {
			e.idx = idx
		}
	}

	e.src = source.NewDir(cfg.NotesDir, e.idx, logrus.NewEntry(logger))
	return e, nil
}
