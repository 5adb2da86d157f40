package models

import (
	"encoding/json"
	"time"
)

// DisplayMethod controls how a document's display name is built.
type DisplayMethod string

const (
	DisplayName         DisplayMethod = "NAME"
	DisplayNameWithPath DisplayMethod = "NAME : PATH"
	DisplayPathName     DisplayMethod = "PATH/NAME"
)

// HideItems selects which intermediate nodes hide items that also appear in a
// more specific nested tag.
type HideItems string

const (
	HideNone                   HideItems = "NONE"
	HideDedicatedIntermediates HideItems = "DEDICATED_INTERMIDIATES"
	HideAllExceptBottom        HideItems = "ALL_EXCEPT_BOTTOM"
)

// Valid reports whether h is one of the known policies.
func (h HideItems) Valid() bool {
	switch h {
	case HideNone, HideDedicatedIntermediates, HideAllExceptBottom:
		return true
	}
	return false
}

// Settings is the full configuration surface of the tree pipeline. Values are
// treated as immutable once handed to the orchestrator.
type Settings struct {
	DisplayMethod      DisplayMethod `mapstructure:"display_method" json:"display_method"`
	UseTitle           bool          `mapstructure:"use_title" json:"use_title"`
	IgnoreDocTags      string        `mapstructure:"ignore_doc_tags" json:"ignore_doc_tags"`
	IgnoreTags         string        `mapstructure:"ignore_tags" json:"ignore_tags"`
	IgnoreFolders      string        `mapstructure:"ignore_folders" json:"ignore_folders"`
	SortType           string        `mapstructure:"sort_type" json:"sort_type"`
	SortTypeTag        string        `mapstructure:"sort_type_tag" json:"sort_type_tag"`
	ExpandLimit        int           `mapstructure:"expand_limit" json:"expand_limit"`
	DisableNestedTags  bool          `mapstructure:"disable_nested_tags" json:"disable_nested_tags"`
	HideItems          HideItems     `mapstructure:"hide_items" json:"hide_items"`
	ScanDelay          time.Duration `mapstructure:"scan_delay" json:"scan_delay"`
	ReduceNestedParent bool          `mapstructure:"reduce_nested_parent" json:"reduce_nested_parent"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		DisplayMethod:      DisplayName,
		UseTitle:           true,
		SortType:           "DISPNAME_ASC",
		SortTypeTag:        "NAME_ASC",
		HideItems:          HideNone,
		ScanDelay:          250 * time.Millisecond,
		ReduceNestedParent: true,
	}
}

// Fingerprint returns a stable encoding of s, used to detect setting changes
// between rebuilds.
func (s Settings) Fingerprint() string {
	b, err := json.Marshal(s)
	if err != nil {
		// Settings only holds plain values; Marshal cannot fail.
		panic(err)
	}
	return string(b)
}
