package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, DisplayName, s.DisplayMethod)
	assert.Equal(t, "DISPNAME_ASC", s.SortType)
	assert.Equal(t, "NAME_ASC", s.SortTypeTag)
	assert.Equal(t, HideNone, s.HideItems)
	assert.Equal(t, 250*time.Millisecond, s.ScanDelay)
	assert.True(t, s.UseTitle)
	assert.True(t, s.ReduceNestedParent)
	assert.False(t, s.DisableNestedTags)
}

func TestSettingsFingerprint(t *testing.T) {
	a := DefaultSettings()
	b := DefaultSettings()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.IgnoreTags = "draft"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestHideItemsValid(t *testing.T) {
	tests := []struct {
		value HideItems
		want  bool
	}{
		{HideNone, true},
		{HideDedicatedIntermediates, true},
		{HideAllExceptBottom, true},
		{HideItems("SOMETIMES"), false},
		{HideItems(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Valid())
		})
	}
}

func TestChangeTypeString(t *testing.T) {
	assert.Equal(t, "modified", ChangeModified.String())
	assert.Equal(t, "renamed", ChangeRenamed.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
	assert.Equal(t, "unknown", ChangeType(42).String())
}
