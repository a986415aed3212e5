package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Travel Notes", "travel-notes"},
		{"  Hello,   World!  ", "hello-world"},
		{"already-a-slug", "already-a-slug"},
		{"under_score ok", "under_score-ok"},
		{"---", ""},
		{"CAPS and 123", "caps-and-123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in, 64), "input %q", tt.in)
	}
}

func TestSlugifyMaxLen(t *testing.T) {
	got := Slugify("a very long category title that keeps going and going", 16)
	assert.LessOrEqual(t, len(got), 16)
	assert.True(t, ValidSlug(got))
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("travel-notes_2024"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("No Spaces"))
	assert.False(t, ValidSlug("-leading"))
	assert.False(t, ValidSlug("trailing-"))
	assert.False(t, ValidSlug("кириллица"))
}
