package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKeepsSafeMarkup(t *testing.T) {
	out := Sanitize(`<p>hello <b>world</b></p><script>alert(1)</script>`)
	assert.Contains(t, out, "<b>world</b>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "alert")
}

func TestSanitizePlainStripsEverything(t *testing.T) {
	assert.Equal(t, "title", SanitizePlain(`<i>title</i>`))
	assert.NotContains(t, SanitizePlain(`<img src=x onerror=alert(1)>safe`), "<")
}
