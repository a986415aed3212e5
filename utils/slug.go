package utils

import (
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9_-]+`)
	slugHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts free text into a URL-safe identifier limited to latin
// letters, digits, hyphen and underscore, matching the category slug rules.
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 64
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLen {
		s = strings.Trim(s[:maxLen], "-")
	}
	return s
}

// ValidSlug reports whether s already satisfies the slug character rules.
func ValidSlug(s string) bool {
	return s != "" && slugInvalid.FindStringIndex(s) == nil && !strings.HasPrefix(s, "-") && !strings.HasSuffix(s, "-")
}
