package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy   = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-authored rich content (post and comment bodies) to a
// safe HTML subset.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizePlain strips all markup, for single-line fields such as titles and
// names.
func SanitizePlain(input string) string {
	return plainPolicy.Sanitize(input)
}
