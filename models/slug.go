package models

import (
	"regexp"
	"strings"
)

var slugRE = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowers text and collapses every non-alphanumeric run to a single
// hyphen. Natural keys are always stored in this form.
func Slugify(text string) string {
	return strings.Trim(slugRE.ReplaceAllString(strings.ToLower(text), "-"), "-")
}
