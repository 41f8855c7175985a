package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Poll text is rendered verbatim by clients, so every tag is stripped.
var textPolicy = bluemonday.StrictPolicy()

// CleanText strips markup and surrounding whitespace from user supplied text.
func CleanText(s string) string {
	cleaned := textPolicy.Sanitize(s)
	// StrictPolicy escapes entities; stored text stays plain.
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// CleanTexts applies CleanText to every element.
func CleanTexts(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = CleanText(s)
	}
	return out
}
