package embedding

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Sanitize strips HTML tags, unescapes entities and collapses whitespace so
// that markup copied from article pages does not shift the embedding
func Sanitize(text string) string {
	text = tagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

func sanitizeAll(texts []string) []string {
	result := make([]string, len(texts))
	for i, t := range texts {
		result[i] = Sanitize(t)
	}
	return result
}
