package services

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

const (
	previewLength = 50
	emptyPreview  = "No content"
)

var textOnly = bluemonday.StrictPolicy()

// PlainText drops every tag from note HTML and decodes entities.
func PlainText(s string) string {
	return html.UnescapeString(textOnly.Sanitize(s))
}

// Preview is the list-item excerpt of note content.
func Preview(content string) string {
	if content == "" {
		return emptyPreview
	}
	runes := []rune(PlainText(content))
	if len(runes) >= previewLength {
		return string(runes[:previewLength]) + "..."
	}
	return string(runes)
}
