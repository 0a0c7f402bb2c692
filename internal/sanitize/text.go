// Package sanitize strips markup from user-supplied text before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/atom"
)

// StrictPolicy removes all HTML tags and attributes.
var StrictPolicy = bluemonday.StrictPolicy()

const maxPasses = 3

var tagOpen = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9-]*)`)

// Text strips all HTML and returns plain text. bluemonday escapes what it keeps,
// so entities are decoded again: values are served as JSON, never as HTML.
// Angle brackets around words that are not HTML names ("<Go>") are kept as text.
// Surrounding whitespace left behind by removed tags is trimmed.
//
// Text is idempotent: entity-encoded markup that decodes into tags is stripped too.
func Text(input string) string {
	out := input
	for range maxPasses {
		next := strip(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func strip(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(StrictPolicy.Sanitize(escapeUnknownTags(input))))
}

// escapeUnknownTags rewrites "<name" as "&lt;name" when name is not an HTML
// element or attribute, so the tokenizer reads it as text.
func escapeUnknownTags(input string) string {
	return tagOpen.ReplaceAllStringFunc(input, func(m string) string {
		name := strings.TrimPrefix(m[1:], "/")
		if atom.Lookup([]byte(strings.ToLower(name))) != 0 {
			return m
		}
		return "&lt;" + m[1:]
	})
}
