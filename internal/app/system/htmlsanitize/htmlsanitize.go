// Package htmlsanitize cleans rich-text HTML coming from the dashboard's
// editor before it is stored and served to the public site.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richText = newRichTextPolicy()
	strip    = bluemonday.StrictPolicy()
)

func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowElements("u", "s", "sub", "sup", "mark", "hr", "br")

	tables := []string{"table", "thead", "tbody", "tfoot", "tr", "td", "th"}
	p.AllowAttrs("class").OnElements(append(tables, "p", "span", "img", "figure")...)
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
	p.AllowStyles("width", "text-align", "vertical-align").OnElements(tables...)

	// The editor's font-size and alignment extensions emit inline styles.
	p.AllowStyles("font-size", "color").OnElements("span")
	p.AllowStyles("text-align").OnElements("p", "h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("width", "height").Matching(bluemonday.Integer).OnElements("img")

	return p
}

// Sanitize returns s with anything outside the rich-text allowlist removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return richText.Sanitize(s)
}

// TextContent returns the visible text of an HTML fragment, unescaped and
// trimmed. Used for length validation of rich-text fields.
func TextContent(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strip.Sanitize(s)))
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s)-1; i++ {
		if s[i] != '<' {
			continue
		}
		c := s[i+1]
		if c == '/' || c == '!' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// PlainTextToHTML escapes s and wraps it in a paragraph, turning newlines
// into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// Normalize prepares editor output for storage: plain text becomes a
// paragraph, HTML is sanitized.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if IsPlainText(s) {
		return PlainTextToHTML(s)
	}
	return Sanitize(s)
}
