package email

import (
	"regexp"
	"strings"
)

var (
	urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	brPattern  = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// renderBodies derives the missing body variant. An HTML body is sent
// as-is with a stripped-markup text companion; a plain-text body gets an
// HTML companion with URLs linkified and newlines converted to <br>.
func renderBodies(text, html string) (string, string) {
	if html != "" {
		if text == "" {
			text = stripTags(html)
		}
		return text, html
	}
	return text, textToHTML(text)
}

// textToHTML turns a plain-text body into simple HTML: bare URLs become
// anchors and newlines become <br> tags.
func textToHTML(text string) string {
	html := urlPattern.ReplaceAllString(text, `<a href="$0">$0</a>`)
	return strings.ReplaceAll(html, "\n", "<br>")
}

// stripTags produces the plain-text companion of an HTML body. <br> tags
// become newlines before the remaining markup is removed.
func stripTags(html string) string {
	text := brPattern.ReplaceAllString(html, "\n")
	text = tagPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
