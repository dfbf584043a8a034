package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSnippetLength is the rune limit of a content snippet.
const DefaultSnippetLength = 200

// Snippet converts an HTML or plain-text fragment into a single line of plain
// text, cut to at most limit runes. A limit <= 0 disables truncation.
func Snippet(fragment string, limit int) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}

	text := fragment
	if strings.ContainsAny(fragment, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
		if err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")

	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit]))
}
