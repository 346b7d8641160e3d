package content

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips markup from an HTML fragment and collapses whitespace
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}

	doc.Find("script, style, iframe, noscript").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	// keep words of adjacent blocks apart
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, div").AppendHtml("\n")

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Excerpt returns at most n runes of the plain text of fragment,
// ending in an ellipsis when truncated.
func Excerpt(fragment string, n int) string {
	text := PlainText(fragment)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	r := []rune(text)
	return strings.TrimSpace(string(r[:n])) + "…"
}
