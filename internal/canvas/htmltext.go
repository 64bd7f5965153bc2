package canvas

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// descriptionExcerptLen caps the plain-text description carried on a record.
// The excerpt is only operator context for the estimation prompt.
const descriptionExcerptLen = 280

// Excerpt reduces an HTML fragment to collapsed plain text, truncated to
// maxLen runes. Unparseable input yields an empty string.
func Excerpt(html string, maxLen int) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if maxLen <= 0 || len([]rune(text)) <= maxLen {
		return text
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
