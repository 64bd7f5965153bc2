package canvas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt_StripsMarkupAndCollapsesWhitespace(t *testing.T) {
	html := "<div><h2>Week 3</h2>\n  <p>Read chapters   4 and 5,\nthen answer the <em>review</em> questions.</p></div>"
	assert.Equal(t, "Week 3 Read chapters 4 and 5, then answer the review questions.", Excerpt(html, 0))
}

func TestExcerpt_Empty(t *testing.T) {
	assert.Equal(t, "", Excerpt("", 100))
	assert.Equal(t, "", Excerpt("   \n ", 100))
}

func TestExcerpt_Truncates(t *testing.T) {
	html := "<p>" + strings.Repeat("word ", 100) + "</p>"
	out := Excerpt(html, 40)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.LessOrEqual(t, len([]rune(out)), 43)
}

func TestExcerpt_PlainTextPassesThrough(t *testing.T) {
	assert.Equal(t, "just text", Excerpt("just text", 100))
}
