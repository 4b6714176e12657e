package richtext_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventanita/internal/richtext"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain   text", "plain text"},
		{"<p>Sí, hay <b>wifi</b> a bordo.</p>", "Sí, hay wifi a bordo."},
		{"<p>uno</p><p>dos</p>", "uno dos"},
		{"línea<br/>nueva", "línea nueva"},
		{"<ul><li>a</li><li>b</li></ul>", "a b"},
		{"Tom &amp; Jerry &lt;3", "Tom & Jerry <3"},
		{`<p><a linktype="page" id="3">Asunción</a></p>`, "Asunción"},
		{"<p>ok</p><script>alert(1)</script>", "ok"},
		{"<p>unclosed <b>bold", "unclosed bold"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, richtext.StripTags(tt.in), tt.in)
	}
}

func TestWordCountAndReadingTime(t *testing.T) {
	assert.Equal(t, 4, richtext.WordCount("<p>Viajar en micro <i>es</i></p>"))

	long := "<p>" + strings.Repeat("palabra ", 500) + "</p>"
	assert.Equal(t, 500, richtext.WordCount(long))
	assert.Equal(t, 3, richtext.ReadingTime(500), "2.5 minutes rounds up")
	assert.Equal(t, 1, richtext.ReadingTime(0))
	assert.Equal(t, 1, richtext.ReadingTime(250))
}

func TestToMarkdown(t *testing.T) {
	md, err := richtext.ToMarkdown("<h2>Horarios</h2><p>Salidas <strong>diarias</strong></p>")
	require.NoError(t, err)
	assert.Contains(t, md, "## Horarios")
	assert.Contains(t, md, "**diarias**")

	md, err = richtext.ToMarkdown("  ")
	require.NoError(t, err)
	assert.Empty(t, md)
}
