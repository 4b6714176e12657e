// Package richtext handles the HTML stored by rich-text blocks.
package richtext

import (
	"fmt"
	"math"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// WordsPerMinute is the reading speed used for ReadingTime.
const WordsPerMinute = 200

// blockElements end a run of text; a space is emitted after them so
// "<p>a</p><p>b</p>" strips to "a b".
var blockElements = map[string]bool{
	"p": true, "br": true, "li": true, "div": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "blockquote": true, "tr": true,
}

// StripTags returns the text content of an HTML fragment with entities
// decoded and whitespace collapsed.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input: keep what was read so far
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			if blockElements[tag] {
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

// WordCount counts whitespace-separated words in the text of s.
func WordCount(s string) int {
	return len(strings.Fields(StripTags(s)))
}

// ReadingTime estimates minutes to read the given number of words,
// never less than one.
func ReadingTime(words int) int {
	minutes := int(math.Round(float64(words) / WordsPerMinute))
	return max(minutes, 1)
}

// ToMarkdown converts an HTML fragment to Markdown.
func ToMarkdown(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}
