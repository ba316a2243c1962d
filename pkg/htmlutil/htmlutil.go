// Package htmlutil holds the small HTML manipulations the import pipeline
// needs when folding legacy rich-text fields into page documents.
package htmlutil

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	tagRE      = regexp.MustCompile(`<[^>]*>`)
	spacesRE   = regexp.MustCompile(`\s{2,}`)
	headingRE  = regexp.MustCompile(`(?i)</?h([1-6])([^>]*)>`)
	entityRepl = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// StripTags removes all HTML markup and collapses whitespace, leaving plain
// text. Used to judge whether a legacy rich-text body carries meaningful
// content worth embedding.
func StripTags(html string) string {
	if html == "" {
		return ""
	}

	text := tagRE.ReplaceAllString(html, " ")
	text = entityRepl.Replace(text)
	text = spacesRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// TextLength returns the length of the stripped plain text.
func TextLength(html string) int {
	return len([]rune(StripTags(html)))
}

// DemoteHeadings lowers every heading inside an embedded HTML fragment by the
// given number of levels, clamped at h6, so imported methodology text never
// outranks the page's own headings.
func DemoteHeadings(html string, levels int) string {
	if html == "" || levels <= 0 {
		return html
	}

	return headingRE.ReplaceAllStringFunc(html, func(tag string) string {
		m := headingRE.FindStringSubmatch(tag)
		level := int(m[1][0]-'0') + levels
		if level > 6 {
			level = 6
		}
		closing := ""
		if strings.HasPrefix(tag, "</") {
			closing = "/"
		}
		return fmt.Sprintf("<%sh%d%s>", closing, level, m[2])
	})
}
