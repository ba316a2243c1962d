// Package slugify derives stable URL slugs from human-readable names.
// Determinism matters here: re-running an import against the same source name
// must reproduce the same slug so duplicate detection works.
package slugify

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var (
	nonSlugRE   = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenRunRE = regexp.MustCompile(`-{2,}`)
)

// Make lower-cases, strips diacritics, collapses any run of characters
// outside [a-z0-9] into a single hyphen, and trims leading/trailing hyphens.
// It is pure and idempotent on its own output.
func Make(name string) string {
	s := slug.Make(name)

	// slug.Make keeps underscores and a few substitutions; the post-pass
	// guarantees the [a-z0-9-] contract regardless of library defaults.
	s = nonSlugRE.ReplaceAllString(s, "-")
	s = hyphenRunRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
