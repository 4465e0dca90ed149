package slug

import (
	"regexp"
	"strings"
)

var (
	apostrophes = strings.NewReplacer("'", "", "’", "", "`", "")
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)
)

// Generate creates a URL-friendly slug from a display name.
//
// Examples:
//   - "men's clothing" → "mens-clothing"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = apostrophes.Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Matches reports whether value names the same thing as name, either verbatim
// (case-insensitive) or as its slug.
func Matches(name, value string) bool {
	if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(value)) {
		return true
	}
	s := Generate(value)
	return s != "" && Generate(name) == s
}
