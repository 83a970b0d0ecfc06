package arabictext

import (
	"regexp"
	"strings"
)

var (
	nonWordRE = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
	dashRunRE = regexp.MustCompile(`[\s_-]+`)
)

// Slugify reduces a cleaned title to a URL-safe form: non-word characters
// are removed and runs of whitespace or hyphens collapse to single hyphens.
// Arabic letters stay; uniqueness is the caller's problem (a disambiguating
// suffix is appended at insert time).
func Slugify(title string) string {
	s := strings.TrimSpace(title)
	s = nonWordRE.ReplaceAllString(s, "")
	s = dashRunRE.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "kitab"
	}
	return s
}
