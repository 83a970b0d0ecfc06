// Package arabictext cleans and reshapes the body text of Shamela books.
// The cardinal rule is that Arabic combining marks (U+064B–U+065F, U+0670,
// U+06D6–U+06ED) survive every pass in their original order; cleaning that
// drops diacritics corrupts the text for recitation and search alike.
package arabictext

import (
	"regexp"
	"strings"
)

var (
	crlfRE      = regexp.MustCompile(`\r\n?`)
	spaceRunRE  = regexp.MustCompile(`[ \t]+`)
	lineEdgeRE  = regexp.MustCompile(`[ ]*\n[ ]*`)
	blankRunRE  = regexp.MustCompile(`\n{3,}`)
	multiSpaces = regexp.MustCompile(` {2,}`)
)

// Clean normalizes raw cell text: control characters are stripped, space and
// tab runs collapse to a single space, runs of blank lines collapse to one
// blank line, and everything outside the retention classes (Arabic blocks,
// ASCII digits, whitespace, a fixed punctuation set, and the structural
// separator characters) is removed.
func Clean(s string) string {
	if s == "" {
		return ""
	}

	s = crlfRE.ReplaceAllString(s, "\n")
	s = stripControl(s)

	s = spaceRunRE.ReplaceAllString(s, " ")
	s = lineEdgeRE.ReplaceAllString(s, "\n")
	s = blankRunRE.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	s = retain(s)

	// Retention can leave doubled spaces where stripped runs used to sit.
	s = multiSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripControl removes C0/C1 control characters except tab, newline, and
// carriage return. None of the stripped ranges overlap the Arabic combining
// marks.
func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r <= 0x0008,
			r == 0x000B, r == 0x000C,
			r >= 0x000E && r <= 0x001F,
			r >= 0x007F && r <= 0x009F:
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const punctuation = ".,;:!?()[]{}\"'-"

// retain keeps only the character classes the destination schema expects:
// the Arabic blocks (which include all diacritics and the tatweel), ASCII
// digits, whitespace, fixed punctuation, and the separator characters used
// by the HTML formatter.
func retain(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keepRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepRune(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF, // Arabic
		r >= 0x0750 && r <= 0x077F, // Arabic Supplement
		r >= 0x08A0 && r <= 0x08FF, // Arabic Extended-A
		r >= 0xFB50 && r <= 0xFDFF, // Arabic Presentation Forms-A
		r >= 0xFE70 && r <= 0xFEFF: // Arabic Presentation Forms-B
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '\t' || r == '\n':
		return true
	case r == '=' || r == '«' || r == '»' || r == '¬' || r == '_':
		return true
	}
	return strings.ContainsRune(punctuation, r)
}
