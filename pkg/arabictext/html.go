package arabictext

import (
	"regexp"
	"strings"
)

// The three structural separators Shamela authors use inside body text, plus
// the compound footnote rule "¬" + underscores, which is canonicalised to
// exactly ten underscores and kept as one token.
var (
	compoundRE      = regexp.MustCompile(`¬\n?_+`)
	separatorRE     = regexp.MustCompile(`¬_+|={3,}|_{3,}|ـ{3,}`)
	separatorLineRE = regexp.MustCompile(`^(?:¬_+|={3,}|_{3,}|ـ{3,})$`)
)

const compoundSeparator = "¬__________"

const centeredStyle = `text-align: center; margin: 10px 0;`

// RenderHTML produces the rich rendition of cleaned text. Non-separator
// lines accumulate into <p> blocks joined by <br>; blank lines flush the
// block; separator lines flush and then emit as centered paragraphs.
func RenderHTML(text string) string {
	if text == "" {
		return ""
	}

	text = compoundRE.ReplaceAllString(text, compoundSeparator)
	// Guarantee a line break before and after every separator so the
	// line-based pass below sees them in isolation. The alternation tries
	// the compound form first so the generic underscore rule can't split it.
	text = separatorRE.ReplaceAllStringFunc(text, func(m string) string {
		return "\n" + m + "\n"
	})

	var out []string
	var buf []string
	flush := func() {
		if len(buf) > 0 {
			out = append(out, "<p>"+strings.Join(buf, "<br>")+"</p>")
			buf = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case separatorLineRE.MatchString(line):
			flush()
			out = append(out, `<p style="`+centeredStyle+`">`+line+`</p>`)
		default:
			buf = append(buf, line)
		}
	}
	flush()

	return strings.Join(out, "\n")
}
