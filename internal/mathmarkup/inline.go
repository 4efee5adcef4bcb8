package mathmarkup

import (
	"regexp"
	"strings"
)

// space is the Unicode whitespace set. RE2's \s only covers ASCII, and card
// text pasted from documents often carries no-break or ideographic spaces.
const space = `[\s\v\p{Zs}\x{2028}\x{2029}\x{feff}]`

// assignmentPrefix matches a leading "name = value," clause that appears
// before any backslash command, e.g. the "x = 5, " in "x = 5, x^2".
var assignmentPrefix = regexp.MustCompile(`^[^\\]*?=` + space + `*[^\\$,\n]*,` + space + `*`)

// renderedMarkers are fragments that only occur in already rendered output.
var renderedMarkers = []string{"<span", "katex", "<math"}

// StripAssignmentPrefix removes a leading "variable = value," clause.
func StripAssignmentPrefix(content string) string {
	loc := assignmentPrefix.FindStringIndex(content)
	if loc == nil {
		return content
	}
	return content[loc[1]:]
}

// LooksRendered reports whether content already contains rendered markup.
func LooksRendered(content string) bool {
	for _, m := range renderedMarkers {
		if strings.Contains(content, m) {
			return true
		}
	}
	return false
}

func prepareInline(content string) (string, bool) {
	if LooksRendered(content) {
		return "", false
	}
	return StripAssignmentPrefix(content), true
}
