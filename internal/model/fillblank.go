package model

import (
	"regexp"
	"strings"
)

var blankPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Blank is one [answer] or [alt1|alt2] marker of a fill_blank template.
type Blank struct {
	Index        int
	Alternatives []string
}

// ParseBlanks extracts the blanks of a template in reading order. Empty
// alternatives (as in "[a||b]") are dropped; a marker with no usable
// alternative is not a blank.
func ParseBlanks(template string) []Blank {
	matches := blankPattern.FindAllStringSubmatch(template, -1)
	blanks := make([]Blank, 0, len(matches))
	for _, m := range matches {
		var alts []string
		for _, a := range strings.Split(m[1], "|") {
			if a = strings.TrimSpace(a); a != "" {
				alts = append(alts, a)
			}
		}
		if len(alts) == 0 {
			continue
		}
		blanks = append(blanks, Blank{Index: len(blanks), Alternatives: alts})
	}
	return blanks
}

// MaskTemplate replaces every blank with "____" for learner display.
func MaskTemplate(template string) string {
	return blankPattern.ReplaceAllStringFunc(template, func(m string) string {
		inner := strings.Trim(m, "[]")
		for _, a := range strings.Split(inner, "|") {
			if strings.TrimSpace(a) != "" {
				return "____"
			}
		}
		return m
	})
}
