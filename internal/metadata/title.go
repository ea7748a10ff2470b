package metadata

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// cleanName normalizes a user-supplied name: whitespace is collapsed, and
// names typed entirely in lowercase are title-cased.
func cleanName(name string) string {
	cleaned := strings.Join(strings.Fields(name), " ")
	if cleaned == "" {
		return ""
	}
	if isAllLower(cleaned) {
		return cases.Title(language.Und).String(cleaned)
	}
	return cleaned
}

func isAllLower(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
