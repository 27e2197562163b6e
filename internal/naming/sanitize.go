package naming

import (
	"strings"
	"unicode"
)

// forbidden holds characters that are unsafe in file names on at least one
// common filesystem.
const forbidden = `/\:*?"<>|`

// Sanitize makes s safe to use as a single path component. Path separators,
// the characters : * ? " < > |, NUL and every other control character are
// removed, whitespace runs collapse to one space, and the result is trimmed.
// The result may be empty.
func Sanitize(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(forbidden, r):
			return -1
		case unicode.IsControl(r):
			if unicode.IsSpace(r) {
				return ' '
			}
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(cleaned), " ")
}
