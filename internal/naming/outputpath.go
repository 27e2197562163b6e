package naming

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// PadWidth returns the minimal digit count that renders every 1-based index
// up to total at the same width, so names sort lexically in chapter order.
// The width is never below 1.
func PadWidth(total int) int {
	if total < 1 {
		return 1
	}
	return len(strconv.Itoa(total))
}

// PadIndex renders the 1-based number n zero-padded to width.
func PadIndex(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// SplitInput returns the base name of path without its extension, and the
// extension verbatim including the leading dot.
func SplitInput(path string) (stem, ext string) {
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

// Label picks the name body for a chapter: the sanitized title when useTitle
// is set and sanitizing leaves something, otherwise the sanitized stem.
// fromTitle reports which one was chosen.
func Label(title, stem string, useTitle bool) (label string, fromTitle bool) {
	if useTitle {
		if t := Sanitize(title); t != "" {
			return t, true
		}
	}
	return Sanitize(stem), false
}

// FileName joins an optional index prefix, the label and ext:
//
//	enumerate: "<padded> - <label><ext>"
//	otherwise: "<label><ext>"
func FileName(index, width int, label, ext string, enumerate bool) string {
	if !enumerate {
		return label + ext
	}
	return PadIndex(index+1, width) + " - " + label + ext
}
