package ffmpeg

import (
	"regexp"
	"strings"
)

// stderrTailLines bounds how much ffmpeg stderr is attached to a failure.
const stderrTailLines = 8

// Pre-compiled regexes for naming common extraction failures in reports.
// Checked in order by Reason; the first match wins.
var (
	reDestinationExists = regexp.MustCompile(`(?i)already exists`)

	reInvalidData = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`moov atom not found|` +
			`could not find codec parameters`)

	reNoSpace = regexp.MustCompile(`(?i)No space left on device`)

	rePermission = regexp.MustCompile(`(?i)Permission denied|Read-only file system`)
)

// Reason returns a short human-readable cause for a failed ffmpeg run, or ""
// when stderr matches no known pattern.
func Reason(stderr string) string {
	switch {
	case reDestinationExists.MatchString(stderr):
		return "destination appeared after planning"
	case reInvalidData.MatchString(stderr):
		return "input data could not be read"
	case reNoSpace.MatchString(stderr):
		return "no space left on device"
	case rePermission.MatchString(stderr):
		return "permission denied"
	}
	return ""
}

// Tail returns the last n non-empty lines of stderr, joined with newlines.
func Tail(stderr string, n int) string {
	var lines []string
	for _, l := range strings.Split(stderr, "\n") {
		if l = strings.TrimRight(l, "\r "); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
