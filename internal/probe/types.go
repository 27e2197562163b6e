package probe

import (
	"fmt"
	"strings"
)

// Metadata is the raw chapter listing reported by the probing tool, before
// validation. Timestamps are kept as the strings ffprobe printed.
type Metadata struct {
	Chapters []RawChapter
}

// RawChapter is one unvalidated chapter entry.
type RawChapter struct {
	ID        int64
	TimeBase  string
	StartTime string
	EndTime   string
	Tags      map[string]string
}

// Title returns the chapter's title tag, matched case-insensitively since
// containers disagree on tag key case.
func (r RawChapter) Title() string {
	if t, ok := r.Tags["title"]; ok {
		return t
	}
	for k, v := range r.Tags {
		if strings.EqualFold(k, "title") {
			return v
		}
	}
	return ""
}

// Chapter is one validated chapter. Index is the 0-based position within
// the input; Start and End are seconds with 0 <= Start < End. An empty
// Title means the metadata carried no usable title.
type Chapter struct {
	Index int
	Start float64
	End   float64
	Title string
}

// HasTitle reports whether the chapter carries a title.
func (c Chapter) HasTitle() bool { return c.Title != "" }

// Duration returns End - Start in seconds.
func (c Chapter) Duration() float64 { return c.End - c.Start }

func (c Chapter) String() string {
	title := "<untitled>"
	if c.HasTitle() {
		title = fmt.Sprintf("%q", c.Title)
	}
	return fmt.Sprintf("#%d [%.3f, %.3f) %s", c.Index, c.Start, c.End, title)
}
