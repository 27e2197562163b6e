package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/backmassage/chaptersplit/internal/probe"
	"github.com/backmassage/chaptersplit/internal/term"
)

const maxTitleWidth = 60

// PrintChapterTable writes an aligned listing of chapters:
//
//	#   Start         End           Length  Title
//	1   0:00:00.000   0:00:20.000   20.0s   It All Started With a Simple BEEP
func PrintChapterTable(w io.Writer, chapters []probe.Chapter) {
	type row struct{ num, start, end, length, title string }

	rows := make([]row, len(chapters))
	numW, startW, endW, lenW := len("#"), len("Start"), len("End"), len("Length")
	for i, c := range chapters {
		title := c.Title
		if !c.HasTitle() {
			title = "(untitled)"
		}
		if n := []rune(title); len(n) > maxTitleWidth {
			title = string(n[:maxTitleWidth-1]) + "…"
		}
		r := row{
			num:    fmt.Sprintf("%d", c.Index+1),
			start:  FormatTimestamp(c.Start),
			end:    FormatTimestamp(c.End),
			length: FormatDuration(Seconds(c.Duration())),
			title:  title,
		}
		numW = max(numW, len(r.num))
		startW = max(startW, len(r.start))
		endW = max(endW, len(r.end))
		lenW = max(lenW, len(r.length))
		rows[i] = r
	}

	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s  %s",
		numW, "#", startW, "Start", endW, "End", lenW, "Length", "Title")
	fmt.Fprintln(w, term.Paint(term.Colors.Heading, header))
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)-2))
	for _, r := range rows {
		fmt.Fprintf(w, "  %*s  %-*s  %-*s  %-*s  %s\n",
			numW, r.num, startW, r.start, endW, r.end, lenW, r.length, r.title)
	}
}
