package probe

import (
	"math"
	"strconv"
	"strings"

	"github.com/backmassage/chaptersplit/internal/failure"
)

// ParseChapters validates raw metadata into ordered chapters. It fails with
// a metadata error when there are no chapters, when a timestamp is not a
// finite non-negative number, when a chapter does not end after it starts,
// or when start times are not strictly increasing. Titles that are empty or
// whitespace-only come out as absent.
func ParseChapters(meta *Metadata) ([]Chapter, error) {
	if meta == nil || len(meta.Chapters) == 0 {
		return nil, failure.Metadataf("no chapters found in metadata")
	}

	chapters := make([]Chapter, 0, len(meta.Chapters))
	for i, raw := range meta.Chapters {
		start, err := parseTimestamp(raw.StartTime)
		if err != nil {
			return nil, failure.Mark(err, failure.ErrMetadata, "chapter %d (id %d): start_time", i, raw.ID)
		}
		end, err := parseTimestamp(raw.EndTime)
		if err != nil {
			return nil, failure.Mark(err, failure.ErrMetadata, "chapter %d (id %d): end_time", i, raw.ID)
		}
		if end <= start {
			return nil, failure.Metadataf("chapter %d (id %d): end %s is not after start %s",
				i, raw.ID, raw.EndTime, raw.StartTime)
		}
		if i > 0 && start <= chapters[i-1].Start {
			return nil, failure.Metadataf("chapter %d (id %d): start %s does not follow previous start %s",
				i, raw.ID, raw.StartTime, meta.Chapters[i-1].StartTime)
		}

		title := raw.Title()
		if strings.TrimSpace(title) == "" {
			title = ""
		}

		chapters = append(chapters, Chapter{
			Index: i,
			Start: start,
			End:   end,
			Title: title,
		})
	}
	return chapters, nil
}

// parseTimestamp parses a fractional-second timestamp such as "20.000000".
func parseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, failure.Metadataf("missing timestamp")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, failure.Metadataf("malformed timestamp %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, failure.Metadataf("timestamp %q out of range", s)
	}
	return v, nil
}
