package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/backmassage/chaptersplit/internal/failure"
)

// Prober reads chapter metadata with ffprobe. It never writes to the input.
type Prober struct {
	Bin      string // ffprobe binary name or path
	Encoding string // IANA charset of the metadata text; empty means UTF-8
}

// Probe runs a single ffprobe JSON call against path and returns the raw
// chapter listing. A missing binary is an environment error; a failing
// ffprobe run or undecodable output is a metadata error.
func (p Prober) Probe(ctx context.Context, path string) (*Metadata, error) {
	bin, err := exec.LookPath(p.Bin)
	if err != nil {
		return nil, failure.Mark(err, failure.ErrEnvironment, "%s not found", p.Bin)
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-print_format", "json",
		"-show_chapters",
		"-i", path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		err = failure.Mark(err, failure.ErrMetadata, "ffprobe %q", path)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.WithDetail(err, msg)
		}
		return nil, err
	}

	text, err := Decode(out, p.Encoding)
	if err != nil {
		return nil, err
	}
	return ParseJSON(text)
}

// Decode converts ffprobe output from the named IANA encoding to UTF-8.
// An empty name returns data unchanged.
func Decode(data []byte, encoding string) ([]byte, error) {
	if encoding == "" {
		return data, nil
	}
	enc, err := ianaindex.IANA.Encoding(encoding)
	if err != nil {
		return nil, failure.Mark(err, failure.ErrMetadata, "metadata encoding %q", encoding)
	}
	if enc == nil {
		return nil, failure.Metadataf("metadata encoding %q is not supported", encoding)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, failure.Mark(err, failure.ErrMetadata, "decode metadata as %s", encoding)
	}
	return out, nil
}

// ParseJSON converts raw ffprobe -show_chapters JSON into Metadata.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Metadata, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, failure.Mark(err, failure.ErrMetadata, "parse ffprobe JSON")
	}

	meta := &Metadata{Chapters: make([]RawChapter, 0, len(raw.Chapters))}
	for _, c := range raw.Chapters {
		meta.Chapters = append(meta.Chapters, RawChapter{
			ID:        c.ID,
			TimeBase:  c.TimeBase,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			Tags:      c.Tags,
		})
	}
	return meta, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Chapters []ffprobeChapter `json:"chapters"`
}

type ffprobeChapter struct {
	ID        int64             `json:"id"`
	TimeBase  string            `json:"time_base"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags"`
}
