package naming

import (
	"path/filepath"
	"strconv"

	"github.com/backmassage/chaptersplit/internal/probe"
)

// Tag is one metadata key/value written into an output file.
type Tag struct {
	Key   string
	Value string
}

// Options configures a Policy for one input file.
type Options struct {
	InputPath string
	OutputDir string
	UseTitle  bool // name files after chapter titles when available
	Enumerate bool // prefix names with the padded chapter number
	Total     int  // number of chapters in the plan
}

// Policy assigns each chapter of one input a deterministic, plan-unique
// destination and its metadata tags. Chapters must be presented in order.
type Policy struct {
	opts     Options
	stem     string
	ext      string
	width    int
	resolver *CollisionResolver
}

// NewPolicy creates a policy with an empty allocation set.
func NewPolicy(opts Options) *Policy {
	stem, ext := SplitInput(opts.InputPath)
	return &Policy{
		opts:     opts,
		stem:     stem,
		ext:      ext,
		width:    PadWidth(opts.Total),
		resolver: NewCollisionResolver(),
	}
}

// Destination returns the output path for c and records it as allocated.
//
// A title label seen before in this plan gets "-N"; a full path seen before
// (including fallback labels) gets "-N" as well, so no two chapters of one
// plan ever share a destination.
func (p *Policy) Destination(c probe.Chapter) string {
	label, fromTitle := Label(c.Title, p.stem, p.opts.UseTitle)
	if fromTitle {
		label = p.resolver.Label(label)
	}
	name := FileName(c.Index, p.width, label, p.ext, p.opts.Enumerate)
	return p.resolver.Claim(filepath.Join(p.opts.OutputDir, name))
}

// Tags returns the metadata written into c's output file: the track number
// as "<n>/<total>" and, when present, the original unsanitized title.
func (p *Policy) Tags(c probe.Chapter) []Tag {
	tags := []Tag{{Key: "track", Value: strconv.Itoa(c.Index+1) + "/" + strconv.Itoa(p.opts.Total)}}
	if c.HasTitle() {
		tags = append(tags, Tag{Key: "title", Value: c.Title})
	}
	return tags
}
