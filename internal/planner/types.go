package planner

import (
	"fmt"

	"github.com/backmassage/chaptersplit/internal/naming"
)

// Job is one unit of extraction work, 1:1 with a chapter. It is produced by
// Build and consumed read-only by the dispatcher and the ffmpeg package.
type Job struct {
	ChapterIndex  int // 0-based position of the chapter
	TotalChapters int

	// Time range in seconds, copied from the chapter.
	Start float64
	End   float64

	Title string // original, unsanitized; empty when the chapter has none

	SourcePath      string // shared input, never written
	DestinationPath string // unique within the plan, absent at plan time

	Tags []naming.Tag // "track" first, then "title" when present
}

// Number returns the 1-based chapter number.
func (j Job) Number() int { return j.ChapterIndex + 1 }

// Duration returns End - Start in seconds.
func (j Job) Duration() float64 { return j.End - j.Start }

func (j Job) String() string {
	return fmt.Sprintf("chapter %d/%d", j.Number(), j.TotalChapters)
}

// Options configures Build.
type Options struct {
	InputPath string
	OutputDir string
	UseTitle  bool
	Enumerate bool

	// CreateOutputDir creates OutputDir once every check has passed. Dry
	// runs leave it false so nothing touches the filesystem.
	CreateOutputDir bool
}
