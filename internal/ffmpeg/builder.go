package ffmpeg

import (
	"strconv"

	"github.com/backmassage/chaptersplit/internal/planner"
)

// Build constructs the complete ffmpeg argument slice for one job, binary
// first. The command stream-copies the job's time range out of the source,
// drops video (cover art) and the source's chapter table, writes the job's
// tags, and refuses to overwrite an existing destination (-n).
//
//	ffmpeg -nostdin -hide_banner -i <src> -v error -map_chapters -1 -vn
//	  -c copy -ss <start> -to <end> -n -metadata track=i/N
//	  [-metadata title=<title>] <dst>
func Build(bin string, job planner.Job, verbose bool) []string {
	args := make([]string, 0, 24+2*len(job.Tags))

	// --- Preamble ---
	args = append(args, bin, "-nostdin", "-hide_banner")

	// --- Input ---
	args = append(args, "-i", job.SourcePath)

	// Loglevel: info when verbose, otherwise error.
	if verbose {
		args = append(args, "-v", "info")
	} else {
		args = append(args, "-v", "error")
	}

	// --- Stream selection and copy ---
	args = append(args,
		"-map_chapters", "-1",
		"-vn",
		"-c", "copy",
	)

	// --- Time range ---
	args = append(args,
		"-ss", formatSeconds(job.Start),
		"-to", formatSeconds(job.End),
		"-n",
	)

	// --- Metadata ---
	for _, t := range job.Tags {
		args = append(args, "-metadata", t.Key+"="+t.Value)
	}

	// --- Output ---
	args = append(args, job.DestinationPath)
	return args
}

// formatSeconds renders seconds with the shortest exact decimal form, so
// "20.5" stays "20.5" and whole seconds carry no fraction.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
