package planner

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/backmassage/chaptersplit/internal/failure"
	"github.com/backmassage/chaptersplit/internal/naming"
	"github.com/backmassage/chaptersplit/internal/probe"
)

// Build turns ordered chapters into an ordered job list. It is
// all-or-nothing: on any PlanError no jobs are returned and nothing has been
// created on disk.
//
// Flow:
//  1. Validate the input name (extension and usable stem)
//  2. Validate the output location (absent or a directory)
//  3. Assign destinations and tags through naming.Policy
//  4. Reject destinations that already exist, reporting all of them
//  5. Create the output directory when requested
func Build(chapters []probe.Chapter, opts Options) ([]Job, error) {
	if len(chapters) == 0 {
		return nil, failure.Planf("no chapters to plan")
	}

	// --- 1. Input name ---
	stem, ext := naming.SplitInput(opts.InputPath)
	if ext == "" {
		return nil, failure.Planf("input %q has no file extension", opts.InputPath)
	}
	if naming.Sanitize(stem) == "" && (!opts.UseTitle || anyUntitled(chapters)) {
		return nil, failure.Planf("input %q has no usable base name for untitled chapters", opts.InputPath)
	}

	// --- 2. Output location ---
	if opts.OutputDir == "" {
		return nil, failure.Planf("output directory is empty")
	}
	if fi, err := os.Stat(opts.OutputDir); err == nil {
		if !fi.IsDir() {
			return nil, failure.Planf("output path %q exists and is not a directory", opts.OutputDir)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, failure.Mark(err, failure.ErrPlan, "inspect output directory")
	}

	// --- 3. Destinations and tags ---
	policy := naming.NewPolicy(naming.Options{
		InputPath: opts.InputPath,
		OutputDir: opts.OutputDir,
		UseTitle:  opts.UseTitle,
		Enumerate: opts.Enumerate,
		Total:     len(chapters),
	})

	jobs := make([]Job, 0, len(chapters))
	for _, c := range chapters {
		jobs = append(jobs, Job{
			ChapterIndex:    c.Index,
			TotalChapters:   len(chapters),
			Start:           c.Start,
			End:             c.End,
			Title:           c.Title,
			SourcePath:      opts.InputPath,
			DestinationPath: policy.Destination(c),
			Tags:            policy.Tags(c),
		})
	}

	// --- 4. Existing destinations ---
	if err := checkDestinations(jobs); err != nil {
		return nil, err
	}

	// --- 5. Output directory ---
	if opts.CreateOutputDir {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, failure.Mark(err, failure.ErrPlan, "create output directory")
		}
	}
	return jobs, nil
}

// checkDestinations fails with one PlanError naming every destination that
// already exists.
func checkDestinations(jobs []Job) error {
	var conflicts []string
	for _, j := range jobs {
		_, err := os.Lstat(j.DestinationPath)
		switch {
		case err == nil:
			conflicts = append(conflicts, j.DestinationPath)
		case !errors.Is(err, os.ErrNotExist):
			return failure.Mark(err, failure.ErrPlan, "inspect destination for %s", j)
		}
	}
	if len(conflicts) == 0 {
		return nil
	}
	err := failure.Planf("%d destination(s) already exist, refusing to overwrite", len(conflicts))
	return errors.WithDetail(err, strings.Join(conflicts, "\n"))
}

func anyUntitled(chapters []probe.Chapter) bool {
	for _, c := range chapters {
		if naming.Sanitize(c.Title) == "" {
			return true
		}
	}
	return false
}
