// Package pipeline orchestrates one split run: probe, parse, plan, dispatch
// and summarize.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"

	"github.com/backmassage/chaptersplit/internal/config"
	"github.com/backmassage/chaptersplit/internal/dispatch"
	"github.com/backmassage/chaptersplit/internal/display"
	"github.com/backmassage/chaptersplit/internal/failure"
	"github.com/backmassage/chaptersplit/internal/planner"
	"github.com/backmassage/chaptersplit/internal/probe"
	"github.com/backmassage/chaptersplit/internal/summary"
)

// Toolchain is the external-tool capability the pipeline drives: chapter
// probing plus per-job extraction.
type Toolchain interface {
	Probe(ctx context.Context, path string) (*probe.Metadata, error)
	dispatch.Extractor
	// Command returns the argv Extract would run, for dry runs.
	Command(job planner.Job) []string
}

// Logger is the subset of logging.Logger used by the pipeline.
type Logger interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Run splits cfg.InputFile into per-chapter files under cfg.OutputDir.
//
// A non-nil error is fatal (metadata, plan or environment) and means no
// extraction was attempted. Otherwise the Summary carries one result per
// chapter. Dump and dry-run modes stop after parsing and planning
// respectively, print to out, and return an empty AllSucceeded summary.
func Run(ctx context.Context, cfg *config.Config, log Logger, tc Toolchain, out io.Writer) (summary.Summary, error) {
	runID := uuid.NewString()
	started := time.Now()
	log.Debug("Run %s", runID)

	// --- Input ---
	input, known, err := ResolveInput(cfg.InputFile)
	if err != nil {
		return summary.Summary{}, err
	}
	if !known {
		log.Warn("Unrecognized container extension %q; trying anyway", filepath.Ext(input))
	}

	// --- Probe and parse ---
	meta, err := tc.Probe(ctx, input)
	if err != nil {
		if failure.KindOf(err) == failure.KindUnknown {
			err = failure.Mark(err, failure.ErrMetadata, "probe %s", input)
		}
		return summary.Summary{}, err
	}
	chapters, err := probe.ParseChapters(meta)
	if err != nil {
		return summary.Summary{}, err
	}
	log.Info("Found %d chapters in %s", len(chapters), filepath.Base(input))
	for _, c := range chapters {
		log.Debug("  %s", c)
	}

	if cfg.DumpOnly {
		display.PrintChapterTable(out, chapters)
		return summary.Aggregate(nil), nil
	}

	// --- Plan ---
	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return summary.Summary{}, failure.Mark(err, failure.ErrPlan, "resolve output directory")
	}
	if err := cfg.ValidatePaths(input, outputDir); err != nil {
		return summary.Summary{}, failure.Mark(err, failure.ErrPlan, "output directory")
	}

	jobs, err := planner.Build(chapters, planner.Options{
		InputPath:       input,
		OutputDir:       outputDir,
		UseTitle:        cfg.UseTitleAsFilename,
		Enumerate:       cfg.EnumerateFilenames,
		CreateOutputDir: !cfg.DryRun,
	})
	if err != nil {
		return summary.Summary{}, err
	}

	// --- Dry-run ---
	if cfg.DryRun {
		fmt.Fprintln(out, "# dry-run")
		fmt.Fprintln(out, shellquote.Join("mkdir", "-p", outputDir))
		for _, job := range jobs {
			fmt.Fprintln(out, shellquote.Join(tc.Command(job)...))
		}
		log.Success("[DRY] Would write %d files to %s", len(jobs), outputDir)
		return summary.Aggregate(nil), nil
	}

	// --- Dispatch ---
	d := dispatch.New(cfg.Concurrency, tc, log, dispatch.WithJobTimeout(cfg.JobTimeout))
	log.Info("Splitting into %s with %d workers", outputDir, d.Limit())
	results, err := d.Run(ctx, jobs)
	if err != nil {
		return summary.Summary{}, err
	}

	// --- Summarize ---
	sum := summary.Aggregate(results)
	sum.Report(log)
	log.Info("Elapsed: %s", display.FormatDuration(time.Since(started)))

	if cfg.ReportFile != "" {
		info := summary.RunInfo{
			RunID:     runID,
			InputPath: input,
			OutputDir: outputDir,
			Started:   started,
			Elapsed:   time.Since(started),
		}
		if err := sum.WriteJSON(cfg.ReportFile, info); err != nil {
			log.Warn("Report not written: %v", err)
		} else {
			log.Info("Report written to %s", cfg.ReportFile)
		}
	}
	return sum, nil
}
