// Command chaptersplit splits an audio file into one file per embedded
// chapter using ffprobe and ffmpeg.
//
// It parses flags, validates configuration, and either runs system
// diagnostics (--check) or the split pipeline.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/backmassage/chaptersplit/internal/check"
	"github.com/backmassage/chaptersplit/internal/config"
	"github.com/backmassage/chaptersplit/internal/display"
	"github.com/backmassage/chaptersplit/internal/failure"
	"github.com/backmassage/chaptersplit/internal/ffmpeg"
	"github.com/backmassage/chaptersplit/internal/logging"
	"github.com/backmassage/chaptersplit/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code: 0 only when every
// chapter was written (or a dump, dry run or check completed cleanly).
func run(args []string, stdout, stderr io.Writer) int {
	// Cancel on SIGINT/SIGTERM: running ffmpeg processes are killed and
	// chapters not yet started are recorded as failed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.DefaultConfig()
	code := 0
	cmd := newRootCmd(&cfg, func(cfg *config.Config) int {
		return execute(ctx, cfg, stdout, stderr)
	}, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	// Bootstrap errors: the logger doesn't exist yet, so they go directly
	// to stderr.
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "chaptersplit: %v\n", err)
		return 1
	}
	return code
}

// execute runs with a validated config. All output goes through the logger
// from here on, except dump and dry-run listings which go to stdout. In those
// two modes every log line goes to stderr so stdout holds only the listing.
func execute(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) int {
	quiet := cfg.DumpOnly || cfg.DryRun
	logOut := stdout
	if quiet {
		logOut = stderr
	}
	log, err := logging.NewLogger(cfg, logOut, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "chaptersplit: %v\n", err)
		return 1
	}
	defer log.Close()

	if !quiet {
		display.PrintBanner(stdout)
	}

	if cfg.CheckOnly {
		if err := check.RunCheck(ctx, cfg, log); err != nil {
			return 1
		}
		return 0
	}

	if !quiet {
		log.Info("=== chaptersplit v%s (%s) ===", version, commit)
		log.Info("In:  %s", cfg.InputFile)
		log.Info("Out: %s", cfg.OutputDir)

		// Fail fast if ffmpeg/ffprobe are unavailable.
		if err := check.CheckDeps(cfg); err != nil {
			logFatal(log, err)
			return 1
		}
	}

	sum, err := pipeline.Run(ctx, cfg, log, ffmpeg.New(cfg, stderr), stdout)
	if err != nil {
		logFatal(log, err)
		return 1
	}
	if ctx.Err() != nil {
		log.Warn("Interrupted; chapters not started were skipped")
	}
	if !sum.OK() {
		return 1
	}
	return 0
}

// logFatal logs a run-aborting error with its kind, and any attached detail
// such as tool stderr or conflicting paths.
func logFatal(log *logging.Logger, err error) {
	if failure.IsFatal(err) {
		log.Error("%s: %v", failure.KindOf(err), err)
	} else {
		log.Error("%v", err)
	}
	for _, d := range errors.GetAllDetails(err) {
		log.Error("  %s", d)
	}
}
