// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffmpeg and ffprobe.
package check

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/backmassage/chaptersplit/internal/config"
	"github.com/backmassage/chaptersplit/internal/failure"
	"github.com/backmassage/chaptersplit/internal/probe"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
// Both are also marked as environment errors.
var (
	ErrFFmpegNotFound  = errors.New("ffmpeg not found")
	ErrFFprobeNotFound = errors.New("ffprobe not found")
)

// toolTimeout bounds each diagnostic subprocess.
const toolTimeout = 10 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// RunCheck runs the --check flow: tool versions, a short stream-copy test,
// the metadata encoding and the output directory. Every item is reported;
// the returned error combines every item that logged an ERROR.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) error {
	log.Info("=== System Check ===")

	errs := []error{
		checkTool(ctx, log, cfg.FFmpegPath, "ffmpeg"),
		checkTool(ctx, log, cfg.FFprobePath, "ffprobe"),
	}
	if errs[0] == nil {
		errs = append(errs, checkStreamCopy(ctx, log, cfg.FFmpegPath))
	}
	errs = append(errs,
		checkEncoding(log, cfg.InputEncoding),
		checkOutputDir(log, cfg.OutputDir),
	)

	var err error
	for _, e := range errs {
		err = errors.CombineErrors(err, e)
	}
	return err
}

// CheckDeps is the pre-pipeline validation: it verifies that ffmpeg and
// ffprobe resolve to executables. Returns an environment error wrapping the
// matching sentinel on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return failure.Mark(errors.Mark(err, ErrFFmpegNotFound), failure.ErrEnvironment,
			"%s (set --ffmpeg)", cfg.FFmpegPath)
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return failure.Mark(errors.Mark(err, ErrFFprobeNotFound), failure.ErrEnvironment,
			"%s (set --ffprobe)", cfg.FFprobePath)
	}
	return nil
}

// checkTool verifies bin is executable and logs its version line.
func checkTool(ctx context.Context, log Logger, bin, name string) error {
	path, err := exec.LookPath(bin)
	if err != nil {
		log.Error("%s not found (%s)", name, bin)
		return failure.Mark(err, failure.ErrEnvironment, "%s not found", name)
	}
	log.Debug("%s resolved to %s", name, path)

	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return nil
	}
	log.Success("%s: %s", name, firstLine(string(out)))
	return nil
}

// checkStreamCopy generates a short AAC clip and cuts a range out of it with
// the same stream-copy options used for chapters. A clip that cannot be
// generated (e.g. no AAC encoder) skips the test without failing.
func checkStreamCopy(ctx context.Context, log Logger, ffmpeg string) error {
	log.Info("Testing stream-copy extraction...")
	dir, err := os.MkdirTemp("", "chaptersplit-check-")
	if err != nil {
		log.Warn("Cannot create temp dir: %v", err)
		return nil
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "src.m4a")
	dst := filepath.Join(dir, "dst.m4a")

	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	if !runSilent(ctx, ffmpeg,
		"-hide_banner", "-nostdin", "-v", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=1",
		"-c:a", "aac", src,
	) {
		log.Warn("AAC test clip could not be generated (skipped)")
		return nil
	}
	if !runSilent(ctx, ffmpeg,
		"-nostdin", "-hide_banner", "-i", src, "-v", "error",
		"-map_chapters", "-1", "-vn", "-c", "copy",
		"-ss", "0.2", "-to", "0.8", "-n",
		"-metadata", "track=1/1", dst,
	) {
		log.Error("Stream-copy extraction test failed")
		return failure.Environmentf("%s cannot stream-copy a test clip", ffmpeg)
	}
	log.Success("Stream-copy extraction works")
	return nil
}

// checkEncoding validates the --input-encoding name.
func checkEncoding(log Logger, name string) error {
	if name == "" {
		log.Info("Metadata encoding: UTF-8")
		return nil
	}
	if _, err := probe.Decode(nil, name); err != nil {
		log.Error("Metadata encoding %q is not supported", name)
		return err
	}
	log.Success("Metadata encoding: %s", name)
	return nil
}

// checkOutputDir reports whether dir exists and is a writable directory.
func checkOutputDir(log Logger, dir string) error {
	if dir == "" {
		return nil
	}
	fi, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info("Output directory %s will be created", dir)
		return nil
	case err != nil:
		log.Error("Output directory %s: %v", dir, err)
		return failure.Mark(err, failure.ErrPlan, "output directory %s", dir)
	case !fi.IsDir():
		log.Error("Output path %s is not a directory", dir)
		return failure.Planf("output path %s is not a directory", dir)
	}
	f, err := os.CreateTemp(dir, ".chaptersplit-check-")
	if err != nil {
		log.Error("Output directory %s is not writable: %v", dir, err)
		return failure.Mark(err, failure.ErrPlan, "output directory %s is not writable", dir)
	}
	f.Close()
	os.Remove(f.Name())
	log.Success("Output directory %s is writable", dir)
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		return s[:idx]
	}
	return s
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(ctx context.Context, name string, args ...string) bool {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
