package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/cockroachdb/errors"

	"github.com/backmassage/chaptersplit/internal/config"
	"github.com/backmassage/chaptersplit/internal/failure"
	"github.com/backmassage/chaptersplit/internal/planner"
	"github.com/backmassage/chaptersplit/internal/probe"
)

// Toolchain is the real ffprobe/ffmpeg collaborator used by the pipeline.
type Toolchain struct {
	FFmpeg  string       // ffmpeg binary name or path
	Prober  probe.Prober // chapter metadata reader
	Verbose bool         // raise ffmpeg loglevel and tee stderr
	Stderr  io.Writer    // receives live ffmpeg stderr when Verbose; may be nil
}

// New returns a Toolchain configured from cfg.
func New(cfg *config.Config, stderr io.Writer) *Toolchain {
	return &Toolchain{
		FFmpeg:  cfg.FFmpegPath,
		Prober:  probe.Prober{Bin: cfg.FFprobePath, Encoding: cfg.InputEncoding},
		Verbose: cfg.Verbose,
		Stderr:  stderr,
	}
}

// Probe reads chapter metadata from path with ffprobe.
func (t *Toolchain) Probe(ctx context.Context, path string) (*probe.Metadata, error) {
	return t.Prober.Probe(ctx, path)
}

// Available reports an environment error when ffmpeg cannot be found.
func (t *Toolchain) Available() error {
	if _, err := exec.LookPath(t.FFmpeg); err != nil {
		return failure.Mark(err, failure.ErrEnvironment, "%s not found", t.FFmpeg)
	}
	return nil
}

// Command returns the exact argv Extract runs for job.
func (t *Toolchain) Command(job planner.Job) []string {
	return Build(t.FFmpeg, job, t.Verbose)
}

// Extract runs ffmpeg once for job and blocks until it exits. A failed run
// is an extraction error carrying the exit status, and the stderr tail as
// error detail. Cancelling ctx kills the process.
func (t *Toolchain) Extract(ctx context.Context, job planner.Job) error {
	args := t.Command(job)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if t.Verbose && t.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, t.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	stderr := stderrBuf.String()
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		err = failure.Mark(ctx.Err(), failure.ErrExtraction, "ffmpeg interrupted for %s", job)
	case errors.As(err, &exitErr):
		msg := "ffmpeg exited with status %d for %s"
		if reason := Reason(stderr); reason != "" {
			msg += ": " + reason
		}
		err = failure.Mark(err, failure.ErrExtraction, msg, exitErr.ExitCode(), job)
	default:
		err = failure.Mark(err, failure.ErrExtraction, "run ffmpeg for %s", job)
	}
	if tail := Tail(stderr, stderrTailLines); tail != "" {
		err = errors.WithDetail(err, tail)
	}
	return err
}
