// Package config holds runtime configuration: defaults, CLI flag binding, and
// validation.
package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// mutated by flag parsing (see [BindFlags] and [Finalize]) and then passed by
// pointer to the packages that need it.
type Config struct {
	// Paths.
	InputFile string
	OutputDir string

	// Naming.
	UseTitleAsFilename bool // Default: true. Cleared by --no-use-title-as-filename.
	EnumerateFilenames bool // Default: true. Cleared by --no-enumerate-filenames.

	// Execution.
	Concurrency int           // Default: runtime.NumCPU().
	JobTimeout  time.Duration // Default: 0 (no per-job timeout).
	DryRun      bool
	DumpOnly    bool // Print parsed chapters and exit.

	// External tools.
	FFmpegPath    string // Default: "ffmpeg" (resolved on PATH).
	FFprobePath   string // Default: "ffprobe" (resolved on PATH).
	InputEncoding string // IANA name of the probe output encoding; empty means UTF-8.

	// Display and logging.
	Verbose    bool
	ColorMode  ColorMode // Default: "auto".
	LogFile    string    // Optional log file path.
	ReportFile string    // Optional JSON run report path.
	CheckOnly  bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	return Config{
		UseTitleAsFilename: true,
		EnumerateFilenames: true,
		Concurrency:        runtime.NumCPU(),
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
		ColorMode:          ColorAuto,
	}
}

// Validate checks field ranges and required paths. In CheckOnly mode the
// paths are not required.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.Newf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.Concurrency < 1 {
		return errors.Newf("concurrency must be at least 1 (got %d)", c.Concurrency)
	}
	if c.JobTimeout < 0 {
		return errors.Newf("job timeout must not be negative (got %s)", c.JobTimeout)
	}
	if !c.UseTitleAsFilename && !c.EnumerateFilenames {
		// Every chapter would map to the same name before collision suffixes.
		return errors.New("--no-use-title-as-filename and --no-enumerate-filenames are mutually exclusive")
	}
	if strings.TrimSpace(c.FFmpegPath) == "" || strings.TrimSpace(c.FFprobePath) == "" {
		return errors.New("ffmpeg and ffprobe paths must not be empty")
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputFile == "" {
		return errors.New("--infile is required")
	}
	if c.OutputDir == "" && !c.DumpOnly {
		return errors.New("--outdir is required")
	}
	return nil
}

// ValidatePaths ensures the output directory is not the input file itself.
// Both arguments must be absolute, cleaned paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	if filepath.Clean(inputAbs) == filepath.Clean(outputAbs) {
		return errors.New("output directory must not be the input file")
	}
	return nil
}
