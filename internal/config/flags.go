package config

// This file binds CLI flags onto a Config. Flags are grouped into paths,
// naming, execution, tools, and display.
// Negated flags (e.g. --no-use-title-as-filename) are applied by Finalize
// after parsing so Config defaults hold unless the flag is set.

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

// NegatedFlags holds boolean flags that are applied after parsing. Each one
// inverts a default in Config.
type NegatedFlags struct {
	noUseTitle  bool
	noEnumerate bool
	forceColor  bool
	noColor     bool
}

// BindFlags registers every chaptersplit flag on fs, writing directly into
// cfg where possible. The returned NegatedFlags must be passed to [Finalize]
// once parsing is done.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *NegatedFlags {
	n := &NegatedFlags{}

	definePathFlags(fs, cfg)
	defineNamingFlags(fs, n)
	defineExecutionFlags(fs, cfg)
	defineToolFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, n)

	return n
}

// definePathFlags registers -i/--infile and -o/--outdir.
func definePathFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.InputFile, "infile", "i", "", "Input file; chapter information must be present in its metadata")
	fs.StringVarP(&cfg.OutputDir, "outdir", "o", "", "Output directory; created if it does not exist")
}

// defineNamingFlags registers the output filename switches.
func defineNamingFlags(fs *pflag.FlagSet, n *NegatedFlags) {
	fs.BoolVar(&n.noUseTitle, "no-use-title-as-filename", false, "Do not use chapter titles in output filenames")
	fs.BoolVar(&n.noUseTitle, "no-use-title", false, "Same as --no-use-title-as-filename")
	_ = fs.MarkHidden("no-use-title")
	fs.BoolVar(&n.noEnumerate, "no-enumerate-filenames", false, "Do not prefix output filenames with chapter numbers")
}

// defineExecutionFlags registers concurrency, timeout, dry-run, and dump.
func defineExecutionFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Concurrency, "concurrency", "j", cfg.Concurrency, "Number of concurrent ffmpeg processes")
	fs.DurationVar(&cfg.JobTimeout, "job-timeout", 0, "Kill a single chapter extraction after this long (0 = no limit)")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", false, "Print the ffmpeg commands without running them")
	fs.BoolVar(&cfg.DumpOnly, "dump-chapters", false, "Print parsed chapters and exit")
}

// defineToolFlags registers the external binary paths and probe encoding.
func defineToolFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "ffprobe binary")
	fs.StringVar(&cfg.InputEncoding, "input-encoding", "", "Text encoding of the chapter metadata (default: UTF-8)")
}

// defineDisplayFlags registers color, verbosity, diagnostics, log and report.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, n *NegatedFlags) {
	fs.Var(&colorModeValue{&cfg.ColorMode}, "color-mode", "Color output: auto | always | never")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false, "Run system diagnostics and exit")
	fs.StringVarP(&cfg.LogFile, "log", "l", "", "Append logs to file")
	fs.StringVar(&cfg.ReportFile, "report", "", "Write a JSON run report to this path")
}

// Finalize copies negated flag values into cfg and normalizes paths. Call it
// after parsing and before [Config.Validate].
func Finalize(cfg *Config, n *NegatedFlags) {
	if n.noUseTitle {
		cfg.UseTitleAsFilename = false
	}
	if n.noEnumerate {
		cfg.EnumerateFilenames = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
	if cfg.OutputDir != "" {
		cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	}
}

// pflag.Value adapter so ColorMode can be set with fs.Var.

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Type() string   { return "mode" }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return errors.Newf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}
