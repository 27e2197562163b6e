// Package logging provides the leveled, optionally colored logger used by
// every chaptersplit package. Lines are timestamped, ERROR goes to stderr,
// and an optional file sink receives the uncolored text.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/backmassage/chaptersplit/internal/config"
	"github.com/backmassage/chaptersplit/internal/term"
)

// Logger provides leveled, optionally colored logging with an optional file
// sink. All methods are goroutine-safe; the dispatcher's workers share one.
type Logger struct {
	mu      sync.Mutex
	verbose bool
	color   bool
	out     io.Writer
	errOut  io.Writer
	file    *os.File
	now     func() time.Time
}

// NewLogger configures colors from cfg and opens cfg.LogFile for appending
// when set. ERROR lines go to errOut and every other level to out. Call Close
// when done.
func NewLogger(cfg *config.Config, out, errOut io.Writer) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	l := &Logger{
		verbose: cfg.Verbose,
		color:   term.Enabled(),
		out:     out,
		errOut:  errOut,
		now:     time.Now,
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create log directory for %s", cfg.LogFile)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", cfg.LogFile)
		}
		l.file = f
	}
	return l, nil
}

// NewWriterLogger returns an uncolored logger that sends every level to w.
func NewWriterLogger(w io.Writer, verbose bool) *Logger {
	return &Logger{verbose: verbose, out: w, errOut: w, now: time.Now}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level, text string) {
	ts := l.now().Format("2006-01-02 15:04:05")
	plain := ts + " [" + level + "] " + text + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.out
	if level == "ERROR" {
		out = l.errOut
	}
	if style := term.Colors.ForLevel(level); l.color && style != "" {
		_, _ = io.WriteString(out, ts+" "+term.Paint(style, "["+level+"]")+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when the logger is verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line("DEBUG", fmt.Sprintf(format, args...))
}
