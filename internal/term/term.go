// Package term resolves whether output is colored and holds the ANSI styles
// shared by the logger and the display helpers.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/chaptersplit/internal/config"
)

// Style is an ANSI SGR prefix. The zero value renders text unchanged.
type Style string

// Palette maps each output role to a style.
type Palette struct {
	Info    Style
	Success Style
	Warn    Style
	Error   Style
	Debug   Style
	Banner  Style
	Heading Style
	Reset   Style
}

var ansi = Palette{
	Info:    "\033[1;94m",
	Success: "\033[1;92m",
	Warn:    "\033[1;93m",
	Error:   "\033[1;91m",
	Debug:   "\033[1;96m",
	Banner:  "\033[1;95m",
	Heading: "\033[1m",
	Reset:   "\033[0m",
}

// Colors is the active palette. All styles are empty while colors are off.
var Colors Palette

// Configure resolves mode against the environment and sets Colors. Called
// once at startup by logging.NewLogger.
func Configure(mode config.ColorMode) {
	if resolve(mode) {
		Colors = ansi
	} else {
		Colors = Palette{}
	}
}

// Enabled reports whether colors are on.
func Enabled() bool { return Colors.Reset != "" }

// Paint wraps text in s followed by a reset. Text is returned as is when s is
// empty or colors are off.
func Paint(s Style, text string) string {
	if s == "" || !Enabled() {
		return text
	}
	return string(s) + text + string(Colors.Reset)
}

// ForLevel returns the style for a logger level name such as "WARN".
func (p Palette) ForLevel(level string) Style {
	switch level {
	case "INFO":
		return p.Info
	case "SUCCESS":
		return p.Success
	case "WARN":
		return p.Warn
	case "ERROR":
		return p.Error
	case "DEBUG":
		return p.Debug
	}
	return ""
}

// resolve honors an explicit mode; auto requires a TTY on stdout, no
// NO_COLOR (https://no-color.org) and a TERM other than dumb.
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return false
	}
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
