// Package debug configures the zerolog console logger the CLI runs
// with.
package debug

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// NewLogger builds a console logger writing to w. Verbose lowers the
// level to debug; colorize applies to the caller field and the console
// writer.
func NewLogger(w io.Writer, verbose, colorize bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !colorize,
		TimeFormat: "15:04:05.000",
	}

	return zerolog.New(out).
		Level(level).
		With().Timestamp().Logger().
		Hook(CallerHook{WithColor: colorize})
}

// CallerHook annotates every event with the logging call site.
type CallerHook struct {
	WithColor bool
}

func (c CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	// skip past zerolog's own frames
	_, file, line, ok := runtime.Caller(4)
	if !ok {
		return
	}
	e.Str("caller", FormatCaller(file, line, c.WithColor))
}

// FormatCaller renders a file:line pair, optionally colorized.
func FormatCaller(path string, line int, colorize bool) string {
	name := FileNameOfPath(path)
	if colorize {
		name = color.New(color.Bold).Sprint(name)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", line)
		sep := color.New(color.Faint).Sprint(":")
		return fmt.Sprintf("%s%s%s", name, sep, num)
	}
	return fmt.Sprintf("%s:%d", name, line)
}

// FileNameOfPath returns the last path segment.
func FileNameOfPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
