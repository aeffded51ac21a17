// Package console writes human readable progress to the terminal.
//
// Messages may carry colour markup such as "$Bold{users}" or "$Red{failed}". It is turned
// into ANSI codes on a terminal and stripped everywhere else.
package console

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var markupPattern = regexp.MustCompile(`\$(Bold|Red|Green|Yellow|Blue|Cyan|Gray)\{([^{}]*)\}`)

var markupCodes = map[string]string{
	"Bold":   "\x1b[1m",
	"Red":    "\x1b[31m",
	"Green":  "\x1b[32m",
	"Yellow": "\x1b[33m",
	"Blue":   "\x1b[34m",
	"Cyan":   "\x1b[36m",
	"Gray":   "\x1b[90m",
}

const resetCode = "\x1b[0m"

// Braces of escaped text are swapped for private use runes while markup is expanded.
const (
	escapedOpen  = "\uE000"
	escapedClose = "\uE001"
)

var (
	escaper   = strings.NewReplacer("{", escapedOpen, "}", escapedClose)
	unescaper = strings.NewReplacer(escapedOpen, "{", escapedClose, "}")
)

// Logger is the process wide console.
var Logger = New(os.Stdout)

// ConsoleLogger logs formatted messages through zerolog.
type ConsoleLogger struct {
	// DebugLevel enables Debug output when greater than zero
	DebugLevel int

	log   zerolog.Logger
	color bool
}

// New creates a console writing to w. Colour is used when w is a terminal.
func New(w io.Writer) *ConsoleLogger {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if color {
			w = colorable.NewColorable(f)
		} else {
			w = colorable.NewNonColorable(f)
		}
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: "15:04:05",
	}
	return &ConsoleLogger{
		log:   zerolog.New(out).With().Timestamp().Logger(),
		color: color,
	}
}

// Debug logs when DebugLevel is on.
func (l *ConsoleLogger) Debug(format string, args ...interface{}) {
	if l.DebugLevel > 0 {
		l.write(l.log.Debug(), format, args...)
	}
}

// Printf logs at debug level so the console can serve as a service Debugger.
func (l *ConsoleLogger) Printf(format string, args ...interface{}) {
	l.Debug(format, args...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write(l.log.Info(), format, args...)
}

// Warn logs a warning.
func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.write(l.log.Warn(), format, args...)
}

// Error logs an error.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(l.log.Error(), format, args...)
}

func (l *ConsoleLogger) write(event *zerolog.Event, format string, args ...interface{}) {
	for i, arg := range args {
		if s, ok := arg.(string); ok {
			args[i] = Escape(s)
		}
	}
	event.Msg(l.Markup(fmt.Sprintf(format, args...)))
}

// Escape keeps s literal when it is later passed through Markup.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Markup expands colour markup, or strips it when colour is off. Markup may be nested.
// Escaped text is restored verbatim.
func (l *ConsoleLogger) Markup(s string) string {
	for {
		expanded := markupPattern.ReplaceAllStringFunc(s, func(m string) string {
			parts := markupPattern.FindStringSubmatch(m)
			if !l.color {
				return parts[2]
			}
			return markupCodes[parts[1]] + parts[2] + resetCode
		})
		if expanded == s {
			return unescaper.Replace(s)
		}
		s = expanded
	}
}
