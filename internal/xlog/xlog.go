// Package xlog wires the program's verbose/trace diagnostic output onto a
// leveled logger. It mirrors the VERBOSE()/TRACE() macros of the original
// C implementation: warnings always print, verbose lines print under -v,
// trace lines print under -z (which implies -v).
package xlog

import (
	"io"

	"github.com/charmbracelet/log"
)

// Logger is the diagnostic sink passed through the core packages.
type Logger struct {
	l       *log.Logger
	verbose bool
	trace   bool
}

// New builds a Logger writing to w. verbose enables -v-level lines, trace
// enables -z-level lines (and implies verbose).
func New(w io.Writer, verbose, trace bool) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		Level:           log.WarnLevel,
	})
	if trace {
		verbose = true
		l.SetLevel(log.DebugLevel)
	} else if verbose {
		l.SetLevel(log.InfoLevel)
	}
	return &Logger{l: l, verbose: verbose, trace: trace}
}

// Warnf logs a best-effort-advisory failure or similar non-fatal warning.
// Always emitted: advisory/best-effort failures are logged at warning
// level and never fatal.
func (lg *Logger) Warnf(format string, args ...any) {
	if lg == nil {
		return
	}
	lg.l.Warnf(format, args...)
}

// Verbosef logs a processing-info line, shown under -v or -z.
func (lg *Logger) Verbosef(format string, args ...any) {
	if lg == nil || !lg.verbose {
		return
	}
	lg.l.Infof(format, args...)
}

// Tracef logs a debugging-detail line, shown only under -z.
func (lg *Logger) Tracef(format string, args ...any) {
	if lg == nil || !lg.trace {
		return
	}
	lg.l.Debugf(format, args...)
}

// Verbose reports whether verbose output is enabled.
func (lg *Logger) Verbose() bool { return lg != nil && lg.verbose }

// Trace reports whether trace output is enabled.
func (lg *Logger) Trace() bool { return lg != nil && lg.trace }
