// Package rlog is the ambient logging contract used across this module,
// matching the teacher's injected Options.Logger idiom: a small printf-style
// interface rather than a process-wide singleton.
package rlog

import (
	"fmt"
	"log"
	"os"
)

// Logger is the printf-style logging contract every component takes as a
// constructor argument. It mirrors the severities the original Hypertable
// macros (HT_DEBUG/HT_INFO/HT_WARN/HT_ERROR/HT_FATAL) distinguish.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// stdLogger is the default Logger, backed by the standard library's log
// package. Every other repo in the retrieval pack that carries an ambient
// logging convention either leaves it unimplemented in the excerpt we have,
// or reaches for the same minimal printf shape; there is no ecosystem
// logging library behind any teacher call site to reuse here.
type stdLogger struct {
	debug bool
	l     *log.Logger
}

// NewStdLogger returns a Logger that writes to stderr with a level prefix.
// When debug is false, Debugf calls are discarded.
func NewStdLogger(debug bool) Logger {
	return &stdLogger{debug: debug, l: log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)}
}

func (s *stdLogger) Debugf(format string, args ...interface{}) {
	if !s.debug {
		return
	}
	s.output("DEBUG", format, args...)
}

func (s *stdLogger) Infof(format string, args ...interface{}) {
	s.output("INFO", format, args...)
}

func (s *stdLogger) Warningf(format string, args ...interface{}) {
	s.output("WARN", format, args...)
}

func (s *stdLogger) Errorf(format string, args ...interface{}) {
	s.output("ERROR", format, args...)
}

func (s *stdLogger) Fatalf(format string, args ...interface{}) {
	s.output("FATAL", format, args...)
	os.Exit(1)
}

func (s *stdLogger) output(level, format string, args ...interface{}) {
	s.l.Output(3, fmt.Sprintf(level+": "+format, args...))
}

// Nop is a Logger that discards everything; useful for tests that want to
// exercise the warning/error paths without polluting test output.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{})   {}
func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Warningf(string, ...interface{}) {}
func (nopLogger) Errorf(string, ...interface{})   {}
func (nopLogger) Fatalf(string, ...interface{})   {}
