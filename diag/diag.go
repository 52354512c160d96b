// Package diag implements the diagnostic reporting used across the
// mmn14 toolchain: one warning/error format, accumulated in emission
// order, optionally colourized on a terminal.
//
// The format and severities are those of spec.md §6/§7:
// "<file>:<line>: warning: <msg>" or "<file>:<line>: error: <msg>".
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Severity classifies a Diagnostic. Warnings never fail a build;
// recoverable errors do, but scanning continues to surface more of
// them; fatal stops the current file's processing immediately.
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Fatal:
		return "fatal"
	default:
		return "error"
	}
}

// Diagnostic is a single reported condition, tied to the source line
// that caused it.
type Diagnostic struct {
	File     string
	Line     int
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
}

// A Sink collects diagnostics for one file's assembly run, preserving
// the order in which they were detected (spec.md §5: "all diagnostics
// for file F are emitted in source line order").
type Sink struct {
	File string
	All  []Diagnostic
}

// NewSink creates a diagnostic sink bound to the named input file.
func NewSink(file string) *Sink {
	return &Sink{File: file}
}

// Warnf records a warning at line.
func (s *Sink) Warnf(line int, format string, args ...interface{}) {
	s.add(Warning, line, format, args...)
}

// Errorf records a recoverable error at line.
func (s *Sink) Errorf(line int, format string, args ...interface{}) {
	s.add(Error, line, format, args...)
}

func (s *Sink) add(sev Severity, line int, format string, args ...interface{}) {
	s.All = append(s.All, Diagnostic{
		File:     s.File,
		Line:     line,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any recorded diagnostic is at Error
// severity or worse. Output files must not be written when true
// (spec.md §7).
func (s *Sink) HasErrors() bool {
	for _, d := range s.All {
		if d.Severity >= Error {
			return true
		}
	}
	return false
}

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

// Print writes every accumulated diagnostic to w, one per line,
// colourizing warnings yellow and errors red unless fatih/color has
// colour disabled, which it does when standard output (not w) is not a
// terminal.
func (s *Sink) Print(w io.Writer) {
	for _, d := range s.All {
		line := d.String() + "\n"
		switch d.Severity {
		case Warning:
			warnColor.Fprint(w, line)
		default:
			errorColor.Fprint(w, line)
		}
	}
}
