package tabgen

import (
	"fmt"
	"strings"
)

// Diagnostics is the callback interface through which table construction reports
// conflicts, unreachable symbols and malformed grammar constructs.
// Coordinates are 1-based; 0 means unknown.
//
// Reporting an error does not stop construction. Generation proceeds with a
// degenerate-but-defined policy, and it is up to the caller to decide whether
// tables built in the presence of errors are usable.
type Diagnostics interface {
	AddError(fromLine, fromChar, toLine, toChar int, msg string)
	AddWarning(fromLine, fromChar, toLine, toChar int, msg string)
}

// Errorf is a helper to report a formatted error at a location.
// d may be nil, in which case the message is traced only.
func Errorf(d Diagnostics, at Location, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	tracer().Errorf("%s: %s", at, msg)
	if d != nil {
		d.AddError(at.FromLine, at.FromChar, at.ToLine, at.ToChar, msg)
	}
}

// Warnf is a helper to report a formatted warning at a location.
// d may be nil, in which case the message is traced only.
func Warnf(d Diagnostics, at Location, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	tracer().Infof("warning %s: %s", at, msg)
	if d != nil {
		d.AddWarning(at.FromLine, at.FromChar, at.ToLine, at.ToChar, msg)
	}
}

// Severity of a diagnostic message.
type Severity int8

// Severities for diagnostics.
const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is a single message, as recorded by a Collector.
type Diagnostic struct {
	Severity Severity
	Location Location
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// Collector is a Diagnostics implementation which records every message.
// The zero value is ready to use.
type Collector struct {
	Entries []Diagnostic
}

var _ Diagnostics = (*Collector)(nil)

// AddError is part of interface Diagnostics.
func (c *Collector) AddError(fromLine, fromChar, toLine, toChar int, msg string) {
	c.add(Error, Location{fromLine, fromChar, toLine, toChar}, msg)
}

// AddWarning is part of interface Diagnostics.
func (c *Collector) AddWarning(fromLine, fromChar, toLine, toChar int, msg string) {
	c.add(Warning, Location{fromLine, fromChar, toLine, toChar}, msg)
}

func (c *Collector) add(sev Severity, at Location, msg string) {
	c.Entries = append(c.Entries, Diagnostic{Severity: sev, Location: at, Message: msg})
}

// ErrorCount returns the number of errors recorded.
func (c *Collector) ErrorCount() int {
	return c.count(Error)
}

// WarningCount returns the number of warnings recorded.
func (c *Collector) WarningCount() int {
	return c.count(Warning)
}

func (c *Collector) count(sev Severity) int {
	n := 0
	for _, d := range c.Entries {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Contains is true if a message containing substring has been recorded.
func (c *Collector) Contains(substring string) bool {
	for _, d := range c.Entries {
		if strings.Contains(d.Message, substring) {
			return true
		}
	}
	return false
}

// Err returns an error summarizing all recorded errors, or nil if there are none.
func (c *Collector) Err() error {
	var msgs []string
	for _, d := range c.Entries {
		if d.Severity == Error {
			msgs = append(msgs, d.String())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%d error(s): %s", len(msgs), strings.Join(msgs, "; "))
}
