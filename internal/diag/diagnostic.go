package diag

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics from informational to fatal for the run.
type Severity uint8

const (
	// SevInfo marks recovery notes such as skipped orphan lines.
	SevInfo Severity = iota
	// SevWarning marks output that is usable but may render wrongly.
	SevWarning
	// SevError marks a line the parser could not use; the CLI exits non-zero.
	SevError
)

var severityNames = [...]string{SevInfo: "INFO", SevWarning: "WARNING", SevError: "ERROR"}

// Valid reports whether s is one of the defined severities. Decoded cache
// entries are checked with it.
func (s Severity) Valid() bool { return int(s) < len(severityNames) }

func (s Severity) String() string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	return severityNames[s]
}

// ParseSeverity accepts a severity name in any case, as used by
// --min-severity.
func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if strings.EqualFold(name, n) {
			return Severity(i), nil
		}
	}
	return SevInfo, fmt.Errorf("invalid severity %q (expected info|warning|error)", name)
}

// Location points at a line of a named input. Line is 1-based; zero means the
// diagnostic concerns the input as a whole.
type Location struct {
	Input string
	Line  int
}

func (l Location) String() string {
	name := l.Input
	if name == "" {
		name = "<input>"
	}
	if l.Line <= 0 {
		return name
	}
	return fmt.Sprintf("%s:%d", name, l.Line)
}

type Note struct {
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Location Location
	Text     string
	Notes    []Note
}

func New(sev Severity, code Code, loc Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Location: loc,
		Message:  msg,
	}
}

func NewError(code Code, loc Location, msg string) Diagnostic {
	return New(SevError, code, loc, msg)
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Msg: msg})
	return d
}
