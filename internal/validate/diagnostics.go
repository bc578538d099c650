// Package validate implements structural validation of record files:
// per-record schema checks, per-file orchestration, and the record cap.
// Every check returns a result structure; nothing here touches shared state,
// so callers decide how to fold diagnostics into a run-level verdict.
package validate

import (
	"fmt"

	"linklint/internal/record"
)

// Diagnostic severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Diagnostic is one finding against a record file.
type Diagnostic struct {
	Severity string
	File     string
	Section  string
	Line     int
	Message  string
}

func (d Diagnostic) String() string {
	loc := d.File
	if d.Section != "" {
		loc = fmt.Sprintf("%s [%s]", d.File, d.Section)
	}
	if d.Line > 0 {
		loc = fmt.Sprintf("%s line %d", loc, d.Line)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, loc, d.Message)
}

// RecordResult is the outcome of validating one section against the schema.
type RecordResult struct {
	Section record.Section
	// Fields holds the extracted field values; meaningful only when Valid.
	Fields map[string]string
	Diags  []Diagnostic
}

// Valid reports whether the record carries no error-severity diagnostics.
// Warnings (sequence gaps) do not invalidate a record.
func (r RecordResult) Valid() bool {
	return !hasErrors(r.Diags)
}

// FileResult is the outcome of validating one record file.
type FileResult struct {
	Path  string
	Links int // valid record count; meaningful only when the file passed
	Diags []Diagnostic
}

// Failed reports whether any error-severity diagnostic was raised.
func (f FileResult) Failed() bool {
	return hasErrors(f.Diags)
}

func hasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
