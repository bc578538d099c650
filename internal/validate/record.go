package validate

import (
	"fmt"
	"strings"

	"linklint/internal/record"
)

// Quoting selects how strictly field values must be delimited.
type Quoting int

const (
	// QuotingStrict requires field="value"; bare values are rejected.
	QuotingStrict Quoting = iota
	// QuotingLenient accepts field=value with or without quotes.
	QuotingLenient
)

// ParseQuoting maps a config string to a Quoting mode.
func ParseQuoting(s string) (Quoting, error) {
	switch s {
	case "strict", "":
		return QuotingStrict, nil
	case "lenient":
		return QuotingLenient, nil
	default:
		return 0, fmt.Errorf("unknown quoting mode %q (want strict or lenient)", s)
	}
}

// recordLineCount is the exact number of body lines a record must have,
// one per required field.
const recordLineCount = 4

// CheckRecord validates one parsed section against the record schema.
// want is the 0-based sequence number the section is expected to carry.
// Checks are ordered but non-fatal so one record can surface several
// diagnostics, with one exception: a wrong body line count rejects the
// record outright, since per-line checks would only cascade noise.
func CheckRecord(file string, sec record.Section, want int, quoting Quoting) RecordResult {
	res := RecordResult{
		Section: sec,
		Fields:  make(map[string]string, recordLineCount),
	}
	addErr := func(line int, format string, args ...any) {
		res.Diags = append(res.Diags, Diagnostic{
			Severity: SeverityError,
			File:     file,
			Section:  sec.Name,
			Line:     line,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	idx, named := record.LinkIndex(sec.Name)
	if !named {
		addErr(sec.Line, "invalid section name %q, want link_<N>", sec.Name)
	} else if idx != want {
		// Renumbered records are tolerated; the gap is worth flagging
		// but must not reject an otherwise valid record.
		res.Diags = append(res.Diags, Diagnostic{
			Severity: SeverityWarning,
			File:     file,
			Section:  sec.Name,
			Line:     sec.Line,
			Message:  fmt.Sprintf("section out of sequence: got link_%d, expected link_%d", idx, want),
		})
	}

	if len(sec.Lines) != recordLineCount {
		addErr(sec.Line, "wrong line count: got %d, want %d", len(sec.Lines), recordLineCount)
		return res
	}

	counts := make(map[string]int, recordLineCount)
	for i, line := range sec.Lines {
		lineNo := sec.Line + 1 + i

		if strings.TrimSpace(line) == "" {
			addErr(lineNo, "empty line")
			continue
		}

		field, value, quoted, ok := record.Assignment(line)
		if !ok {
			addErr(lineNo, "invalid line %q", line)
			continue
		}
		if !recognized(field) {
			addErr(lineNo, "unrecognized field %q", field)
			continue
		}
		if quoting == QuotingStrict && !quoted {
			addErr(lineNo, "field %s: value must be double-quoted", field)
			continue
		}

		counts[field]++
		res.Fields[field] = value
	}

	for _, field := range record.RequiredFields {
		if n := counts[field]; n != 1 {
			addErr(sec.Line, "field %s appears %d times, want exactly 1", field, n)
		}
	}

	return res
}

func recognized(field string) bool {
	for _, f := range record.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}
