package validate

import (
	"fmt"
	"os"

	"linklint/internal/record"

	"go.uber.org/zap"
)

// Aggregation selects when a failing file is reported.
type Aggregation int

const (
	// FailFast stops at the first record carrying errors.
	FailFast Aggregation = iota
	// Collect gathers every record's diagnostics before failing the file.
	Collect
)

// ParseAggregation maps a config string to an Aggregation mode.
func ParseAggregation(s string) (Aggregation, error) {
	switch s {
	case "fail-fast", "":
		return FailFast, nil
	case "collect":
		return Collect, nil
	default:
		return 0, fmt.Errorf("unknown aggregation mode %q (want fail-fast or collect)", s)
	}
}

// FileValidator validates one record file end to end.
type FileValidator struct {
	log      *zap.Logger
	quoting  Quoting
	agg      Aggregation
	maxLinks int
}

// NewFileValidator builds a validator. maxLinks is the per-file record cap.
func NewFileValidator(log *zap.Logger, quoting Quoting, agg Aggregation, maxLinks int) *FileValidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileValidator{log: log, quoting: quoting, agg: agg, maxLinks: maxLinks}
}

// CheckFile reads, parses, and validates one record file. Record contents
// are never mutated; the only outputs are the result and log lines.
func (v *FileValidator) CheckFile(path string) FileResult {
	res := FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Diags = append(res.Diags, Diagnostic{
			Severity: SeverityError,
			File:     path,
			Message:  fmt.Sprintf("cannot read file: %v", err),
		})
		return res
	}

	sections, err := record.Parse(string(data))
	if err != nil {
		res.Diags = append(res.Diags, Diagnostic{
			Severity: SeverityError,
			File:     path,
			Message:  err.Error(),
		})
		return res
	}

	for i, sec := range sections {
		rec := CheckRecord(path, sec, i, v.quoting)
		res.Diags = append(res.Diags, rec.Diags...)
		if rec.Valid() {
			res.Links++
		} else if v.agg == FailFast {
			v.log.Debug("record rejected, stopping file",
				zap.String("file", path),
				zap.String("section", sec.Name))
			return res
		}
	}

	if res.Failed() {
		return res
	}

	if len(sections) > v.maxLinks {
		res.Diags = append(res.Diags, Diagnostic{
			Severity: SeverityError,
			File:     path,
			Message:  fmt.Sprintf("too many links (%d > %d) - split into a new file", len(sections), v.maxLinks),
		})
		return res
	}

	v.log.Debug("file validated",
		zap.String("file", path),
		zap.Int("links", res.Links))
	return res
}
