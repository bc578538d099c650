// Package index derives the _index.cfg summary from the full record-file set
// and orchestrates structural validation across a run.
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"linklint/internal/record"
	"linklint/internal/validate"

	"go.uber.org/zap"
)

var (
	// ErrNoRecordFiles is returned when the records dir holds no file_<N>.cfg.
	ErrNoRecordFiles = errors.New("no record files found")
	// ErrValidationFailed is returned when any validated file carries errors.
	ErrValidationFailed = errors.New("validation failed")
	// ErrIndexStale is returned by check mode when the index on disk does not
	// match the summary computed from the record files.
	ErrIndexStale = errors.New("index is out of date")
)

// DoNotEditHeader is prepended to the index when the warn header is enabled.
const DoNotEditHeader = "# DO NOT EDIT THIS FILE MANUALLY"

// Summary is the derived index document: a pure function of the complete
// record-file set.
type Summary struct {
	FileCount    int
	LinkCount    int
	LinksPerFile int
}

// Render serializes the summary in index file format.
func (s Summary) Render(warnHeader bool) string {
	var b strings.Builder
	if warnHeader {
		b.WriteString(DoNotEditHeader + "\n")
	}
	fmt.Fprintf(&b, "[index]\n")
	fmt.Fprintf(&b, "file_count=%q\n", strconv.Itoa(s.FileCount))
	fmt.Fprintf(&b, "link_count=%q\n", strconv.Itoa(s.LinkCount))
	fmt.Fprintf(&b, "links_per_file=%q\n", strconv.Itoa(s.LinksPerFile))
	return b.String()
}

// Builder runs validation over a file set and regenerates the index.
type Builder struct {
	log        *zap.Logger
	validator  *validate.FileValidator
	dir        string
	indexPath  string
	warnHeader bool
	cap        int
}

// NewBuilder wires a builder over dir, writing the summary to indexPath.
func NewBuilder(log *zap.Logger, validator *validate.FileValidator, dir, indexPath string, warnHeader bool, linksPerFile int) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		log:        log,
		validator:  validator,
		dir:        dir,
		indexPath:  indexPath,
		warnHeader: warnHeader,
		cap:        linksPerFile,
	}
}

// Run validates the selected file set and, on success, regenerates the index.
// only restricts which files are validated (nil means all); the summary is
// always computed from the complete set, never from the validated subset.
// In check mode nothing is written: the computed summary is compared against
// the index on disk instead.
func (b *Builder) Run(only []string, check bool) (Summary, error) {
	files, err := record.Discover(b.dir)
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("%w in %s", ErrNoRecordFiles, b.dir)
	}

	targets := files
	if only != nil {
		targets = restrict(files, only)
		b.log.Info("validating changed files only",
			zap.Int("changed", len(targets)),
			zap.Int("total", len(files)))
	}

	for _, path := range targets {
		res := b.validator.CheckFile(path)
		b.logDiags(res.Diags)
		if res.Failed() {
			return Summary{}, fmt.Errorf("%w: %s", ErrValidationFailed, path)
		}
		b.log.Info("file ok", zap.String("file", path), zap.Int("links", res.Links))
	}

	sum, err := b.summarize(files)
	if err != nil {
		return Summary{}, err
	}

	if check {
		return sum, b.checkIndex(sum)
	}
	if err := os.WriteFile(b.indexPath, []byte(sum.Render(b.warnHeader)), 0644); err != nil {
		return Summary{}, fmt.Errorf("failed to write index: %w", err)
	}
	b.log.Info("index written",
		zap.String("path", b.indexPath),
		zap.Int("files", sum.FileCount),
		zap.Int("links", sum.LinkCount))
	return sum, nil
}

// summarize counts link sections across every record file. Files already
// validated in this run are counted again here; parsing is cheap and keeping
// a single code path guarantees the subset/complete-set distinction.
func (b *Builder) summarize(files []string) (Summary, error) {
	sum := Summary{FileCount: len(files), LinksPerFile: b.cap}
	for _, path := range files {
		sections, err := record.ParseFile(path)
		if err != nil {
			return Summary{}, err
		}
		sum.LinkCount += record.CountLinks(sections)
	}
	return sum, nil
}

func (b *Builder) checkIndex(want Summary) error {
	got, err := ReadIndex(b.indexPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexStale, err)
	}
	if got != want {
		return fmt.Errorf("%w: on disk %+v, computed %+v", ErrIndexStale, got, want)
	}
	return nil
}

// ReadIndex parses an existing index file back into a summary.
func ReadIndex(path string) (Summary, error) {
	sections, err := record.ParseFile(path)
	if err != nil {
		return Summary{}, err
	}
	if len(sections) != 1 || sections[0].Name != "index" {
		return Summary{}, fmt.Errorf("%s: expected a single [index] section", path)
	}

	values := make(map[string]int)
	for _, line := range sections[0].Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		field, value, _, ok := record.Assignment(line)
		if !ok {
			return Summary{}, fmt.Errorf("%s: invalid line %q", path, line)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return Summary{}, fmt.Errorf("%s: field %s: %w", path, field, err)
		}
		values[field] = n
	}
	return Summary{
		FileCount:    values["file_count"],
		LinkCount:    values["link_count"],
		LinksPerFile: values["links_per_file"],
	}, nil
}

// restrict intersects the discovered files with an externally supplied
// change set, comparing by base name so repo-relative and dir-relative
// paths both match.
func restrict(files, only []string) []string {
	wanted := make(map[string]bool, len(only))
	for _, p := range only {
		wanted[filepath.Base(p)] = true
	}
	var out []string
	for _, f := range files {
		if wanted[filepath.Base(f)] {
			out = append(out, f)
		}
	}
	return out
}

func (b *Builder) logDiags(diags []validate.Diagnostic) {
	for _, d := range diags {
		fields := []zap.Field{
			zap.String("file", d.File),
			zap.String("section", d.Section),
			zap.Int("line", d.Line),
		}
		if d.Severity == validate.SeverityError {
			b.log.Error(d.Message, fields...)
		} else {
			b.log.Warn(d.Message, fields...)
		}
	}
}
