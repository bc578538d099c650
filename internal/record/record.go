// Package record defines the on-disk record model: sharded file_<N>.cfg
// files holding [link_N] sections, each carrying four field assignments.
// Extraction here is deliberately loose - schema enforcement lives in
// internal/validate, which consumes the raw sections this package produces.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Required field names, in canonical order.
const (
	FieldURL          = "url"
	FieldDeveloper    = "developer"
	FieldDevLink      = "dev_link"
	FieldPreviewImage = "preview_image"
)

// RequiredFields lists every field a record must carry exactly once.
var RequiredFields = []string{FieldURL, FieldDeveloper, FieldDevLink, FieldPreviewImage}

// Section is one bracketed section: its name, the 1-based line number of its
// header, and every body line verbatim (blank and malformed lines included).
type Section struct {
	Name  string
	Line  int
	Lines []string
}

var (
	linkNameRe   = regexp.MustCompile(`^link_(\d+)$`)
	fileNameRe   = regexp.MustCompile(`^file_(\d+)\.cfg$`)
	assignmentRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)
)

// LinkIndex extracts the sequence number from a link_<N> section name.
func LinkIndex(name string) (int, bool) {
	m := linkNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// CountLinks reports how many sections carry a link_<N> name.
func CountLinks(sections []Section) int {
	n := 0
	for _, s := range sections {
		if _, ok := LinkIndex(s.Name); ok {
			n++
		}
	}
	return n
}

// Assignment splits a body line into field name and value. quoted reports
// whether the value was double-quote wrapped; the returned value has the
// quotes stripped either way.
func Assignment(line string) (field, value string, quoted, ok bool) {
	m := assignmentRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false, false
	}
	field, value = m[1], m[2]
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return field, value[1 : len(value)-1], true, true
	}
	return field, value, false, true
}

// IsRecordFile reports whether name follows the file_<N>.cfg shard convention.
func IsRecordFile(name string) bool {
	return fileNameRe.MatchString(name)
}

// Discover returns every record file in dir, ordered by shard number.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read records dir: %w", err)
	}

	type shard struct {
		n    int
		path string
	}
	var shards []shard
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		shards = append(shards, shard{n: n, path: filepath.Join(dir, e.Name())})
	}

	sort.Slice(shards, func(i, j int) bool { return shards[i].n < shards[j].n })

	paths := make([]string, len(shards))
	for i, s := range shards {
		paths[i] = s.path
	}
	return paths, nil
}
