package record

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ParseError reports a line that could not be attributed to any section.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: content outside any section: %q", e.Line, e.Text)
}

// Parse scans raw file text into ordered sections in a single pass.
// A header is a line of the form [name]; a section's body is every line
// after its header up to the next header or end of input, preserved
// verbatim so that downstream validation sees blanks and malformed lines.
// Before the first header only blank lines and # comments are allowed.
func Parse(text string) ([]Section, error) {
	var (
		sections []Section
		current  *Section
		lineNo   int
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if name, ok := headerName(line); ok {
			sections = append(sections, Section{Name: name, Line: lineNo})
			current = &sections[len(sections)-1]
			continue
		}

		if current == nil {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			return nil, &ParseError{Line: lineNo, Text: line}
		}

		current.Lines = append(current.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	return sections, nil
}

// ParseFile reads and parses one record file.
func ParseFile(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(string(data))
}

// headerName recognizes a [name] header line. Brackets inside the name are
// rejected so a stray "[[x]]" does not silently open a section.
func headerName(line string) (string, bool) {
	if len(line) < 2 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", false
	}
	name := line[1 : len(line)-1]
	if strings.ContainsAny(name, "[]") {
		return "", false
	}
	return name, true
}
