package validate

import (
	"strings"
	"testing"

	"linklint/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func section(name string, lines ...string) record.Section {
	return record.Section{Name: name, Line: 1, Lines: lines}
}

func validSection(n string) record.Section {
	return section(n,
		`url="https://a.test"`,
		`developer="D"`,
		`dev_link="https://a.test/d"`,
		`preview_image="https://a.test/i.png"`,
	)
}

func errorMessages(diags []Diagnostic) []string {
	var msgs []string
	for _, d := range diags {
		if d.Severity == SeverityError {
			msgs = append(msgs, d.Message)
		}
	}
	return msgs
}

func TestCheckRecord_Valid(t *testing.T) {
	res := CheckRecord("file_0.cfg", validSection("link_0"), 0, QuotingStrict)
	require.Empty(t, res.Diags)
	assert.True(t, res.Valid())
	assert.Equal(t, map[string]string{
		"url":           "https://a.test",
		"developer":     "D",
		"dev_link":      "https://a.test/d",
		"preview_image": "https://a.test/i.png",
	}, res.Fields)
}

func TestCheckRecord_InvalidSectionName(t *testing.T) {
	for _, name := range []string{"link", "link_a", "Link_0", "lnk_0"} {
		res := CheckRecord("file_0.cfg", validSection(name), 0, QuotingStrict)
		assert.False(t, res.Valid(), "name %q", name)
		require.NotEmpty(t, res.Diags)
		assert.Contains(t, res.Diags[0].Message, "invalid section name")
	}
}

func TestCheckRecord_SequenceMismatchIsWarning(t *testing.T) {
	res := CheckRecord("file_0.cfg", validSection("link_5"), 0, QuotingStrict)
	// Renumbered records stay valid; the gap only warns.
	assert.True(t, res.Valid())
	require.Len(t, res.Diags, 1)
	assert.Equal(t, SeverityWarning, res.Diags[0].Severity)
	assert.Contains(t, res.Diags[0].Message, "out of sequence")
}

func TestCheckRecord_WrongLineCount(t *testing.T) {
	sec := section("link_0", `url="https://a.test"`, `developer="D"`)
	res := CheckRecord("file_0.cfg", sec, 0, QuotingStrict)
	assert.False(t, res.Valid())
	require.Len(t, res.Diags, 1)
	assert.Contains(t, res.Diags[0].Message, "wrong line count")

	// Five lines is as wrong as two.
	sec = validSection("link_0")
	sec.Lines = append(sec.Lines, `url="https://b.test"`)
	res = CheckRecord("file_0.cfg", sec, 0, QuotingStrict)
	assert.False(t, res.Valid())
}

func TestCheckRecord_DuplicateAndMissing(t *testing.T) {
	// preview_image twice and developer absent: two distinct errors.
	sec := section("link_0",
		`url="https://a.test"`,
		`preview_image="https://a.test/i.png"`,
		`dev_link="https://a.test/d"`,
		`preview_image="https://a.test/j.png"`,
	)
	res := CheckRecord("file_0.cfg", sec, 0, QuotingStrict)
	assert.False(t, res.Valid())

	msgs := errorMessages(res.Diags)
	require.Len(t, msgs, 2)
	assert.Contains(t, strings.Join(msgs, "\n"), "developer appears 0 times")
	assert.Contains(t, strings.Join(msgs, "\n"), "preview_image appears 2 times")
}

func TestCheckRecord_MissingFieldAnyPosition(t *testing.T) {
	for _, missing := range record.RequiredFields {
		filler := record.FieldDeveloper
		if missing == record.FieldDeveloper {
			filler = record.FieldURL
		}
		sec := record.Section{Name: "link_0", Line: 1}
		for _, f := range record.RequiredFields {
			if f == missing {
				// Keep the line count at four so the cardinality check runs.
				sec.Lines = append(sec.Lines, filler+`="value"`)
				continue
			}
			sec.Lines = append(sec.Lines, f+`="value"`)
		}
		res := CheckRecord("file_0.cfg", sec, 0, QuotingStrict)
		assert.False(t, res.Valid(), "missing %s", missing)
		assert.Contains(t, strings.Join(errorMessages(res.Diags), "\n"),
			missing+" appears 0 times")
	}
}

func TestCheckRecord_EmptyLine(t *testing.T) {
	sec := section("link_0",
		`url="https://a.test"`,
		``,
		`dev_link="https://a.test/d"`,
		`preview_image="https://a.test/i.png"`,
	)
	res := CheckRecord("file_0.cfg", sec, 0, QuotingStrict)
	assert.False(t, res.Valid())
	assert.Contains(t, strings.Join(errorMessages(res.Diags), "\n"), "empty line")
}

func TestCheckRecord_UnrecognizedField(t *testing.T) {
	sec := section("link_0",
		`url="https://a.test"`,
		`developer="D"`,
		`homepage="https://a.test"`,
		`preview_image="https://a.test/i.png"`,
	)
	res := CheckRecord("file_0.cfg", sec, 0, QuotingStrict)
	msgs := strings.Join(errorMessages(res.Diags), "\n")
	assert.Contains(t, msgs, `unrecognized field "homepage"`)
	// dev_link is then missing too.
	assert.Contains(t, msgs, "dev_link appears 0 times")
}

func TestCheckRecord_QuotingModes(t *testing.T) {
	sec := section("link_0",
		`url=https://a.test`,
		`developer="D"`,
		`dev_link="https://a.test/d"`,
		`preview_image="https://a.test/i.png"`,
	)

	strict := CheckRecord("file_0.cfg", sec, 0, QuotingStrict)
	assert.False(t, strict.Valid())
	assert.Contains(t, strings.Join(errorMessages(strict.Diags), "\n"), "must be double-quoted")

	lenient := CheckRecord("file_0.cfg", sec, 0, QuotingLenient)
	assert.True(t, lenient.Valid())
	assert.Equal(t, "https://a.test", lenient.Fields["url"])
}

func TestParseQuoting(t *testing.T) {
	q, err := ParseQuoting("strict")
	require.NoError(t, err)
	assert.Equal(t, QuotingStrict, q)

	q, err = ParseQuoting("lenient")
	require.NoError(t, err)
	assert.Equal(t, QuotingLenient, q)

	_, err = ParseQuoting("bogus")
	require.Error(t, err)
}

func TestParseAggregation(t *testing.T) {
	a, err := ParseAggregation("fail-fast")
	require.NoError(t, err)
	assert.Equal(t, FailFast, a)

	a, err = ParseAggregation("collect")
	require.NoError(t, err)
	assert.Equal(t, Collect, a)

	_, err = ParseAggregation("bogus")
	require.Error(t, err)
}
