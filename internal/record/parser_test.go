package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Sections(t *testing.T) {
	text := `# top comment

[link_0]
url="https://a.test"
developer="D"
dev_link="https://a.test/d"
preview_image="https://a.test/i.png"
[link_1]
url="https://b.test"

garbage line
`
	sections, err := Parse(text)
	require.NoError(t, err)

	want := []Section{
		{
			Name: "link_0",
			Line: 3,
			Lines: []string{
				`url="https://a.test"`,
				`developer="D"`,
				`dev_link="https://a.test/d"`,
				`preview_image="https://a.test/i.png"`,
			},
		},
		{
			Name: "link_1",
			Line: 8,
			// Body lines survive verbatim, blanks and garbage included.
			Lines: []string{`url="https://b.test"`, "", "garbage line"},
		},
	}
	if diff := cmp.Diff(want, sections); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_PreambleGarbage(t *testing.T) {
	_, err := Parse("not a comment\n[link_0]\n")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
}

func TestParse_Empty(t *testing.T) {
	sections, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, sections)

	sections, err = Parse("# only comments\n\n")
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestHeaderName(t *testing.T) {
	cases := []struct {
		line string
		name string
		ok   bool
	}{
		{"[link_0]", "link_0", true},
		{"[index]", "index", true},
		{"[]", "", true},
		{"[link_0] ", "", false},
		{"link_0", "", false},
		{"[[x]]", "", false},
		{"[a]b[c]", "", false},
	}
	for _, tc := range cases {
		name, ok := headerName(tc.line)
		assert.Equal(t, tc.ok, ok, "line %q", tc.line)
		if tc.ok {
			assert.Equal(t, tc.name, name, "line %q", tc.line)
		}
	}
}

func TestLinkIndex(t *testing.T) {
	n, ok := LinkIndex("link_12")
	require.True(t, ok)
	assert.Equal(t, 12, n)

	for _, name := range []string{"link_", "link_x", "Link_0", "link_-1", "index", "link_0x"} {
		_, ok := LinkIndex(name)
		assert.False(t, ok, "name %q", name)
	}
}

func TestAssignment(t *testing.T) {
	field, value, quoted, ok := Assignment(`url="https://a.test"`)
	require.True(t, ok)
	assert.Equal(t, "url", field)
	assert.Equal(t, "https://a.test", value)
	assert.True(t, quoted)

	field, value, quoted, ok = Assignment("developer=Name")
	require.True(t, ok)
	assert.Equal(t, "developer", field)
	assert.Equal(t, "Name", value)
	assert.False(t, quoted)

	// A lone quote is not a quoted value.
	_, value, quoted, ok = Assignment(`url="`)
	require.True(t, ok)
	assert.Equal(t, `"`, value)
	assert.False(t, quoted)

	for _, line := range []string{"", "no equals", "=value", "[link_0]"} {
		_, _, _, ok := Assignment(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestCountLinks(t *testing.T) {
	sections := []Section{
		{Name: "link_0"},
		{Name: "index"},
		{Name: "link_7"},
		{Name: "not_a_link"},
	}
	assert.Equal(t, 2, CountLinks(sections))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"file_10.cfg", "file_2.cfg", "file_0.cfg", "_index.cfg", "readme.md", "file_x.cfg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("[link_0]\n"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "file_3.cfg"), 0755)) // dirs are skipped

	paths, err := Discover(dir)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	// Numeric order, not lexicographic.
	assert.Equal(t, []string{"file_0.cfg", "file_2.cfg", "file_10.cfg"}, names)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
