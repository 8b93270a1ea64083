package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	doc, err := Split(input)
	require.NoError(t, err)
	require.False(t, doc.HasFrontMatter)
	require.Empty(t, doc.FrontMatter)
	require.Equal(t, input, doc.Body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	doc, err := Split([]byte("---\ntitle: Hello\n---\n# Hi\n"))
	require.NoError(t, err)
	require.True(t, doc.HasFrontMatter)
	require.Equal(t, []byte("title: Hello\n"), doc.FrontMatter)
	require.Equal(t, []byte("# Hi\n"), doc.Body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	doc, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, doc.HasFrontMatter)
	require.Equal(t, "\r\n", doc.Newline)
	require.Equal(t, []byte("key: value\r\n"), doc.FrontMatter)
	require.Equal(t, []byte("# Title\r\n"), doc.Body)
}

func TestSplit_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		fm     string
		body   string
		hasFM  bool
	}{
		{"empty block", "---\n---\nbody\n", "", "body\n", true},
		{"closing at EOF", "---\ntitle: x\n---", "title: x\n", "", true},
		{"only delimiters", "---\n---", "", "", true},
		{"byte order mark", "\xEF\xBB\xBF---\ntitle: x\n---\nbody", "title: x\n", "body", true},
		{"dashes later in body", "# Title\n---\nmore\n", "", "# Title\n---\nmore\n", false},
		{"empty input", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Split([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.hasFM, doc.HasFrontMatter)
			assert.Equal(t, tt.fm, string(doc.FrontMatter))
			assert.Equal(t, tt.body, string(doc.Body))
		})
	}
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: Hello\ndate: 2024-03-01\ndraft: true\ntags: [go, web]\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", fields["title"])
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), fields["date"])
	assert.Equal(t, true, fields["draft"])
	assert.Equal(t, []any{"go", "web"}, fields["tags"])
}

func TestParseYAML_Empty(t *testing.T) {
	fields, err := ParseYAML([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.NotNil(t, fields)
}

func TestParseYAML_Malformed(t *testing.T) {
	_, err := ParseYAML([]byte("title: [unclosed\n"))
	require.Error(t, err)

	_, err = ParseYAML([]byte("- just\n- a list\n"))
	require.Error(t, err)
}
