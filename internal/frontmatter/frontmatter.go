// Package frontmatter splits `---` delimited YAML front matter from a Markdown body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is a source file separated into its raw front matter and body.
type Document struct {
	// FrontMatter is the raw YAML between the delimiters, without them.
	FrontMatter    []byte
	Body           []byte
	HasFrontMatter bool
	// Newline is "\r\n" when the file uses CRLF line endings, "\n" otherwise.
	Newline string
}

// Split separates YAML front matter from the Markdown body.
//
// If the document does not start with a delimiter line, HasFrontMatter is false
// and Body is the full input. A closing delimiter on the final line without a
// trailing newline is accepted.
func Split(content []byte) (Document, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	nl := detectNewline(content)
	doc := Document{Body: content, Newline: nl}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return doc, nil
	}
	rest := content[len(open):]

	// Empty block: "---\n---\n".
	if bytes.HasPrefix(rest, open) {
		doc.FrontMatter = []byte{}
		doc.Body = rest[len(open):]
		doc.HasFrontMatter = true
		return doc, nil
	}
	if bytes.Equal(rest, []byte("---")) {
		doc.FrontMatter = []byte{}
		doc.Body = []byte{}
		doc.HasFrontMatter = true
		return doc, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		doc.FrontMatter = rest[:idx+len(nl)]
		doc.Body = rest[idx+len(closeSeq):]
		doc.HasFrontMatter = true
		return doc, nil
	}

	closeAtEOF := []byte(nl + "---")
	if bytes.HasSuffix(rest, closeAtEOF) {
		doc.FrontMatter = rest[:len(rest)-len("---")]
		doc.Body = []byte{}
		doc.HasFrontMatter = true
		return doc, nil
	}

	return Document{}, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
// An empty block yields an empty map.
func ParseYAML(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
