package content

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"github.com/karlseguin/typed"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// Front matter keys mapped onto Record fields.
const (
	keyTitle           = "title"
	keySlug            = "slug"
	keyDate            = "date"
	keyDraft           = "draft"
	keyTags            = "tags"
	keyDescription     = "description"
	keyMetaDescription = "metaDescription"
	keyMetaTitle       = "metaTitle"
	keySummary         = "summary"
)

var knownKeys = map[string]struct{}{
	keyTitle: {}, keySlug: {}, keyDate: {}, keyDraft: {}, keyTags: {},
	keyDescription: {}, keyMetaDescription: {}, keyMetaTitle: {}, keySummary: {},
}

// Parser turns one content file into a Record.
type Parser struct {
	renderer      *markdown.Renderer
	logger        *slog.Logger
	location      *time.Location
	summaryLength int
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLocation sets the zone used when falling back to general date parsing.
func WithLocation(loc *time.Location) ParserOption {
	return func(p *Parser) { p.location = loc }
}

// WithSummaryLength sets the rune budget for body-derived summaries.
func WithSummaryLength(n int) ParserOption {
	return func(p *Parser) { p.summaryLength = n }
}

// NewParser creates a parser. A nil renderer uses default options.
func NewParser(renderer *markdown.Renderer, logger *slog.Logger, opts ...ParserOption) *Parser {
	if renderer == nil {
		renderer = markdown.NewRenderer(markdown.Options{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{
		renderer:      renderer,
		logger:        logger,
		location:      time.Local,
		summaryLength: markdown.DefaultSummaryLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses the file at path.
func (p *Parser) ParseFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot read content file").
			WithContext("path", path).
			Build()
	}
	return p.Parse(path, data)
}

// Parse parses data as the content file at path. The path is used for the
// fallback slug and for error context.
func (p *Parser) Parse(path string, data []byte) (*Record, error) {
	doc, err := frontmatter.Split(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "malformed front matter").
			WithContext("path", path).
			Build()
	}
	fields, err := frontmatter.ParseYAML(doc.FrontMatter)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "malformed front matter").
			WithContext("path", path).
			Build()
	}

	html, err := p.renderer.Render(doc.Body)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "cannot render markdown").
			WithContext("path", path).
			Build()
	}

	rec := &Record{
		HTML:        html,
		SourcePath:  path,
		Fingerprint: fingerprint(doc),
		Extra:       make(map[string]any),
	}
	m := typed.New(fields)

	if s, ok := m.StringIf(keySlug); ok {
		rec.Slug = NormalizeSlug(s)
		rec.HasExplicitSlug = rec.Slug != ""
	}
	if rec.Slug == "" {
		rec.Slug = SlugFromFilename(path)
	}

	rec.Title = stringField(m, keyTitle)
	rec.HasExplicitTitle = strings.TrimSpace(rec.Title) != ""
	rec.PageTitle = firstNonEmpty(stringField(m, keyMetaTitle), rec.Title)
	rec.Description = stringField(m, keyDescription)
	rec.MetaDescription = firstNonEmpty(stringField(m, keyMetaDescription), rec.Description)
	rec.Summary = firstNonEmpty(stringField(m, keySummary), rec.Description)
	if rec.Summary == "" {
		rec.Summary = markdown.Summary(string(doc.Body), p.summaryLength)
	}

	if raw, ok := fields[keyDate]; ok {
		if d, ok := ParseDate(raw, p.location); ok {
			rec.Date = d
			rec.DateFormatted = d.Long()
		} else {
			p.logger.Debug("Ignoring unparseable date", logfields.Path(path), slog.Any("date", raw))
		}
	}

	rec.Draft = boolField(m, keyDraft)
	rec.Tags = tagsFrom(fields[keyTags])

	for k, v := range fields {
		if _, known := knownKeys[k]; !known {
			rec.Extra[k] = v
		}
	}
	return rec, nil
}

func stringField(m typed.Typed, key string) string {
	if s, ok := m.StringIf(key); ok {
		return strings.TrimSpace(s)
	}
	if v, ok := m[key]; ok {
		if s, ok := scalarString(v); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func boolField(m typed.Typed, key string) bool {
	if b, ok := m.BoolIf(key); ok {
		return b
	}
	if s, ok := m.StringIf(key); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		return err == nil && b
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// fingerprint hashes the raw front matter (LF newlines, one trailing newline
// trimmed) together with the body.
func fingerprint(doc frontmatter.Document) string {
	fm := strings.ReplaceAll(string(doc.FrontMatter), "\r\n", "\n")
	fm = strings.TrimSuffix(fm, "\n")
	return mdfp.CalculateFingerprintFromParts(fm, string(doc.Body))
}
