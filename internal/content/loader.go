package content

import (
	"cmp"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Field names accepted in LoadOptions.Required.
const (
	RequireTitle = "title"
	RequireSlug  = "slug"
	RequireDate  = "date"
)

// LoadOptions configures one collection load.
type LoadOptions struct {
	// Name labels the collection in logs and reports.
	Name string
	// Required lists front matter fields a record must set explicitly.
	// Records missing one are skipped with a warning.
	Required []string
}

// Collection is the sorted result of loading one content directory.
type Collection struct {
	Name    string
	Dir     string
	Records []*Record
	// Warnings collects the non-fatal conditions logged during the load.
	Warnings []string
}

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.Records) }

// Loader aggregates a directory of content files into a Collection.
type Loader struct {
	parser *Parser
	logger *slog.Logger
}

// NewLoader creates a loader using parser for each file.
func NewLoader(parser *Parser, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = NewParser(nil, logger)
	}
	return &Loader{parser: parser, logger: logger}
}

// Load parses every Markdown file directly inside dir.
//
// A missing directory yields an empty collection. Files are read in filename
// order, so for duplicate slugs the last file by name is the later one.
// Duplicates are kept in the result and reported once per extra occurrence.
func (l *Loader) Load(dir string, opts LoadOptions) (*Collection, error) {
	coll := &Collection{Name: opts.Name, Dir: dir}
	log := l.logger.With(logfields.Collection(opts.Name))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Content directory absent, using empty collection", logfields.Path(dir))
			return coll, nil
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot list content directory").
			WithContext("path", dir).
			Build()
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsMarkdownFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	seen := make(map[string]string, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		rec, err := l.parser.ParseFile(path)
		if err != nil {
			return nil, err
		}

		if missing := missingRequired(rec, opts.Required); missing != "" {
			coll.warn(log, "Skipping record missing required field", logfields.Path(path), slog.String("field", missing))
			continue
		}
		if rec.Slug == "" {
			coll.warn(log, "Skipping record with empty slug", logfields.Path(path))
			continue
		}
		if !IsSafeSlug(rec.Slug) {
			coll.warn(log, "Skipping record with unsafe slug", logfields.Path(path), logfields.Slug(rec.Slug))
			continue
		}
		if first, dup := seen[rec.Slug]; dup {
			coll.warn(log, "Duplicate slug, later file wins",
				logfields.Slug(rec.Slug), logfields.Path(path), slog.String("previous", first))
		}
		seen[rec.Slug] = path
		coll.Records = append(coll.Records, rec)
	}

	SortRecords(coll.Records)
	log.Debug("Loaded collection", logfields.Path(dir), logfields.Count(len(coll.Records)))
	return coll, nil
}

func (c *Collection) warn(log *slog.Logger, msg string, attrs ...any) {
	log.Warn(msg, attrs...)
	var b strings.Builder
	b.WriteString(msg)
	for _, a := range attrs {
		if attr, ok := a.(slog.Attr); ok {
			b.WriteString(" " + attr.String())
		}
	}
	c.Warnings = append(c.Warnings, b.String())
}

func missingRequired(rec *Record, required []string) string {
	for _, field := range required {
		switch field {
		case RequireTitle:
			if !rec.HasExplicitTitle {
				return field
			}
		case RequireSlug:
			if !rec.HasExplicitSlug {
				return field
			}
		case RequireDate:
			if !rec.HasDate() {
				return field
			}
		default:
			s, ok := scalarString(rec.Extra[field])
			if !ok || strings.TrimSpace(s) == "" {
				return field
			}
		}
	}
	return ""
}

// IsMarkdownFile reports whether name has a Markdown extension.
func IsMarkdownFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// SortRecords orders records newest first. Dateless records follow all dated
// ones; ties break on title using English collation, then on filename.
func SortRecords(records []*Record) {
	collator := collate.New(language.English)
	slices.SortStableFunc(records, func(a, b *Record) int {
		switch {
		case a.HasDate() && b.HasDate():
			if c := b.Date.Compare(a.Date); c != 0 {
				return c
			}
		case a.HasDate():
			return -1
		case b.HasDate():
			return 1
		}
		if c := collator.CompareString(a.Title, b.Title); c != 0 {
			return c
		}
		return cmp.Compare(filepath.Base(a.SourcePath), filepath.Base(b.SourcePath))
	})
}
