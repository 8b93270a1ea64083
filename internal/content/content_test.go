package content

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func newTestParser(opts ...ParserOption) *Parser {
	return NewParser(nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), opts...)
}

func TestParse_HelloScenario(t *testing.T) {
	rec, err := newTestParser().Parse("content/posts/hello.md",
		[]byte("---\ntitle: \"Hello\"\ndate: \"2024-03-01\"\n---\n# Hi\n"))
	require.NoError(t, err)

	assert.Equal(t, "hello", rec.Slug)
	assert.False(t, rec.HasExplicitSlug)
	assert.Equal(t, "Hello", rec.Title)
	assert.Equal(t, CalendarDate{Year: 2024, Month: time.March, Day: 1}, rec.Date)
	assert.Equal(t, "March 1, 2024", rec.DateFormatted)
	assert.Contains(t, rec.HTML, "<h1>Hi</h1>")
	assert.NotEmpty(t, rec.Fingerprint)
}

func TestParse_UnquotedDates(t *testing.T) {
	rec, err := newTestParser().Parse("hello.md",
		[]byte("---\ntitle: Hello\ndate: 2024-03-01\npublished: 2024-03-02\nupdated: 2024-03-02T10:30:00Z\n---\n"))
	require.NoError(t, err)

	assert.Equal(t, CalendarDate{Year: 2024, Month: time.March, Day: 1}, rec.Date)
	assert.Equal(t, "March 1, 2024", rec.DateFormatted)
	extra := rec.ExtraStrings()
	assert.Equal(t, "2024-03-02", extra["published"])
	assert.Equal(t, "2024-03-02T10:30:00Z", extra["updated"])
}

func TestParse_FallbackChains(t *testing.T) {
	p := newTestParser()

	rec, err := p.Parse("a.md", []byte("---\ntitle: Post\ndescription: Short\n---\nBody text\n"))
	require.NoError(t, err)
	assert.Equal(t, "Post", rec.PageTitle)
	assert.Equal(t, "Short", rec.MetaDescription)
	assert.Equal(t, "Short", rec.Summary)

	rec, err = p.Parse("b.md", []byte("---\ntitle: Post\nmetaTitle: SEO Title\ndescription: Short\nmetaDescription: Long meta\nsummary: Teaser\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, "SEO Title", rec.PageTitle)
	assert.Equal(t, "Long meta", rec.MetaDescription)
	assert.Equal(t, "Teaser", rec.Summary)

	rec, err = p.Parse("c.md", []byte("---\ntitle: Post\n---\nThe **body** becomes the summary.\n"))
	require.NoError(t, err)
	assert.Equal(t, "The body becomes the summary.", rec.Summary)
	assert.Empty(t, rec.DateFormatted)
	assert.False(t, rec.HasDate())
}

func TestParse_SlugNormalization(t *testing.T) {
	tests := []struct {
		name     string
		fm       string
		want     string
		explicit bool
	}{
		{"surrounding slashes", "slug: /my-slug/", "my-slug", true},
		{"nested", "slug: notes//go/", "notes/go", true},
		{"only slashes falls back", "slug: ///", "from-file", false},
		{"absent", "title: x", "from-file", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := newTestParser().Parse("posts/from-file.md", []byte("---\n"+tt.fm+"\n---\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Slug)
			assert.Equal(t, tt.explicit, rec.HasExplicitSlug)
			assert.Regexp(t, `^[^/]+(/[^/]+)*$`, rec.Slug)
		})
	}
}

func TestParse_DraftTagsAndExtra(t *testing.T) {
	rec, err := newTestParser().Parse("x.md", []byte(strings.Join([]string{
		"---",
		"title: X",
		"draft: true",
		"tags: [go, \" web \", \"\"]",
		"cover: /img/x.png",
		"weight: 3",
		"nested: {a: 1}",
		"---",
		"",
	}, "\n")))
	require.NoError(t, err)

	assert.True(t, rec.Draft)
	assert.Equal(t, []string{"go", "web"}, rec.Tags)
	assert.Equal(t, "/img/x.png", rec.Extra["cover"])
	extras := rec.ExtraStrings()
	assert.Equal(t, "3", extras["weight"])
	assert.NotContains(t, extras, "nested")
	assert.NotContains(t, rec.Extra, "title")
	assert.Equal(t, []string{"cover", "nested", "weight"}, rec.ExtraKeys())
}

func TestParse_DraftAsString(t *testing.T) {
	rec, err := newTestParser().Parse("x.md", []byte("---\ndraft: \"true\"\ntags: a, b\n---\n"))
	require.NoError(t, err)
	assert.True(t, rec.Draft)
	assert.Equal(t, []string{"a", "b"}, rec.Tags)
}

func TestParse_Errors(t *testing.T) {
	p := newTestParser()

	_, err := p.Parse("bad.md", []byte("---\ntitle: x\n"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryContent))

	_, err = p.Parse("bad.md", []byte("---\ntitle: [x\n---\n"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryContent))

	_, err = p.ParseFile(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestParseDate(t *testing.T) {
	farWest := time.FixedZone("UTC-11", -11*3600)
	farEast := time.FixedZone("UTC+14", 14*3600)

	tests := []struct {
		name  string
		value any
		want  CalendarDate
		ok    bool
	}{
		{"iso", "2024-03-01", CalendarDate{2024, time.March, 1}, true},
		{"iso padded", " 2024-01-05 ", CalendarDate{2024, time.January, 5}, true},
		{"long form", "March 5, 2024", CalendarDate{2024, time.March, 5}, true},
		{"offset keeps own day", "2024-03-01T23:30:00+02:00", CalendarDate{2024, time.March, 1}, true},
		{"time value", time.Date(2023, time.December, 31, 23, 0, 0, 0, farEast), CalendarDate{2023, time.December, 31}, true},
		{"garbage", "not a date", CalendarDate{}, false},
		{"empty", "", CalendarDate{}, false},
		{"nil", nil, CalendarDate{}, false},
		{"list", []any{"2024-01-01"}, CalendarDate{}, false},
	}
	for _, loc := range []*time.Location{time.UTC, farWest, farEast} {
		for _, tt := range tests {
			t.Run(loc.String()+"/"+tt.name, func(t *testing.T) {
				got, ok := ParseDate(tt.value, loc)
				assert.Equal(t, tt.ok, ok)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}

func TestParse_DateInEveryZone(t *testing.T) {
	for _, offset := range []int{-12, -5, 0, 5, 14} {
		loc := time.FixedZone("test", offset*3600)
		rec, err := newTestParser(WithLocation(loc)).Parse("d.md", []byte("---\ndate: 2024-01-01\n---\n"))
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", rec.Date.String())
		assert.Equal(t, "January 1, 2024", rec.DateFormatted)
	}
}

func TestCalendarDate(t *testing.T) {
	a := CalendarDate{2024, time.March, 1}
	b := CalendarDate{2024, time.February, 29}
	assert.Equal(t, 1, a.Compare(b))
	assert.Equal(t, -1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, CalendarDate{}.IsZero())
	assert.Empty(t, CalendarDate{}.String())
	assert.Empty(t, CalendarDate{}.Long())
	assert.Equal(t, "February 29, 2024", b.Long())
}

func TestNormalizeSlug(t *testing.T) {
	assert.Equal(t, "my-slug", NormalizeSlug("/my-slug/"))
	assert.Equal(t, "a/b", NormalizeSlug(" //a// b/ "))
	assert.Empty(t, NormalizeSlug("/"))
	assert.Equal(t, "hello", SlugFromFilename("content/posts/hello.md"))
	assert.Empty(t, SlugFromFilename("content/posts/.md"))
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
}

func newTestLoader(buf *bytes.Buffer) *Loader {
	logger := slog.New(slog.NewTextHandler(buf, nil))
	return NewLoader(NewParser(nil, logger), logger)
}

func slugs(records []*Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Slug
	}
	return out
}

func TestLoad_MissingDirectoryIsEmpty(t *testing.T) {
	coll, err := newTestLoader(&bytes.Buffer{}).Load(filepath.Join(t.TempDir(), "nope"), LoadOptions{Name: "posts"})
	require.NoError(t, err)
	assert.Equal(t, 0, coll.Len())
	assert.Empty(t, coll.Warnings)
}

func TestLoad_SortOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"old.md":      "---\ntitle: Old\ndate: 2023-01-01\n---\n",
		"new.md":      "---\ntitle: New\ndate: 2024-06-01\n---\n",
		"same-b.md":   "---\ntitle: beta\ndate: 2024-01-01\n---\n",
		"same-a.md":   "---\ntitle: Alpha\ndate: 2024-01-01\n---\n",
		"undated.md":  "---\ntitle: Zulu\n---\n",
		"undated2.md": "---\ntitle: echo\n---\n",
		"notes.txt":   "ignored",
		"UPPER.MD":    "---\ntitle: Upper\ndate: 2022-05-05\n---\n",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	coll, err := newTestLoader(&bytes.Buffer{}).Load(dir, LoadOptions{Name: "posts"})
	require.NoError(t, err)

	assert.Equal(t, []string{"new", "same-a", "same-b", "old", "UPPER", "undated2", "undated"}, slugs(coll.Records))

	seenUndated := false
	for i, r := range coll.Records {
		if !r.HasDate() {
			seenUndated = true
			continue
		}
		assert.False(t, seenUndated, "dated record after dateless one")
		if i > 0 && coll.Records[i-1].HasDate() {
			assert.GreaterOrEqual(t, coll.Records[i-1].Date.Compare(r.Date), 0)
		}
	}
}

func TestLoad_DuplicateSlugs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.md": "---\ntitle: First\nslug: dup\n---\nfirst\n",
		"b.md": "---\ntitle: Second\nslug: dup\n---\nsecond\n",
	})

	var logs bytes.Buffer
	coll, err := newTestLoader(&logs).Load(dir, LoadOptions{Name: "posts"})
	require.NoError(t, err)

	assert.Len(t, coll.Records, 2)
	require.Len(t, coll.Warnings, 1)
	assert.Equal(t, 1, strings.Count(logs.String(), "Duplicate slug"))

	winner := BySlug(coll.Records)["dup"]
	assert.Contains(t, winner.HTML, "second")
	unique := UniqueBySlug(coll.Records)
	require.Len(t, unique, 1)
	assert.Equal(t, "Second", unique[0].Title)
}

func TestLoad_RequiredFields(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"ok.md":      "---\ntitle: Tool\nslug: tool\n---\n",
		"noslug.md":  "---\ntitle: No slug\n---\n",
		"notitle.md": "---\nslug: untitled\n---\n",
	})

	var logs bytes.Buffer
	coll, err := newTestLoader(&logs).Load(dir, LoadOptions{
		Name:     "projects",
		Required: []string{RequireTitle, RequireSlug},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"tool"}, slugs(coll.Records))
	assert.Len(t, coll.Warnings, 2)
	assert.Contains(t, logs.String(), "missing required field")
	assert.Contains(t, logs.String(), "collection=projects")
}

func TestLoad_EmptySlugDiscarded(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		".md":  "---\ntitle: Nameless\n---\n",
		"x.md": "---\ntitle: X\n---\n",
	})
	coll, err := newTestLoader(&bytes.Buffer{}).Load(dir, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, slugs(coll.Records))
	assert.Len(t, coll.Warnings, 1)
}

func TestLoad_MalformedFileAborts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.md": "---\ntitle: x\n"})
	_, err := newTestLoader(&bytes.Buffer{}).Load(dir, LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryContent))
}

func TestQueries(t *testing.T) {
	recs := []*Record{
		{Slug: "a", SourcePath: "c.md"},
		{Slug: "b", Draft: true, SourcePath: "a.md"},
		{Slug: "c", SourcePath: "b.md"},
	}
	assert.Equal(t, []string{"a", "b"}, slugs(LatestN(recs, 2)))
	assert.Len(t, LatestN(recs, 10), 3)
	assert.Nil(t, LatestN(recs, 0))

	first, ok := First(recs)
	require.True(t, ok)
	assert.Equal(t, "a", first.Slug)
	_, ok = First(nil)
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "c"}, slugs(Published(recs, false)))
	assert.Len(t, Published(recs, true), 3)
	assert.Equal(t, []string{"b", "c", "a"}, slugs(ByFilename(recs)))
}

func TestIsSafeSlug(t *testing.T) {
	assert.True(t, IsSafeSlug("hello"))
	assert.True(t, IsSafeSlug("notes/go"))
	assert.False(t, IsSafeSlug(""))
	assert.False(t, IsSafeSlug("../etc"))
	assert.False(t, IsSafeSlug("a/./b"))
	assert.False(t, IsSafeSlug(`a\\b`))
}

func TestLoad_UnsafeSlugDiscarded(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"x.md": "---\nslug: ../../escape\n---\n"})
	coll, err := newTestLoader(&bytes.Buffer{}).Load(dir, LoadOptions{})
	require.NoError(t, err)
	assert.Empty(t, coll.Records)
	assert.Len(t, coll.Warnings, 1)
}
