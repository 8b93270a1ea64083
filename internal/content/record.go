// Package content parses Markdown content files into records and loads them as sorted collections.
package content

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Record is one parsed Markdown content file. Records are not modified after parsing.
type Record struct {
	Slug string
	// HasExplicitSlug is true when the slug came from front matter rather than the filename.
	HasExplicitSlug bool
	Title           string
	// HasExplicitTitle is true when front matter carried a non-empty title.
	HasExplicitTitle bool
	PageTitle        string
	Description      string
	MetaDescription  string
	Summary          string
	Date             CalendarDate
	DateFormatted    string
	Draft            bool
	Tags             []string
	HTML             string

	// Extra holds front matter keys not mapped to a field above.
	Extra map[string]any

	SourcePath  string
	Fingerprint string
}

// HasDate reports whether the record carries a parsed date.
func (r *Record) HasDate() bool {
	return !r.Date.IsZero()
}

// ExtraStrings returns the scalar Extra values rendered as strings, in key order.
// Mappings and sequences are skipped.
func (r *Record) ExtraStrings() map[string]string {
	out := make(map[string]string, len(r.Extra))
	for k, v := range r.Extra {
		if s, ok := scalarString(v); ok {
			out[k] = s
		}
	}
	return out
}

// ExtraKeys returns the Extra keys sorted.
func (r *Record) ExtraKeys() []string {
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case time.Time:
		return formatTimestamp(t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return "", false
	}
}

// formatTimestamp renders a bare date as 2006-01-02 and anything with a time of day as RFC 3339.
func formatTimestamp(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// tagsFrom accepts a YAML sequence of scalars or a comma separated string.
func tagsFrom(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s, ok := scalarString(item); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = t
	case string:
		raw = strings.Split(t, ",")
	}
	tags := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			tags = append(tags, s)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
