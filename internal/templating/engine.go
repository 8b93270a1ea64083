// Package templating substitutes flat {{ name }} placeholders into HTML templates.
//
// There are no loops or conditionals. Callers pre-render repeated regions into
// HTML strings and pass them under keys in the engine's safe set.
package templating

import (
	"html"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Keys whose values are trusted, pre-rendered HTML.
const (
	KeyContent     = "content"
	KeyPosts       = "posts"
	KeyProjects    = "projects"
	KeyLatestPosts = "latestPosts"
	KeyDraftBanner = "draftBanner"
	KeyTagList     = "tagList"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Context maps placeholder names to values for one page.
type Context map[string]string

// Merge returns a new context with the entries of other layered over c.
func (c Context) Merge(other Context) Context {
	out := make(Context, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Engine applies templates. Values for keys outside the safe set are HTML-escaped.
type Engine struct {
	safe sets.Set[string]
}

// DefaultSafeKeys returns the keys passed through unescaped by NewEngine.
func DefaultSafeKeys() []string {
	return []string{KeyContent, KeyPosts, KeyProjects, KeyLatestPosts, KeyDraftBanner, KeyTagList}
}

// NewEngine creates an engine that trusts the default keys plus extra.
func NewEngine(extra ...string) *Engine {
	safe := sets.New(DefaultSafeKeys()...)
	for _, k := range extra {
		safe.Add(k)
	}
	return &Engine{safe: safe}
}

// NewEngineWithSafeSet creates an engine trusting exactly keys.
func NewEngineWithSafeSet(keys ...string) *Engine {
	return &Engine{safe: sets.New(keys...)}
}

// IsSafe reports whether key is substituted verbatim.
func (e *Engine) IsSafe(key string) bool {
	return e.safe.Has(key)
}

// SafeKeys returns the safe set, sorted.
func (e *Engine) SafeKeys() []string {
	return sets.Sorted(e.safe)
}

// Apply substitutes every placeholder in tmpl in a single pass. Unknown keys
// render as the empty string. Substituted values are never rescanned.
func (e *Engine) Apply(tmpl string, ctx Context) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := ctx[key]
		if !ok {
			return ""
		}
		if e.safe.Has(key) {
			return value
		}
		return html.EscapeString(value)
	})
}

// Placeholders lists the distinct placeholder names in tmpl in order of first use.
func Placeholders(tmpl string) []string {
	seen := sets.New[string]()
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if seen.Add(m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// Placeholder renders the placeholder syntax for key.
func Placeholder(key string) string {
	return "{{ " + key + " }}"
}

// ReplaceBlock replaces every `<!-- name:start -->…<!-- name:end -->` region in
// tmpl with replacement. Unterminated blocks are left as they are.
func ReplaceBlock(tmpl, name, replacement string) string {
	start := "<!-- " + name + ":start -->"
	end := "<!-- " + name + ":end -->"

	var b strings.Builder
	rest := tmpl
	for {
		i := strings.Index(rest, start)
		if i < 0 {
			break
		}
		j := strings.Index(rest[i+len(start):], end)
		if j < 0 {
			break
		}
		b.WriteString(rest[:i])
		b.WriteString(replacement)
		rest = rest[i+len(start)+j+len(end):]
	}
	b.WriteString(rest)
	return b.String()
}
