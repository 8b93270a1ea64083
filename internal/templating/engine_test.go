package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply_Substitution(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		name string
		tmpl string
		ctx  Context
		want string
	}{
		{"simple", "<h1>{{ title }}</h1>", Context{"title": "Hello"}, "<h1>Hello</h1>"},
		{"no spaces", "{{title}}", Context{"title": "Hello"}, "Hello"},
		{"extra whitespace", "{{   title\t}}", Context{"title": "Hello"}, "Hello"},
		{"unknown key", "[{{ missing }}]", Context{}, "[]"},
		{"repeated", "{{ a }}-{{ a }}", Context{"a": "x"}, "x-x"},
		{"not an identifier", "{{ not-a-key }}", Context{"not": "x"}, "{{ not-a-key }}"},
		{"escaped unsafe", "{{ title }}", Context{"title": `<b>"Tom" & 'Jerry'</b>`}, "&lt;b&gt;&#34;Tom&#34; &amp; &#39;Jerry&#39;&lt;/b&gt;"},
		{"safe verbatim", "{{ content }}", Context{"content": "<p>hi</p>"}, "<p>hi</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Apply(tt.tmpl, tt.ctx))
		})
	}
}

func TestApply_NoRecursiveSubstitution(t *testing.T) {
	e := NewEngine()
	out := e.Apply("{{ content }} {{ title }}", Context{
		"content": "{{ title }}",
		"title":   "{{ content }}",
	})
	assert.Equal(t, "{{ title }} {{ content }}", out)
}

func TestEngine_SafeSet(t *testing.T) {
	e := NewEngine("heroHtml")
	assert.True(t, e.IsSafe("content"))
	assert.True(t, e.IsSafe("heroHtml"))
	assert.False(t, e.IsSafe("title"))
	assert.Equal(t, "<i>x</i>", e.Apply("{{ heroHtml }}", Context{"heroHtml": "<i>x</i>"}))

	strict := NewEngineWithSafeSet()
	assert.Equal(t, "&lt;p&gt;", strict.Apply("{{ content }}", Context{"content": "<p>"}))
	assert.Contains(t, NewEngine().SafeKeys(), "latestPosts")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"title", "content"}, Placeholders("{{ title }}{{content}}{{ title }}"))
	assert.Equal(t, "{{ posts }}", Placeholder("posts"))
}

func TestReplaceBlock(t *testing.T) {
	tmpl := "<ul><!-- latest-posts:start --><li>sample</li><!-- latest-posts:end --></ul>"
	assert.Equal(t, "<ul>{{ latestPosts }}</ul>", ReplaceBlock(tmpl, "latest-posts", "{{ latestPosts }}"))

	unterminated := "<!-- latest-posts:start --> open"
	assert.Equal(t, unterminated, ReplaceBlock(unterminated, "latest-posts", "X"))

	twice := "a<!-- b:start -->1<!-- b:end -->c<!-- b:start -->2<!-- b:end -->d"
	assert.Equal(t, "aXcXd", ReplaceBlock(twice, "b", "X"))
}

func TestContext_Merge(t *testing.T) {
	base := Context{"a": "1", "b": "2"}
	merged := base.Merge(Context{"b": "3"})
	assert.Equal(t, "3", merged["b"])
	assert.Equal(t, "2", base["b"])
}
