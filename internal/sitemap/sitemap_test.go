package sitemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"index.html", "about/index.html", "projects/tool/index.html", "blog/index.html", "404.html", "static/app.js"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o600))
	}

	routes, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/about/", "/blog/", "/projects/tool/"}, routes)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	out, err := Render([]string{"/", "/hello/"}, Options{
		Origin:  "https://example.com/",
		LastMod: map[string]string{"/hello/": "2024-03-01"},
	})
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://example.com/</loc>
  </url>
  <url>
    <loc>https://example.com/hello/</loc>
    <lastmod>2024-03-01</lastmod>
  </url>
</urlset>
`
	assert.Equal(t, want, string(out))
}

func TestRender_NoOriginWithBasePath(t *testing.T) {
	out, err := Render([]string{"/about/"}, Options{BasePath: "/dist"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<loc>/dist/about/</loc>")
}

func TestRender_EscapesLocations(t *testing.T) {
	out, err := Render([]string{"/a&b/"}, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<loc>/a&amp;b/</loc>")
}

func TestRobots(t *testing.T) {
	assert.Equal(t, "User-agent: *\nAllow: /\n", string(Robots("", "")))
	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap.xml\n", string(Robots("https://example.com", "")))
}
