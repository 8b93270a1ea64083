// Package sitemap renders sitemap.xml and robots.txt for a built output tree.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Namespace is the sitemap protocol XML namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Options shapes the rendered URLs.
type Options struct {
	// Origin is the site origin, e.g. https://example.com. Empty yields
	// root-relative locations.
	Origin string
	// BasePath is inserted between origin and route.
	BasePath string
	// LastMod maps a route to its YYYY-MM-DD modification date.
	LastMod map[string]string
}

// Discover returns the route of every index.html under root, sorted.
// "index.html" maps to "/", "blog/index.html" to "/blog/".
func Discover(root string) ([]string, error) {
	var routes []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "index.html" {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil {
			return err
		}
		routes = append(routes, routeFor(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot scan output for pages").
			WithContext("path", root).
			Build()
	}
	sort.Strings(routes)
	return routes, nil
}

func routeFor(dir string) string {
	if dir == "." || dir == "" {
		return "/"
	}
	return "/" + strings.Trim(dir, "/") + "/"
}

// URL joins origin, base path and route.
func URL(origin, basePath, route string) string {
	return strings.TrimRight(origin, "/") + strings.TrimRight(basePath, "/") + route
}

// Render produces the sitemap document for routes.
func Render(routes []string, opts Options) ([]byte, error) {
	set := urlSet{XMLNS: Namespace, URLs: make([]urlEntry, 0, len(routes))}
	for _, r := range routes {
		set.URLs = append(set.URLs, urlEntry{
			Loc:     URL(opts.Origin, opts.BasePath, r),
			LastMod: opts.LastMod[r],
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, errors.WrapError(err, errors.CategoryBuild, "cannot encode sitemap").Build()
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Robots renders an allow-all robots.txt. A Sitemap line is added when
// origin is set.
func Robots(origin, basePath string) []byte {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	if origin != "" {
		b.WriteString("\nSitemap: ")
		b.WriteString(URL(origin, basePath, "/sitemap.xml"))
		b.WriteString("\n")
	}
	return []byte(b.String())
}
