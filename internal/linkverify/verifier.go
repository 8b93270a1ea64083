package linkverify

import (
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// BrokenLink is an internal link with no matching output file.
type BrokenLink struct {
	Page   string `json:"page"`
	URL    string `json:"url"`
	Tag    string `json:"tag"`
	Reason string `json:"reason"`
}

// Verifier checks the HTML files under an output directory.
type Verifier struct {
	root     string
	basePath string
	origin   *url.URL
	logger   *slog.Logger
}

// NewVerifier creates a verifier for the site in root. basePath is stripped
// from root-relative links before lookup; siteURL, when set, makes absolute
// links to that host count as internal.
func NewVerifier(root, basePath, siteURL string, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Verifier{root: root, basePath: strings.TrimRight(basePath, "/"), logger: logger}
	if siteURL != "" {
		if u, err := url.Parse(siteURL); err == nil {
			v.origin = u
		}
	}
	return v
}

// VerifySite checks every .html file under the root in lexical order.
func (v *Verifier) VerifySite() ([]BrokenLink, error) {
	var pages []string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".html") {
			pages = append(pages, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot walk output directory").
			WithContext("path", v.root).
			Build()
	}
	sort.Strings(pages)

	var broken []BrokenLink
	for _, p := range pages {
		found, err := v.VerifyPage(p)
		if err != nil {
			return nil, err
		}
		broken = append(broken, found...)
	}
	return broken, nil
}

// VerifyPage checks one HTML file under the root.
func (v *Verifier) VerifyPage(file string) ([]BrokenLink, error) {
	links, err := ExtractLinks(file)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(v.root, file)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "page outside output directory").Build()
	}
	pageURL := v.basePath + pageRoute(filepath.ToSlash(rel))

	var broken []BrokenLink
	for _, l := range links {
		if !ShouldVerify(l.URL, v.origin) {
			continue
		}
		if reason := v.check(pageURL, l.URL); reason != "" {
			b := BrokenLink{Page: pageRoute(filepath.ToSlash(rel)), URL: l.URL, Tag: l.Tag, Reason: reason}
			v.logger.Warn("Broken internal link",
				logfields.Route(b.Page), slog.String("url", b.URL), slog.String("reason", reason))
			broken = append(broken, b)
		}
	}
	return broken, nil
}

// check returns "" when link resolves, or the reason it does not.
func (v *Verifier) check(pageURL, link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "unparseable URL"
	}
	p := u.Path
	if p == "" {
		if u.Host == "" {
			return ""
		}
		p = "/"
	}
	base := &url.URL{Path: pageURL}
	target := base.ResolveReference(&url.URL{Path: p}).Path

	if v.basePath != "" {
		if target != v.basePath && !strings.HasPrefix(target, v.basePath+"/") {
			return "outside base path " + v.basePath
		}
		target = strings.TrimPrefix(target, v.basePath)
	}
	if target == "" {
		target = "/"
	}

	local := filepath.Join(v.root, filepath.FromSlash(path.Clean(target)))
	if strings.HasSuffix(target, "/") {
		local = filepath.Join(local, "index.html")
	}
	info, err := os.Stat(local)
	if err != nil {
		return "no such file"
	}
	if info.IsDir() {
		if _, err := os.Stat(filepath.Join(local, "index.html")); err != nil {
			return "directory without index.html"
		}
	}
	return ""
}

// pageRoute maps "blog/index.html" to "/blog/" and "404.html" to "/404.html".
func pageRoute(rel string) string {
	if rel == "index.html" {
		return "/"
	}
	if strings.HasSuffix(rel, "/index.html") {
		return "/" + strings.TrimSuffix(rel, "index.html")
	}
	return "/" + rel
}
