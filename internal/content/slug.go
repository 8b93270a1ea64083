package content

import (
	"path/filepath"
	"strings"
)

// NormalizeSlug trims surrounding whitespace and slashes and collapses repeated
// inner slashes, so "/notes//go/" becomes "notes/go".
func NormalizeSlug(s string) string {
	parts := strings.Split(strings.TrimSpace(s), "/")
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

// SlugFromFilename returns the base name of path with its extension stripped.
func SlugFromFilename(path string) string {
	base := filepath.Base(path)
	return NormalizeSlug(strings.TrimSuffix(base, filepath.Ext(base)))
}

// IsSafeSlug reports whether slug can be used as an output path: no "." or
// ".." segments and no backslashes.
func IsSafeSlug(slug string) bool {
	if slug == "" || strings.Contains(slug, "\\") {
		return false
	}
	for _, seg := range strings.Split(slug, "/") {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
