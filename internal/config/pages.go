package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Registry keys for the fixed pages.
const (
	PageHome     = "index.html"
	PageAbout    = "about.html"
	PageBlog     = "blog.html"
	PageProjects = "projects.html"
)

// PageEntry is one entry of the page registry.
type PageEntry struct {
	Name        string `yaml:"name"`
	Source      string `yaml:"source"`
	Output      string `yaml:"output"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// PageRegistry maps logical pages to their source and metadata.
type PageRegistry struct {
	Entries []PageEntry
}

// LoadPageRegistry reads the registry, a JSON (or YAML) list of entries.
// A missing or malformed registry is a fatal configuration error.
func LoadPageRegistry(path string) (*PageRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot read page registry").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return ParsePageRegistry(path, data)
}

// ParsePageRegistry decodes registry data. path is used for error context.
func ParsePageRegistry(path string, data []byte) (*PageRegistry, error) {
	var entries []PageEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "malformed page registry").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return &PageRegistry{Entries: entries}, nil
}

// Lookup finds the entry whose output matches key, then one whose name does.
func (r *PageRegistry) Lookup(key string) (PageEntry, bool) {
	if r == nil {
		return PageEntry{}, false
	}
	for _, e := range r.Entries {
		if e.Output == key {
			return e, true
		}
	}
	name := strings.TrimSuffix(key, ".html")
	for _, e := range r.Entries {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return PageEntry{}, false
}

// PageMeta is the resolved title and description for a fixed page.
type PageMeta struct {
	Title       string
	Description string
	Source      string
}

// Meta returns the metadata for key, using fallbackTitle when the registry has none.
func (r *PageRegistry) Meta(key, fallbackTitle string) PageMeta {
	e, _ := r.Lookup(key)
	meta := PageMeta{Title: e.Title, Description: e.Description, Source: e.Source}
	if meta.Title == "" {
		meta.Title = fallbackTitle
	}
	return meta
}
