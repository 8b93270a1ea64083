package site

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/templating"
)

// Template file names inside the templates directory.
const (
	LayoutTemplate   = "layout.html"
	BlogTemplate     = "blog.html"
	ProjectsTemplate = "projects.html"
	PostTemplate     = "post.html"
	ProjectTemplate  = "project.html"
)

// passThroughTemplate stands in for an absent per-record template.
var passThroughTemplate = templating.Placeholder(templating.KeyContent)

// Templates holds every template and page fragment one build reads.
type Templates struct {
	Layout   string
	Blog     string
	Projects string
	Post     string
	Project  string
	Home     string
	About    string
}

// Inputs bundles the prerequisite files of a build.
type Inputs struct {
	Templates *Templates
	Registry  *config.PageRegistry
}

// LoadInputs reads the page registry and all templates. A missing required
// file is a fatal configuration error; a missing per-record template falls
// back to pass-through.
func LoadInputs(cfg *config.BuildConfig, logger *slog.Logger) (*Inputs, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry, err := config.LoadPageRegistry(cfg.PagesFile())
	if err != nil {
		return nil, err
	}

	t := &Templates{}
	required := []struct {
		dst  *string
		path string
	}{
		{&t.Layout, cfg.Template(LayoutTemplate)},
		{&t.Blog, cfg.Template(BlogTemplate)},
		{&t.Projects, cfg.Template(ProjectsTemplate)},
		{&t.Home, fragmentPath(cfg, registry, config.PageHome, cfg.HomeFile())},
		{&t.About, fragmentPath(cfg, registry, config.PageAbout, cfg.AboutFile())},
	}
	for _, r := range required {
		if *r.dst, err = readRequired(r.path); err != nil {
			return nil, err
		}
	}

	optional := []struct {
		dst  *string
		path string
	}{
		{&t.Post, cfg.Template(PostTemplate)},
		{&t.Project, cfg.Template(ProjectTemplate)},
	}
	for _, o := range optional {
		data, err := os.ReadFile(o.path)
		switch {
		case err == nil:
			*o.dst = string(data)
		case os.IsNotExist(err):
			logger.Debug("Per-record template absent, using pass-through", logfields.Path(o.path))
			*o.dst = passThroughTemplate
		default:
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot read template").
				WithContext("path", o.path).
				Build()
		}
	}

	return &Inputs{Templates: t, Registry: registry}, nil
}

// fragmentPath prefers the registry's source for key over the configured path.
func fragmentPath(cfg *config.BuildConfig, registry *config.PageRegistry, key, fallback string) string {
	if e, ok := registry.Lookup(key); ok && e.Source != "" {
		return cfg.Resolve(e.Source)
	}
	return fallback
}

func readRequired(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "required template missing").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return string(data), nil
}
