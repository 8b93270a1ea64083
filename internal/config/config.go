// Package config loads the build configuration from .env files, an optional
// YAML file, the environment and command line overrides.
package config

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultConfigFile is looked up in the project root when no file is given.
const DefaultConfigFile = "sitebuilder.yaml"

// DefaultLatestPosts is the number of posts teased on the home page.
const DefaultLatestPosts = 3

// Environment variables read by Load.
const (
	EnvMode         = "ENV"
	EnvSiteURL      = "SITE_URL"
	EnvFormEndpoint = "FORM_ENDPOINT"
	EnvLogLevel     = "SITEBUILDER_LOG_LEVEL"
)

// BuildConfig is the single configuration value handed to every component.
type BuildConfig struct {
	Mode             Mode           `yaml:"mode"`
	SiteURL          string         `yaml:"site_url"`
	FormEndpoint     string         `yaml:"form_endpoint"`
	BasePathOverride *string        `yaml:"base_path,omitempty"`
	LatestPosts      int            `yaml:"latest_posts"`
	LogLevel         LogLevel       `yaml:"log_level"`
	Paths            PathsConfig    `yaml:"paths"`
	Markdown         MarkdownConfig `yaml:"markdown"`
}

// PathsConfig locates the project inputs and the output directory.
// Relative paths are resolved against Root.
type PathsConfig struct {
	Root      string `yaml:"root"`
	Output    string `yaml:"output"`
	Templates string `yaml:"templates"`
	Static    string `yaml:"static"`
	Pages     string `yaml:"pages"`
	Posts     string `yaml:"posts"`
	Projects  string `yaml:"projects"`
	Home      string `yaml:"home"`
	About     string `yaml:"about"`
}

// MarkdownConfig holds renderer options.
type MarkdownConfig struct {
	Highlight      bool   `yaml:"highlight"`
	HighlightStyle string `yaml:"highlight_style"`
}

// Default returns a configuration rooted at root with every default applied.
func Default(root string) *BuildConfig {
	cfg := &BuildConfig{Paths: PathsConfig{Root: root}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *BuildConfig) {
	if cfg.Mode == "" {
		cfg.Mode = ModeDevelopment
	}
	if cfg.LatestPosts == 0 {
		cfg.LatestPosts = DefaultLatestPosts
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogLevelInfo
	}
	p := &cfg.Paths
	if p.Root == "" {
		p.Root = "."
	}
	setDefault(&p.Output, "dist")
	setDefault(&p.Templates, "templates")
	setDefault(&p.Static, "static")
	setDefault(&p.Pages, filepath.Join("config", "pages.json"))
	setDefault(&p.Posts, filepath.Join("content", "posts"))
	setDefault(&p.Projects, filepath.Join("content", "projects"))
	setDefault(&p.Home, "index.html")
	setDefault(&p.About, "about.html")
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

// Validate checks the configuration after defaults have been applied.
func (c *BuildConfig) Validate() error {
	if c.Mode != ModeDevelopment && c.Mode != ModeProduction {
		return errors.ValidationError("invalid mode").WithContext("mode", string(c.Mode)).Build()
	}
	if c.LatestPosts < 0 {
		return errors.ValidationError("latest_posts must not be negative").
			WithContext("latest_posts", c.LatestPosts).Build()
	}
	if c.SiteURL != "" {
		u, err := url.Parse(c.SiteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.ValidationError("site_url must be an absolute http(s) URL").
				WithContext("site_url", c.SiteURL).Build()
		}
	}
	out, err := filepath.Abs(c.OutputDir())
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "cannot resolve output directory").Fatal().Build()
	}
	root, err := filepath.Abs(c.Paths.Root)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "cannot resolve project root").Fatal().Build()
	}
	if out == root || strings.HasPrefix(root, out+string(filepath.Separator)) {
		return errors.ConfigError("output directory must not contain the project root").
			WithContext("output", c.OutputDir()).Build()
	}
	return nil
}

// Resolve joins p onto the project root unless it is absolute.
func (c *BuildConfig) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}

func (c *BuildConfig) OutputDir() string    { return c.Resolve(c.Paths.Output) }
func (c *BuildConfig) TemplatesDir() string { return c.Resolve(c.Paths.Templates) }
func (c *BuildConfig) StaticDir() string    { return c.Resolve(c.Paths.Static) }
func (c *BuildConfig) PagesFile() string    { return c.Resolve(c.Paths.Pages) }
func (c *BuildConfig) PostsDir() string     { return c.Resolve(c.Paths.Posts) }
func (c *BuildConfig) ProjectsDir() string  { return c.Resolve(c.Paths.Projects) }
func (c *BuildConfig) HomeFile() string     { return c.Resolve(c.Paths.Home) }
func (c *BuildConfig) AboutFile() string    { return c.Resolve(c.Paths.About) }

// Template returns the path of the named template file.
func (c *BuildConfig) Template(name string) string {
	return filepath.Join(c.TemplatesDir(), name)
}

// BasePath is the prefix for internal links. Development builds are previewed
// from the project root, so links carry "/" plus the output directory name;
// production links are root-relative. An explicit base_path wins.
func (c *BuildConfig) BasePath() string {
	if c.BasePathOverride != nil {
		return NormalizeBasePath(*c.BasePathOverride)
	}
	if c.Mode.IsProduction() {
		return ""
	}
	return NormalizeBasePath(filepath.Base(filepath.Clean(c.OutputDir())))
}

// AssetPrefix is the prefix for static asset URLs. It follows BasePath.
func (c *BuildConfig) AssetPrefix() string {
	return c.BasePath()
}

// IncludeDrafts reports whether drafts are rendered.
func (c *BuildConfig) IncludeDrafts() bool {
	return c.Mode.IncludeDrafts()
}

// SiteOrigin returns SiteURL without a trailing slash.
func (c *BuildConfig) SiteOrigin() string {
	return strings.TrimRight(c.SiteURL, "/")
}

// NormalizeBasePath returns "" for the root and "/segment[/...]" otherwise.
func NormalizeBasePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" || p == "." {
		return ""
	}
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return ""
	}
	return cleaned
}
