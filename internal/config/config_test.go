package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(LoadOptions{Root: root, SkipDotEnv: true, Getenv: envMap(nil)})
	require.NoError(t, err)

	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, DefaultLatestPosts, cfg.LatestPosts)
	assert.Equal(t, filepath.Join(root, "dist"), cfg.OutputDir())
	assert.Equal(t, filepath.Join(root, "templates", "layout.html"), cfg.Template("layout.html"))
	assert.Equal(t, filepath.Join(root, "config", "pages.json"), cfg.PagesFile())
	assert.Equal(t, filepath.Join(root, "content", "posts"), cfg.PostsDir())
	assert.Equal(t, "/dist", cfg.BasePath())
	assert.Equal(t, "/dist", cfg.AssetPrefix())
	assert.True(t, cfg.IncludeDrafts())
}

func TestLoad_ProductionFromEnv(t *testing.T) {
	for _, v := range []string{"PROD", "prod", "Production"} {
		cfg, err := Load(LoadOptions{Root: t.TempDir(), SkipDotEnv: true, Getenv: envMap(map[string]string{
			EnvMode:         v,
			EnvSiteURL:      "https://example.com/",
			EnvFormEndpoint: "https://forms.example/f/123",
		})})
		require.NoError(t, err)
		assert.Equal(t, ModeProduction, cfg.Mode, v)
		assert.Empty(t, cfg.BasePath())
		assert.False(t, cfg.IncludeDrafts())
		assert.Equal(t, "https://example.com", cfg.SiteOrigin())
		assert.Equal(t, "https://forms.example/f/123", cfg.FormEndpoint)
	}

	cfg, err := Load(LoadOptions{Root: t.TempDir(), SkipDotEnv: true, Getenv: envMap(map[string]string{EnvMode: "DEV"})})
	require.NoError(t, err)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
}

func TestLoad_YAMLFileWithExpansion(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigFile), []byte(`
mode: prod
site_url: ${ORIGIN}
latest_posts: 5
base_path: /preview/
paths:
  output: public
markdown:
  highlight: true
`), 0o600))

	cfg, err := Load(LoadOptions{Root: root, SkipDotEnv: true, Getenv: envMap(map[string]string{"ORIGIN": "https://site.test"})})
	require.NoError(t, err)
	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.Equal(t, "https://site.test", cfg.SiteURL)
	assert.Equal(t, 5, cfg.LatestPosts)
	assert.Equal(t, "/preview", cfg.BasePath())
	assert.Equal(t, filepath.Join(root, "public"), cfg.OutputDir())
	assert.True(t, cfg.Markdown.Highlight)
}

func TestLoad_Precedence(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigFile), []byte("mode: production\nsite_url: https://file.test\n"), 0o600))

	cfg, err := Load(LoadOptions{
		Root:       root,
		SkipDotEnv: true,
		Getenv:     envMap(map[string]string{EnvSiteURL: "https://env.test"}),
		Overrides:  Overrides{Mode: "dev", Output: "out"},
	})
	require.NoError(t, err)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, "https://env.test", cfg.SiteURL)
	assert.Equal(t, "/out", cfg.BasePath())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(LoadOptions{Root: t.TempDir(), File: "nope.yaml", SkipDotEnv: true, Getenv: envMap(nil)})
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	})
	t.Run("unknown key", func(t *testing.T) {
		root := t.TempDir()
		p := filepath.Join(root, "c.yaml")
		require.NoError(t, os.WriteFile(p, []byte("colour: blue\n"), 0o600))
		_, err := Load(LoadOptions{Root: root, File: p, SkipDotEnv: true, Getenv: envMap(nil)})
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	})
	t.Run("bad mode override", func(t *testing.T) {
		_, err := Load(LoadOptions{Root: t.TempDir(), SkipDotEnv: true, Getenv: envMap(nil), Overrides: Overrides{Mode: "staging"}})
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	})
	t.Run("relative site url", func(t *testing.T) {
		_, err := Load(LoadOptions{Root: t.TempDir(), SkipDotEnv: true, Getenv: envMap(map[string]string{EnvSiteURL: "example.com"})})
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	})
	t.Run("output is root", func(t *testing.T) {
		_, err := Load(LoadOptions{Root: t.TempDir(), SkipDotEnv: true, Getenv: envMap(nil), Overrides: Overrides{Output: "."}})
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	})
}

func TestLoad_EmptyFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigFile), nil, 0o600))
	cfg, err := Load(LoadOptions{Root: root, SkipDotEnv: true, Getenv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SB_TEST_A=from-env\nSB_TEST_B=from-env\nSB_TEST_C=from-env\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("SB_TEST_B=from-local\n"), 0o600))
	t.Setenv("SB_TEST_C", "preset")
	t.Setenv("SB_TEST_A", "")
	require.NoError(t, os.Unsetenv("SB_TEST_A"))
	t.Setenv("SB_TEST_B", "")
	require.NoError(t, os.Unsetenv("SB_TEST_B"))

	require.NoError(t, LoadDotEnv(dir))
	assert.Equal(t, "from-env", os.Getenv("SB_TEST_A"))
	assert.Equal(t, "from-local", os.Getenv("SB_TEST_B"))
	assert.Equal(t, "preset", os.Getenv("SB_TEST_C"))

	require.NoError(t, LoadDotEnv(t.TempDir()))
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"/":         "",
		".":         "",
		"dist":      "/dist",
		"/dist/":    "/dist",
		"a//b/":     "/a/b",
		`sub\dir`:   "/sub/dir",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeBasePath(in), in)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("PROD")
	require.NoError(t, err)
	assert.Equal(t, ModeProduction, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeDevelopment, m)

	_, err = ParseMode("staging")
	require.Error(t, err)

	assert.Equal(t, ModeDevelopment, ModeFromEnv("anything"))
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("loud"))
	assert.Equal(t, "DEBUG", NormalizeLogLevel("debug").SlogLevel().String())
}

func TestPageRegistry(t *testing.T) {
	reg, err := ParsePageRegistry("pages.json", []byte(`[
  {"name": "home", "source": "index.html", "output": "index.html", "title": "Welcome", "description": "Home page"},
  {"name": "blog", "output": "blog.html", "title": "Writing"}
]`))
	require.NoError(t, err)

	home := reg.Meta(PageHome, "Home")
	assert.Equal(t, "Welcome", home.Title)
	assert.Equal(t, "Home page", home.Description)
	assert.Equal(t, "index.html", home.Source)

	assert.Equal(t, "Writing", reg.Meta(PageBlog, "Blog").Title)
	assert.Equal(t, "Projects", reg.Meta(PageProjects, "Projects").Title)

	entry, ok := reg.Lookup("home")
	require.True(t, ok)
	assert.Equal(t, "Welcome", entry.Title)

	var nilReg *PageRegistry
	assert.Equal(t, "About", nilReg.Meta(PageAbout, "About").Title)
}

func TestPageRegistry_Errors(t *testing.T) {
	_, err := LoadPageRegistry(filepath.Join(t.TempDir(), "pages.json"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = ParsePageRegistry("pages.json", []byte(`{"not": "a list"}`))
	require.Error(t, err)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, DefaultConfigFile)

	require.NoError(t, Init(p, false))
	err := Init(p, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.NoError(t, Init(p, true))

	cfg, err := Load(LoadOptions{Root: dir, SkipDotEnv: true, Getenv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, "/dist", cfg.BasePath())
}
