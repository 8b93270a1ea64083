package helpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Default fixture files for a minimal site project.
const (
	LayoutHTML = `<!doctype html>
<html><head><title>{{ pageTitle }}</title><meta name="description" content="{{ metaDescription }}">
<link rel="stylesheet" href="{{ assetPrefix }}/style.css"></head>
<body><nav><a href="{{ basePath }}/">Home</a> <a href="{{ basePath }}/blog/">Blog</a> <a href="{{ basePath }}/projects/">Projects</a> <a href="{{ basePath }}/about/">About</a></nav>
<main>{{ content }}</main></body></html>
`
	BlogHTML     = "<h1>Blog</h1>\n<ul>{{ posts }}</ul>\n"
	ProjectsHTML = "<h1>Projects</h1>\n<ul>{{ projects }}</ul>\n"
	HomeHTML     = `<h1>Welcome</h1>
<ul><!-- latest-posts:start --><li>placeholder</li><!-- latest-posts:end --></ul>
<p>Latest: <a href="{{ latestPostUrl }}">{{ latestPostTitle }}</a></p>
<form action="{{ formEndpoint }}"></form>
`
	AboutHTML = "<h1>About</h1>\n<p>About this site.</p>\n"
	PagesJSON = `[
  {"name": "home", "source": "index.html", "output": "index.html", "title": "Home", "description": "Home page"},
  {"name": "about", "source": "about.html", "output": "about.html", "title": "About Me", "description": "Who I am"},
  {"name": "blog", "output": "blog.html", "title": "Writing", "description": "All posts"},
  {"name": "projects", "output": "projects.html", "title": "Work", "description": "All projects"}
]
`
)

// Project is a site project written into a temporary directory.
type Project struct {
	t    *testing.T
	Root string
}

// NewProject writes a minimal valid project: layout, index templates, home
// and about fragments, a page registry and a stylesheet.
func NewProject(t *testing.T) *Project {
	t.Helper()
	p := &Project{t: t, Root: t.TempDir()}
	p.WriteFile("templates/layout.html", LayoutHTML)
	p.WriteFile("templates/blog.html", BlogHTML)
	p.WriteFile("templates/projects.html", ProjectsHTML)
	p.WriteFile("index.html", HomeHTML)
	p.WriteFile("about.html", AboutHTML)
	p.WriteFile("config/pages.json", PagesJSON)
	p.WriteFile("static/style.css", "body{}\n")
	return p
}

// WriteFile writes content to a path relative to the project root.
func (p *Project) WriteFile(rel, content string) *Project {
	p.t.Helper()
	full := filepath.Join(p.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		p.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		p.t.Fatalf("write %s: %v", rel, err)
	}
	return p
}

// Remove deletes a path relative to the project root.
func (p *Project) Remove(rel string) *Project {
	p.t.Helper()
	if err := os.RemoveAll(filepath.Join(p.Root, filepath.FromSlash(rel))); err != nil {
		p.t.Fatalf("remove %s: %v", rel, err)
	}
	return p
}

// Post writes a post file with the given front matter and body.
func (p *Project) Post(name, frontMatter, body string) *Project {
	p.t.Helper()
	return p.WriteFile("content/posts/"+name, "---\n"+frontMatter+"---\n"+body)
}

// ProjectEntry writes a project file with the given front matter and body.
func (p *Project) ProjectEntry(name, frontMatter, body string) *Project {
	p.t.Helper()
	return p.WriteFile("content/projects/"+name, "---\n"+frontMatter+"---\n"+body)
}

// Path returns the absolute path of rel inside the project.
func (p *Project) Path(rel string) string {
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}
