package site

import (
	"log/slog"
	"path"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/fragment"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/templating"
)

// PageKind names the kind of an output page.
type PageKind string

const (
	KindHome     PageKind = "home"
	KindAbout    PageKind = "about"
	KindBlog     PageKind = "blog"
	KindPost     PageKind = "post"
	KindProjects PageKind = "projects"
	KindProject  PageKind = "project"
)

// Collection names used in logs, reports and metrics.
const (
	CollectionPosts    = "posts"
	CollectionProjects = "projects"
)

// Home page placeholder keys beyond the engine's default set.
const (
	KeyLatestPostTitle      = "latestPostTitle"
	KeyLatestPostURL        = "latestPostUrl"
	KeyLatestPostDate       = "latestPostDate"
	KeyLatestPostSummary    = "latestPostSummary"
	KeyLatestProjectTitle   = "latestProjectTitle"
	KeyLatestProjectURL     = "latestProjectUrl"
	KeyLatestProjectSummary = "latestProjectSummary"
	KeyFormEndpoint         = "formEndpoint"
)

// latestPostsBlock is the marker region on the home page that receives the
// latest posts list.
const latestPostsBlock = "latest-posts"

// reservedSegments are first path segments owned by the fixed pages.
var reservedSegments = map[string]struct{}{
	"about":    {},
	"blog":     {},
	"projects": {},
}

// Page is one rendered output file.
type Page struct {
	Kind  PageKind
	Route string
	// Path is the output file, slash separated and relative to the output root.
	Path   string
	HTML   string
	Source string
	// Fingerprint is the source record fingerprint; empty for fixed pages.
	Fingerprint string
	// LastMod is the record date (YYYY-MM-DD), when it has one.
	LastMod string
}

// Assembly is the result of one assembly pass.
type Assembly struct {
	Pages    []Page
	Posts    *content.Collection
	Projects *content.Collection
	Warnings []string
}

// Assembler turns loaded content and templates into pages.
type Assembler struct {
	cfg    *config.BuildConfig
	inputs *Inputs
	loader *content.Loader
	engine *templating.Engine
	logger *slog.Logger
}

// NewAssembler creates an assembler. A nil engine uses the default safe set.
func NewAssembler(cfg *config.BuildConfig, inputs *Inputs, loader *content.Loader, engine *templating.Engine, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = templating.NewEngine()
	}
	return &Assembler{cfg: cfg, inputs: inputs, loader: loader, engine: engine, logger: logger}
}

// Assemble loads both collections and renders every page.
func (a *Assembler) Assemble() (*Assembly, error) {
	posts, err := a.loader.Load(a.cfg.PostsDir(), content.LoadOptions{Name: CollectionPosts})
	if err != nil {
		return nil, err
	}
	projects, err := a.loader.Load(a.cfg.ProjectsDir(), content.LoadOptions{
		Name:     CollectionProjects,
		Required: []string{content.RequireTitle, content.RequireSlug},
	})
	if err != nil {
		return nil, err
	}

	out := &Assembly{Posts: posts, Projects: projects}
	out.Warnings = append(out.Warnings, posts.Warnings...)
	out.Warnings = append(out.Warnings, projects.Warnings...)

	includeDrafts := a.cfg.IncludeDrafts()
	publishedPosts := content.Published(posts.Records, includeDrafts)
	publishedProjects := content.Published(projects.Records, includeDrafts)

	out.Pages = append(out.Pages,
		a.homePage(publishedPosts, publishedProjects),
		a.fixedPage(KindAbout, config.PageAbout, "About", "/about/", a.inputs.Templates.About, nil),
		a.indexPage(KindBlog, config.PageBlog, "Blog", "/blog/", a.inputs.Templates.Blog,
			templating.KeyPosts, a.listItems(publishedPosts, postURL), fragment.ListOptions{ShowDrafts: includeDrafts, ShowTags: true}),
		a.indexPage(KindProjects, config.PageProjects, "Projects", "/projects/", a.inputs.Templates.Projects,
			templating.KeyProjects, a.listItems(publishedProjects, projectURL), fragment.ListOptions{ShowDrafts: includeDrafts, ShowTags: true, ShowSummary: true}),
	)

	for _, rec := range content.UniqueBySlug(publishedPosts) {
		if first, _, _ := strings.Cut(rec.Slug, "/"); isReserved(first) {
			msg := "Skipping post whose slug collides with a fixed page"
			a.logger.Warn(msg, logfields.Collection(CollectionPosts), logfields.Slug(rec.Slug), logfields.Path(rec.SourcePath))
			out.Warnings = append(out.Warnings, msg+" slug="+rec.Slug)
			continue
		}
		out.Pages = append(out.Pages, a.recordPage(KindPost, rec, a.inputs.Templates.Post, postURL))
	}
	for _, rec := range content.UniqueBySlug(publishedProjects) {
		out.Pages = append(out.Pages, a.recordPage(KindProject, rec, a.inputs.Templates.Project, projectURL))
	}

	a.logger.Debug("Assembled pages", logfields.Count(len(out.Pages)))
	return out, nil
}

func isReserved(segment string) bool {
	_, ok := reservedSegments[segment]
	return ok
}

// baseContext holds the values every page receives.
func (a *Assembler) baseContext() templating.Context {
	return templating.Context{
		"basePath":    a.cfg.BasePath(),
		"assetPrefix": a.cfg.AssetPrefix(),
		"siteUrl":     a.cfg.SiteOrigin(),
		"mode":        string(a.cfg.Mode),
	}
}

// layout wraps inner content in the outer layout.
func (a *Assembler) layout(ctx templating.Context, inner, pageTitle, metaDescription, route string) string {
	return a.engine.Apply(a.inputs.Templates.Layout, ctx.Merge(templating.Context{
		templating.KeyContent: inner,
		"pageTitle":           pageTitle,
		"metaDescription":     metaDescription,
		"canonicalUrl":        a.absoluteURL(route),
	}))
}

func (a *Assembler) absoluteURL(route string) string {
	if a.cfg.SiteOrigin() == "" {
		return ""
	}
	return a.cfg.SiteOrigin() + a.cfg.BasePath() + route
}

func postURL(basePath, slug string) string    { return basePath + "/" + slug + "/" }
func projectURL(basePath, slug string) string { return basePath + "/projects/" + slug + "/" }

func postRoute(slug string) string    { return "/" + slug + "/" }
func projectRoute(slug string) string { return "/projects/" + slug + "/" }

// routeFile maps a route to its index.html path relative to the output root.
func routeFile(route string) string {
	return path.Join(strings.Trim(route, "/"), "index.html")
}

func (a *Assembler) listItems(records []*content.Record, urlFor func(basePath, slug string) string) []fragment.Item {
	base := a.cfg.BasePath()
	items := make([]fragment.Item, 0, len(records))
	for _, r := range records {
		item := fragment.Item{
			Title:   r.Title,
			URL:     urlFor(base, r.Slug),
			Date:    r.DateFormatted,
			Summary: r.Summary,
			Tags:    r.Tags,
			Draft:   r.Draft,
		}
		if r.HasDate() {
			item.DateISO = r.Date.String()
		}
		items = append(items, item)
	}
	return items
}

func (a *Assembler) fixedPage(kind PageKind, key, fallbackTitle, route, tmpl string, extra templating.Context) Page {
	meta := a.inputs.Registry.Meta(key, fallbackTitle)
	ctx := a.baseContext().Merge(extra)
	inner := a.engine.Apply(tmpl, ctx)
	return Page{
		Kind:   kind,
		Route:  route,
		Path:   routeFile(route),
		HTML:   a.layout(a.baseContext(), inner, meta.Title, meta.Description, route),
		Source: key,
	}
}

func (a *Assembler) indexPage(kind PageKind, key, fallbackTitle, route, tmpl, listKey string, items []fragment.Item, opts fragment.ListOptions) Page {
	list := fragment.List(items, opts)
	return a.fixedPage(kind, key, fallbackTitle, route, tmpl, templating.Context{listKey: list.String()})
}

func (a *Assembler) homePage(posts, projects []*content.Record) Page {
	base := a.cfg.BasePath()
	latest := a.listItems(content.LatestN(posts, a.cfg.LatestPosts), postURL)

	extra := templating.Context{
		templating.KeyLatestPosts: fragment.LatestPosts(latest, a.cfg.IncludeDrafts()).String(),
		KeyFormEndpoint:           a.cfg.FormEndpoint,
	}
	if p, ok := content.First(posts); ok {
		extra[KeyLatestPostTitle] = p.Title
		extra[KeyLatestPostURL] = postURL(base, p.Slug)
		extra[KeyLatestPostDate] = p.DateFormatted
		extra[KeyLatestPostSummary] = p.Summary
	}
	if p, ok := content.First(projects); ok {
		extra[KeyLatestProjectTitle] = p.Title
		extra[KeyLatestProjectURL] = projectURL(base, p.Slug)
		extra[KeyLatestProjectSummary] = p.Summary
	}

	tmpl := templating.ReplaceBlock(a.inputs.Templates.Home, latestPostsBlock, templating.Placeholder(templating.KeyLatestPosts))
	return a.fixedPage(KindHome, config.PageHome, "Home", "/", tmpl, extra)
}

// recordContext exposes a record's fields to its templates.
func (a *Assembler) recordContext(rec *content.Record, url string) templating.Context {
	// Extra fields never override configured values or trusted fragment keys.
	extra := make(templating.Context, len(rec.Extra))
	for k, v := range rec.ExtraStrings() {
		if !a.engine.IsSafe(k) {
			extra[k] = v
		}
	}
	ctx := extra.Merge(a.baseContext())
	ctx["title"] = rec.Title
	ctx["slug"] = rec.Slug
	ctx["description"] = rec.Description
	ctx["summary"] = rec.Summary
	ctx["date"] = ""
	if rec.HasDate() {
		ctx["date"] = rec.Date.String()
	}
	ctx["dateFormatted"] = rec.DateFormatted
	ctx["tags"] = strings.Join(rec.Tags, ", ")
	ctx[templating.KeyTagList] = fragment.TagChips(rec.Tags).String()
	ctx[templating.KeyDraftBanner] = ""
	ctx["url"] = url
	return ctx
}

func (a *Assembler) recordPage(kind PageKind, rec *content.Record, tmpl string, urlFor func(basePath, slug string) string) Page {
	route := postRoute(rec.Slug)
	if kind == KindProject {
		route = projectRoute(rec.Slug)
	}
	ctx := a.recordContext(rec, urlFor(a.cfg.BasePath(), rec.Slug))

	banner := ""
	if rec.Draft && a.cfg.IncludeDrafts() {
		banner = fragment.DraftBanner().String()
		ctx[templating.KeyDraftBanner] = banner
	}

	inner := a.engine.Apply(tmpl, ctx.Merge(templating.Context{templating.KeyContent: rec.HTML}))
	if banner != "" && !usesPlaceholder(templating.KeyDraftBanner, tmpl, a.inputs.Templates.Layout) {
		inner = banner + "\n" + inner
	}

	page := Page{
		Kind:        kind,
		Route:       route,
		Path:        routeFile(route),
		HTML:        a.layout(ctx, inner, rec.PageTitle, rec.MetaDescription, route),
		Source:      rec.SourcePath,
		Fingerprint: rec.Fingerprint,
	}
	if rec.HasDate() {
		page.LastMod = rec.Date.String()
	}
	return page
}

func usesPlaceholder(key string, templates ...string) bool {
	for _, t := range templates {
		for _, name := range templating.Placeholders(t) {
			if name == key {
				return true
			}
		}
	}
	return false
}
