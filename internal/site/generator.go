package site

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/sitemap"
	"git.home.luguber.info/inful/sitebuilder/internal/templating"
)

// Output file names written next to the pages.
const (
	SitemapFile = "sitemap.xml"
	RobotsFile  = "robots.txt"
)

// Generator runs one site build.
type Generator struct {
	cfg       *config.BuildConfig
	outputDir string // final output dir
	stageDir  string // staging dir for the current build
	parser    *content.Parser
	engine    *templating.Engine
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// NewGenerator creates a generator for cfg. cfg must already be validated.
func NewGenerator(cfg *config.BuildConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	renderer := markdown.NewRenderer(markdown.Options{
		Highlight:      cfg.Markdown.Highlight,
		HighlightStyle: cfg.Markdown.HighlightStyle,
	})
	return &Generator{
		cfg:       cfg,
		outputDir: filepath.Clean(cfg.OutputDir()),
		parser:    content.NewParser(renderer, logger),
		engine:    templating.NewEngine(),
		recorder:  metrics.NoopRecorder{},
		logger:    logger,
	}
}

// SetRecorder injects a metrics recorder. Returns the generator for chaining.
func (g *Generator) SetRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	g.recorder = r
	return g
}

// OutputDir returns the final output directory.
func (g *Generator) OutputDir() string { return g.outputDir }

// BuildState carries data between stages.
type BuildState struct {
	Generator *Generator
	Report    *BuildReport
	Inputs    *Inputs
	Assembly  *Assembly
}

func (bs *BuildState) recorder() metrics.Recorder { return bs.Generator.recorder }
func (bs *BuildState) logger() *slog.Logger        { return bs.Generator.logger }

// Stages returns the build pipeline.
func (g *Generator) Stages() []StageDef {
	return NewPipeline().
		Add(StagePrepareOutput, stagePrepareOutput).
		Add(StageAssemble, stageAssemble).
		Add(StageWritePages, stageWritePages).
		Add(StageCopyAssets, stageCopyAssets).
		Add(StageSitemap, stageSitemap).
		Add(StageRobots, stageRobots).
		Add(StageVerifyLinks, stageVerifyLinks).
		Build()
}

// Generate builds the site into the output directory. The returned report is
// non-nil even on failure. The previous output is replaced only when every
// stage completed without a fatal error.
func (g *Generator) Generate(ctx context.Context) (*BuildReport, error) {
	report := newBuildReport(string(g.cfg.Mode), g.outputDir)
	log := g.logger.With(logfields.BuildID(report.BuildID), logfields.Mode(string(g.cfg.Mode)))
	log.Info("Starting site build", logfields.Path(g.outputDir))

	bs := &BuildState{Generator: g, Report: report}
	err := runStages(ctx, bs, g.Stages())
	if err == nil {
		if ferr := g.finalizeStaging(); ferr != nil {
			err = errors.WrapError(ferr, errors.CategoryFileSystem, "cannot promote build output").
				Fatal().
				WithContext("path", g.outputDir).
				Build()
			report.Errors = append(report.Errors, err.Error())
		}
	}
	if err != nil {
		g.abortStaging()
	}

	report.finish()
	g.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	g.recorder.IncBuildOutcome(report.MetricsOutcome())

	if err != nil {
		log.Error("Site build failed", logfields.Error(err), slog.String("outcome", string(report.Outcome)))
		return report, unwrapStageError(err)
	}
	log.Info("Site build complete",
		logfields.Count(report.RenderedPages()),
		slog.Int("warnings", len(report.Warnings)),
		slog.String("outcome", string(report.Outcome)))
	return report, nil
}

// unwrapStageError surfaces the classified cause of a fatal stage so callers
// can map it to an exit code.
func unwrapStageError(err error) error {
	if se, ok := err.(*StageError); ok {
		if errors.IsClassified(se.Err) {
			return se.Err
		}
		return errors.WrapError(se.Err, errors.CategoryBuild, "stage "+string(se.Stage)+" failed").Build()
	}
	return err
}

func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	if err := bs.Generator.beginStaging(); err != nil {
		return newFatalStageError(StagePrepareOutput,
			errors.WrapError(err, errors.CategoryFileSystem, "cannot prepare output").Build())
	}
	return nil
}

func stageAssemble(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	inputs, err := LoadInputs(g.cfg, g.logger)
	if err != nil {
		return newFatalStageError(StageAssemble, err)
	}
	bs.Inputs = inputs

	loader := content.NewLoader(g.parser, g.logger)
	asm, err := NewAssembler(g.cfg, inputs, loader, g.engine, g.logger).Assemble()
	if err != nil {
		return newFatalStageError(StageAssemble, err)
	}
	bs.Assembly = asm
	bs.Report.Posts = asm.Posts.Len()
	bs.Report.Projects = asm.Projects.Len()
	g.recorder.SetCollectionSize(CollectionPosts, asm.Posts.Len())
	g.recorder.SetCollectionSize(CollectionProjects, asm.Projects.Len())

	if len(asm.Warnings) > 0 {
		bs.Report.Warnings = append(bs.Report.Warnings, asm.Warnings...)
	}
	return nil
}

func stageWritePages(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	root := g.buildRoot()
	for _, p := range bs.Assembly.Pages {
		target := filepath.Join(root, filepath.FromSlash(p.Path))
		if err := fsutil.WriteFile(target, []byte(p.HTML)); err != nil {
			return newFatalStageError(StageWritePages,
				errors.WrapError(err, errors.CategoryFileSystem, "cannot write page").
					WithContext("path", target).
					Build())
		}
		bs.Report.addPage(p)
		g.logger.Debug("Wrote page", logfields.Route(p.Route), logfields.Path(p.Path))
	}
	for kind, n := range bs.Report.PagesByKind {
		g.recorder.AddPagesRendered(string(kind), n)
	}
	return nil
}

func stageCopyAssets(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	src := g.cfg.StaticDir()
	if !fsutil.IsDir(src) {
		g.logger.Debug("No static directory, skipping assets", logfields.Path(src))
		return nil
	}
	n, err := fsutil.CopyDir(src, g.buildRoot())
	bs.Report.Assets = n
	if err != nil {
		return newWarnStageError(StageCopyAssets,
			errors.WrapError(err, errors.CategoryFileSystem, "asset copy failed").
				WithContext("path", src).
				Warning().
				Build())
	}
	g.logger.Debug("Copied static assets", logfields.Count(n))
	return nil
}

func stageSitemap(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	routes, err := sitemap.Discover(g.buildRoot())
	if err != nil {
		return newFatalStageError(StageSitemap, err)
	}
	lastMod := make(map[string]string)
	for _, p := range bs.Assembly.Pages {
		if p.LastMod != "" {
			lastMod[p.Route] = p.LastMod
		}
	}
	data, err := sitemap.Render(routes, sitemap.Options{
		Origin:   g.cfg.SiteOrigin(),
		BasePath: g.cfg.BasePath(),
		LastMod:  lastMod,
	})
	if err != nil {
		return newFatalStageError(StageSitemap, err)
	}
	if err := fsutil.WriteFile(filepath.Join(g.buildRoot(), SitemapFile), data); err != nil {
		return newFatalStageError(StageSitemap,
			errors.WrapError(err, errors.CategoryFileSystem, "cannot write sitemap").Build())
	}
	g.logger.Debug("Wrote sitemap", logfields.Count(len(routes)))
	return nil
}

func stageRobots(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	data := sitemap.Robots(g.cfg.SiteOrigin(), g.cfg.BasePath())
	if err := fsutil.WriteFile(filepath.Join(g.buildRoot(), RobotsFile), data); err != nil {
		return newFatalStageError(StageRobots,
			errors.WrapError(err, errors.CategoryFileSystem, "cannot write robots.txt").Build())
	}
	return nil
}

func stageVerifyLinks(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	v := linkverify.NewVerifier(g.buildRoot(), g.cfg.BasePath(), g.cfg.SiteOrigin(), g.logger)
	broken, err := v.VerifySite()
	if err != nil {
		return newWarnStageError(StageVerifyLinks, err)
	}
	bs.Report.BrokenLinks = broken
	if len(broken) > 0 {
		return newWarnStageError(StageVerifyLinks,
			errors.NewError(errors.CategoryBuild, "broken internal links").
				WithContext("count", len(broken)).
				Warning().
				Build())
	}
	return nil
}
