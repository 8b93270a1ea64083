package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr  string `short:"a" help:"Listen address" default:"127.0.0.1:8080"`
	Mode  string `short:"m" help:"Mode the site was built in: dev or prod. Overrides ENV."`
	Build bool   `short:"b" help:"Build once before serving"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(config.Overrides{Mode: s.Mode})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	if s.Build {
		gen := site.NewGenerator(cfg, logger(g)).SetRecorder(metrics.NewPrometheusRecorder(reg))
		report, err := gen.Generate(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout(g), report.Summary())
	}

	srv, err := NewPreviewServer(g, cfg, reg)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx, s.Addr); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout(g), "Serving %s at http://%s%s/\n", cfg.OutputDir(), srv.Addr(), cfg.BasePath())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewPreviewServer mounts the output directory under the configured base path
// so the links of a development build resolve.
func NewPreviewServer(g *Global, cfg *config.BuildConfig, reg *prometheus.Registry) (*server.Server, error) {
	if !fsutil.IsDir(cfg.OutputDir()) {
		return nil, errors.ValidationError("output directory does not exist; run sitebuilder build first").
			WithContext("path", cfg.OutputDir()).
			Build()
	}
	return server.New(server.Options{
		Root:     cfg.OutputDir(),
		BasePath: cfg.BasePath(),
		Registry: reg,
		Logger:   logger(g),
	}), nil
}
