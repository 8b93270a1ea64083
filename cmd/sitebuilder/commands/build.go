package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory (relative to the project directory)"`
	Mode        string `short:"m" help:"Build mode: dev or prod. Overrides ENV."`
	SiteURL     string `name:"site-url" help:"Site origin for sitemap and robots.txt. Overrides SITE_URL."`
	Report      string `name:"report" help:"Write a JSON build report to this path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus textfile metrics to this path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(config.Overrides{Output: b.Output, Mode: b.Mode, SiteURL: b.SiteURL})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = RunBuild(ctx, g, cfg, b.Report, b.MetricsFile)
	return err
}

// RunBuild generates the site and writes the optional report and metrics files.
// Failures writing those files are logged, never returned.
func RunBuild(ctx context.Context, g *Global, cfg *config.BuildConfig, reportPath, metricsPath string) (*site.BuildReport, error) {
	log := logger(g)
	gen := site.NewGenerator(cfg, log)

	var rec *metrics.PrometheusRecorder
	if metricsPath != "" {
		rec = metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		gen.SetRecorder(rec)
	}

	report, err := gen.Generate(ctx)
	if report != nil {
		if reportPath != "" {
			if perr := report.Persist(reportPath); perr != nil {
				log.Warn("Failed to write build report", logfields.Path(reportPath), logfields.Error(perr))
			}
		}
		_, _ = fmt.Fprintln(stdout(g), report.Summary())
	}
	if rec != nil {
		if merr := rec.WriteTextfile(metricsPath); merr != nil {
			log.Warn("Failed to write metrics file", logfields.Path(metricsPath), logfields.Error(merr))
		}
	}
	return report, err
}
