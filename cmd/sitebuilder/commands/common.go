package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: <dir>/sitebuilder.yaml when present)"`
	Dir     string           `short:"C" help:"Site project directory" default:"."`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the static site into the output directory"`
	Serve ServeCmd `cmd:"" help:"Serve the built site locally (no rebuilds)"`
	Init  InitCmd  `cmd:"" help:"Write an example sitebuilder.yaml"`

	// LogOutput receives log lines. Defaults to stderr.
	LogOutput io.Writer `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once. --verbose wins over
// SITEBUILDER_LOG_LEVEL.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if v := os.Getenv(config.EnvLogLevel); v != "" {
		level = config.NormalizeLogLevel(v).SlogLevel()
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	out := c.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig loads the build configuration for the project directory.
func (c *CLI) LoadConfig(overrides config.Overrides) (*config.BuildConfig, error) {
	return config.Load(config.LoadOptions{
		Root:      c.Dir,
		File:      c.Config,
		Overrides: overrides,
	})
}

// ConfigPath is the file init writes and load reads by default.
func (c *CLI) ConfigPath() string {
	if c.Config != "" {
		return c.Config
	}
	return filepath.Join(c.Dir, config.DefaultConfigFile)
}

func logger(g *Global) *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func stdout(g *Global) io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}
