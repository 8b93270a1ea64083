package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/cmd/sitebuilder/commands"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitCode carries a kong exit request out of the parser.
type exitCode int

// run parses args, executes the selected command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) (code int) {
	cli := &commands.CLI{LogOutput: stderr}
	parser, err := kong.New(cli,
		kong.Name("sitebuilder"),
		kong.Description("Build a static site from Markdown content and HTML templates."),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		_, _ = io.WriteString(stderr, err.Error()+"\n")
		return errors.ExitInternal
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	ctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return errors.ExitValidation
	}

	global := &commands.Global{Logger: slog.Default(), Stdout: stdout}
	if err := ctx.Run(global, cli); err != nil {
		return errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).WithOutput(stderr).Report(err)
	}
	return errors.ExitOK
}
