package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docgen/cmd/docgen/commands"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docgen"),
		kong.Description("Render cross-referenced API documentation for several output languages"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	// AfterApply has configured the default logger by now.
	if err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
