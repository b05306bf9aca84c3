package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docgen/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docgen.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Generate documentation for every configured generator"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate documentation whenever inputs change"`
	Failures FailuresCmd `cmd:"" help:"List the documents that failed in a run"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// Overrides are command line values that replace configured ones when set.
type Overrides struct {
	Models  []string `name:"model" short:"m" help:"Model file for one pass; repeat for more passes"`
	Sources []string `name:"source" short:"s" help:"Text document, directory or glob; repeatable"`
	Output  string   `short:"o" help:"Output directory; $lang is replaced by the generator name"`
	Syntax  string   `help:"Output syntax (asciidoc or markdown)"`
}

// loadConfig loads the configuration file and applies the overrides.
func loadConfig(path string, o Overrides) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if len(o.Models) > 0 {
		cfg.Models = o.Models
	}
	if len(o.Sources) > 0 {
		cfg.Sources = o.Sources
	}
	if o.Output != "" {
		cfg.Output.Directory = o.Output
	}
	if o.Syntax != "" {
		cfg.Output.Syntax = o.Syntax
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
