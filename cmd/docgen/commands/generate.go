package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/failures"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/metrics"
	"git.home.luguber.info/inful/docgen/internal/model"
	"git.home.luguber.info/inful/docgen/internal/output"
	"git.home.luguber.info/inful/docgen/internal/postprocess"
	"git.home.luguber.info/inful/docgen/internal/processor"
	"git.home.luguber.info/inful/docgen/internal/render"
	"git.home.luguber.info/inful/docgen/internal/vcs"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Overrides `embed:""`
}

func (g *GenerateCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, g.Overrides)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := RunGenerate(ctx, cfg, global.logger())
	if err != nil {
		return err
	}
	fmt.Printf("Generated %d files (run %s)\n", len(report.Written), report.RunID)
	return failedError(report)
}

// failedError returns an error when documents failed, classified like the first failure.
func failedError(report *processor.Report) error {
	if len(report.Failed) == 0 {
		return nil
	}
	first := report.Errors[report.Failed[0]]
	return errors.WrapError(first, errors.GetCategory(first), fmt.Sprintf("%d document(s) failed", len(report.Failed))).
		WithContext("documents", report.Failed).
		WithContext("run_id", report.RunID).
		Build()
}

// RunGenerate runs one pass per model file, a final pass over the standalone
// text documents, and writes the results.
func RunGenerate(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*processor.Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry, err := generator.FromConfig(cfg.Generators)
	if err != nil {
		return nil, err
	}
	syntax, err := render.SyntaxFor(cfg.Output.Syntax)
	if err != nil {
		return nil, err
	}

	opts := []processor.Option{
		processor.WithLogger(logger),
		processor.WithSyntax(syntax),
		processor.WithExtension(cfg.Output.Extension),
		processor.WithDefaultNamespace(cfg.Resolver.DefaultNamespace),
		processor.WithPipeline(newPipeline(cfg, logger)),
		processor.WithLinkVerification(cfg.Output.VerifyLinks),
	}

	var sink output.Sink = output.NewFileSink(cfg.Output.Directory)
	if cfg.Output.Fingerprint {
		sink = output.FingerprintSink{Next: sink}
	}
	opts = append(opts, processor.WithSink(sink))

	if cfg.Failures.Database != "" {
		store, err := openStore(cfg.Failures.Database)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Warn("Failed to close failure store", logfields.Error(cerr))
			}
		}()
		opts = append(opts, processor.WithFailureStore(store))
	}

	var recorder *metrics.PrometheusRecorder
	if cfg.Metrics.Textfile != "" {
		recorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
		opts = append(opts, processor.WithRecorder(recorder))
	}

	p := processor.New(registry.List(), opts...)
	logger.Info("Starting generation",
		logfields.RunID(p.RunID()),
		slog.Int("passes", len(cfg.Models)),
		slog.Int("generators", registry.Count()))

	for _, path := range cfg.Models {
		tbl, err := model.LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs := render.PackageDocuments(tbl.Packages(), cfg.Output.Extension)
		if err := p.Pass(ctx, tbl, docs); err != nil {
			return nil, err
		}
	}
	if len(cfg.Sources) > 0 {
		docs, err := render.DiscoverFiles(cfg.Sources)
		if err != nil {
			return nil, err
		}
		if err := p.Pass(ctx, nil, docs); err != nil {
			return nil, err
		}
	}

	report, err := p.Finish(ctx)
	if err != nil {
		return nil, err
	}
	if recorder != nil {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	return report, nil
}

// newPipeline seeds the post-processing variables from the configuration and
// the git repository.
func newPipeline(cfg *config.Config, logger *slog.Logger) *postprocess.Pipeline {
	pl := postprocess.NewPipeline(cfg.Variables)
	if cfg.Git.Repository == "" {
		return pl
	}
	vars, err := vcs.Variables(cfg.Git.Repository)
	if err != nil {
		logger.Warn("Git variables unavailable", logfields.Path(cfg.Git.Repository), logfields.Error(err))
		return pl
	}
	for k, v := range vars {
		pl.SetVariable(k, v)
	}
	return pl
}

func openStore(path string) (*failures.SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.FileSystemError("cannot create failure database directory").
				WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	return failures.NewSQLiteStore(path)
}
