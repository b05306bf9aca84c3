package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/docgen/internal/failures"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// FailuresCmd implements the 'failures' command.
type FailuresCmd struct {
	RunID    string `name:"run" help:"Run ID to list (default: latest run)"`
	Database string `name:"database" help:"Failure database (default from config)"`
}

func (f *FailuresCmd) Run(_ *Global, root *CLI) error {
	path := f.Database
	if path == "" {
		cfg, err := loadConfig(root.Config, Overrides{})
		if err != nil {
			return err
		}
		path = cfg.Failures.Database
	}
	if path == "" {
		return errors.ConfigError("no failure database configured").Build()
	}
	store, err := failures.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return ListFailures(context.Background(), store, f.RunID, os.Stdout)
}

// ListFailures writes the failures of runID, or of the latest run when runID
// is empty, as a table.
func ListFailures(ctx context.Context, store failures.Store, runID string, out io.Writer) error {
	if runID == "" {
		latest, err := store.LatestRun(ctx)
		if err != nil {
			return err
		}
		if latest == "" {
			_, _ = fmt.Fprintln(out, "No failures recorded")
			return nil
		}
		runID = latest
	}
	records, err := store.ByRun(ctx, runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintf(out, "No failures in run %s\n", runID)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Run %s: %d failed document(s)\n", runID, len(records))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DOCUMENT\tGENERATOR\tCATEGORY\tMESSAGE")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Document, r.Generator, r.Category, r.Message)
	}
	return tw.Flush()
}
