package commands

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/render"
	"git.home.luguber.info/inful/docgen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Overrides `embed:""`
	Debounce  time.Duration `help:"Quiet period before regenerating (default from config)"`
}

func (w *WatchCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, w.Overrides)
	if err != nil {
		return err
	}
	logger := global.logger()
	debounce := cfg.Watch.Debounce
	if w.Debounce > 0 {
		debounce = w.Debounce
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var mu sync.Mutex
	regenerate := func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		// the configuration itself may have changed
		current, err := loadConfig(root.Config, w.Overrides)
		if err != nil {
			logger.Error("Configuration reload failed", logfields.Error(err))
			return
		}
		report, err := RunGenerate(ctx, current, logger)
		if err != nil {
			logger.Error("Generation failed", logfields.Error(err))
			return
		}
		fmt.Printf("Generated %d files, %d documents failed (run %s)\n",
			len(report.Written), len(report.Failed), report.RunID)
	}
	regenerate(ctx)

	paths := []string{root.Config}
	paths = append(paths, cfg.Models...)
	paths = append(paths, render.SourceRoots(cfg.Sources)...)
	paths = append(paths, cfg.Watch.Paths...)

	if cfg.Watch.Interval > 0 || cfg.Watch.Cron != "" {
		scheduler, err := watch.NewScheduler(logger)
		if err != nil {
			return err
		}
		defer func() { _ = scheduler.Stop() }()
		tick := func() { regenerate(ctx) }
		if cfg.Watch.Interval > 0 {
			if _, err := scheduler.ScheduleEvery("regenerate-interval", cfg.Watch.Interval, tick); err != nil {
				return err
			}
		}
		if cfg.Watch.Cron != "" {
			if _, err := scheduler.ScheduleCron("regenerate-cron", cfg.Watch.Cron, tick); err != nil {
				return err
			}
		}
		scheduler.Start()
	}

	watcher, err := watch.New(paths, debounce, regenerate, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("Watching for changes", logfields.Count(len(paths)))
	return watcher.Run(ctx)
}
