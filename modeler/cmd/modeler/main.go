package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/modeler/internal/runner"
	"github.com/firewatch/firewatch/modeler/internal/series"
	"github.com/firewatch/firewatch/modeler/internal/shipper"
)

func main() {
	configPath := flag.String("config", "firewatch.yaml", "path to config file")
	watch := flag.Bool("watch", false, "keep running and re-run the sweep when the config file changes")
	prompt := flag.Bool("prompt", false, "ask for synthetic series bounds on stdin")
	flag.Parse()

	// stdout carries the printed report.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("firewatch-modeler starting", "config", *configPath)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	ov := overrides{prompt: *prompt}
	ov.apply(cfg)
	slog.Info("config loaded",
		"site", cfg.Modeler.SiteID,
		"source", cfg.Modeler.Input.Source,
		"scenarios", len(cfg.Modeler.Scenarios),
		"server_endpoint", cfg.Modeler.ServerEndpoint,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !*watch && cfg.Modeler.Interval == 0 {
		if err := runOnce(ctx, cfg.Modeler); err != nil {
			slog.Error("sweep failed", "err", err)
			os.Exit(1)
		}
		return
	}

	runLoop(ctx, cfg, *configPath, *watch, ov)
	slog.Info("firewatch-modeler shutting down")
}

// loadConfig reads path, falling back to the built-in defaults when the file
// does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file found, using defaults", "config", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

// overrides are command-line settings that win over the config file, on the
// first load and on every reload.
type overrides struct {
	prompt bool
}

func (o overrides) apply(cfg *config.Config) {
	if o.prompt {
		cfg.Modeler.Input.Source = "prompt"
	}
}

// reload applies the flag overrides to a freshly loaded config and reports
// whether the rerun interval changed from prev.
func reload(prev config.ModelerConfig, updated *config.Config, ov overrides) (config.ModelerConfig, bool) {
	ov.apply(updated)
	return updated.Modeler, updated.Modeler.Interval != prev.Interval
}

// runOnce performs one sweep and publishes it synchronously.
func runOnce(ctx context.Context, cfg config.ModelerConfig) error {
	src, err := series.New(cfg.Input)
	if err != nil {
		return err
	}
	sweep, err := runner.New(cfg, src, os.Stdout).Run(ctx)
	if err != nil {
		return err
	}
	if cfg.ServerEndpoint == "" || len(sweep.Reports) == 0 {
		return nil
	}
	return shipper.New(cfg).Send(ctx, sweep)
}

// runLoop re-runs the sweep on config changes and every interval, shipping
// results through the buffered shipper until ctx is cancelled.
func runLoop(ctx context.Context, cfg *config.Config, path string, watch bool, ov overrides) {
	var ship *shipper.Shipper
	if cfg.Modeler.ServerEndpoint != "" {
		ship = shipper.New(cfg.Modeler)
		go ship.Run(ctx)
	}

	reloads := make(chan *config.Config, 1)
	if watch {
		go func() {
			if err := config.Watch(ctx, path, func(updated *config.Config) {
				select {
				case reloads <- updated:
				default:
					slog.Warn("config reload already pending, skipping")
				}
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	setInterval := func(d time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if d > 0 {
			ticker = time.NewTicker(d)
			tick = ticker.C
		}
	}
	setInterval(cfg.Modeler.Interval)
	defer setInterval(0)

	current := cfg.Modeler
	sweepOnce := func() {
		src, err := series.New(current.Input)
		if err != nil {
			slog.Error("could not build series source", "err", err)
			return
		}
		sweep, err := runner.New(current, src, os.Stdout).Run(ctx)
		if err != nil {
			slog.Error("sweep failed", "err", err)
			return
		}
		if ship != nil && len(sweep.Reports) > 0 {
			ship.Ship(sweep)
		}
	}

	sweepOnce()
	for {
		select {
		case <-ctx.Done():
			return
		case updated := <-reloads:
			// The shipper keeps its original endpoint; restart to change it.
			next, intervalChanged := reload(current, updated, ov)
			current = next
			if intervalChanged {
				setInterval(current.Interval)
			}
			slog.Info("config hot-reloaded, re-running sweep",
				"site", current.SiteID, "source", current.Input.Source, "interval", current.Interval)
			sweepOnce()
		case <-tick:
			sweepOnce()
		}
	}
}
