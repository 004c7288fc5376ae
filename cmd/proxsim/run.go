package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/proximity/internal/config"
	"github.com/zeusync/proximity/internal/core/observability/log"
	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/injector"
)

const reportInterval = 5 * time.Second

type runOptions struct {
	configPath string
	strategy   string
	load       string
	save       string
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and the websocket feed until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults apply when empty)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "override the configured strategy")
	cmd.Flags().StringVar(&opts.load, "load", "", "load this level instead of spawning a random population")
	cmd.Flags().StringVar(&opts.save, "save", "", "save the final state as this level on exit")
	return cmd
}

func loadConfig(opts runOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if opts.strategy != "" {
		s, err := proximity.ParseStrategy(opts.strategy)
		if err != nil {
			return nil, err
		}
		cfg.Strategy = s
	}
	return &cfg, nil
}

func runSimulation(ctx context.Context, opts runOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.load == "" {
		app.Simulation.Populate(cfg.Spawn.Items, cfg.Spawn.Bots)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Simulation.Run(gctx) })
	if opts.load != "" {
		g.Go(func() error { return app.Simulation.LoadLevel(gctx, opts.load) })
	}
	if cfg.Server.Enabled {
		g.Go(func() error {
			if err := app.Server.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return app.Server.Stop(shutdownCtx)
		})
	}
	g.Go(func() error {
		report(gctx, app)
		return nil
	})

	err = g.Wait()
	if opts.save != "" {
		if saveErr := app.Simulation.SaveLevel(context.Background(), opts.save); saveErr != nil {
			app.Logger.Error("Failed to save level", log.String("level", opts.save), log.Error(saveErr))
			if err == nil {
				err = saveErr
			}
		}
	}
	return err
}

// report logs the running tick timing until ctx is done.
func report(ctx context.Context, app *injector.App) {
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.Logger.Info("tick timing",
				log.String("strategy", app.Tracker.Strategy().String()),
				log.Int64("ticks", app.Timing.Count()),
				log.Duration("mean", app.Timing.Mean()),
				log.Duration("last", app.Timing.Last()),
				log.Duration("max", app.Timing.Max()))
		}
	}
}
