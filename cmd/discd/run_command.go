package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"discd/internal/config"
	"discd/internal/daemon"
	"discd/internal/disc"
	"discd/internal/extraction"
	"discd/internal/logging"
	"discd/internal/metadata"
	"discd/internal/player"
)

func newRunCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(*configFlag)
		},
	}
}

func runDaemon(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, resolvedPath, found, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if found {
		logger.Info("loaded configuration", logging.String("path", resolvedPath))
	} else {
		logger.Info("no config file found, using defaults", logging.String("path", resolvedPath))
	}

	store, err := metadata.Open(cfg)
	if err != nil {
		return fmt.Errorf("open disc library: %w", err)
	}
	defer store.Close()

	reader := disc.NewReader(cfg.Drive.Device, cfg.TOCTimeout())
	supervisor := extraction.New(cfg.Extraction.Binary, cfg.Drive.Device, cfg.Extraction.NeverSkipRetries, logger)
	resolver := metadata.NewResolver(store, logger)
	p := player.New(reader, player.WrapSupervisor(supervisor), resolver,
		cfg.StopGrace(), cfg.InfoCache(), logger)

	d, err := daemon.New(cfg, p, reader, disc.NewEjector(), store.Path(), logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		d.Stop()
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("discd shut down")
	return nil
}
