package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"contentflow/internal/gateway/app"
	"contentflow/internal/gateway/config"
	"contentflow/internal/logutils"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &config.Config{}
	cmd := &cli.Command{
		Name:  "contentflow",
		Usage: "Serve the content checklist and its AI assistant",
		Flags: config.Flags(cfg),
		Action: func(ctx context.Context, _ *cli.Command) error {
			return run(ctx, cfg)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "contentflow: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Normalize(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, closeLog, err := logutils.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer closeLog()
	log.Logger = logger

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(a.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("contentflow exiting")
	return nil
}
