// Command invitekit adds users from a CSV file to a Telegram channel.
//
// Configuration comes from environment variables (or a .env file in the
// working directory); see the package documentation for the list.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/davrd/invitekit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the .env file and the environment into a Config.
// Path and batching defaults are applied here so they hold before the
// input and output files are touched.
func loadConfig() (invitekit.Config, error) {
	_ = godotenv.Load()

	var cfg invitekit.Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func run() error {
	dryRun := flag.Bool("dry-run", false, "simulate the run without any Telegram calls")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.DryRun = cfg.DryRun || *dryRun

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	cfg.Logger = logger

	users, err := invitekit.ReadUsers(cfg.InputPath)
	if err != nil {
		return err
	}
	logger.Info("loaded users", "count", len(users), "file", cfg.InputPath)

	if cfg.Resume {
		processed, err := invitekit.LoadProcessed(cfg.OutputPath)
		if err != nil {
			return err
		}
		if len(processed) > 0 {
			remaining := users[:0]
			for _, u := range users {
				if _, ok := processed[u.Key()]; !ok {
					remaining = append(remaining, u)
				}
			}
			logger.Info("resuming previous run",
				"already_processed", len(users)-len(remaining),
				"remaining", len(remaining))
			users = remaining
		}
	}

	if len(users) == 0 {
		logger.Info("nothing to do")
		return nil
	}

	client, err := invitekit.NewClient(cfg)
	if err != nil {
		return err
	}

	out, err := invitekit.NewResultWriter(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return client.Run(ctx, func(ctx context.Context) error {
		summary, err := invitekit.NewInviter(client, cfg, out).Run(ctx, users)
		logger.Info("results written", "file", cfg.OutputPath, "processed", summary.Processed)
		return err
	})
}
