package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/BrandonAlanDev/Portfolio2025/internal/app"
	"github.com/BrandonAlanDev/Portfolio2025/internal/config"
	"github.com/BrandonAlanDev/Portfolio2025/internal/observability"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(
		config.WithConfigFile(cmd.String("config")),
		config.WithEnvFile(cmd.String("env-file")),
	)
	if err != nil {
		return err
	}
	if cmd.IsSet("addr") {
		cfg.Server.Addr = cmd.String("addr")
	} else if port := os.Getenv("PORT"); port != "" {
		// Cloud Run and friends inject PORT
		cfg.Server.Addr = ":" + port
	}
	if cmd.IsSet("dev") {
		cfg.Dev = cmd.Bool("dev")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Info("configuration loaded",
		zap.String("addr", cfg.Server.Addr),
		zap.Bool("dev", cfg.Dev),
		zap.Strings("locales", cfg.Locales.Supported),
		zap.String("default_locale", cfg.Locales.Default),
	)

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

func main() {
	cmd := &cli.Command{
		Name:   "portfolio",
		Usage:  "Bilingual portfolio site with server-driven section navigation",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file (config.yaml is read when present)",
				Sources: cli.EnvVars("PORTFOLIO_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "Path to a .env file; empty disables it",
				Value:   ".env",
				Sources: cli.EnvVars("PORTFOLIO_ENV_FILE"),
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "HTTP listen address, overrides server.addr",
			},
			&cli.BoolFlag{
				Name:    "dev",
				Usage:   "Reparse templates per request, disable asset caching and watch content",
				Sources: cli.EnvVars("PORTFOLIO_DEV"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "portfolio: %v\n", err)
		os.Exit(1)
	}
}
