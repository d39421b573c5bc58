package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"roomrelay/internal/app"
	"roomrelay/internal/config"
	"roomrelay/internal/log"
)

func main() {
	var (
		configPath string
		addr       string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:   "roomrelay",
		Short: "Presence-aware WebSocket message relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(logLevel)

			cfg, path, err := config.Load(logger, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Debug().Str("path", path).Msg("config resolved")

			// Flags win over file and env.
			cfg.UpdateFrom(config.Config{Addr: addr, LogLevel: logLevel})
			logger = log.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application := app.New(cfg, logger)

			logger.Info().Str("addr", cfg.Addr).Msg("starting roomrelay server")
			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("server exited: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
