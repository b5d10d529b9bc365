package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/NullSpells/NomadSquare/internal/platform/config"
	applog "github.com/NullSpells/NomadSquare/internal/platform/logging"
	"github.com/NullSpells/NomadSquare/internal/platform/server"
)

const (
	flagHost     = "host"
	flagPort     = "port"
	flagLogLevel = "log-level"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	cmd.Flags().String(flagHost, "", "bind address (overrides HOST)")
	cmd.Flags().Int(flagPort, 0, "listen port (overrides PORT)")
	cmd.Flags().String(flagLogLevel, "", "log level (overrides LOG_LEVEL)")
	return cmd
}

// loadConfig reads .env and the environment, then applies any flags the
// user set explicitly.
func loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if err := applyFlags(&cfg, flags); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	if flags.Changed(flagHost) {
		host, err := flags.GetString(flagHost)
		if err != nil {
			return err
		}
		cfg.Host = host
	}
	if flags.Changed(flagPort) {
		port, err := flags.GetInt(flagPort)
		if err != nil {
			return err
		}
		cfg.Port = port
	}
	if flags.Changed(flagLogLevel) {
		level, err := flags.GetString(flagLogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	return nil
}

func run(ctx context.Context, cfg config.Config) error {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	if err := server.New(cfg, Version).Run(ctx); err != nil {
		applog.LogError(ctx, "server failed", err)
		return err
	}
	return nil
}
