package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microshop/internal/app"
	"microshop/internal/core/config"
	"microshop/internal/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <auth|catalog|orders|shipping|all>",
		Short: "Run one service, or all of them in one process",
		Long: `Run a microshop service.

A single service is mounted at "/". "all" mounts every service under its
prefix: /auth, /products, /orders and /shipping.

Examples:
  microshop serve catalog
  microshop serve all --config-dir ./deploy`,
		ValidArgs: append(append([]string{}, app.Services...), app.ServiceAll),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, args[0])
		},
	}
	return cmd
}

func runServe(ctx context.Context, opts *RootOptions, name string) error {
	cfg, err := config.Load(opts.ConfigDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel, zap.String("service", name)); err != nil {
		return WrapExitError(ExitCommandError, "failed to init logger", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build application", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	select {
	case err := <-errCh:
		shutdownErr := a.Shutdown(context.Background())
		return WrapExitError(ExitFailure, "server stopped", errors.Join(err, shutdownErr))
	case <-ctx.Done():
	}

	l.Info("Shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	l.Info("Server stopped")
	return nil
}
