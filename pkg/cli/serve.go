package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/slipway/pkg/cli/config"
	controller "github.com/m-mizutani/slipway/pkg/controller/http"
	githubinfra "github.com/m-mizutani/slipway/pkg/infra/github"
	"github.com/m-mizutani/slipway/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		pipeCfg   pipelineConfig
	)

	flags := append(serverCfg.Flags(), pipeCfg.serveFlags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting slipway server",
				slog.String("addr", serverCfg.Addr),
			)

			// Create use cases
			publisher, cleanup, err := pipeCfg.buildPublisher(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			webhookUC := usecase.NewWebhook()

			// Create HTTP server with options
			serverOpts := []controller.Option{
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(pipeCfg.github.WebhookSecret),
			}
			if pipeCfg.github.OIDCAudience != "" {
				verifier, err := githubinfra.NewTokenVerifier(ctx, pipeCfg.github.OIDCAudience)
				if err != nil {
					return goerr.Wrap(err, "failed to create ID token verifier")
				}
				serverOpts = append(serverOpts, controller.WithTokenVerifier(verifier))
				logger.Info("Dispatch endpoint enabled",
					slog.String("audience", pipeCfg.github.OIDCAudience),
				)
			}

			server, err := controller.NewServer(ctx, webhookUC, publisher, serverOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, serverCfg.ShutdownGrace)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
