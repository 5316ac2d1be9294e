// Command sshbridged runs the SSH session multiplexer and PTY streaming
// fabric: a REST API for session lifecycle, file transfer and host stats,
// and a WebSocket server for interactive PTY streams.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/websoft9/sshbridge/internal/config"
	"github.com/websoft9/sshbridge/internal/server"
	"github.com/websoft9/sshbridge/internal/session"
	"github.com/websoft9/sshbridge/internal/wsserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := setupLogger(cfg)

	logger.Info().
		Str("version", cfg.Version).
		Str("env", cfg.Env).
		Msg("starting sshbridged")

	manager := session.NewManager()

	httpSrv := server.New(cfg, manager, logger)
	wsSrv := wsserver.New(cfg.WSAddr, manager, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.ListenAndServe)
	g.Go(func() error { return wsSrv.ListenAndServe(gctx) })

	<-gctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http api forced to shutdown")
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("server exited with error")
	}

	logger.Info().Msg("sshbridged exited")
}

func setupLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == "development" && cfg.LogFormat == "pretty" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return log.Logger
}
