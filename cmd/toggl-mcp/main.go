package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toggl-mcp/internal/app"
	"toggl-mcp/internal/config"
)

func main() {
	// Flags
	httpAddr := flag.String("http", "", "Serve streamable HTTP MCP on this address (e.g. :8080) instead of stdio")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	// Logger; stdout belongs to the stdio transport
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// App
	application, err := app.New(logger, cfg)
	if err != nil {
		logger.Error("failed to initialize app", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *httpAddr == "" {
		if err := application.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil {
			logger.Error("stdio server error", slog.String("error", err.Error()))
		}
		shutdown(logger, application, nil)
		return
	}

	srv := application.HTTPServer(*httpAddr)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", *httpAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("http server error", slog.String("error", err.Error()))
	}
	shutdown(logger, application, srv)
}

// shutdown stops the HTTP listener, if any, before the app releases its store.
func shutdown(log *slog.Logger, a *app.App, srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("http shutdown failed", slog.String("error", err.Error()))
		}
	}
	if err := a.Close(ctx); err != nil {
		log.Error("app shutdown failed", slog.String("error", err.Error()))
	}
}
