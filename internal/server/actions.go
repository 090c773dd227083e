package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dtnitsch/geo-audit/internal/audit"
	"github.com/dtnitsch/geo-audit/internal/common"
	"github.com/urfave/cli/v2"
)

// ServeAction runs the HTTP API until SIGINT or SIGTERM.
func ServeAction(c *cli.Context) error {
	logger := common.NewLogger(os.Stderr, common.LogLevel(c.Bool("quiet"), c.Bool("verbose")))

	cfg, err := common.ConfigFromContext(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	comps, err := audit.Build(cfg, !c.Bool("no-snippets"), logger)
	if err != nil {
		logger.Error("failed to initialize audit pipeline", "error", err)
		return cli.Exit("", 2)
	}
	defer comps.Close()

	srv := New(Config{ListenAddr: c.String("addr"), Logger: logger}, comps.Pipeline, comps.Extractor).HTTPServer()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", srv.Addr, "provider", cfg.Provider, "model", cfg.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			return cli.Exit("", 2)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		return cli.Exit("", 2)
	}
	return nil
}
