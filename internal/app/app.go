// Package app wires config, store, gateway, engine and the HTTP surface
// into one runnable daemon.
package app

import (
	"context"
	"fmt"
	"net/http"

	"threadsync/internal/retention"
	"threadsync/pkg/config"
	"threadsync/pkg/engine"
	"threadsync/pkg/gateway"
	"threadsync/pkg/logger"
	"threadsync/pkg/store"
)

// App encapsulates the daemon components and lifecycle.
type App struct {
	cfg     *config.Config
	addr    string
	dbPath  string
	version string

	st  *store.Store
	eng *engine.Engine
	srv *http.Server
}

// New initializes resources that do not require a running context: config
// validation, the pebble mirror, the gateway client and the engine. Call
// Run to start the schedulers and the HTTP server.
func New(cfg *config.Config, addr, dbPath, version string) (*App, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local mirror at %s: %w", dbPath, err)
	}

	gw := gateway.New(cfg.Remote.BaseURL, cfg.Remote.Token, cfg.RemoteTimeout())
	eng := engine.New(gw, st, cfg.PageLimit())

	return &App{cfg: cfg, addr: addr, dbPath: dbPath, version: version, st: st, eng: eng}, nil
}

// Engine exposes the engine for embedding callers (tests, CLIs).
func (a *App) Engine() *engine.Engine { return a.eng }

// Store exposes the local mirror.
func (a *App) Store() *store.Store { return a.st }

// Run starts retention and the HTTP server, and blocks until ctx is
// canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	stopRetention, err := retention.Start(ctx, a.cfg, a.eng, a.st)
	if err != nil {
		return err
	}
	defer stopRetention()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		logger.Info("shutting_down")
		a.shutdownHTTP()
		if cerr := a.st.Close(); cerr != nil {
			logger.Error("store_close_failed", "error", cerr)
		}
		return nil
	case err := <-errCh:
		_ = a.st.Close()
		return err
	}
}
