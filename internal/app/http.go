package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"threadsync/pkg/api"
	"threadsync/pkg/logger"
)

// startHTTP builds the local API handler stack and serves it in the
// background, reporting fatal errors on the returned channel.
func (a *App) startHTTP(ctx context.Context) <-chan error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	apiSrv := api.NewServer(a.eng, a.st)
	handler := api.RateLimit(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst)(apiSrv.Router())
	mux.Handle("/", handler)

	a.srv = &http.Server{
		Addr:              a.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", a.addr)
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

func (a *App) shutdownHTTP() {
	if a.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(ctx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
}
