package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/briefing/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

// NewHTTPHandler returns the briefing API of env with /metrics mounted.
func NewHTTPHandler(env *Environment) http.Handler {
	return httpAdapter.NewHandler(env.Agent,
		httpAdapter.WithLogger(env.Logger),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(env.Registry, promhttp.HandlerOpts{})),
	)
}

// Serve runs the briefing API on addr until ctx is cancelled.
func Serve(ctx context.Context, env *Environment, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHTTPHandler(env),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		env.Logger.Info("briefing server listening", "address", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		env.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			closeErr := srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, errors.Join(err, closeErr))
		}
		return nil
	}
}
