package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Serve recomputes the document once, then runs the HTTP control server on
// cfg.HTTPPort until ctx is cancelled and shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	a.logger.Debug("App.Serve method started.")

	if _, err := a.Recompute(ctx); err != nil {
		return fmt.Errorf("initial recompute failed: %w", err)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.HTTPPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🛰️ Control server starting", "address", fmt.Sprintf("http://%s", ln.Addr()))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("Control server failed unexpectedly", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}
	return a.closeServer()
}

func (a *App) closeServer() error {
	if a.httpServer == nil {
		a.logger.Debug("Control server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down control server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Control server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Control server shut down gracefully.")
	return nil
}
