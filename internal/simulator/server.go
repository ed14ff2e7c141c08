package simulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aiservice/poseul/internal/discovery"
	"github.com/aiservice/poseul/internal/logging"
	"github.com/aiservice/poseul/internal/version"
)

// ServeConfig holds the listener settings
type ServeConfig struct {
	Host string
	Port int

	// Instance is the mDNS instance name; empty disables announcing
	Instance string

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration
}

// Serve listens on cfg's address and blocks until ctx is done, then
// shuts down gracefully. ready, if not nil, receives the bound address
// once the listener is up.
func (s *Simulator) Serve(ctx context.Context, cfg ServeConfig, ready func(addr net.Addr)) error {
	addr := net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	bound := listener.Addr()
	logging.Info("Simulator listening",
		zap.String("addr", bound.String()),
		zap.String("device_id", s.Appliance.ID()),
		zap.Bool("model_loaded", s.Model.Loaded()),
	)

	if cfg.Instance != "" {
		port := bound.(*net.TCPAddr).Port
		announcement, err := discovery.Announce(cfg.Instance, port, map[string]string{
			"path":    "/",
			"version": version.Version,
		})
		if err != nil {
			logging.Warn("mDNS announcement failed, continuing without it", zap.Error(err))
		} else {
			defer announcement.Shutdown()
		}
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(listener)
	}()

	if ready != nil {
		ready(bound)
	}

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping simulator...")
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.Info("Simulator stopped")
	return nil
}
