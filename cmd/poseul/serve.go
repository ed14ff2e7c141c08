package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aiservice/poseul/internal/bridge"
	"github.com/aiservice/poseul/internal/logging"
	"github.com/aiservice/poseul/internal/tui"
)

// Bridge command flags
var (
	bridgeListen string
)

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().StringVar(&bridgeListen, "listen", "127.0.0.1:8765", "Address to serve observers on")
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive dashboard for prediction and control",
	Long: `Open a full screen dashboard showing the air conditioner state and the
latest prediction. Press ? inside the dashboard for key bindings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := connect()
		return tui.RunDashboard(b.store(), cfg.Profile.Input(), b.url)
	},
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Serve the live state to WebSocket observers",
	Long: `Serve one shared store over a WebSocket at ` + bridge.Path + `.

Every observer receives the current device and prediction snapshots,
then one event per transition. Observers send intents such as
{"op":"refresh"} or {"op":"set_mode","mode":"COOL"}.`,
	Args: cobra.NoArgs,
	RunE: runBridge,
}

func runBridge(cmd *cobra.Command, args []string) error {
	b := connect()
	s := b.store()
	br := bridge.New(s, cfg.Profile.Input())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", bridgeListen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", bridgeListen, err)
	}

	srv := &http.Server{
		Handler:           br.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Bridge for %s listening on ws://%s%s (Ctrl+C to stop)\n",
		b.url, listener.Addr(), bridge.Path)
	logging.Info("Bridge started",
		zap.String("addr", listener.Addr().String()),
		zap.String("backend", b.url),
	)

	// Observers start from a populated device facet
	s.Refresh()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("bridge server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("Shutting down bridge", zap.Int("clients", br.Clients()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	s.Wait()
	return nil
}
