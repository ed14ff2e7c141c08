// Poseul-sim is a stand-in for the comfort temperature backend.
//
// It serves the prediction endpoints (/health, /predict, /model_info) and
// the air conditioner endpoints (/air_conditioner/state, /air_conditioner/control) with an in-memory
// model and appliance, and announces itself over mDNS so 'poseul discover'
// can find it.
//
// Usage:
//
//	poseul-sim serve [flags]
//
// See 'poseul-sim serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/aiservice/poseul/internal/logging"
	"github.com/aiservice/poseul/internal/simulator"
	"github.com/aiservice/poseul/internal/version"
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logging.Sync()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "poseul-sim",
	Short: "Poseul backend simulator",
	Long: `A standalone simulator of the poseul backend.

It answers the same HTTP API as the real backend, so the poseul client,
dashboard and bridge can be exercised without a trained model or an air
conditioner.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host         string
	port         int
	instance     string
	deviceID     string
	noModel      bool
	offline      bool
	controlRate  float64
	controlBurst int
	logLevel     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulator",
	Example: `  # Serve on the default port and announce over mDNS
  poseul-sim serve

  # Start without a model to exercise "model not ready"
  poseul-sim serve --no-model

  # Local only, no announcement, verbose
  poseul-sim serve --host 127.0.0.1 --instance "" --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	defaults := simulator.DefaultOptions()

	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 5000, "Listen port")
	serveCmd.Flags().StringVar(&instance, "instance", "poseul-sim", "mDNS instance name (empty disables announcing)")
	serveCmd.Flags().StringVar(&deviceID, "device-id", defaults.DeviceID, "Device id reported by the state endpoint")
	serveCmd.Flags().BoolVar(&noModel, "no-model", false, "Start with no model loaded")
	serveCmd.Flags().BoolVar(&offline, "offline", false, "Start with the air conditioner offline")
	serveCmd.Flags().Float64Var(&controlRate, "control-rate", float64(defaults.ControlRate), "Control commands per second per client")
	serveCmd.Flags().IntVar(&controlBurst, "control-burst", defaults.ControlBurst, "Control command burst per client")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	opts := simulator.DefaultOptions()
	opts.DeviceID = deviceID
	opts.ModelLoaded = !noModel
	opts.ControlRate = rate.Limit(controlRate)
	opts.ControlBurst = controlBurst

	sim := simulator.New(opts)
	sim.Appliance.SetOffline(offline)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sim.Serve(ctx, simulator.ServeConfig{
		Host:     host,
		Port:     port,
		Instance: instance,
	}, func(addr net.Addr) {
		fmt.Fprintf(cmd.OutOrStdout(), "Simulator listening on %s (Ctrl+C to stop)\n", addr)
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "poseul-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
