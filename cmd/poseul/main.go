// Poseul is the command line client for the comfort temperature service.
//
// It asks the prediction backend for a comfort temperature from a set of
// body metrics and drives the air conditioner the backend controls. Every
// command talks to one backend, chosen by --server, POSEUL_SERVER_URL,
// the config file, or the emulator default, in that order.
//
// Usage:
//
//	poseul [command] [flags]
//
// See 'poseul --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aiservice/poseul/internal/config"
	"github.com/aiservice/poseul/internal/logging"
	"github.com/aiservice/poseul/internal/version"
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logging.Sync()
		os.Exit(1)
	}
}

// Global flags
var (
	serverURL    string
	logLevel     string
	outputFormat string
)

// cfg is loaded before every command runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "poseul",
	Short: "Comfort temperature prediction and air conditioner control",
	Long: `Poseul predicts a comfortable temperature from heart rate, HRV, BMI,
SpO2, gender and age, and controls the air conditioner connected to the
same backend.

The backend is taken from --server, POSEUL_SERVER_URL, the config file
(see 'poseul config show'), or http://10.0.2.2:5000, in that order.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(logLevel); err != nil {
			return err
		}
		if outputFormat != formatDetailed && outputFormat != formatJSON {
			return fmt.Errorf("invalid --format %q (valid: %s, %s)", outputFormat, formatDetailed, formatJSON)
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL (overrides config and POSEUL_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatDetailed, "Output format (detailed, json)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat == formatJSON {
			return printJSON(cmd.OutOrStdout(), version.Get())
		}
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "poseul %s (commit: %s, %s, %s)\n", info.Version, info.Commit, info.GoVersion, info.Platform)
		return nil
	},
}
