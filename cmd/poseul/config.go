package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aiservice/poseul/internal/config"
	"github.com/aiservice/poseul/internal/ui"
)

var configForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		created, err := config.CreateDefault(path, configForce)
		if err != nil {
			return err
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Configuration created",
			ui.Detail{Key: "Path", Value: created.Path()},
			ui.Detail{Key: "Server", Value: created.ServerURL},
		)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after the config file, .env and environment
variables have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if outputFormat == formatJSON {
			return printJSON(out, map[string]any{
				"path":       cfg.Path(),
				"server_url": cfg.ResolveServerURL(serverURL),
				"timeouts": map[string]string{
					"health":  cfg.Timeouts.Health.String(),
					"predict": cfg.Timeouts.Predict.String(),
					"state":   cfg.Timeouts.State.String(),
					"control": cfg.Timeouts.Control.String(),
				},
				"profile":  cfg.Profile,
				"backends": cfg.Backends,
			})
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		p := ui.NewPrinter(out)
		p.PrintHeader("Configuration",
			ui.Detail{Key: "Path", Value: cfg.Path()},
			ui.Detail{Key: "Server", Value: cfg.ResolveServerURL(serverURL)},
		)
		p.Println(string(data))
		return nil
	},
}
